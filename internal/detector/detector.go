// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package detector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrNotFound is returned when the path does not lead to a setup.py
var ErrNotFound = errors.New("setup.py not found")

// BuildFile is a Python packaging file found next to setup.py
type BuildFile struct {
	Type     string
	Subtype  string
	File     string
	Priority int
}

// String returns the full build file identifier
func (bf *BuildFile) String() string {
	if bf.Subtype != "" {
		return fmt.Sprintf("%s-%s", bf.Type, bf.Subtype)
	}
	return bf.Type
}

// DetectionRule defines a rule for detecting a packaging file
type DetectionRule struct {
	Type     string
	Subtype  string
	Files    []string // Files that must exist
	Priority int      // Lower values are reported first
}

var detectionRules = []DetectionRule{
	{Type: "python", Subtype: "legacy", Files: []string{"setup.py"}, Priority: 1},
	{Type: "python", Subtype: "setup-cfg", Files: []string{"setup.cfg"}, Priority: 2},
	{Type: "python", Subtype: "modern", Files: []string{"pyproject.toml"}, Priority: 3},
	{Type: "python", Subtype: "requirements", Files: []string{"requirements.txt"}, Priority: 4},
	{Type: "python", Subtype: "version-file", Files: []string{"VERSION"}, Priority: 5},
	{Type: "python", Subtype: "readme", Files: []string{"README*"}, Priority: 6},
}

// Project describes the directory a setup.py lives in
type Project struct {
	Dir     string
	SetupPy string
	// SetupCfg and PyProject are empty when the file does not exist
	SetupCfg  string
	PyProject string
	// Files lists every detected packaging file, by priority
	Files []*BuildFile
}

// TargetSetupCfg is where a converted setup.cfg is written by default
func (p *Project) TargetSetupCfg() string {
	return filepath.Join(p.Dir, "setup.cfg")
}

// Has reports whether a packaging file of the given subtype was found
func (p *Project) Has(subtype string) bool {
	for _, f := range p.Files {
		if f.Subtype == subtype {
			return true
		}
	}
	return false
}

// Resolve turns a CLI path argument into a Project. The path is either the
// build script itself or a directory containing setup.py.
func Resolve(path string) (*Project, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	project := &Project{}
	if info.IsDir() {
		project.Dir = absPath
		project.SetupPy = filepath.Join(absPath, "setup.py")
		if _, err := os.Stat(project.SetupPy); err != nil {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, path)
		}
	} else {
		project.Dir = filepath.Dir(absPath)
		project.SetupPy = absPath
	}

	project.Files = DetectBuildFiles(project.Dir)
	if project.Has("setup-cfg") {
		project.SetupCfg = filepath.Join(project.Dir, "setup.cfg")
	}
	if project.Has("modern") {
		project.PyProject = filepath.Join(project.Dir, "pyproject.toml")
	}

	return project, nil
}

// DetectBuildFiles returns the packaging files present in dir
func DetectBuildFiles(dir string) []*BuildFile {
	sortedRules := make([]DetectionRule, len(detectionRules))
	copy(sortedRules, detectionRules)
	sort.SliceStable(sortedRules, func(i, j int) bool {
		return sortedRules[i].Priority < sortedRules[j].Priority
	})

	var detected []*BuildFile
	for _, rule := range sortedRules {
		if matchesRule(dir, rule) {
			detected = append(detected, &BuildFile{
				Type:     rule.Type,
				Subtype:  rule.Subtype,
				File:     rule.Files[0],
				Priority: rule.Priority,
			})
		}
	}
	return detected
}

// matchesRule checks if the given path matches the detection rule
func matchesRule(dir string, rule DetectionRule) bool {
	for _, filePattern := range rule.Files {
		if !fileExists(dir, filePattern) {
			return false
		}
	}
	return true
}

// fileExists checks if a regular file or pattern exists in dir
func fileExists(dir, pattern string) bool {
	if containsWildcard(pattern) {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		return err == nil && len(matches) > 0
	}

	info, err := os.Stat(filepath.Join(dir, pattern))
	return err == nil && !info.IsDir()
}

func containsWildcard(pattern string) bool {
	for _, c := range pattern {
		if c == '*' || c == '?' || c == '[' {
			return true
		}
	}
	return false
}
