// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package output

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactWriter stores conversion reports in a directory a workflow can
// upload as an artifact
type ArtifactWriter struct {
	NamePrefix string
	Formats    []string
	OutputDir  string
	Renderer   *Renderer
}

// ArtifactResult contains information about the written artifact
type ArtifactResult struct {
	Path   string
	Suffix string
	Name   string
	Files  []string
}

// NewArtifactWriter creates an artifact writer. Empty arguments fall back to
// the "setuptools-modernize" prefix, the system temp dir and all formats.
func NewArtifactWriter(namePrefix string, formats []string, outputDir string, renderer *Renderer) *ArtifactWriter {
	if namePrefix == "" {
		namePrefix = "setuptools-modernize"
	}
	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if len(formats) == 0 {
		formats = Formats
	}
	if renderer == nil {
		renderer = NewRenderer(true, true)
	}

	return &ArtifactWriter{
		NamePrefix: namePrefix,
		Formats:    formats,
		OutputDir:  outputDir,
		Renderer:   renderer,
	}
}

// artifactFiles maps formats to file names inside the artifact directory
var artifactFiles = map[string]string{
	FormatCfg:  "setup.cfg",
	FormatJSON: "conversion.json",
	FormatYAML: "conversion.yaml",
}

// Write renders the report in every configured format into a new,
// uniquely named directory
func (a *ArtifactWriter) Write(report *Report, jobName string) (*ArtifactResult, error) {
	suffix, err := generateSuffix()
	if err != nil {
		return nil, fmt.Errorf("failed to generate artifact suffix: %w", err)
	}

	name := a.NamePrefix + "-" + suffix
	if jobName != "" {
		name = fmt.Sprintf("%s-%s-%s", a.NamePrefix, jobName, suffix)
	}

	artifactPath := filepath.Join(a.OutputDir, name)
	if err := os.MkdirAll(artifactPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create artifact directory: %v", ErrIO, err)
	}

	result := &ArtifactResult{
		Path:   artifactPath,
		Suffix: suffix,
		Name:   name,
		Files:  make([]string, 0, len(a.Formats)),
	}

	for _, format := range a.Formats {
		file, ok := artifactFiles[format]
		if !ok {
			return nil, fmt.Errorf("unsupported artifact format: %s", format)
		}

		data, err := a.Renderer.Render(report, format)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s artifact: %w", format, err)
		}
		if err := WriteFile(filepath.Join(artifactPath, file), data, true); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, file)
	}

	return result, nil
}

// generateSuffix generates a random 4-character alphanumeric suffix
func generateSuffix() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	const length = 4

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	suffix := make([]byte, length)
	for i := range bytes {
		suffix[i] = charset[int(bytes[i])%len(charset)]
	}

	return string(suffix), nil
}
