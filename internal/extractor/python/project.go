// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package python

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
	"github.com/lfreleng-actions/setuptools-modernize/internal/validator"
	"gopkg.in/ini.v1"
)

// ErrRequiresPythonNotFound is returned when no project file declares python_requires
var ErrRequiresPythonNotFound = errors.New("python_requires not declared")

// PyProjectTOML is the subset of pyproject.toml consulted for requires-python
type PyProjectTOML struct {
	Project struct {
		Name           string   `toml:"name"`
		RequiresPython string   `toml:"requires-python"`
		Dynamic        []string `toml:"dynamic"`
	} `toml:"project"`
}

// RequiresPython looks up the python_requires declaration of the project in
// dir. Files are tried in order: setup.py, setup.cfg, pyproject.toml.
// It returns the declared value and the file it was found in.
func RequiresPython(dir string) (string, string, error) {
	setupPyPath := filepath.Join(dir, "setup.py")
	setupCfgPath := filepath.Join(dir, "setup.cfg")
	pyprojectPath := filepath.Join(dir, "pyproject.toml")

	filesFound := []string{}
	var errs []error

	if exists(setupPyPath) {
		filesFound = append(filesFound, "setup.py")
		value, err := requiresPythonFromSetupPy(setupPyPath)
		if err == nil && value != "" {
			return value, "setup.py", nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if exists(setupCfgPath) {
		filesFound = append(filesFound, "setup.cfg")
		value, err := requiresPythonFromSetupCfg(setupCfgPath)
		if err == nil && value != "" {
			return value, "setup.cfg", nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if exists(pyprojectPath) {
		filesFound = append(filesFound, "pyproject.toml")
		value, err := requiresPythonFromPyProject(pyprojectPath)
		if err == nil && value != "" {
			return value, "pyproject.toml", nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(filesFound) == 0 {
		return "", "", fmt.Errorf("no Python project files found in %s\n\nSearched for: setup.py, setup.cfg, pyproject.toml", dir)
	}
	if len(errs) > 0 {
		return "", "", fmt.Errorf("%w in %s (files found: %s): %w",
			ErrRequiresPythonNotFound, dir, strings.Join(filesFound, ", "), errors.Join(errs...))
	}
	return "", "", fmt.Errorf("%w in %s (files found: %s)",
		ErrRequiresPythonNotFound, dir, strings.Join(filesFound, ", "))
}

// requiresPythonFromSetupPy reads the python_requires keyword of setup().
// Module-level constants are resolved, as in `setup(python_requires=PY_REQ)`.
func requiresPythonFromSetupPy(path string) (string, error) {
	ex, err := NewExtractor(Options{ResolveConstants: true}).ExtractFile(path)
	if err != nil {
		return "", fmt.Errorf("setup.py: %w", err)
	}

	arg, ok := ex.Get("python_requires")
	if !ok {
		return "", nil
	}
	if arg.Value.Kind != extractor.KindString {
		return "", fmt.Errorf("setup.py line %d: python_requires is not a string literal: %s",
			arg.Line, arg.Value.Raw)
	}
	return arg.Value.Str, nil
}

// requiresPythonFromSetupCfg reads [options] python_requires, falling back to
// the [metadata] section where some projects put it
func requiresPythonFromSetupCfg(path string) (string, error) {
	cfg, err := LoadSetupCfg(path)
	if err != nil {
		return "", err
	}

	for _, section := range []string{"options", "metadata"} {
		if !cfg.HasSection(section) {
			continue
		}
		if key := cfg.Section(section).Key("python_requires"); key.String() != "" {
			return strings.TrimSpace(key.String()), nil
		}
	}
	return "", nil
}

// requiresPythonFromPyProject reads [project] requires-python
func requiresPythonFromPyProject(path string) (string, error) {
	var pyproject PyProjectTOML
	if _, err := toml.DecodeFile(path, &pyproject); err != nil {
		return "", fmt.Errorf("TOML parsing failed for pyproject.toml: %w", err)
	}
	return strings.TrimSpace(pyproject.Project.RequiresPython), nil
}

// LoadSetupCfg parses a setup.cfg file with configparser semantics
// (indented continuation lines, '#' and ';' comments)
func LoadSetupCfg(path string) (*ini.File, error) {
	cfg, err := ini.LoadSources(validator.LoadOptions(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse setup.cfg: %w", err)
	}
	return cfg, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
