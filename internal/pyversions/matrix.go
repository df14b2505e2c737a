// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package pyversions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultVersions lists the CPython minor releases considered for a test
// matrix when no other list is supplied
var DefaultVersions = []string{
	"3.6", "3.7", "3.8", "3.9", "3.10", "3.11", "3.12", "3.13", "3.14",
}

// FilterVersions keeps the minor versions (e.g. "3.11") that satisfy every clause.
// Clauses are compared at minor-release granularity: a minor release matches
// if the clause admits it or any of its patch releases.
func FilterVersions(versions []string, spec Specifier) []string {
	var filtered []string
	for _, version := range versions {
		if matchesAll(version, spec) {
			filtered = append(filtered, version)
		}
	}
	return filtered
}

// ResolveVersions resolves the list of Python versions allowed by a
// python_requires string
func ResolveVersions(requiresPython string, supportedVersions []string) ([]string, error) {
	if len(supportedVersions) == 0 {
		return nil, fmt.Errorf("no supported versions available")
	}

	spec, err := Parse(requiresPython)
	if err != nil {
		return nil, err
	}

	filtered := FilterVersions(supportedVersions, spec)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no versions match the constraint '%s'", requiresPython)
	}

	return filtered, nil
}

// MatrixJSON renders versions as a GitHub Actions matrix include
func MatrixJSON(versions []string) (string, error) {
	data, err := json.Marshal(map[string][]string{"python-version": versions})
	if err != nil {
		return "", fmt.Errorf("failed to marshal matrix: %w", err)
	}
	return string(data), nil
}

func matchesAll(version string, spec Specifier) bool {
	for _, c := range spec {
		if !matchesClause(version, c) {
			return false
		}
	}
	return true
}

// matchesClause checks a minor version against a single clause
func matchesClause(version string, c Clause) bool {
	if strings.HasSuffix(c.Version, ".*") {
		matched, whole := inSeries(version, strings.TrimSuffix(c.Version, ".*"))
		if c.Operator == "!=" {
			// a minor release is excluded only when its whole series is
			return !(matched && whole)
		}
		return matched
	}

	minor := stripPatchVersion(c.Version)
	hasPatch := len(releaseParts(c.Version)) > 2
	cmp := compareVersions(version, minor)

	switch c.Operator {
	case ">=":
		return cmp >= 0
	case ">":
		// >3.10.1 still admits later 3.10 patches
		return cmp > 0 || (cmp == 0 && hasPatch)
	case "<=":
		return cmp <= 0
	case "<":
		return cmp < 0 || (cmp == 0 && hasPatch && !isZeroPatch(c.Version))
	case "==", "===":
		return cmp == 0
	case "!=":
		return cmp != 0 || hasPatch
	case "~=":
		parts := releaseParts(c.Version)
		if len(parts) > 2 {
			// ~=3.10.1 means >=3.10.1,==3.10.*
			return cmp == 0
		}
		return cmp >= 0 && hasSameMajorVersion(version, c.Version)
	default:
		return false
	}
}

func isZeroPatch(version string) bool {
	parts := releaseParts(version)
	for _, p := range parts[2:] {
		if p != 0 {
			return false
		}
	}
	return true
}

// inSeries reports whether the minor version overlaps the release series
// prefix ("3.10" overlaps "3", "3.10" and "3.10.1"), and whether the
// series covers the whole minor release
func inSeries(version, prefix string) (matched, whole bool) {
	v := releaseParts(version)
	p := releaseParts(prefix)
	n := len(p)
	if len(v) < n {
		n = len(v)
	}
	for i := 0; i < n; i++ {
		if v[i] != p[i] {
			return false, false
		}
	}
	return true, len(p) <= len(v)
}

// stripPatchVersion removes the patch version if present (3.10.1 -> 3.10)
func stripPatchVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return version
}

// hasSameMajorVersion checks if two versions have the same major version
func hasSameMajorVersion(v1, v2 string) bool {
	p1, p2 := releaseParts(v1), releaseParts(v2)
	return len(p1) > 0 && len(p2) > 0 && p1[0] == p2[0]
}
