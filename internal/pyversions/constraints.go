// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package pyversions

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedSpecifier is returned for version specifiers that cannot be parsed
var ErrMalformedSpecifier = errors.New("malformed version specifier")

// Clause is a single comparison of a version specifier, e.g. ">=3.8"
type Clause struct {
	Operator string // ===, ==, ~=, >=, >, <=, <, !=
	Version  string // Version number (e.g., "3.10", "3.0.*")
}

// String returns the canonical spelling of the clause
func (c Clause) String() string {
	return c.Operator + c.Version
}

// Specifier is an ordered list of clauses that must all hold
type Specifier []Clause

// String joins the clauses without whitespace
func (s Specifier) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

// operatorRank is the canonical clause order: pins, lower bounds, upper
// bounds, then exclusions
var operatorRank = map[string]int{
	"===": 0,
	"==":  1,
	"~=":  2,
	">=":  3,
	">":   4,
	"<=":  5,
	"<":   6,
	"!=":  7,
}

// operatorSpellings maps accepted alternative spellings to canonical operators
var operatorSpellings = map[string]string{
	"===": "===",
	"==":  "==",
	"=":   "==",
	"~=":  "~=",
	">=":  ">=",
	"=>":  ">=",
	">":   ">",
	"<=":  "<=",
	"=<":  "<=",
	"<":   "<",
	"!=":  "!=",
	"<>":  "!=",
	"":    "==",
}

var (
	clausePattern = regexp.MustCompile(`^(===|==|~=|!=|<=|>=|<>|=>|=<|<|>|=|\^)?\s*([^\s,]*)$`)

	// PEP 440 public version with optional local label
	versionPattern = regexp.MustCompile(`^(?i)(?:\d+!)?\d+(?:\.\d+)*` +
		`(?:[-_.]?(?:a|b|c|rc|alpha|beta|pre|preview)[-_.]?\d*)?` +
		`(?:-\d+|[-_.]?(?:post|rev|r)[-_.]?\d*)?` +
		`(?:[-_.]?dev[-_.]?\d*)?` +
		`(?:\+[a-z0-9]+(?:[-_.][a-z0-9]+)*)?$`)

	wildcardPattern = regexp.MustCompile(`^(?:\d+!)?\d+(?:\.\d+)*\.\*$`)
	releasePattern  = regexp.MustCompile(`^(?:\d+!)?(\d+(?:\.\d+)*)`)
)

// Parse splits a python_requires string into clauses, rewriting alternative
// operator spellings. The clause order of the input is kept.
// Examples: ">=3.6, <4", "~=3.10", "^3.10", ">=2.7,!=3.0.*"
func Parse(spec string) (Specifier, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("%w: empty string", ErrMalformedSpecifier)
	}

	var clauses Specifier
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		parsed, err := parseClause(part)
		if err != nil {
			return nil, fmt.Errorf("%w: clause %q: %v", ErrMalformedSpecifier, part, err)
		}
		clauses = append(clauses, parsed...)
	}

	if len(clauses) == 0 {
		return nil, fmt.Errorf("%w: no clauses in %q", ErrMalformedSpecifier, spec)
	}

	return clauses, nil
}

// parseClause parses one comma-separated clause. A Poetry caret yields two clauses.
func parseClause(s string) ([]Clause, error) {
	matches := clausePattern.FindStringSubmatch(s)
	if matches == nil {
		return nil, errors.New("invalid clause format")
	}
	spelling, version := matches[1], matches[2]
	if version == "" {
		return nil, errors.New("missing version")
	}

	if spelling == "^" {
		return expandCaret(version)
	}

	op := operatorSpellings[spelling]
	if op == "===" {
		// arbitrary equality compares strings verbatim
		return []Clause{{Operator: op, Version: version}}, nil
	}

	version = strings.ToLower(version)
	switch {
	case strings.HasSuffix(version, ".*"):
		if op != "==" && op != "!=" {
			return nil, fmt.Errorf("wildcard version not allowed with %s", op)
		}
		if !wildcardPattern.MatchString(version) {
			return nil, fmt.Errorf("invalid version %q", version)
		}
	case !versionPattern.MatchString(version):
		return nil, fmt.Errorf("invalid version %q", version)
	case strings.Contains(version, "+") && op != "==" && op != "!=":
		return nil, fmt.Errorf("local version label not allowed with %s", op)
	case op == "~=" && len(releaseParts(version)) < 2:
		return nil, fmt.Errorf("compatible release %q needs at least two components", version)
	}

	return []Clause{{Operator: op, Version: version}}, nil
}

// expandCaret rewrites a Poetry caret requirement into PEP 440 bounds:
// ^3.10 -> >=3.10,<4.0, ^0.9 -> >=0.9,<0.10 and ^0.0.3 -> >=0.0.3,<0.0.4
func expandCaret(version string) ([]Clause, error) {
	if !versionPattern.MatchString(version) || strings.ContainsAny(version, "!+") {
		return nil, fmt.Errorf("invalid caret version %q", version)
	}
	parts := releaseParts(version)

	upper := ""
	switch {
	case parts[0] > 0 || len(parts) == 1:
		upper = fmt.Sprintf("%d.0", parts[0]+1)
	case parts[1] == 0 && len(parts) > 2:
		upper = fmt.Sprintf("0.0.%d", parts[2]+1)
	default:
		upper = fmt.Sprintf("0.%d", parts[1]+1)
	}

	return []Clause{
		{Operator: ">=", Version: strings.ToLower(version)},
		{Operator: "<", Version: upper},
	}, nil
}

// Normalized returns the clauses in canonical order with exact duplicates removed
func (s Specifier) Normalized() Specifier {
	out := make(Specifier, len(s))
	copy(out, s)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := operatorRank[out[i].Operator], operatorRank[out[j].Operator]
		if ri != rj {
			return ri < rj
		}
		if cmp := compareVersions(out[i].Version, out[j].Version); cmp != 0 {
			return cmp < 0
		}
		return out[i].Version < out[j].Version
	})

	deduped := out[:0]
	for i, c := range out {
		if i > 0 && c == out[i-1] {
			continue
		}
		deduped = append(deduped, c)
	}
	return deduped
}

// Normalize parses spec and returns its canonical form. Normalizing an
// already normalized specifier returns it unchanged.
func Normalize(spec string) (string, error) {
	parsed, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return parsed.Normalized().String(), nil
}

// releaseParts returns the numeric release segment of a version ("3.10.1" -> 3,10,1)
func releaseParts(version string) []int {
	m := releasePattern.FindStringSubmatch(version)
	if m == nil {
		return nil
	}
	fields := strings.Split(m[1], ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return parts
		}
		parts = append(parts, n)
	}
	return parts
}

// compareVersions compares the release segments of two versions, padding
// the shorter one with zeros
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func compareVersions(v1, v2 string) int {
	parts1 := releaseParts(v1)
	parts2 := releaseParts(v2)

	maxLen := len(parts1)
	if len(parts2) > maxLen {
		maxLen = len(parts2)
	}

	for i := 0; i < maxLen; i++ {
		var p1, p2 int
		if i < len(parts1) {
			p1 = parts1[i]
		}
		if i < len(parts2) {
			p2 = parts2[i]
		}

		if p1 < p2 {
			return -1
		}
		if p1 > p2 {
			return 1
		}
	}
	return 0
}
