// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/ini.v1"
)

// CfgValidator reads a rendered setup.cfg back the way configparser would
type CfgValidator struct {
	StrictMode bool
}

// NewCfgValidator creates a new setup.cfg validator
func NewCfgValidator(strictMode bool) *CfgValidator {
	return &CfgValidator{
		StrictMode: strictMode,
	}
}

// LoadOptions are the go-ini settings matching setuptools' configparser
func LoadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
		KeyValueDelimiters:         "=:",
		IgnoreContinuation:         true,
	}
}

// Validate parses data and, in strict mode, checks that it reads back as
// expected: section name to key to value lines, the first line being the
// text after the delimiter. Sections or keys the reader sees beyond the
// expectation are reported too.
func (v *CfgValidator) Validate(data []byte, expected map[string]map[string][]string) error {
	if len(data) == 0 {
		return fmt.Errorf("setup.cfg data is empty")
	}

	cfg, err := ini.LoadSources(LoadOptions(), data)
	if err != nil {
		return fmt.Errorf("invalid setup.cfg syntax: %w", err)
	}

	if !v.StrictMode {
		return nil
	}

	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			if len(section.Keys()) > 0 {
				return fmt.Errorf("key %q is outside any section", section.Keys()[0].Name())
			}
			continue
		}
		if _, ok := expected[name]; !ok {
			return fmt.Errorf("unexpected section [%s] after parsing", name)
		}
	}

	for _, name := range sortedKeys(expected) {
		section, err := cfg.GetSection(name)
		if err != nil {
			return fmt.Errorf("section [%s] missing after parsing", name)
		}

		keys := expected[name]
		for _, key := range section.KeyStrings() {
			if _, ok := keys[key]; !ok {
				return fmt.Errorf("unexpected key %q in section [%s] after parsing", key, name)
			}
		}

		for _, key := range sortedKeys(keys) {
			if !section.HasKey(key) {
				return fmt.Errorf("key %q missing from section [%s] after parsing", key, name)
			}
			want := valueLines(keys[key])
			if len(want) > 0 && strings.IndexAny(want[0], "\"'`") == 0 {
				// go-ini unquotes these itself
				continue
			}
			got := readValue(section.Key(key).String())
			if !slices.Equal(want, got) {
				return fmt.Errorf("key %q in section [%s] reads back as %q, want %q",
					key, name, strings.Join(got, "\n"), strings.Join(want, "\n"))
			}
		}
	}

	return nil
}

// readValue splits a go-ini value the way configparser would see it:
// continuation lines that look like comments are dropped and %% stands
// for a single percent sign
func readValue(raw string) []string {
	var lines []string
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if i > 0 && (strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";")) {
			continue
		}
		lines = append(lines, strings.ReplaceAll(line, "%%", "%"))
	}
	return valueLines(lines)
}

func valueLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimSpace(line))
	}
	for len(out) > 1 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
