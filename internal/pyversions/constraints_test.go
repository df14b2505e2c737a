// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package pyversions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Specifier
		shouldError bool
	}{
		{
			name:     "basic >= clause",
			input:    ">=3.10",
			expected: Specifier{{Operator: ">=", Version: "3.10"}},
		},
		{
			name:  "input order is kept",
			input: "<4, >=3.6",
			expected: Specifier{
				{Operator: "<", Version: "4"},
				{Operator: ">=", Version: "3.6"},
			},
		},
		{
			name:     "space between operator and version",
			input:    ">= 3.8",
			expected: Specifier{{Operator: ">=", Version: "3.8"}},
		},
		{
			name:  "alternative spellings",
			input: "=>3.6, =<3.12, <>3.7, =3.9",
			expected: Specifier{
				{Operator: ">=", Version: "3.6"},
				{Operator: "<=", Version: "3.12"},
				{Operator: "!=", Version: "3.7"},
				{Operator: "==", Version: "3.9"},
			},
		},
		{
			name:     "bare version",
			input:    "3.11",
			expected: Specifier{{Operator: "==", Version: "3.11"}},
		},
		{
			name:  "poetry caret",
			input: "^3.10",
			expected: Specifier{
				{Operator: ">=", Version: "3.10"},
				{Operator: "<", Version: "4.0"},
			},
		},
		{
			name:  "poetry caret below 1.0",
			input: "^0.9",
			expected: Specifier{
				{Operator: ">=", Version: "0.9"},
				{Operator: "<", Version: "0.10"},
			},
		},
		{
			name:  "poetry caret below 0.1",
			input: "^0.0.3",
			expected: Specifier{
				{Operator: ">=", Version: "0.0.3"},
				{Operator: "<", Version: "0.0.4"},
			},
		},
		{
			name:  "poetry caret on 0.0",
			input: "^0.0",
			expected: Specifier{
				{Operator: ">=", Version: "0.0"},
				{Operator: "<", Version: "0.1"},
			},
		},
		{
			name:     "wildcard exclusion",
			input:    "!=3.0.*",
			expected: Specifier{{Operator: "!=", Version: "3.0.*"}},
		},
		{
			name:     "pre-release is lowercased",
			input:    ">=3.13.0RC1",
			expected: Specifier{{Operator: ">=", Version: "3.13.0rc1"}},
		},
		{
			name:     "arbitrary equality is verbatim",
			input:    "===3.8.Custom",
			expected: Specifier{{Operator: "===", Version: "3.8.Custom"}},
		},
		{
			name:     "empty clauses are skipped",
			input:    ">=3.8,,",
			expected: Specifier{{Operator: ">=", Version: "3.8"}},
		},
		{name: "empty string", input: "", shouldError: true},
		{name: "only commas", input: " , ", shouldError: true},
		{name: "operator only", input: ">=", shouldError: true},
		{name: "doubled operator", input: ">=>=1.0", shouldError: true},
		{name: "unknown operator", input: "=~3.8", shouldError: true},
		{name: "garbage version", input: ">=three", shouldError: true},
		{name: "space inside version", input: ">=3. 8", shouldError: true},
		{name: "wildcard with ordering", input: ">=3.*", shouldError: true},
		{name: "local label with ordering", input: ">=3.8+local", shouldError: true},
		{name: "compatible release with one component", input: "~=3", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.input)
			if tt.shouldError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedSpecifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "whitespace removed", input: ">=3.6, <4", expected: ">=3.6,<4"},
		{name: "reordered", input: "<4,>=3.6", expected: ">=3.6,<4"},
		{name: "full operator order", input: "!=3.9, <4, <=3.13, >3.5, >=3.6, ~=3.6, ==3.*", expected: "==3.*,~=3.6,>=3.6,>3.5,<=3.13,<4,!=3.9"},
		{name: "exclusions sorted by version", input: "!=3.10.*, !=3.2.*, >=2.7", expected: ">=2.7,!=3.2.*,!=3.10.*"},
		{name: "duplicates collapse", input: ">=3.8, >=3.8", expected: ">=3.8"},
		{name: "spellings canonicalized", input: "=>3.7,<>3.8", expected: ">=3.7,!=3.8"},
		{name: "caret expanded", input: "^3.9", expected: ">=3.9,<4.0"},
		{name: "caret below 1.0", input: "^0.2.1", expected: ">=0.2.1,<0.3"},
		{name: "caret below 0.1", input: "^0.0.3", expected: ">=0.0.3,<0.0.4"},
		{name: "trailing comma", input: ">=3.8,", expected: ">=3.8"},
		{name: "single clause", input: "~=3.10", expected: "~=3.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)

			again, err := Normalize(result)
			require.NoError(t, err)
			assert.Equal(t, result, again, "normalization is idempotent")
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	for _, input := range []string{">=>=1.0", "", ">=", "> =", "3.8 3.9"} {
		t.Run(input, func(t *testing.T) {
			_, err := Normalize(input)
			assert.ErrorIs(t, err, ErrMalformedSpecifier)
		})
	}
}

func TestSpecifier_String(t *testing.T) {
	spec := Specifier{{Operator: ">=", Version: "3.8"}, {Operator: "<", Version: "4"}}
	assert.Equal(t, ">=3.8,<4", spec.String())
	assert.Equal(t, "!=3.9", Clause{Operator: "!=", Version: "3.9"}.String())
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2   string
		expected int
	}{
		{"3.10", "3.9", 1},
		{"3.9", "3.10", -1},
		{"3.10", "3.10.0", 0},
		{"3", "3.0.0", 0},
		{"3.11.1", "3.11", 1},
		{"3.13.0rc1", "3.13", 0},
	}

	for _, tt := range tests {
		t.Run(tt.v1+"_"+tt.v2, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareVersions(tt.v1, tt.v2))
		})
	}
}
