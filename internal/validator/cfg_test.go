// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCfg = `# header
[metadata]
name = foo
# FIXME: set it manually
# version = get_version()

[options]
install_requires =
    a
    b
package_dir =
    = src

[options.package_data]
* =
    *.txt
`

func TestCfgValidator_Validate(t *testing.T) {
	sample := map[string]map[string][]string{
		"metadata":             {"name": {"foo"}},
		"options":              {"install_requires": {"", "a", "b"}, "package_dir": {"", "= src"}},
		"options.package_data": {"*": {"", "*.txt"}},
	}

	tests := []struct {
		name     string
		data     string
		strict   bool
		expected map[string]map[string][]string
		wantErr  string
	}{
		{
			name: "lenient",
			data: sampleCfg,
		},
		{
			name:     "strict with expected values",
			data:     sampleCfg,
			strict:   true,
			expected: sample,
		},
		{
			name:   "commented key is not readable",
			data:   sampleCfg,
			strict: true,
			expected: map[string]map[string][]string{
				"metadata":             {"name": {"foo"}, "version": {"get_version()"}},
				"options":              sample["options"],
				"options.package_data": sample["options.package_data"],
			},
			wantErr: `key "version" missing from section [metadata]`,
		},
		{
			name:   "missing section",
			data:   sampleCfg,
			strict: true,
			expected: map[string]map[string][]string{
				"metadata":             sample["metadata"],
				"options":              sample["options"],
				"options.package_data": sample["options.package_data"],
				"options.entry_points": {"console_scripts": {"", "foo = foo:main"}},
			},
			wantErr: "section [options.entry_points] missing",
		},
		{
			name:   "unexpected section",
			data:   sampleCfg,
			strict: true,
			expected: map[string]map[string][]string{
				"metadata": sample["metadata"],
				"options":  sample["options"],
			},
			wantErr: "unexpected section [options.package_data]",
		},
		{
			name:     "comment line inside a value is dropped",
			data:     "[metadata]\nclassifiers =\n    A\n    #B\n",
			strict:   true,
			expected: map[string]map[string][]string{"metadata": {"classifiers": {"", "A", "#B"}}},
			wantErr:  `key "classifiers" in section [metadata] reads back as "\nA"`,
		},
		{
			name:     "line break inside an item becomes a key",
			data:     "[metadata]\nclassifiers =\n    a\nb = c\n",
			strict:   true,
			expected: map[string]map[string][]string{"metadata": {"classifiers": {"", "a\nb = c"}}},
			wantErr:  `unexpected key "b" in section [metadata]`,
		},
		{
			name:     "inline comment markers are part of the value",
			data:     "[metadata]\ndescription = C# bindings ; fast\n",
			strict:   true,
			expected: map[string]map[string][]string{"metadata": {"description": {"C# bindings ; fast"}}},
		},
		{
			name:     "escaped percent and blank lines",
			data:     "[metadata]\nlong_description = 100%% pure\n    \n    more\n",
			strict:   true,
			expected: map[string]map[string][]string{"metadata": {"long_description": {"100% pure", "", "more"}}},
		},
		{
			name:     "key outside any section",
			data:     "name = foo\n[metadata]\n",
			strict:   true,
			expected: map[string]map[string][]string{"metadata": {}},
			wantErr:  `key "name" is outside any section`,
		},
		{
			name:    "empty",
			data:    "",
			wantErr: "setup.cfg data is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCfgValidator(tt.strict).Validate([]byte(tt.data), tt.expected)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
