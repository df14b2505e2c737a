// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
	"github.com/lfreleng-actions/setuptools-modernize/internal/setupcfg"
)

// stringList builds a list value of plain strings
func stringList(items ...string) extractor.Value {
	values := make([]extractor.Value, 0, len(items))
	for _, item := range items {
		values = append(values, extractor.String(item))
	}
	return extractor.List(values...)
}

func sampleConversion() (*extractor.Extraction, *setupcfg.Result) {
	ex := &extractor.Extraction{
		Callee: "setup",
		Line:   3,
		Arguments: []extractor.Argument{
			{Name: "name", Value: extractor.String("foo"), Raw: `"foo"`, Line: 4},
			{Name: "version", Value: extractor.Unresolved("get_version()", "function call"), Raw: "get_version()", Line: 5},
			{Name: "license", Value: extractor.None(), Raw: "None", Line: 6},
			{Name: "install_requires", Value: stringList("a", "b"), Raw: `["a", "b"]`, Line: 7},
			{Name: "cmdclass", Value: extractor.Unresolved("{'x': X}", "dict value"), Raw: "{'x': X}", Line: 8},
		},
	}
	return ex, setupcfg.Emit(ex, setupcfg.DefaultEmitOptions())
}

func sampleReport() *Report {
	ex, result := sampleConversion()
	return NewReport("setup.py", ex, result)
}

func TestNewArtifactWriter(t *testing.T) {
	tests := []struct {
		name              string
		namePrefix        string
		formats           []string
		outputDir         string
		expectedPrefix    string
		expectedFormats   []string
		expectedOutputDir string
	}{
		{
			name:              "default values",
			expectedPrefix:    "setuptools-modernize",
			expectedFormats:   []string{"cfg", "json", "yaml"},
			expectedOutputDir: os.TempDir(),
		},
		{
			name:              "custom values",
			namePrefix:        "convert",
			formats:           []string{"json"},
			outputDir:         "/tmp/custom",
			expectedPrefix:    "convert",
			expectedFormats:   []string{"json"},
			expectedOutputDir: "/tmp/custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewArtifactWriter(tt.namePrefix, tt.formats, tt.outputDir, nil)
			assert.Equal(t, tt.expectedPrefix, w.NamePrefix)
			assert.Equal(t, tt.expectedFormats, w.Formats)
			assert.Equal(t, tt.expectedOutputDir, w.OutputDir)
			assert.NotNil(t, w.Renderer)
		})
	}
}

func TestArtifactWriter_Write(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter("", nil, dir, nil)

	result, err := w.Write(sampleReport(), "build")
	require.NoError(t, err)

	assert.Len(t, result.Suffix, 4)
	assert.True(t, strings.HasPrefix(result.Name, "setuptools-modernize-build-"))
	assert.Equal(t, []string{"setup.cfg", "conversion.json", "conversion.yaml"}, result.Files)

	cfg, err := os.ReadFile(filepath.Join(result.Path, "setup.cfg"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "name = foo\n")

	data, err := os.ReadFile(filepath.Join(result.Path, "conversion.json"))
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "setup.py", decoded["source"])

	data, err = os.ReadFile(filepath.Join(result.Path, "conversion.yaml"))
	require.NoError(t, err)
	var decodedYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decodedYAML))
	assert.Equal(t, "setup", decodedYAML["callee"])
}

func TestArtifactWriter_UnsupportedFormat(t *testing.T) {
	w := NewArtifactWriter("", []string{"xml"}, t.TempDir(), nil)
	_, err := w.Write(sampleReport(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported artifact format: xml")
}

func TestGenerateSuffix(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		suffix, err := generateSuffix()
		require.NoError(t, err)
		assert.Regexp(t, `^[a-z0-9]{4}$`, suffix)
		seen[suffix] = true
	}
	assert.Greater(t, len(seen), 1)
}
