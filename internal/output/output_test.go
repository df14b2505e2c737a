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

	"github.com/lfreleng-actions/setuptools-modernize/internal/setupcfg"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "setup.cfg")

	require.NoError(t, WriteFile(target, []byte("[metadata]\nname = foo\n"), false))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "[metadata]\nname = foo\n", string(data))

	err = WriteFile(target, []byte("changed\n"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "already exists")

	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "[metadata]\nname = foo\n", string(data), "refused write must leave the target untouched")

	require.NoError(t, WriteFile(target, []byte("changed\n"), true))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "changed\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "setup.cfg"), []byte("x"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func TestReadFile(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "setup.py"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func TestNewReport(t *testing.T) {
	report := sampleReport()

	assert.Equal(t, "setup.py", report.Source)
	assert.Equal(t, 3, report.Line)
	assert.Equal(t, []string{"version", "cmdclass"}, report.Kept)
	assert.Equal(t, "setup(\n    version=get_version(),\n    cmdclass={'x': X},\n)\n", report.Residual)

	kinds := make([]string, 0, len(report.Warnings))
	for _, w := range report.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.Equal(t, []string{"unresolved-expression", "none-value", "unrecognized-argument"}, kinds)
}

func TestRenderer_Render(t *testing.T) {
	report := sampleReport()
	r := NewRenderer(true, true)

	cfg, err := r.Render(report, FormatCfg)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(cfg), "[metadata]\nname = foo\n"))
	assert.Contains(t, string(cfg), "# version = get_version()\n")

	again, err := r.Render(report, FormatCfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)

	out, err := r.Render(report, FormatJSON)
	require.NoError(t, err)
	var decoded struct {
		Document struct {
			Sections []struct {
				Name string `json:"name"`
			} `json:"sections"`
		} `json:"document"`
		Warnings []WarningRecord `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.NotEmpty(t, decoded.Document.Sections)
	assert.Equal(t, "metadata", decoded.Document.Sections[0].Name)
	assert.Len(t, decoded.Warnings, 3)

	out, err = r.Render(report, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "source: setup.py\n")

	_, err = r.Render(report, "toml")
	require.Error(t, err)
}

func TestExpectedValues(t *testing.T) {
	report := sampleReport()
	expected := ExpectedValues(report.Document)

	assert.Equal(t, map[string]map[string][]string{
		"metadata":     {"name": {"foo"}},
		"options":      {"install_requires": {"", "a", "b"}},
		"unrecognized": {},
	}, expected, "commented entries are not expected")
}

func TestRenderer_ValidateOutput(t *testing.T) {
	report := sampleReport()

	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			validated, err := NewRenderer(true, true).Render(report, format)
			require.NoError(t, err)

			plain, err := NewRenderer(false, true).Render(report, format)
			require.NoError(t, err)
			assert.Equal(t, validated, plain, "validation does not change the output")
		})
	}
}

func TestRenderer_UnreadableCfg(t *testing.T) {
	tests := []struct {
		name    string
		entry   setupcfg.Entry
		wantErr string
	}{
		{
			name:    "comment line inside a list",
			entry:   setupcfg.Entry{Key: "classifiers", Lines: []string{"A", "#B"}},
			wantErr: `key "classifiers" in section [metadata] reads back as`,
		},
		{
			name:    "line break inside an item",
			entry:   setupcfg.Entry{Key: "classifiers", Lines: []string{"a\nb = c"}},
			wantErr: `unexpected key "b" in section [metadata]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &setupcfg.Document{}
			doc.Section(setupcfg.SectionMetadata).Add(setupcfg.Entry{Key: "name", Value: "foo"})
			doc.Section(setupcfg.SectionMetadata).Add(tt.entry)
			report := &Report{Source: "setup.py", Callee: "setup", Document: doc}

			_, err := NewRenderer(true, true).Render(report, FormatCfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			out, err := NewRenderer(false, true).Render(report, FormatCfg)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestSummaryRows(t *testing.T) {
	ex, result := sampleConversion()

	rows := SummaryRows(ex, result)
	require.Len(t, rows, 5)

	statuses := make(map[string]string)
	for _, row := range rows {
		statuses[row.Argument] = row.Status
	}
	assert.Equal(t, map[string]string{
		"name":             StatusConverted,
		"version":          StatusManual,
		"license":          StatusOmitted,
		"install_requires": StatusConverted,
		"cmdclass":         StatusKept,
	}, statuses)
}

func TestSummary(t *testing.T) {
	ex, result := sampleConversion()

	text := Summary(ex, result)
	assert.Contains(t, text, "install_requires")
	assert.Contains(t, text, "[options]")
	assert.Contains(t, strings.ToUpper(text), "CONVERTED: 2")

	md := SummaryMarkdown("setup.py", ex, result)
	assert.True(t, strings.HasPrefix(md, "### setup.cfg conversion of `setup.py`"))
	assert.Contains(t, md, "| install_requires |")
	assert.Contains(t, md, "#### Warnings")
	assert.Contains(t, md, "- line 5: version: function call")
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		before   string
		after    string
		expected string
	}{
		{
			name:     "equal",
			before:   "[metadata]\nname = foo\n",
			after:    "[metadata]\nname = foo\n",
			expected: "",
		},
		{
			name:   "changed value",
			before: "[metadata]\nname = foo\nversion = 0.9\n",
			after:  "[metadata]\nname = foo\nversion = 1.0\n",
			expected: "--- a\n+++ b\n" +
				" [metadata]\n name = foo\n" +
				"-version = 0.9\n" +
				"+version = 1.0\n",
		},
		{
			name:     "new file",
			before:   "",
			after:    "[options]\nzip_safe = false\n",
			expected: "--- a\n+++ b\n+[options]\n+zip_safe = false\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Diff("a", "b", tt.before, tt.after))
		})
	}
}
