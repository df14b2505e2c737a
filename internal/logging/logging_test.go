// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLogger_Local(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	l := New(false, WithWriter(&buf), WithGetenv(env(nil)))

	assert.False(t, l.CI())
	l.Infof("converting %s", "setup.py")
	l.Debugf("hidden")
	l.Warningf("version is %s", "unresolved")
	l.FileWarningf("setup.py", 7, "not a literal")
	l.FileWarningf("setup.py", 0, "no line")
	l.Errorf("boom")
	l.SetOutput("ignored", "value")

	assert.Equal(t, "converting setup.py\n"+
		"Warning: version is unresolved\n"+
		"Warning: setup.py:7: not a literal\n"+
		"Warning: setup.py: no line\n"+
		"Error: boom\n", buf.String())
}

func TestLogger_Verbose(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		verbose bool
		env     map[string]string
		want    bool
	}{
		{name: "flag", verbose: true, want: true},
		{name: "action input", env: map[string]string{"INPUT_VERBOSE": "true"}, want: true},
		{name: "off", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.verbose, WithWriter(&buf), WithGetenv(env(tt.env)))
			assert.Equal(t, tt.want, l.Verbose())

			l.Debugf("details")
			if tt.want {
				assert.Equal(t, "[DEBUG] details\n", buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLogger_CI(t *testing.T) {
	dir := t.TempDir()
	outputFile := filepath.Join(dir, "output")
	summaryFile := filepath.Join(dir, "summary")
	require.NoError(t, os.WriteFile(outputFile, nil, 0644))
	require.NoError(t, os.WriteFile(summaryFile, nil, 0644))

	var buf bytes.Buffer
	l := New(false, WithWriter(&buf), WithGetenv(env(map[string]string{
		"GITHUB_ACTIONS":      "true",
		"GITHUB_OUTPUT":       outputFile,
		"GITHUB_STEP_SUMMARY": summaryFile,
	})))

	assert.True(t, l.CI())
	l.Warningf("plain")
	l.FileWarningf("setup.py", 3, "unresolved")
	l.Errorf("failed")

	out := buf.String()
	assert.Contains(t, out, "::warning::plain\n")
	assert.Contains(t, out, "::warning file=setup.py,line=3::unresolved\n")
	assert.Contains(t, out, "::error::failed\n")

	l.SetOutput("python-requires", ">=3.8")
	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "python-requires")
	assert.Contains(t, string(data), ">=3.8")

	l.AddStepSummary("### done")
	data, err = os.ReadFile(summaryFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "### done")
}
