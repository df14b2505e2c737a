// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

// Package logging writes diagnostics either as GitHub Actions workflow
// commands or as plain, optionally colored, lines on stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/sethvargo/go-githubactions"
)

// Logger reports progress and problems of a run
type Logger struct {
	action  *githubactions.Action
	out     io.Writer
	getenv  func(string) string
	ci      bool
	verbose bool
}

// Option configures a Logger
type Option func(*Logger)

// WithWriter sends all diagnostics to w instead of stderr
func WithWriter(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

// WithGetenv replaces os.Getenv when reading the CI environment
func WithGetenv(getenv func(string) string) Option {
	return func(l *Logger) { l.getenv = getenv }
}

// New creates a logger. Running under GitHub Actions switches to workflow
// commands; the action input "verbose" enables debug output there.
func New(verbose bool, opts ...Option) *Logger {
	l := &Logger{
		out:    os.Stderr,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.action = githubactions.New(
		githubactions.WithWriter(l.out),
		githubactions.WithGetenv(l.getenv),
	)
	l.ci = l.getenv("GITHUB_ACTIONS") == "true"
	l.verbose = verbose || l.action.GetInput("verbose") == "true"
	return l
}

// CI reports whether the logger emits workflow commands
func (l *Logger) CI() bool {
	return l.ci
}

// Verbose reports whether debug output is enabled
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Debugf logs a message only in verbose mode
func (l *Logger) Debugf(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	if l.ci {
		// ::debug:: lines are hidden unless step debugging is on
		l.action.Infof("[DEBUG] "+format, args...)
		return
	}
	color.New(color.Faint).Fprintf(l.out, "[DEBUG] "+format+"\n", args...)
}

// Infof logs a progress message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.ci {
		l.action.Infof(format, args...)
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Warningf logs a non-fatal problem
func (l *Logger) Warningf(format string, args ...interface{}) {
	if l.ci {
		l.action.Warningf(format, args...)
		return
	}
	color.New(color.FgYellow).Fprintf(l.out, "Warning: "+format+"\n", args...)
}

// Errorf logs a fatal problem without exiting
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.ci {
		l.action.Errorf(format, args...)
		return
	}
	color.New(color.FgRed).Fprintf(l.out, "Error: "+format+"\n", args...)
}

// FileWarningf logs a warning about a position in a source file. In CI the
// warning becomes an annotation on that line.
func (l *Logger) FileWarningf(file string, line int, format string, args ...interface{}) {
	if l.ci {
		fields := map[string]string{"file": file}
		if line > 0 {
			fields["line"] = strconv.Itoa(line)
		}
		l.action.WithFieldsMap(fields).Warningf(format, args...)
		return
	}

	location := file
	if line > 0 {
		location = fmt.Sprintf("%s:%d", file, line)
	}
	color.New(color.FgYellow).Fprintf(l.out, "Warning: %s: %s\n", location, fmt.Sprintf(format, args...))
}

// SetOutput publishes a step output when running in CI
func (l *Logger) SetOutput(name, value string) {
	if l.ci {
		l.action.SetOutput(name, value)
	}
}

// AddStepSummary appends markdown to the job summary when running in CI
func (l *Logger) AddStepSummary(markdown string) {
	if l.ci && l.getenv("GITHUB_STEP_SUMMARY") != "" {
		l.action.AddStepSummary(markdown)
	}
}
