// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lfreleng-actions/setuptools-modernize/internal/config"
	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor/python"
	"github.com/lfreleng-actions/setuptools-modernize/internal/logging"
	"github.com/lfreleng-actions/setuptools-modernize/internal/pyversions"
)

// version is set at build time
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var log *logging.Logger

	cmd := newRootCommand(stdin, stdout, stderr, &log)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if log != nil && log.CI() {
			log.Errorf("%v", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer, log **logging.Logger) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "setuptools-modernize-python-requires [flags] [specifier]",
		Short: "Print the canonical form of a python_requires specifier",
		Long: `Reads a python_requires specifier from the argument, from stdin or, with
--from, from the setup.py, setup.cfg or pyproject.toml of a project, and
prints it with clauses in canonical order and no whitespace.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			*log = logging.New(cfg.Verbose, logging.WithWriter(stderr))
			return normalize(cfg, args, stdin, stdout, *log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "YAML configuration file (default "+config.DefaultConfigFile+" if present)")
	flags.String("from", "", "read python_requires from the project in this directory")
	flags.Bool("matrix", false, "print the matching CPython versions as a JSON matrix")
	flags.StringSlice("versions", pyversions.DefaultVersions, "CPython minor versions considered for --matrix")
	flags.BoolP("verbose", "v", false, "verbose output")

	return cmd
}

func normalize(cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer, log *logging.Logger) error {
	raw, err := specifierInput(cfg, args, stdin, log)
	if err != nil {
		return err
	}

	spec, err := pyversions.Parse(raw)
	if err != nil {
		return err
	}
	normalized := spec.Normalized().String()
	log.Debugf("Normalized %q to %q", raw, normalized)
	log.SetOutput("python-requires", normalized)

	if !cfg.Matrix {
		_, err := fmt.Fprintln(stdout, normalized)
		return err
	}

	versions, err := pyversions.ResolveVersions(normalized, cfg.Versions)
	if err != nil {
		return err
	}
	matrix, err := pyversions.MatrixJSON(versions)
	if err != nil {
		return err
	}
	log.SetOutput("matrix", matrix)
	_, err = fmt.Fprintln(stdout, matrix)
	return err
}

// specifierInput picks the specifier from --from, the argument or stdin
func specifierInput(cfg *config.Config, args []string, stdin io.Reader, log *logging.Logger) (string, error) {
	switch {
	case cfg.From != "" && len(args) > 0:
		return "", fmt.Errorf("--from and a specifier argument cannot be used together")
	case cfg.From != "":
		value, source, err := python.RequiresPython(cfg.From)
		if err != nil {
			return "", err
		}
		log.Infof("Found python_requires %q in %s", value, source)
		return value, nil
	case len(args) > 0:
		return args[0], nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read specifier from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
