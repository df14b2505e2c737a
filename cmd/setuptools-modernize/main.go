// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lfreleng-actions/setuptools-modernize/internal/config"
	"github.com/lfreleng-actions/setuptools-modernize/internal/detector"
	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor/python"
	"github.com/lfreleng-actions/setuptools-modernize/internal/logging"
	"github.com/lfreleng-actions/setuptools-modernize/internal/output"
	"github.com/lfreleng-actions/setuptools-modernize/internal/setupcfg"
)

// version is set at build time
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	var log *logging.Logger

	cmd := newRootCommand(stdout, stderr, &log)
	cmd.SetArgs(args)
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

func newRootCommand(stdout, stderr io.Writer, log **logging.Logger) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "setuptools-modernize [flags] <setup.py | project-dir>",
		Short: "Convert setup.py keyword arguments into a declarative setup.cfg",
		Long: `setuptools-modernize reads the setup() call of a setup.py without running it
and writes the equivalent setup.cfg. Values that are not literals are left
as commented placeholders and reported as warnings.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			*log = logging.New(cfg.Verbose, logging.WithWriter(stderr))
			if cfg.ConfigFile != "" {
				(*log).Debugf("Loaded configuration from %s", cfg.ConfigFile)
			}
			return convert(cfg, args[0], stdout, stderr, *log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "YAML configuration file (default "+config.DefaultConfigFile+" if present)")
	flags.Bool("write", false, "write setup.cfg next to setup.py")
	flags.Bool("force", false, "overwrite an existing setup.cfg")
	flags.StringP("output", "o", "", "write the result to this file")
	flags.String("format", output.FormatCfg, "output format: cfg, json or yaml")
	flags.Bool("resolve-constants", false, "resolve names bound once to a module-level literal")
	flags.Bool("normalize-python-requires", true, "canonicalize the python_requires specifier")
	flags.Bool("residual", false, "print the setup() call that has to stay in setup.py to stderr")
	flags.Bool("diff", false, "print a diff against the existing setup.cfg instead of the document")
	flags.Bool("summary", false, "print a table of converted arguments to stderr")
	flags.Bool("validate", true, "check that the output reads back")
	flags.String("report-dir", "", "also store setup.cfg, JSON and YAML reports in this directory")
	flags.BoolP("verbose", "v", false, "verbose output")

	return cmd
}

func convert(cfg *config.Config, path string, stdout, stderr io.Writer, log *logging.Logger) error {
	if cfg.Write && cfg.Format != output.FormatCfg {
		return fmt.Errorf("--write produces setup.cfg and needs --format %s", output.FormatCfg)
	}

	project, err := detector.Resolve(path)
	if err != nil {
		return fmt.Errorf("%w: %v", output.ErrIO, err)
	}
	for _, f := range project.Files {
		log.Debugf("Found %s (%s)", f.File, f.String())
	}

	source := displayPath(project.SetupPy)
	log.Debugf("Reading %s", source)

	src, err := output.ReadFile(project.SetupPy)
	if err != nil {
		return err
	}

	ex, err := python.NewExtractor(python.Options{ResolveConstants: cfg.ResolveConstants}).Extract(src)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	log.Debugf("Found %s() at line %d with %d keyword arguments", ex.Callee, ex.Line, len(ex.Arguments))
	if log.Verbose() && len(ex.Arguments) > 0 {
		log.Debugf("Keyword arguments: %s", strings.Join(ex.Names(), ", "))
	}

	result := setupcfg.Emit(ex, setupcfg.EmitOptions{NormalizePythonRequires: cfg.NormalizePythonRequires})
	for _, w := range result.Warnings {
		message := w.Message
		if w.Argument != "" {
			message = w.Argument + ": " + message
		}
		log.FileWarningf(source, w.Line, "%s", message)
	}

	report := output.NewReport(source, ex, result)
	data, err := output.NewRenderer(cfg.Validate, true).Render(report, cfg.Format)
	if err != nil {
		return err
	}

	target := cfg.Output
	if cfg.Write {
		target = project.TargetSetupCfg()
	}

	if cfg.Diff {
		if err := printDiff(project, data, stdout); err != nil {
			return err
		}
	}

	switch {
	case target != "":
		if err := output.WriteFile(target, data, cfg.Force); err != nil {
			return err
		}
		log.Infof("Wrote %s", displayPath(target))
		log.SetOutput("setup-cfg", target)
	case !cfg.Diff:
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %v", output.ErrIO, err)
		}
	}

	if cfg.Residual {
		fmt.Fprintf(stderr, "Keep in %s:\n%s", source, report.Residual)
	}

	if cfg.Summary {
		fmt.Fprintln(stderr, output.Summary(ex, result))
	}
	log.AddStepSummary(output.SummaryMarkdown(source, ex, result))

	if cfg.ReportDir != "" {
		artifact, err := output.NewArtifactWriter("", nil, cfg.ReportDir, output.NewRenderer(cfg.Validate, true)).Write(report, "")
		if err != nil {
			return err
		}
		log.Infof("Stored conversion report in %s", artifact.Path)
		log.SetOutput("report-path", artifact.Path)
	}

	log.SetOutput("warnings", strconv.Itoa(len(result.Warnings)))
	if len(result.Warnings) > 0 {
		log.Debugf("%d warning(s), review the generated file", len(result.Warnings))
	}
	return nil
}

// printDiff compares data with the setup.cfg already present next to setup.py
func printDiff(project *detector.Project, data []byte, stdout io.Writer) error {
	before := ""
	if project.SetupCfg != "" {
		existing, err := output.ReadFile(project.SetupCfg)
		if err != nil {
			return err
		}
		before = string(existing)
	}

	name := displayPath(project.TargetSetupCfg())
	diff := output.Diff(name+" (existing)", name+" (converted)", before, string(data))
	if diff == "" {
		return nil
	}
	if _, err := io.WriteString(stdout, diff); err != nil {
		return fmt.Errorf("%w: %v", output.ErrIO, err)
	}
	return nil
}

// displayPath shortens absolute paths below the working directory
func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
