// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

// Package config loads CLI settings from defaults, an optional YAML file,
// environment variables and command line flags, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/lfreleng-actions/setuptools-modernize/internal/output"
	"github.com/lfreleng-actions/setuptools-modernize/internal/pyversions"
)

// EnvPrefix prefixes every environment variable read as configuration
const EnvPrefix = "SETUPTOOLS_MODERNIZE_"

// DefaultConfigFile is read from the working directory when present
const DefaultConfigFile = ".setuptools-modernize.yaml"

// Config holds the settings of both commands
type Config struct {
	// setuptools-modernize
	Write                   bool   `koanf:"write"`
	Force                   bool   `koanf:"force"`
	Output                  string `koanf:"output"`
	Format                  string `koanf:"format"`
	ResolveConstants        bool   `koanf:"resolve_constants"`
	NormalizePythonRequires bool   `koanf:"normalize_python_requires"`
	Residual                bool   `koanf:"residual"`
	Diff                    bool   `koanf:"diff"`
	Summary                 bool   `koanf:"summary"`
	Validate                bool   `koanf:"validate"`
	ReportDir               string `koanf:"report_dir"`

	// setuptools-modernize-python-requires
	From     string   `koanf:"from"`
	Matrix   bool     `koanf:"matrix"`
	Versions []string `koanf:"versions"`

	Verbose bool `koanf:"verbose"`

	// ConfigFile is the YAML file that was loaded, if any
	ConfigFile string `koanf:"-"`
}

// Defaults returns the default settings
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"write":                     false,
		"force":                     false,
		"output":                    "",
		"format":                    output.FormatCfg,
		"resolve_constants":         false,
		"normalize_python_requires": true,
		"residual":                  false,
		"diff":                      false,
		"summary":                   false,
		"validate":                  true,
		"report_dir":                "",
		"from":                      "",
		"matrix":                    false,
		"versions":                  pyversions.DefaultVersions,
		"verbose":                   false,
	}
}

// Load builds the configuration. cfgFile may be empty, in which case
// DefaultConfigFile is used when it exists. Only flags that were set on the
// command line override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := cfgFile != ""
	if !explicit {
		cfgFile = DefaultConfigFile
	}
	if _, err := os.Stat(cfgFile); err == nil {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	} else {
		cfgFile = ""
	}

	// SETUPTOOLS_MODERNIZE_RESOLVE_CONSTANTS -> resolve_constants
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFile = cfgFile
	cfg.Versions = splitList(cfg.Versions)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	valid := false
	for _, f := range output.Formats {
		if c.Format == f {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid format %q (expected one of %s)", c.Format, strings.Join(output.Formats, ", "))
	}
	if c.Write && c.Output != "" {
		return fmt.Errorf("--write and --output cannot be used together")
	}
	if len(c.Versions) == 0 {
		return fmt.Errorf("versions list is empty")
	}
	return nil
}

// splitList accepts lists given as one comma or space separated string,
// which is how environment variables carry them
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		normalized := strings.ReplaceAll(item, ",", " ")
		out = append(out, strings.Fields(normalized)...)
	}
	return out
}
