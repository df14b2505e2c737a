// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package output

import (
	"fmt"

	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
	"github.com/lfreleng-actions/setuptools-modernize/internal/setupcfg"
	"github.com/lfreleng-actions/setuptools-modernize/internal/validator"
)

// Output formats
const (
	FormatCfg  = "cfg"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats
var Formats = []string{FormatCfg, FormatJSON, FormatYAML}

// reportFields are the top-level fields every structured report carries
var reportFields = []string{"source", "callee", "document", "warnings"}

// WarningRecord is the structured form of a conversion warning
type WarningRecord struct {
	Kind     string `json:"kind" yaml:"kind"`
	Argument string `json:"argument,omitempty" yaml:"argument,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// Report is everything a conversion produced, in a serializable form
type Report struct {
	Source   string             `json:"source" yaml:"source"`
	Callee   string             `json:"callee" yaml:"callee"`
	Line     int                `json:"line" yaml:"line"`
	Document *setupcfg.Document `json:"document" yaml:"document"`
	Warnings []WarningRecord    `json:"warnings" yaml:"warnings"`
	Kept     []string           `json:"kept,omitempty" yaml:"kept,omitempty"`
	Residual string             `json:"residual" yaml:"residual"`
}

// NewReport collects the conversion of the setup() call in source
func NewReport(source string, ex *extractor.Extraction, result *setupcfg.Result) *Report {
	report := &Report{
		Source:   source,
		Callee:   ex.Callee,
		Line:     ex.Line,
		Document: result.Document,
		Warnings: make([]WarningRecord, 0, len(result.Warnings)),
		Kept:     result.Kept,
		Residual: setupcfg.ResidualCall(ex, result.Kept),
	}
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, WarningRecord{
			Kind:     w.Kind.String(),
			Argument: w.Argument,
			Line:     w.Line,
			Message:  w.Message,
		})
	}
	return report
}

// Renderer serializes reports in one of the supported formats
type Renderer struct {
	// ValidateOutput fails rendering when the output, in any format, does
	// not read back
	ValidateOutput bool
	StrictMode     bool
}

// NewRenderer creates a renderer
func NewRenderer(validateOutput, strictMode bool) *Renderer {
	return &Renderer{
		ValidateOutput: validateOutput,
		StrictMode:     strictMode,
	}
}

// Render returns the report in the requested format. The cfg format is the
// setup.cfg document alone.
func (r *Renderer) Render(report *Report, format string) ([]byte, error) {
	switch format {
	case FormatCfg, "":
		return r.renderCfg(report.Document)
	case FormatJSON:
		v := validator.NewJSONValidator(r.StrictMode)
		v.RequiredFields = reportFields
		if !r.ValidateOutput {
			return v.Marshal(report)
		}
		out, err := v.MarshalAndValidate(report)
		if err != nil {
			return nil, fmt.Errorf("JSON validation failed: %w", err)
		}
		return out, nil
	case FormatYAML:
		v := validator.NewYAMLValidator(r.StrictMode)
		v.RequiredFields = reportFields
		if !r.ValidateOutput {
			return v.Marshal(report)
		}
		out, err := v.MarshalAndValidate(report)
		if err != nil {
			return nil, fmt.Errorf("YAML validation failed: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *Renderer) renderCfg(doc *setupcfg.Document) ([]byte, error) {
	out := doc.Render()
	if !r.ValidateOutput || len(out) == 0 {
		return out, nil
	}

	if err := validator.NewCfgValidator(r.StrictMode).Validate(out, ExpectedValues(doc)); err != nil {
		return nil, fmt.Errorf("setup.cfg validation failed: %w", err)
	}
	return out, nil
}

// ExpectedValues lists, per rendered section, the keys a configparser
// reader must see and the value lines it must read for each
func ExpectedValues(doc *setupcfg.Document) map[string]map[string][]string {
	expected := make(map[string]map[string][]string)
	for _, s := range doc.Sections {
		if len(s.Entries) == 0 && len(s.Comments) == 0 {
			continue
		}
		keys := make(map[string][]string)
		for _, e := range s.Entries {
			if e.Commented {
				continue
			}
			keys[e.Key] = append([]string{e.Value}, e.Lines...)
		}
		expected[s.Name] = keys
	}
	return expected
}
