// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
	"github.com/lfreleng-actions/setuptools-modernize/internal/setupcfg"
)

// Argument statuses shown in the summary
const (
	StatusConverted = "converted"
	StatusManual    = "manual"
	StatusKept      = "kept in setup()"
	StatusOmitted   = "omitted"
)

// SummaryRow describes what happened to one setup() keyword
type SummaryRow struct {
	Argument string
	Line     int
	Section  string
	Status   string
}

// SummaryRows lists every keyword of the call in source order
func SummaryRows(ex *extractor.Extraction, result *setupcfg.Result) []SummaryRow {
	kept := make(map[string]bool, len(result.Kept))
	for _, name := range result.Kept {
		kept[name] = true
	}
	omitted := make(map[string]bool)
	manual := make(map[string]bool)
	for _, w := range result.Warnings {
		switch w.Kind {
		case setupcfg.NoneValue:
			omitted[w.Argument] = true
		case setupcfg.UnreadableValue:
			manual[w.Argument] = true
		}
	}

	rows := make([]SummaryRow, 0, len(ex.Arguments))
	for _, arg := range ex.Arguments {
		row := SummaryRow{
			Argument: arg.Name,
			Line:     arg.Line,
			Section:  setupcfg.SectionFor(arg.Name),
			Status:   StatusConverted,
		}
		switch {
		case omitted[arg.Name]:
			row.Status = StatusOmitted
		case manual[arg.Name]:
			row.Status = StatusManual
		case kept[arg.Name] && !arg.Value.IsLiteral() && setupcfg.KnownField(arg.Name):
			row.Status = StatusManual
		case kept[arg.Name]:
			row.Status = StatusKept
		}
		rows = append(rows, row)
	}
	return rows
}

func summaryTable(ex *extractor.Extraction, result *setupcfg.Result) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Argument", "Line", "Section", "Status"})

	converted := 0
	for _, row := range SummaryRows(ex, result) {
		if row.Status == StatusConverted {
			converted++
		}
		tbl.AppendRow(table.Row{row.Argument, row.Line, "[" + row.Section + "]", row.Status})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("Total: %d", len(ex.Arguments)),
		"",
		fmt.Sprintf("Converted: %d", converted),
		fmt.Sprintf("Warnings: %d", len(result.Warnings)),
	})
	return tbl
}

// Summary renders the conversion summary as a text table
func Summary(ex *extractor.Extraction, result *setupcfg.Result) string {
	return summaryTable(ex, result).Render()
}

// SummaryMarkdown renders the conversion summary for a workflow step summary
func SummaryMarkdown(source string, ex *extractor.Extraction, result *setupcfg.Result) string {
	md := fmt.Sprintf("### setup.cfg conversion of `%s`\n\n", source)
	md += summaryTable(ex, result).RenderMarkdown() + "\n"

	if len(result.Warnings) > 0 {
		md += "\n#### Warnings\n\n"
		for _, w := range result.Warnings {
			md += fmt.Sprintf("- %s\n", w.String())
		}
	}
	return md
}
