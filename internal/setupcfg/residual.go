// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package setupcfg

import (
	"strings"

	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
)

// ResidualCall renders the setup() call that has to remain in setup.py once
// the converted options live in setup.cfg. Kept keywords are written with
// their original source text, in source order, followed by positional and
// splat arguments.
func ResidualCall(ex *extractor.Extraction, kept []string) string {
	keep := make(map[string]bool, len(kept))
	for _, name := range kept {
		keep[name] = true
	}

	var args []string
	args = append(args, ex.Positional...)
	for _, arg := range ex.Arguments {
		if keep[arg.Name] {
			args = append(args, arg.Name+"="+arg.Raw)
		}
	}
	args = append(args, ex.Splats...)

	callee := calleeName(ex)
	if len(args) == 0 {
		return callee + "()\n"
	}

	var b strings.Builder
	b.WriteString(callee + "(\n")
	for _, arg := range args {
		b.WriteString(indent + arg + ",\n")
	}
	b.WriteString(")\n")
	return b.String()
}
