// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package output

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line diff from before to after. Lines are prefixed with
// "-", "+" or " ". The result is empty when both texts are equal.
func Diff(beforeName, afterName, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var b strings.Builder
	b.WriteString("--- " + beforeName + "\n")
	b.WriteString("+++ " + afterName + "\n")

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffEqual:
		}

		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			b.WriteString(prefix + line + "\n")
		}
	}
	return b.String()
}
