// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package python

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		err      error
	}{
		{name: "double quotes", text: `"abc"`, expected: "abc"},
		{name: "escaped quote", text: `'a\'b'`, expected: "a'b"},
		{name: "empty", text: `''`, expected: ""},
		{name: "triple quotes", text: `'''a "b" c'''`, expected: `a "b" c`},
		{name: "unicode prefix", text: `u"x"`, expected: "x"},
		{name: "raw prefix", text: `r"a\nb"`, expected: `a\nb`},
		{name: "upper raw prefix", text: `R"\d+"`, expected: `\d+`},
		{name: "standard escapes", text: `"a\tb\nc"`, expected: "a\tb\nc"},
		{name: "hex and unicode escapes", text: `"\x41é\U0001F600"`, expected: "Aé😀"},
		{name: "octal escape", text: `"\101\0"`, expected: "A\x00"},
		{name: "unknown escape kept", text: `"\d"`, expected: `\d`},
		{name: "line continuation", text: "\"a\\\nb\"", expected: "ab"},
		{name: "f-string", text: `f"x"`, err: errFString},
		{name: "raw f-string", text: `rf"x"`, err: errFString},
		{name: "bytes", text: `b"x"`, err: errBytes},
		{name: "raw bytes", text: `Rb"x"`, err: errBytes},
		{name: "named escape", text: `"\N{DASH}"`, err: errNamedEscape},
		{name: "short hex escape", text: `"\x4"`, err: errBadEscapeSeq},
		{name: "invalid hex escape", text: `"\xZZ"`, err: errBadEscapeSeq},
		{name: "surrogate escape", text: `"\ud800"`, err: errBadEscapeSeq},
		{name: "unterminated", text: `"abc`, err: errBadQuoting},
		{name: "no quotes", text: `abc`, err: errBadQuoting},
		{name: "unknown prefix", text: `x"abc"`, err: errBadQuoting},
		{name: "long prefix", text: `rbf"x"`, err: errBadQuoting},
		{name: "unicode raw prefix", text: `ur"x"`, err: errBadQuoting},
		{name: "unicode bytes prefix", text: `ub"x"`, err: errBadQuoting},
		{name: "upper bytes raw prefix", text: `BR"x"`, err: errBytes},
		{name: "format raw prefix", text: `Fr"x"`, err: errFString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := decodeString(tt.text)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
