// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package python

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errFString      = errors.New("f-string interpolation")
	errBytes        = errors.New("bytes literal")
	errNamedEscape  = errors.New("named unicode escape")
	errBadQuoting   = errors.New("unterminated string literal")
	errBadEscapeSeq = errors.New("malformed escape sequence")
)

// stringPrefixes are the lowercased prefixes Python accepts on a string literal
var stringPrefixes = map[string]bool{
	"": true, "r": true, "u": true,
	"b": true, "br": true, "rb": true,
	"f": true, "fr": true, "rf": true,
}

// decodeString converts the source text of a single Python string literal
// (prefix, quotes and body) into its value
func decodeString(text string) (string, error) {
	i := 0
	for i < len(text) && text[i] != '\'' && text[i] != '"' {
		i++
	}
	prefix := strings.ToLower(text[:i])
	rest := text[i:]
	if !stringPrefixes[prefix] {
		return "", errBadQuoting
	}

	if strings.ContainsRune(prefix, 'f') {
		return "", errFString
	}
	if strings.ContainsRune(prefix, 'b') {
		return "", errBytes
	}
	raw := strings.ContainsRune(prefix, 'r')

	quote := ""
	switch {
	case strings.HasPrefix(rest, `"""`), strings.HasPrefix(rest, `'''`):
		quote = rest[:3]
	case strings.HasPrefix(rest, `"`), strings.HasPrefix(rest, `'`):
		quote = rest[:1]
	default:
		return "", errBadQuoting
	}
	if len(rest) < 2*len(quote) || !strings.HasSuffix(rest, quote) {
		return "", errBadQuoting
	}
	body := rest[len(quote) : len(rest)-len(quote)]

	if raw {
		return body, nil
	}
	return unescape(body)
}

// unescape processes Python escape sequences in a non-raw string body
func unescape(body string) (string, error) {
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(body) {
			return "", errBadEscapeSeq
		}
		i++
		switch e := body[i]; e {
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(body) && j < i+3 && body[j] >= '0' && body[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(body[i:j], 8, 32)
			b.WriteRune(rune(n))
			i = j - 1
		case 'x':
			r, err := hexRune(body, i+1, 2)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += 2
		case 'u':
			r, err := hexRune(body, i+1, 4)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += 4
		case 'U':
			r, err := hexRune(body, i+1, 8)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += 8
		case 'N':
			return "", errNamedEscape
		default:
			// unknown escapes are kept as written
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}

	return b.String(), nil
}

func hexRune(s string, start, width int) (rune, error) {
	if start+width > len(s) {
		return 0, errBadEscapeSeq
	}
	n, err := strconv.ParseUint(s[start:start+width], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errBadEscapeSeq, err)
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return 0, errBadEscapeSeq
	}
	return r, nil
}
