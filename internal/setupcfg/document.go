// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package setupcfg

import (
	"fmt"
	"strings"
)

// indent prefixes continuation lines of multi-line values
const indent = "    "

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Entry is one key of a section
type Entry struct {
	Key string `json:"key" yaml:"key"`
	// Value is written after "key = "
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	// Lines are written one per continuation line below the key
	Lines []string `json:"lines,omitempty" yaml:"lines,omitempty"`
	// Comments are written directly above the key
	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`
	// Commented entries are placeholders the user has to complete
	Commented bool `json:"commented,omitempty" yaml:"commented,omitempty"`
}

// Section is a named group of entries
type Section struct {
	Name     string   `json:"name" yaml:"name"`
	Comments []string `json:"comments,omitempty" yaml:"comments,omitempty"`
	Entries  []Entry  `json:"entries" yaml:"entries"`
}

// Document is a setup.cfg file. Sections and entries keep insertion order,
// which the emitter derives from the fixed field table.
type Document struct {
	Header   []string   `json:"header,omitempty" yaml:"header,omitempty"`
	Sections []*Section `json:"sections" yaml:"sections"`
}

// Section returns the named section, creating it at its canonical position
func (d *Document) Section(name string) *Section {
	if s, ok := d.Lookup(name); ok {
		return s
	}

	s := &Section{Name: name}
	pos := len(d.Sections)
	rank := sectionRank(name)
	for i, existing := range d.Sections {
		if sectionRank(existing.Name) > rank {
			pos = i
			break
		}
	}
	d.Sections = append(d.Sections, nil)
	copy(d.Sections[pos+1:], d.Sections[pos:])
	d.Sections[pos] = s
	return s
}

// Lookup returns the section with the given name, if present
func (d *Document) Lookup(name string) (*Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Get returns an entry of the section
func (s *Section) Get(key string) (Entry, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Add appends an entry to the section
func (s *Section) Add(e Entry) {
	s.Entries = append(s.Entries, e)
}

// unreadable reports why an entry of the document would not read back as
// written, or "" when every entry would
func (d *Document) unreadable() string {
	for _, s := range d.Sections {
		for _, e := range s.Entries {
			if e.Commented {
				continue
			}
			if reason := e.unreadable(); reason != "" {
				return reason
			}
		}
	}
	return ""
}

// unreadable reports why configparser would not return the entry as written.
// Continuation lines starting with '#' or ';' are comments to it, and a line
// break inside an item starts a new key.
func (e Entry) unreadable() string {
	key := strings.TrimSpace(e.Key)
	if strings.HasPrefix(key, "#") || strings.HasPrefix(key, ";") || strings.HasPrefix(key, "[") {
		return fmt.Sprintf("key %q would be read as a comment or section header", e.Key)
	}
	if strings.ContainsAny(e.Value, "\r\n") {
		return fmt.Sprintf("value %q contains a line break", e.Value)
	}
	for _, line := range e.Lines {
		if strings.ContainsAny(line, "\r\n") {
			return fmt.Sprintf("item %q contains a line break", line)
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			return fmt.Sprintf("line %q would be read as a comment", trimmed)
		}
	}
	return ""
}

func sectionRank(name string) int {
	for i, n := range sectionOrder {
		if n == name {
			return i
		}
	}
	return len(sectionOrder)
}

// Render serializes the document in configparser syntax. The output only
// depends on the document content, so equal documents render identically.
func (d *Document) Render() []byte {
	var b strings.Builder

	for _, line := range d.Header {
		writeComment(&b, line)
	}

	first := true
	if len(d.Header) > 0 {
		first = false
	}

	for _, s := range d.Sections {
		if len(s.Entries) == 0 && len(s.Comments) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false

		for _, line := range s.Comments {
			writeComment(&b, line)
		}
		b.WriteString("[" + s.Name + "]\n")

		for _, e := range s.Entries {
			for _, line := range e.Comments {
				writeComment(&b, line)
			}
			if e.Commented {
				writeCommentedEntry(&b, e)
				continue
			}
			writeEntry(&b, e, true)
		}
	}

	return []byte(b.String())
}

// writeEntry writes "key = value" and its continuation lines. setuptools
// reads setup.cfg with interpolation enabled, so '%' is doubled in values.
func writeEntry(b *strings.Builder, e Entry, escape bool) {
	quote := func(s string) string {
		if escape {
			return strings.ReplaceAll(s, "%", "%%")
		}
		return s
	}

	b.WriteString(e.Key)
	if e.Value == "" {
		b.WriteString(" =\n")
	} else {
		b.WriteString(" = " + quote(e.Value) + "\n")
	}
	for _, line := range e.Lines {
		// a bare indent keeps blank lines inside the value for both
		// configparser and go-ini
		if line == "" {
			b.WriteString(indent + "\n")
			continue
		}
		b.WriteString(indent + quote(line) + "\n")
	}
}

func writeCommentedEntry(b *strings.Builder, e Entry) {
	var inner strings.Builder
	writeEntry(&inner, e, false)
	text := lineBreaks.Replace(strings.TrimSuffix(inner.String(), "\n"))
	for _, line := range strings.Split(text, "\n") {
		writeComment(b, strings.TrimRight(line, " "))
	}
}

func writeComment(b *strings.Builder, line string) {
	if line == "" {
		b.WriteString("#\n")
		return
	}
	b.WriteString("# " + line + "\n")
}
