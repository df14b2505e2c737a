// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package setupcfg

import (
	"fmt"
	"strings"

	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
	"github.com/lfreleng-actions/setuptools-modernize/internal/pyversions"
)

// WarningKind classifies conversion problems that do not abort the run
type WarningKind int

const (
	// UnresolvedExpression marks a value that is not a literal
	UnresolvedExpression WarningKind = iota
	// UnrecognizedArgument marks a keyword with no setup.cfg equivalent
	UnrecognizedArgument
	// TypeMismatch marks a literal of the wrong shape for its option
	TypeMismatch
	// NoneValue marks an argument explicitly set to None
	NoneValue
	// DynamicArguments marks positional, *args or **kwargs arguments
	DynamicArguments
	// MalformedPythonRequires marks a python_requires that does not parse
	MalformedPythonRequires
	// UnsafeKey marks a dict key that configparser would split
	UnsafeKey
	// UnreadableValue marks a literal that configparser would not read back
	// as written: an item spanning lines, or a line read as a comment
	UnreadableValue
)

func (k WarningKind) String() string {
	switch k {
	case UnresolvedExpression:
		return "unresolved-expression"
	case UnrecognizedArgument:
		return "unrecognized-argument"
	case TypeMismatch:
		return "type-mismatch"
	case NoneValue:
		return "none-value"
	case DynamicArguments:
		return "dynamic-arguments"
	case MalformedPythonRequires:
		return "malformed-python-requires"
	case UnsafeKey:
		return "unsafe-key"
	case UnreadableValue:
		return "unreadable-value"
	default:
		return "warning"
	}
}

// Warning is a non-fatal conversion problem
type Warning struct {
	Kind     WarningKind
	Argument string
	Line     int
	Message  string
}

func (w Warning) String() string {
	prefix := ""
	if w.Line > 0 {
		prefix = fmt.Sprintf("line %d: ", w.Line)
	}
	if w.Argument != "" {
		prefix += w.Argument + ": "
	}
	return prefix + w.Message
}

// EmitOptions controls optional rewriting during conversion
type EmitOptions struct {
	// NormalizePythonRequires canonicalizes the python_requires specifier
	NormalizePythonRequires bool
}

// DefaultEmitOptions returns the options used by the CLI
func DefaultEmitOptions() EmitOptions {
	return EmitOptions{NormalizePythonRequires: true}
}

// Result is the outcome of a conversion
type Result struct {
	Document *Document
	Warnings []Warning
	// Kept names the arguments that have to stay in the setup() call
	Kept []string
}

type emitter struct {
	opts   EmitOptions
	doc    *Document
	result *Result
}

// Emit converts extracted setup() arguments into a setup.cfg document.
// Known keywords are visited in field table order, then unknown keywords in
// source order, so identical input always yields an identical document.
func Emit(ex *extractor.Extraction, opts EmitOptions) *Result {
	e := &emitter{
		opts: opts,
		doc:  &Document{},
	}
	e.result = &Result{Document: e.doc}

	for _, f := range fields {
		arg, ok := ex.Get(f.Name)
		if !ok {
			continue
		}
		e.emitField(f, arg)
	}

	for _, arg := range ex.Arguments {
		if KnownField(arg.Name) {
			continue
		}
		e.emitUnrecognized(arg, UnrecognizedArgument,
			"not a setup.cfg option, keep it in setup()")
	}

	e.emitDynamic(ex)

	return e.result
}

func (e *emitter) warn(kind WarningKind, arg extractor.Argument, format string, args ...interface{}) {
	e.result.Warnings = append(e.result.Warnings, Warning{
		Kind:     kind,
		Argument: arg.Name,
		Line:     arg.Line,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (e *emitter) keep(name string) {
	for _, kept := range e.result.Kept {
		if kept == name {
			return
		}
	}
	e.result.Kept = append(e.result.Kept, name)
}

func (e *emitter) emitField(f field, arg extractor.Argument) {
	v := arg.Value

	if v.Kind == extractor.KindNone {
		e.warn(NoneValue, arg, "set to None, omitted")
		return
	}

	if !v.IsLiteral() {
		reason := reasonOf(v)
		e.emitPlaceholder(f, arg,
			fmt.Sprintf("FIXME: %s is not a literal (%s), set it manually", arg.Name, reason))
		e.warn(UnresolvedExpression, arg, "%s, needs manual resolution: %s", reason, firstLine(arg.Raw))
		return
	}

	// field emitters write into a scratch document so that a value which
	// would not read back can still be diverted as a whole
	target := e.doc
	warnings, kept := len(e.result.Warnings), len(e.result.Kept)
	e.doc = &Document{}

	ok := false
	switch f.Kind {
	case fieldString:
		ok = e.emitString(f, arg)
	case fieldBool:
		ok = e.emitBool(f, arg)
	case fieldList:
		ok = e.emitList(f, arg)
	case fieldDict:
		ok = e.emitDict(f, arg)
	case fieldSection:
		ok = e.emitSection(f, arg)
	case fieldPackages:
		ok = e.emitPackages(f, arg)
	case fieldDataFiles:
		ok = e.emitDataFiles(f, arg)
	}

	scratch := e.doc
	e.doc = target

	if !ok {
		e.result.Warnings = e.result.Warnings[:warnings]
		e.result.Kept = e.result.Kept[:kept]
		e.emitUnrecognized(arg, TypeMismatch,
			fmt.Sprintf("expected %s, got %s", f.Kind, v.Kind))
		return
	}

	if reason := scratch.unreadable(); reason != "" {
		e.result.Warnings = e.result.Warnings[:warnings]
		e.result.Kept = e.result.Kept[:kept]
		e.emitPlaceholder(f, arg,
			fmt.Sprintf("FIXME: %s cannot be written to setup.cfg as is (%s), set it manually", arg.Name, reason))
		e.warn(UnreadableValue, arg, "%s, kept in setup()", reason)
		return
	}

	for _, s := range scratch.Sections {
		section := e.doc.Section(s.Name)
		for _, entry := range s.Entries {
			section.Add(entry)
		}
	}
}

// emitPlaceholder writes the source text of an argument as a commented key
// with a flag comment directly above it, and keeps the argument in setup()
func (e *emitter) emitPlaceholder(f field, arg extractor.Argument, flag string) {
	section := f.Section
	if f.Kind == fieldPackages {
		section = SectionOptions
	}

	comments := []string{flag}
	if f.Hint != "" {
		comments = append(comments, fmt.Sprintf("e.g. %s = %s", f.Name, f.Hint))
	}

	value, lines := splitLines(arg.Raw)
	e.doc.Section(section).Add(Entry{
		Key:       f.Name,
		Value:     value,
		Lines:     lines,
		Comments:  comments,
		Commented: true,
	})
	e.keep(arg.Name)
}

func (e *emitter) emitString(f field, arg extractor.Argument) bool {
	s, ok := arg.Value.Scalar()
	if !ok {
		return false
	}

	if f.Name == "python_requires" && e.opts.NormalizePythonRequires {
		normalized, err := pyversions.Normalize(s)
		if err != nil {
			e.warn(MalformedPythonRequires, arg, "kept verbatim: %v", err)
		} else {
			s = normalized
		}
	}

	value, lines := splitLines(s)
	e.doc.Section(f.Section).Add(Entry{Key: f.Name, Value: value, Lines: lines})
	return true
}

func (e *emitter) emitBool(f field, arg extractor.Argument) bool {
	s, ok := arg.Value.Scalar()
	if !ok {
		return false
	}
	switch token := strings.ToLower(s); token {
	case "true", "false":
		e.doc.Section(f.Section).Add(Entry{Key: f.Name, Value: token})
		return true
	case "1", "yes", "on":
		e.doc.Section(f.Section).Add(Entry{Key: f.Name, Value: "true"})
		return true
	case "0", "no", "off":
		e.doc.Section(f.Section).Add(Entry{Key: f.Name, Value: "false"})
		return true
	}
	return false
}

func (e *emitter) emitList(f field, arg extractor.Argument) bool {
	if s, ok := arg.Value.Scalar(); ok && arg.Value.Kind == extractor.KindString {
		value, lines := splitLines(s)
		e.doc.Section(f.Section).Add(Entry{Key: f.Name, Value: value, Lines: lines})
		return true
	}

	items, ok := arg.Value.StringList()
	if !ok {
		return false
	}
	e.doc.Section(f.Section).Add(Entry{Key: f.Name, Lines: items})
	return true
}

func (e *emitter) emitDict(f field, arg extractor.Argument) bool {
	if arg.Value.Kind != extractor.KindDict {
		return false
	}

	lines := make([]string, 0, len(arg.Value.Dict))
	for _, pair := range arg.Value.Dict {
		s, ok := pair.Value.Scalar()
		if !ok {
			return false
		}
		if pair.Key == "" {
			lines = append(lines, "= "+s)
			continue
		}
		lines = append(lines, pair.Key+" = "+s)
	}
	e.doc.Section(f.Section).Add(Entry{Key: f.Name, Lines: lines})
	return true
}

func (e *emitter) emitSection(f field, arg extractor.Argument) bool {
	if arg.Value.Kind != extractor.KindDict {
		return false
	}

	entries := make([]Entry, 0, len(arg.Value.Dict))
	for _, pair := range arg.Value.Dict {
		key := pair.Key
		if key == "" {
			key = f.DefaultKey
		}
		if key == "" {
			return false
		}

		entry, ok := entryFor(key, pair.Value)
		if !ok {
			return false
		}
		if strings.ContainsAny(key, "=:") || strings.TrimSpace(key) != key {
			entry.Commented = true
			entry.Comments = []string{fmt.Sprintf("FIXME: key %q cannot be written to setup.cfg as is", key)}
			e.keep(arg.Name)
			e.warn(UnsafeKey, arg, "key %q contains a delimiter, kept in setup()", key)
		}
		entries = append(entries, entry)
	}

	section := e.doc.Section(f.Section)
	for _, entry := range entries {
		section.Add(entry)
	}
	return true
}

func (e *emitter) emitPackages(f field, arg extractor.Argument) bool {
	if arg.Value.Kind != extractor.KindFind {
		return e.emitList(f, arg)
	}

	find := arg.Value.Find
	e.doc.Section(SectionOptions).Add(Entry{Key: f.Name, Value: find.Directive()})

	if find.Where == "" && len(find.Include) == 0 && len(find.Exclude) == 0 {
		return true
	}

	section := e.doc.Section(SectionPackagesFind)
	if find.Where != "" {
		section.Add(Entry{Key: "where", Value: find.Where})
	}
	if len(find.Include) > 0 {
		section.Add(Entry{Key: "include", Lines: find.Include})
	}
	if len(find.Exclude) > 0 {
		section.Add(Entry{Key: "exclude", Lines: find.Exclude})
	}
	return true
}

// emitDataFiles accepts the setup() form [("dir", ["file", ...]), ...] and
// the dict form {"dir": ["file", ...]}
func (e *emitter) emitDataFiles(f field, arg extractor.Argument) bool {
	var pairs []extractor.Pair

	switch arg.Value.Kind {
	case extractor.KindDict:
		pairs = arg.Value.Dict
	case extractor.KindList:
		for _, item := range arg.Value.List {
			if item.Kind != extractor.KindList || len(item.List) != 2 || item.List[0].Kind != extractor.KindString {
				return false
			}
			pairs = append(pairs, extractor.Pair{Key: item.List[0].Str, Value: item.List[1]})
		}
	default:
		return false
	}

	entries := make([]Entry, 0, len(pairs))
	for _, pair := range pairs {
		if pair.Key == "" || strings.ContainsAny(pair.Key, "=:") {
			return false
		}
		files, ok := pair.Value.StringList()
		if !ok {
			return false
		}
		entries = append(entries, Entry{Key: pair.Key, Lines: files})
	}

	section := e.doc.Section(f.Section)
	for _, entry := range entries {
		section.Add(entry)
	}
	return true
}

// emitUnrecognized passes an argument through to the catch-all section
func (e *emitter) emitUnrecognized(arg extractor.Argument, kind WarningKind, message string) {
	section := e.doc.Section(SectionUnrecognized)
	if len(section.Comments) == 0 {
		section.Comments = []string{
			"Arguments below have no setup.cfg equivalent.",
			"setuptools ignores this section; keep them in setup().",
		}
	}

	entry, ok := entryFor(arg.Name, arg.Value)
	if !ok || !arg.Value.IsLiteral() || entry.unreadable() != "" {
		value, lines := splitLines(arg.Raw)
		entry = Entry{Key: arg.Name, Value: value, Lines: lines, Commented: true}
	}
	entry.Comments = append([]string{"WARNING: " + message}, entry.Comments...)
	section.Add(entry)

	e.keep(arg.Name)
	e.warn(kind, arg, "%s", message)
}

// emitDynamic records arguments whose names are not known statically
func (e *emitter) emitDynamic(ex *extractor.Extraction) {
	var dynamic []string
	dynamic = append(dynamic, ex.Positional...)
	dynamic = append(dynamic, ex.Splats...)
	if len(dynamic) == 0 {
		return
	}

	e.doc.Header = append(e.doc.Header,
		fmt.Sprintf("WARNING: %s() at line %d also receives arguments that cannot be read statically:", calleeName(ex), ex.Line))
	for _, d := range dynamic {
		e.doc.Header = append(e.doc.Header, indent+firstLine(d))
		e.result.Warnings = append(e.result.Warnings, Warning{
			Kind:    DynamicArguments,
			Line:    ex.Line,
			Message: fmt.Sprintf("argument %s is not a keyword literal, kept in setup()", firstLine(d)),
		})
	}
}

// entryFor serializes a literal value under key, or reports that its shape
// has no setup.cfg form
func entryFor(key string, v extractor.Value) (Entry, bool) {
	if s, ok := v.Scalar(); ok {
		value, lines := splitLines(s)
		return Entry{Key: key, Value: value, Lines: lines}, true
	}

	switch v.Kind {
	case extractor.KindList:
		items, ok := v.StringList()
		if !ok {
			return Entry{}, false
		}
		return Entry{Key: key, Lines: items}, true
	case extractor.KindDict:
		lines := make([]string, 0, len(v.Dict))
		for _, pair := range v.Dict {
			s, ok := pair.Value.Scalar()
			if !ok {
				return Entry{}, false
			}
			lines = append(lines, pair.Key+" = "+s)
		}
		return Entry{Key: key, Lines: lines}, true
	}
	return Entry{}, false
}

func reasonOf(v extractor.Value) string {
	if v.Reason != "" {
		return v.Reason
	}
	return "unresolved expression"
}

func calleeName(ex *extractor.Extraction) string {
	if ex.Callee == "" {
		return "setup"
	}
	return ex.Callee
}

// splitLines splits a multi-line value into the text after "key =" and the
// continuation lines
func splitLines(s string) (string, []string) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return s, nil
	}
	rest := lines[1:]
	for len(rest) > 0 && strings.TrimSpace(rest[len(rest)-1]) == "" {
		rest = rest[:len(rest)-1]
	}
	return lines[0], rest
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
