// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned when a build script cannot be converted
var (
	ErrNoSetupCallFound        = errors.New("no setup() call found")
	ErrMultipleSetupCallsFound = errors.New("multiple setup() calls found")
	ErrSyntax                  = errors.New("invalid Python syntax")
)

// Kind identifies the shape of an extracted value
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindNumber
	KindNone
	KindList
	KindDict
	KindFind
	KindUnresolved
)

// String returns the kind name used in diagnostics and structured output
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindNone:
		return "none"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindFind:
		return "find"
	case KindUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a statically extracted keyword argument value.
// Only the fields matching Kind are set.
type Value struct {
	Kind Kind

	// Str holds string literals and the source text of numbers
	Str  string
	Bool bool

	List []Value
	Dict []Pair

	// Find is set for packages=find_packages(...) style calls
	Find *Find

	// Raw is the verbatim source text of the expression
	Raw string
	// Reason explains why an unresolved value could not be extracted
	Reason string
}

// Pair is one entry of a dict literal, in source order
type Pair struct {
	Key   string
	Value Value
}

// Find describes a find_packages() or find_namespace_packages() call.
// Its arguments are kept as literal values and are never evaluated.
type Find struct {
	Namespace bool
	Where     string
	Include   []string
	Exclude   []string
}

// Directive returns the setup.cfg spelling of the packages directive
func (f *Find) Directive() string {
	if f.Namespace {
		return "find_namespace:"
	}
	return "find:"
}

// String builds a string value
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool builds a boolean value
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Number builds a numeric value from its source spelling
func Number(text string) Value { return Value{Kind: KindNumber, Str: text} }

// None builds a None value
func None() Value { return Value{Kind: KindNone} }

// List builds a list value
func List(items ...Value) Value { return Value{Kind: KindList, List: items} }

// Dict builds a dict value from pairs
func Dict(pairs ...Pair) Value { return Value{Kind: KindDict, Dict: pairs} }

// Unresolved builds a marker for an expression that must be resolved by hand
func Unresolved(raw, reason string) Value {
	return Value{Kind: KindUnresolved, Raw: raw, Reason: reason}
}

// IsLiteral reports whether the value (and everything nested in it) was
// extracted without any unresolved part
func (v Value) IsLiteral() bool {
	switch v.Kind {
	case KindUnresolved:
		return false
	case KindList:
		for _, item := range v.List {
			if !item.IsLiteral() {
				return false
			}
		}
	case KindDict:
		for _, pair := range v.Dict {
			if !pair.Value.IsLiteral() {
				return false
			}
		}
	}
	return true
}

// Scalar returns the single-line text form of a scalar value
func (v Value) Scalar() (string, bool) {
	switch v.Kind {
	case KindString, KindNumber:
		return v.Str, true
	case KindBool:
		if v.Bool {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// StringList returns the items of a list of scalars
func (v Value) StringList() ([]string, bool) {
	if v.Kind != KindList {
		return nil, false
	}
	items := make([]string, 0, len(v.List))
	for _, item := range v.List {
		s, ok := item.Scalar()
		if !ok {
			return nil, false
		}
		items = append(items, s)
	}
	return items, true
}

// Argument is a keyword argument of the setup() call
type Argument struct {
	Name  string
	Value Value
	// Raw is the source text of the value expression
	Raw  string
	Line int
}

// Extraction is the result of inspecting a build script
type Extraction struct {
	// Callee is the source text of the called function, e.g. "setuptools.setup"
	Callee string
	// Line is the 1-based line of the setup() call
	Line int

	// Arguments are the keyword arguments in source order
	Arguments []Argument
	// Positional holds the source text of positional arguments
	Positional []string
	// Splats holds the source text of *args and **kwargs expressions
	Splats []string
}

// Get returns the argument with the given name
func (e *Extraction) Get(name string) (Argument, bool) {
	for _, arg := range e.Arguments {
		if arg.Name == name {
			return arg, true
		}
	}
	return Argument{}, false
}

// Names returns the keyword names in source order
func (e *Extraction) Names() []string {
	names := make([]string, 0, len(e.Arguments))
	for _, arg := range e.Arguments {
		names = append(names, arg.Name)
	}
	return names
}

// Unresolved returns the arguments whose value needs manual resolution
func (e *Extraction) Unresolved() []Argument {
	var unresolved []Argument
	for _, arg := range e.Arguments {
		if !arg.Value.IsLiteral() {
			unresolved = append(unresolved, arg)
		}
	}
	return unresolved
}

// SyntaxError describes where parsing the build script failed
type SyntaxError struct {
	Line    int
	Snippet string
	Msg     string
}

func (e *SyntaxError) Error() string {
	snippet := strings.TrimSpace(e.Snippet)
	if snippet == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, snippet)
}

// Unwrap allows errors.Is(err, ErrSyntax)
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
