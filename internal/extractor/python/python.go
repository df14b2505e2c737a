// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025 The Linux Foundation

package python

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/lfreleng-actions/setuptools-modernize/internal/extractor"
)

// language is the tree-sitter Python grammar shared by all parses
var language = sitter.NewLanguage(python.GetLanguage())

// Options controls how much the extractor is allowed to resolve
type Options struct {
	// ResolveConstants replaces a bare name with the literal assigned to it,
	// if the name is assigned exactly once, at module level, to a literal
	ResolveConstants bool
}

// Extractor statically inspects setup.py build scripts.
// The script is parsed, never executed.
type Extractor struct {
	opts Options
}

// NewExtractor creates a new setup.py extractor
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// ExtractFile reads and inspects the build script at path
func (e *Extractor) ExtractFile(path string) (*extractor.Extraction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.Extract(content)
}

// Extract locates the single setup() call in src and returns its arguments
func (e *Extractor) Extract(src []byte) (*extractor.Extraction, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(language)

	tree, err := parser.ParseString(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse build script: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, &extractor.SyntaxError{Line: 1, Msg: "empty syntax tree"}
	}

	if bad := findError(root); !bad.IsNull() {
		return nil, &extractor.SyntaxError{
			Line:    line(bad),
			Snippet: firstLine(bad.Content(src)),
			Msg:     "cannot parse",
		}
	}

	w := &walker{src: src, opts: e.opts}
	if e.opts.ResolveConstants {
		w.constants = w.collectConstants(root)
	}

	var calls []sitter.Node
	w.collectSetupCalls(root, &calls)

	switch len(calls) {
	case 0:
		return nil, extractor.ErrNoSetupCallFound
	case 1:
	default:
		lines := make([]string, 0, len(calls))
		for _, call := range calls {
			lines = append(lines, fmt.Sprintf("%d", line(call)))
		}
		return nil, fmt.Errorf("%w: at lines %s", extractor.ErrMultipleSetupCallsFound, strings.Join(lines, ", "))
	}

	return w.extractCall(calls[0])
}

type walker struct {
	src       []byte
	opts      Options
	constants map[string]extractor.Value
}

func (w *walker) text(n sitter.Node) string {
	return n.Content(w.src)
}

// extractCall reads the keyword arguments of a setup() call
func (w *walker) extractCall(call sitter.Node) (*extractor.Extraction, error) {
	ex := &extractor.Extraction{
		Callee: w.text(call.ChildByFieldName("function")),
		Line:   line(call),
	}

	args := call.ChildByFieldName("arguments")
	if args.IsNull() || args.Type() != "argument_list" {
		return ex, nil
	}

	seen := make(map[string]int)
	for _, arg := range namedChildren(args) {
		switch arg.Type() {
		case "keyword_argument":
			name := w.text(arg.ChildByFieldName("name"))
			if first, dup := seen[name]; dup {
				return nil, &extractor.SyntaxError{
					Line:    line(arg),
					Snippet: firstLine(w.text(arg)),
					Msg:     fmt.Sprintf("keyword argument %q repeated (first at line %d)", name, first),
				}
			}
			seen[name] = line(arg)
			valueNode := arg.ChildByFieldName("value")
			ex.Arguments = append(ex.Arguments, extractor.Argument{
				Name:  name,
				Value: w.value(valueNode),
				Raw:   w.text(valueNode),
				Line:  line(arg),
			})
		case "list_splat", "dictionary_splat":
			ex.Splats = append(ex.Splats, w.text(arg))
		default:
			ex.Positional = append(ex.Positional, w.text(arg))
		}
	}

	return ex, nil
}

// value converts an expression into a literal value or an unresolved marker
func (w *walker) value(n sitter.Node) extractor.Value {
	raw := w.text(n)

	switch n.Type() {
	case "string":
		s, err := decodeString(raw)
		if err != nil {
			return extractor.Unresolved(raw, err.Error())
		}
		return extractor.String(s)

	case "concatenated_string":
		var b strings.Builder
		for _, part := range namedChildren(n) {
			if part.Type() != "string" {
				return extractor.Unresolved(raw, part.Type()+" in string concatenation")
			}
			s, err := decodeString(w.text(part))
			if err != nil {
				return extractor.Unresolved(raw, err.Error())
			}
			b.WriteString(s)
		}
		return extractor.String(b.String())

	case "integer", "float":
		return extractor.Number(raw)

	case "true":
		return extractor.Bool(true)

	case "false":
		return extractor.Bool(false)

	case "none":
		return extractor.None()

	case "unary_operator":
		operand := n.ChildByFieldName("argument")
		op := strings.TrimSpace(w.text(n.ChildByFieldName("operator")))
		if (op == "-" || op == "+") && (operand.Type() == "integer" || operand.Type() == "float") {
			return extractor.Number(op + w.text(operand))
		}
		return extractor.Unresolved(raw, "unary operator expression")

	case "parenthesized_expression":
		inner := namedChildren(n)
		if len(inner) == 1 {
			return w.value(inner[0])
		}
		return extractor.Unresolved(raw, "parenthesized expression")

	case "list", "tuple", "set":
		items := make([]extractor.Value, 0, n.NamedChildCount())
		for _, child := range namedChildren(n) {
			item := w.value(child)
			if !item.IsLiteral() {
				return extractor.Unresolved(raw, fmt.Sprintf("%s element %s is not a literal", n.Type(), firstLine(w.text(child))))
			}
			items = append(items, item)
		}
		return extractor.List(items...)

	case "dictionary":
		pairs := make([]extractor.Pair, 0, n.NamedChildCount())
		for _, child := range namedChildren(n) {
			if child.Type() != "pair" {
				return extractor.Unresolved(raw, child.Type()+" in dict literal")
			}
			key := w.value(child.ChildByFieldName("key"))
			keyText, ok := key.Scalar()
			if !ok || key.Kind == extractor.KindBool {
				if key.Kind != extractor.KindNone {
					return extractor.Unresolved(raw, "dict key is not a string literal")
				}
				keyText = ""
			}
			val := w.value(child.ChildByFieldName("value"))
			if !val.IsLiteral() {
				return extractor.Unresolved(raw, fmt.Sprintf("dict value for %q is not a literal", keyText))
			}
			pairs = append(pairs, extractor.Pair{Key: keyText, Value: val})
		}
		return extractor.Dict(pairs...)

	case "identifier":
		if v, ok := w.constants[raw]; ok {
			return v
		}
		return extractor.Unresolved(raw, "variable reference")

	case "call":
		if find, ok := w.findCall(n); ok {
			return extractor.Value{Kind: extractor.KindFind, Find: find, Raw: raw}
		}
		return extractor.Unresolved(raw, "function call")

	default:
		return extractor.Unresolved(raw, strings.ReplaceAll(n.Type(), "_", " "))
	}
}

// findCall recognises find_packages(...) and find_namespace_packages(...)
// whose arguments are all literals
func (w *walker) findCall(call sitter.Node) (*extractor.Find, bool) {
	name := lastDotted(w.text(call.ChildByFieldName("function")))

	find := &extractor.Find{}
	switch name {
	case "find_packages":
	case "find_namespace_packages":
		find.Namespace = true
	default:
		return nil, false
	}

	args := call.ChildByFieldName("arguments")
	if args.IsNull() || args.Type() != "argument_list" {
		return nil, false
	}

	positional := []string{"where", "exclude", "include"}
	for i, arg := range namedChildren(args) {
		key := ""
		var val extractor.Value
		switch arg.Type() {
		case "keyword_argument":
			key = w.text(arg.ChildByFieldName("name"))
			val = w.value(arg.ChildByFieldName("value"))
		case "list_splat", "dictionary_splat":
			return nil, false
		default:
			if i >= len(positional) {
				return nil, false
			}
			key = positional[i]
			val = w.value(arg)
		}

		switch key {
		case "where":
			s, ok := val.Scalar()
			if !ok || val.Kind != extractor.KindString {
				return nil, false
			}
			find.Where = s
		case "include", "exclude":
			items, ok := val.StringList()
			if !ok {
				return nil, false
			}
			if key == "include" {
				find.Include = items
			} else {
				find.Exclude = items
			}
		default:
			return nil, false
		}
	}

	return find, true
}

// collectSetupCalls gathers every call of setup() or <module>.setup()
func (w *walker) collectSetupCalls(n sitter.Node, calls *[]sitter.Node) {
	if n.Type() == "call" && isSetupCallee(w.text(n.ChildByFieldName("function"))) {
		*calls = append(*calls, n)
	}
	for _, child := range namedChildren(n) {
		w.collectSetupCalls(child, calls)
	}
}

// collectConstants returns module-level names bound exactly once to a literal
func (w *walker) collectConstants(root sitter.Node) map[string]extractor.Value {
	counts := make(map[string]int)
	w.countAssignments(root, counts)

	constants := make(map[string]extractor.Value)
	for _, stmt := range namedChildren(root) {
		if stmt.Type() != "expression_statement" {
			continue
		}
		for _, expr := range namedChildren(stmt) {
			if expr.Type() != "assignment" {
				continue
			}
			left := expr.ChildByFieldName("left")
			right := expr.ChildByFieldName("right")
			if left.Type() != "identifier" || right.IsNull() {
				continue
			}
			name := w.text(left)
			if counts[name] != 1 {
				continue
			}
			// earlier constants may be referenced by later ones
			w.constants = constants
			if v := w.value(right); v.IsLiteral() && v.Kind != extractor.KindFind {
				constants[name] = v
			}
		}
	}
	w.constants = nil

	return constants
}

// countAssignments counts every binding of a plain name anywhere in the module
func (w *walker) countAssignments(n sitter.Node, counts map[string]int) {
	switch n.Type() {
	case "assignment", "augmented_assignment", "for_statement", "named_expression":
		target := n.ChildByFieldName("left")
		if n.Type() == "named_expression" {
			target = n.ChildByFieldName("name")
		}
		for _, name := range w.boundNames(target) {
			counts[name]++
		}
	case "global_statement", "nonlocal_statement":
		for _, child := range namedChildren(n) {
			counts[w.text(child)] += 2
		}
	}
	for _, child := range namedChildren(n) {
		w.countAssignments(child, counts)
	}
}

func (w *walker) boundNames(target sitter.Node) []string {
	if target.IsNull() {
		return nil
	}
	switch target.Type() {
	case "identifier":
		return []string{w.text(target)}
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list":
		var names []string
		for _, child := range namedChildren(target) {
			names = append(names, w.boundNames(child)...)
		}
		return names
	}
	return nil
}

// isSetupCallee matches setup, setuptools.setup and distutils.core.setup
func isSetupCallee(callee string) bool {
	if callee == "setup" {
		return true
	}
	if !strings.HasSuffix(callee, ".setup") {
		return false
	}
	for _, part := range strings.Split(strings.TrimSuffix(callee, ".setup"), ".") {
		if !isIdentifier(part) || part == "self" || part == "cls" {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

func lastDotted(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// namedChildren lists named children, skipping comments
func namedChildren(n sitter.Node) []sitter.Node {
	if n.IsNull() {
		return nil
	}
	children := make([]sitter.Node, 0, n.NamedChildCount())
	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.IsNull() || child.Type() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// findError returns the first ERROR node in document order
func findError(n sitter.Node) sitter.Node {
	if n.Type() == "ERROR" {
		return n
	}
	for idx := range n.ChildCount() {
		if found := findError(n.Child(idx)); !found.IsNull() {
			return found
		}
	}
	return sitter.Node{}
}

func line(n sitter.Node) int {
	return int(n.StartPoint().Row) + 1 //nolint:gosec // tree-sitter rows fit in int
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
