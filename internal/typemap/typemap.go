package typemap

import (
	"log/slog"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/decklab/rpc-manifest/internal/parser"
	"github.com/decklab/rpc-manifest/internal/source"
)

// Wire kinds a user-defined type can reduce to. The manifest never
// distinguishes enum tag identities, only the underlying representation.
const (
	KindString  = "string"
	KindNumber  = "number"
	KindBoolean = "boolean"
)

// Table maps user-defined type names (enums, type aliases) to a wire kind.
// Built once per run; treated as immutable by all later stages.
type Table map[string]string

// Build performs the single global resolution pass over every module.
// Unknown or unclassifiable names are simply absent from the table;
// downstream resolution falls back to the raw declared text.
func Build(idx *source.Index) Table {
	t := Table{}

	for _, mod := range idx.Modules() {
		for _, e := range mod.Enums() {
			name := nodeName(e, mod.Source)
			if name == "" {
				continue
			}
			t[name] = classifyEnum(e, mod.Source)
		}
		for _, a := range mod.TypeAliases() {
			name := nodeName(a, mod.Source)
			if name == "" {
				continue
			}
			value := a.ChildByFieldName("value")
			if kind, ok := classifyAliasValue(value, mod.Source); ok {
				t[name] = kind
			}
		}
	}

	slog.Info("typemap.built", "entries", len(t))
	return t
}

// Resolve looks up a user-defined type name.
func (t Table) Resolve(name string) (string, bool) {
	kind, ok := t[name]
	return kind, ok
}

// ResolveType reduces a declared type AST node to a wire kind.
// Primitive keywords pass through, arrays resolve their element kind,
// user-defined names go through the table, and everything else falls
// back to the raw declared text verbatim.
func (t Table) ResolveType(node *tree_sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	raw := strings.TrimSpace(parser.NodeText(node, src))

	switch node.Kind() {
	case "predefined_type":
		switch raw {
		case "string", "number", "boolean":
			return raw
		}
		return raw
	case "array_type":
		// element is the first named child (T in T[])
		if elem := node.NamedChild(0); elem != nil {
			return t.ResolveType(elem, src) + "[]"
		}
		return raw
	case "parenthesized_type":
		if inner := node.NamedChild(0); inner != nil {
			return t.ResolveType(inner, src)
		}
		return raw
	case "type_identifier":
		if kind, ok := t[raw]; ok {
			return kind
		}
		return raw
	}
	return raw
}

// classifyEnum classifies an enum's storage kind: numeric iff every
// member initializer present is a numeric literal, string otherwise.
func classifyEnum(enum *tree_sitter.Node, src []byte) string {
	body := enum.ChildByFieldName("body")
	if body == nil {
		return KindNumber
	}
	kind := KindNumber
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil || member.Kind() != "enum_assignment" {
			// Bare member: implicit numeric value.
			continue
		}
		value := member.ChildByFieldName("value")
		if value == nil {
			continue
		}
		if !isNumericLiteral(value) {
			kind = KindString
			break
		}
	}
	return kind
}

func isNumericLiteral(node *tree_sitter.Node) bool {
	switch node.Kind() {
	case "number":
		return true
	case "unary_expression":
		// e.g. -1
		if arg := node.ChildByFieldName("argument"); arg != nil {
			return arg.Kind() == "number"
		}
	}
	return false
}

// classifyAliasValue maps an alias's right-hand type shape to a wire kind.
// Returns ok=false for shapes that stay unmapped (object types, unions of
// mixed kinds, references to other aliases, ...).
func classifyAliasValue(node *tree_sitter.Node, src []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "predefined_type":
		switch parser.NodeText(node, src) {
		case "string":
			return KindString, true
		case "number":
			return KindNumber, true
		}
		return "", false
	case "template_literal_type":
		return KindString, true
	case "literal_type":
		child := node.NamedChild(0)
		if child == nil {
			return "", false
		}
		switch child.Kind() {
		case "string", "template_string":
			return KindString, true
		case "number", "unary_expression":
			return KindNumber, true
		}
		return "", false
	case "parenthesized_type":
		return classifyAliasValue(node.NamedChild(0), src)
	case "union_type":
		// A union classifies only when every branch agrees on a kind.
		var kind string
		for i := uint(0); i < node.NamedChildCount(); i++ {
			k, ok := classifyAliasValue(node.NamedChild(i), src)
			if !ok {
				return "", false
			}
			if kind == "" {
				kind = k
			} else if kind != k {
				return "", false
			}
		}
		return kind, kind != ""
	}
	return "", false
}

func nodeName(node *tree_sitter.Node, src []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return parser.NodeText(name, src)
}
