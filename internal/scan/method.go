package scan

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/decklab/rpc-manifest/internal/parser"
	"github.com/decklab/rpc-manifest/internal/report"
	"github.com/decklab/rpc-manifest/internal/source"
	"github.com/decklab/rpc-manifest/internal/typemap"
)

// analyzeMethod extracts one API method. Methods whose return type is not
// the two-level Promise<Result<T>> wrapper are not API methods and are
// skipped without a diagnostic. An API-shaped method with no self-dispatch
// endpoint literal is a structural error; it is recorded and skipped.
func analyzeMethod(mod *source.Module, className string, method *tree_sitter.Node, resultType string, table typemap.Table, rep *report.Reporter) (Method, bool) {
	name := nodeName(method, mod.Source)
	if name == "" || name == "constructor" {
		return Method{}, false
	}

	payload := resultPayload(method, mod.Source, resultType)
	if payload == nil {
		return Method{}, false // not an API method
	}

	endpoint, ok := dispatchLiteral(mod, method)
	if !ok {
		rep.Structural(mod.RelPath, "method %s.%s: no endpoint literal in dispatch call", className, name)
		return Method{}, false
	}

	m := Method{
		Name:     name,
		Endpoint: endpoint,
		// The payload type is emitted as declared, not reduced further.
		ReturnKind: strings.TrimSpace(parser.NodeText(payload, mod.Source)),
	}
	m.Params = methodParams(method, mod.Source, table)
	return m, true
}

// resultPayload classifies the declared return type structurally: an
// outer Promise generic wrapping a Result generic wrapping the payload.
// Returns the payload type node, or nil when the shape does not match.
func resultPayload(method *tree_sitter.Node, src []byte, resultType string) *tree_sitter.Node {
	annotation := method.ChildByFieldName("return_type")
	if annotation == nil {
		return nil
	}
	// type_annotation wraps the actual type as its only named child.
	declared := annotation.NamedChild(0)

	inner := genericArgument(declared, src, "Promise")
	if inner == nil {
		return nil
	}
	return genericArgument(inner, src, resultType)
}

// genericArgument returns the sole type argument of a generic type with
// the given name, or nil when node is not that shape.
func genericArgument(node *tree_sitter.Node, src []byte, wantName string) *tree_sitter.Node {
	if node == nil || node.Kind() != "generic_type" {
		return nil
	}
	var name, args *tree_sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_identifier", "nested_type_identifier":
			name = child
		case "type_arguments":
			args = child
		}
	}
	if name == nil || parser.NodeText(name, src) != wantName {
		return nil
	}
	if args == nil || args.NamedChildCount() != 1 {
		return nil
	}
	return args.NamedChild(0)
}

// dispatchLiteral finds the first self-dispatch call in the method body:
// an invocation on the method's own instance whose first argument is a
// string literal. That literal names the endpoint.
func dispatchLiteral(mod *source.Module, method *tree_sitter.Node) (string, bool) {
	src := mod.Source
	body := method.ChildByFieldName("body")
	if body == nil {
		return "", false
	}

	var endpoint string
	found := false
	parser.Walk(body, func(n *tree_sitter.Node) bool {
		if found {
			return false
		}
		if !mod.Spec().IsCallNode(n.Kind()) {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "member_expression" {
			return true
		}
		obj := fn.ChildByFieldName("object")
		if obj == nil || obj.Kind() != "this" {
			return true
		}
		args := n.ChildByFieldName("arguments")
		if args == nil || args.NamedChildCount() == 0 {
			return true
		}
		first := args.NamedChild(0)
		if first == nil || first.Kind() != "string" {
			return true
		}
		endpoint = stringLiteral(first, src)
		found = true
		return false
	})
	return endpoint, found
}

// methodParams resolves each declared parameter through the type table,
// falling back to the raw declared text when unresolved. An untyped
// parameter records the implicit "any".
func methodParams(method *tree_sitter.Node, src []byte, table typemap.Table) []Param {
	formal := method.ChildByFieldName("parameters")
	if formal == nil {
		return nil
	}
	var params []Param
	for i := uint(0); i < formal.NamedChildCount(); i++ {
		p := formal.NamedChild(i)
		if p == nil {
			continue
		}
		switch p.Kind() {
		case "required_parameter", "optional_parameter":
		default:
			continue
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil {
			continue
		}
		param := Param{Name: parser.NodeText(pattern, src), Kind: "any"}
		if annotation := p.ChildByFieldName("type"); annotation != nil {
			if declared := annotation.NamedChild(0); declared != nil {
				param.Kind = table.ResolveType(declared, src)
			}
		}
		params = append(params, param)
	}
	return params
}
