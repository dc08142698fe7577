// Package scan discovers remote-service classes and extracts their
// endpoint contracts from TypeScript syntax trees.
package scan

import (
	"log/slog"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/decklab/rpc-manifest/internal/config"
	"github.com/decklab/rpc-manifest/internal/parser"
	"github.com/decklab/rpc-manifest/internal/report"
	"github.com/decklab/rpc-manifest/internal/source"
	"github.com/decklab/rpc-manifest/internal/typemap"
)

// baseFieldName is the class field holding the service's namespace literal.
const baseFieldName = "base"

// Scan walks every service module and returns all qualifying service
// classes with their analyzed methods. Structural problems (missing or
// non-literal base field, API-shaped method without an endpoint literal)
// are recorded on rep and the scan continues.
func Scan(idx *source.Index, cfg *config.Config, table typemap.Table, rep *report.Reporter) []Service {
	marker := cfg.EffectiveMarker()
	resultType := cfg.EffectiveResultType()

	var services []Service
	for _, mod := range idx.Modules() {
		if !cfg.IsServiceModule(mod.RelPath) {
			continue
		}
		for _, class := range mod.Classes() {
			svc, ok := scanClass(mod, class, marker, resultType, table, rep)
			if ok {
				services = append(services, svc)
			}
		}
	}

	slog.Info("scan.done", "services", len(services))
	return services
}

// scanClass qualifies a single class and extracts its contract.
// A class qualifies iff its direct superclass is the sentinel marker.
func scanClass(mod *source.Module, class *tree_sitter.Node, marker, resultType string, table typemap.Table, rep *report.Reporter) (Service, bool) {
	className := nodeName(class, mod.Source)
	if className == "" {
		return Service{}, false
	}
	if superclassName(class, mod.Source) != marker {
		return Service{}, false
	}

	svc := Service{ClassName: className, Module: mod.RelPath}

	base, ok := baseNamespace(mod, class)
	if !ok {
		rep.Structural(mod.RelPath, "class %s: missing or non-literal %q field", className, baseFieldName)
		return Service{}, false
	}
	svc.Base = base

	body := class.ChildByFieldName("body")
	if body == nil {
		return svc, true
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil || !mod.Spec().IsMethodNode(member.Kind()) {
			continue
		}
		m, ok := analyzeMethod(mod, className, member, resultType, table, rep)
		if ok {
			svc.Methods = append(svc.Methods, m)
		}
	}

	return svc, true
}

// superclassName returns the direct extends target, with any type
// arguments stripped. Empty string when the class extends nothing.
func superclassName(class *tree_sitter.Node, src []byte) string {
	for i := uint(0); i < class.ChildCount(); i++ {
		heritage := class.Child(i)
		if heritage == nil || heritage.Kind() != "class_heritage" {
			continue
		}
		for j := uint(0); j < heritage.NamedChildCount(); j++ {
			clause := heritage.NamedChild(j)
			if clause == nil || clause.Kind() != "extends_clause" {
				continue
			}
			for k := uint(0); k < clause.NamedChildCount(); k++ {
				target := clause.NamedChild(k)
				if target == nil {
					continue
				}
				switch target.Kind() {
				case "identifier", "type_identifier":
					return parser.NodeText(target, src)
				case "generic_type":
					// RemoteService<T>: the bare name is the first
					// named child.
					for l := uint(0); l < target.NamedChildCount(); l++ {
						inner := target.NamedChild(l)
						if inner != nil && (inner.Kind() == "type_identifier" || inner.Kind() == "identifier" || inner.Kind() == "nested_type_identifier") {
							return parser.NodeText(inner, src)
						}
					}
				}
			}
		}
	}
	return ""
}

// baseNamespace finds the class's base field and returns its literal
// value. ok is false when the field is absent or its value is not a
// plain string literal.
func baseNamespace(mod *source.Module, class *tree_sitter.Node) (string, bool) {
	src := mod.Source
	body := class.ChildByFieldName("body")
	if body == nil {
		return "", false
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil || !mod.Spec().IsFieldNode(member.Kind()) {
			continue
		}
		name := member.ChildByFieldName("name")
		if name == nil || parser.NodeText(name, src) != baseFieldName {
			continue
		}
		value := member.ChildByFieldName("value")
		if value == nil || value.Kind() != "string" {
			// Computed or missing: the namespace must be a constant.
			return "", false
		}
		return stringLiteral(value, src), true
	}
	return "", false
}

// stringLiteral returns the content of a string node without quotes.
func stringLiteral(node *tree_sitter.Node, src []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "string_fragment" {
			return parser.NodeText(child, src)
		}
	}
	return "" // empty literal has no fragment
}

func nodeName(node *tree_sitter.Node, src []byte) string {
	name := node.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return parser.NodeText(name, src)
}
