// Package validate enforces the cross-service endpoint invariants:
// endpoint names are unique within a namespace and follow the canonical
// kebab-case derivation of their method names.
package validate

import (
	"strings"
	"unicode"

	"github.com/decklab/rpc-manifest/internal/report"
	"github.com/decklab/rpc-manifest/internal/scan"
)

// Validate checks every populated service. All violations are recorded;
// nothing stops at the first problem.
func Validate(services []scan.Service, rep *report.Reporter) {
	// Endpoint uniqueness is scoped to the base namespace, which can in
	// principle span classes, so group across all services first.
	type owner struct {
		module string
		method string
	}
	seen := map[string]map[string]owner{}

	for _, svc := range services {
		byEndpoint := seen[svc.Base]
		if byEndpoint == nil {
			byEndpoint = map[string]owner{}
			seen[svc.Base] = byEndpoint
		}
		for _, m := range svc.Methods {
			if prev, dup := byEndpoint[m.Endpoint]; dup {
				rep.Validation(svc.Module, "namespace %q: duplicate endpoint %q (%s in %s and %s)",
					svc.Base, m.Endpoint, prev.method, prev.module, m.Name)
			} else {
				byEndpoint[m.Endpoint] = owner{module: svc.Module, method: m.Name}
			}

			if want := KebabCase(m.Name); m.Endpoint != want {
				rep.Validation(svc.Module, "method %s.%s: endpoint %q does not match canonical %q",
					svc.ClassName, m.Name, m.Endpoint, want)
			}
		}
	}
}

// KebabCase derives the canonical endpoint name from a method name:
// a hyphen at every lowercase-to-uppercase and letter-to-digit boundary,
// then the whole string lowercased.
func KebabCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			if (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
				(unicode.IsLetter(prev) && unicode.IsDigit(r)) {
				b.WriteRune('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
