// Package report aggregates non-fatal diagnostics across generator stages.
// Every stage records and continues so a single run surfaces every problem
// in the project; any recorded diagnostic suppresses manifest emission.
package report

import (
	"fmt"
	"log/slog"
)

// Class distinguishes the two recorded diagnostic families.
// Fatal conditions (unparsable source, filesystem failures) are not
// diagnostics; they travel as errors and abort the run.
type Class string

const (
	Structural Class = "structural"
	Validation Class = "validation"
)

// Diagnostic is one recorded problem.
type Diagnostic struct {
	Class  Class
	Module string // RelPath of the module, "" when cross-module
	Detail string
}

func (d Diagnostic) String() string {
	if d.Module == "" {
		return fmt.Sprintf("%s: %s", d.Class, d.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", d.Class, d.Module, d.Detail)
}

// Reporter collects diagnostics from all stages of a run.
type Reporter struct {
	diags []Diagnostic
}

// New returns an empty Reporter.
func New() *Reporter {
	return &Reporter{}
}

// Structural records a structural diagnostic.
func (r *Reporter) Structural(module, format string, args ...any) {
	r.record(Diagnostic{Class: Structural, Module: module, Detail: fmt.Sprintf(format, args...)})
}

// Validation records a validation diagnostic.
func (r *Reporter) Validation(module, format string, args ...any) {
	r.record(Diagnostic{Class: Validation, Module: module, Detail: fmt.Sprintf(format, args...)})
}

func (r *Reporter) record(d Diagnostic) {
	r.diags = append(r.diags, d)
	slog.Error("diagnostic", "class", string(d.Class), "module", d.Module, "detail", d.Detail)
}

// Count returns the aggregate diagnostic count across all classes.
func (r *Reporter) Count() int {
	return len(r.diags)
}

// Diagnostics returns everything recorded so far, in order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}
