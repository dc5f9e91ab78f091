// Package diag carries plx's compiler and simulator diagnostics.
package diag

import (
	"fmt"
	"strings"
)

// Kind enumerates the exhaustive set of error kinds a compile or
// simulation run can produce.
type Kind string

const (
	SourceUnavailable Kind = "SourceUnavailable"
	SyntaxUnsupported Kind = "SyntaxUnsupported"
	NameUnresolved    Kind = "NameUnresolved"
	TypeMismatch      Kind = "TypeMismatch"
	InheritanceCycle  Kind = "InheritanceCycle"
	DuplicateName     Kind = "DuplicateName"
	CaseOverlap       Kind = "CaseOverlap"
	InvalidLiteral    Kind = "InvalidLiteral"
	InvalidSchedule   Kind = "InvalidSchedule"
	DanglingReference Kind = "DanglingReference"
	InternalInvariant Kind = "InternalInvariant"
)

// Span locates a diagnostic in authored source.
type Span struct {
	File   string
	Line   int
	Column int
}

func (s Span) String() string {
	if s.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// CompileError is the carrier for every §7 error kind raised during
// lowering or project assembly.
type CompileError struct {
	Kind         Kind
	Span         Span
	Message      string
	RelatedSpans []Span
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if loc := e.Span.String(); loc != "" {
		fmt.Fprintf(&sb, " (at %s)", loc)
	}
	for _, r := range e.RelatedSpans {
		if loc := r.String(); loc != "" {
			fmt.Fprintf(&sb, "\n  related: %s", loc)
		}
	}
	return sb.String()
}

// New builds a CompileError with no span, for internal-invariant style
// failures that have no authored-source location.
func New(kind Kind, message string) *CompileError {
	return &CompileError{Kind: kind, Message: message}
}

// At builds a CompileError located at span.
func At(kind Kind, span Span, message string) *CompileError {
	return &CompileError{Kind: kind, Span: span, Message: message}
}

// WithRelated attaches related spans (e.g. the other half of a duplicate
// name, or the sibling case arm a CaseOverlap collides with).
func (e *CompileError) WithRelated(spans ...Span) *CompileError {
	e.RelatedSpans = append(e.RelatedSpans, spans...)
	return e
}

// ErrorList aggregates every CompileError found during a best-effort,
// non-short-circuiting pass (lowering a single POU, or assembling a
// whole project, per §4.2/§4.5).
type ErrorList struct {
	Errors []*CompileError
}

func (l *ErrorList) Add(err *CompileError) {
	if err == nil {
		return
	}
	l.Errors = append(l.Errors, err)
}

func (l *ErrorList) Extend(other *ErrorList) {
	if other == nil {
		return
	}
	l.Errors = append(l.Errors, other.Errors...)
}

func (l *ErrorList) HasErrors() bool {
	return l != nil && len(l.Errors) > 0
}

func (l *ErrorList) Error() string {
	if l == nil || len(l.Errors) == 0 {
		return ""
	}
	parts := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

// RuntimeFaultKind enumerates the simulator's abort reasons (§7).
type RuntimeFaultKind string

const (
	DivisionByZero    RuntimeFaultKind = "DivisionByZero"
	IndexOutOfRange   RuntimeFaultKind = "IndexOutOfRange"
	NilDereference    RuntimeFaultKind = "NilDereference"
	FaultInternalInvariant RuntimeFaultKind = "InternalInvariant"
)

// TraceFrame is one entry of a RuntimeFault's call trace: the POU or
// function-block instance path and the statement position within it.
type TraceFrame struct {
	InstancePath string
	Statement    int
}

// RuntimeFault aborts the scan in progress (§4.6, §7); prior scan
// outputs remain observable on the controller.
type RuntimeFault struct {
	Kind  RuntimeFaultKind
	Trace []TraceFrame
}

func (f *RuntimeFault) Error() string {
	var sb strings.Builder
	sb.WriteString(string(f.Kind))
	for _, t := range f.Trace {
		fmt.Fprintf(&sb, "\n  at %s (stmt #%d)", t.InstancePath, t.Statement)
	}
	return sb.String()
}
