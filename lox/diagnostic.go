package lox

import (
	"fmt"
	"strings"
)

// DiagnosticKind separates the stage that produced a diagnostic. Static kinds
// (scan, parse, resolve) keep a program from running; a runtime diagnostic
// means execution started and stopped early.
type DiagnosticKind int

const (
	ScanDiagnostic DiagnosticKind = iota
	ParseDiagnostic
	ResolveDiagnostic
	RuntimeDiagnostic
)

func (k DiagnosticKind) String() string {
	switch k {
	case ScanDiagnostic:
		return "scan error"
	case ParseDiagnostic:
		return "parse error"
	case ResolveDiagnostic:
		return "resolve error"
	case RuntimeDiagnostic:
		return "runtime error"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(k))
	}
}

// Diagnostic is a single line-tagged problem reported by one of the stages.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) Error() string {
	if d.Kind == RuntimeDiagnostic {
		return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Diagnostics is an ordered list of problems. A non-empty list satisfies error.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.Error()
	}
	return strings.Join(parts, "\n")
}

// HasKind reports whether any diagnostic in the list has the given kind.
func (ds Diagnostics) HasKind(kind DiagnosticKind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Static reports whether the list holds any scan, parse or resolve error.
func (ds Diagnostics) Static() bool {
	return ds.HasKind(ScanDiagnostic) || ds.HasKind(ParseDiagnostic) || ds.HasKind(ResolveDiagnostic)
}

// whereToken renders the location fragment used by parse and resolve errors.
func whereToken(tok Token) string {
	if tok.Type == TokenEOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

func tokenDiagnostic(kind DiagnosticKind, tok Token, message string) Diagnostic {
	return Diagnostic{Kind: kind, Line: tok.Line, Where: whereToken(tok), Message: message}
}
