package lox

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func testEngine(t *testing.T, out *bytes.Buffer) *Engine {
	t.Helper()
	return MustNewEngine(Config{
		Stdout: out,
		Clock:  func() time.Time { return fixedNow },
	})
}

// runSource runs source end to end and returns everything it printed.
func runSource(t *testing.T, source string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := testEngine(t, &out).Run(context.Background(), source)
	return out.String(), err
}

func mustRun(t *testing.T, source string) string {
	t.Helper()
	out, err := runSource(t, source)
	if err != nil {
		t.Fatalf("run failed: %v\noutput so far:\n%s", err, out)
	}
	return out
}

func parseSource(t *testing.T, source string) []Stmt {
	t.Helper()
	tokens, diags := Scan(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected scan diagnostics: %v", diags)
	}
	stmts, diags := Parse(tokens)
	if len(diags) > 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	return stmts
}

func parseDiagnostics(source string) Diagnostics {
	tokens, _ := Scan(source)
	_, diags := Parse(tokens)
	return diags
}

func resolveDiagnostics(t *testing.T, source string) Diagnostics {
	t.Helper()
	_, diags := Resolve(parseSource(t, source))
	return diags
}

func requireRuntimeError(t *testing.T, err error, message string, line int) *RuntimeError {
	t.Helper()
	re, ok := AsRuntimeError(err)
	if !ok {
		t.Fatalf("expected runtime error %q, got %v", message, err)
	}
	if re.Message != message {
		t.Fatalf("unexpected runtime error message: %q (want %q)", re.Message, message)
	}
	if line > 0 && re.Token.Line != line {
		t.Fatalf("runtime error on line %d, want %d", re.Token.Line, line)
	}
	return re
}

func requireDiagnostic(t *testing.T, diags Diagnostics, want string) {
	t.Helper()
	for _, d := range diags {
		if d.Error() == want {
			return
		}
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.Error()
	}
	t.Fatalf("missing diagnostic %q in:\n%s", want, strings.Join(lines, "\n"))
}
