package lox

import (
	"testing"

	"github.com/MakeNowJust/heredoc"
)

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"own initializer", "{ var a = 1; { var a = a; } }", "[line 1] Error at 'a': Cannot read local variable in its own initializer"},
		{"redeclaration", "{ var a = 1; var a = 2; print a; }", "[line 1] Error at 'a': Already a variable with this name in this scope"},
		{"unused local", "{ var a = 1; }", "[line 1] Error at 'a': Variable 'a' is never used"},
		{"unused parameter", "fun f(a) { return 1; } print f(2);", "[line 1] Error at 'a': Variable 'a' is never used"},
		{"top-level return", "return 1;", "[line 1] Error at 'return': Cannot return from top-level code"},
		{"initializer return value", "class A { init() { return 1; } }", "[line 1] Error at 'return': Cannot return a value from an initializer"},
		{"this outside class", "print this;", "[line 1] Error at 'this': Cannot use 'this' outside of a class"},
		{"this in class method", "class A { class make() { return this; } }", "[line 1] Error at 'this': Cannot use 'this' in a class method"},
		{"super outside class", "print super.m;", "[line 1] Error at 'super': Cannot use 'super' outside of a class"},
		{"super without superclass", "class A { m() { return super.m(); } }", "[line 1] Error at 'super': Cannot use 'super' in a class with no superclass"},
		{"super in class method", "class B {} class A < B { class make() { return super.make(); } }", "[line 1] Error at 'super': Cannot use 'super' in a class method"},
		{"self inheritance", "class A < A {}", "[line 1] Error at 'A': A class cannot inherit from itself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireDiagnostic(t, resolveDiagnostics(t, tt.source), tt.want)
		})
	}
}

func TestResolveAllowsEmptyReturnInInitializer(t *testing.T) {
	source := "class A { init() { return; } }"
	if diags := resolveDiagnostics(t, source); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

func TestResolveReportsUnusedInDeclarationOrder(t *testing.T) {
	diags := resolveDiagnostics(t, "{ var b = 1; var a = 2; var c = 3; print c; }")
	if len(diags) != 2 {
		t.Fatalf("expected two diagnostics, got %v", diags)
	}
	if diags[0].Message != "Variable 'b' is never used" || diags[1].Message != "Variable 'a' is never used" {
		t.Fatalf("unexpected diagnostic order: %v", diags)
	}
}

func TestResolveKeepsGoingAfterErrors(t *testing.T) {
	diags := resolveDiagnostics(t, "return 1;\nprint this;\n{ var x = 1; }")
	if len(diags) != 3 {
		t.Fatalf("expected three diagnostics, got %v", diags)
	}
	for i, line := range []int{1, 2, 3} {
		if diags[i].Line != line {
			t.Fatalf("diagnostic %d on line %d, want %d", i, diags[i].Line, line)
		}
	}
}

func TestResolveDistances(t *testing.T) {
	source := heredoc.Doc(`
		var g = 0;
		{
		  var a = 1;
		  {
		    var b = a;
		    print b;
		    print g;
		  }
		}
	`)
	stmts := parseSource(t, source)
	locals, diags := Resolve(stmts)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	outer := stmts[1].(*BlockStmt)
	inner := outer.Statements[1].(*BlockStmt)
	readA := inner.Statements[0].(*VarStmt).Initializer
	readB := inner.Statements[1].(*PrintStmt).Expr
	readG := inner.Statements[2].(*PrintStmt).Expr

	if d, ok := locals[readA]; !ok || d != 1 {
		t.Fatalf("expected a at distance 1, got %d (found %v)", d, ok)
	}
	if d, ok := locals[readB]; !ok || d != 0 {
		t.Fatalf("expected b at distance 0, got %d (found %v)", d, ok)
	}
	if _, ok := locals[readG]; ok {
		t.Fatalf("expected g to resolve as a global")
	}
}

func TestResolveIsIndependentPerReference(t *testing.T) {
	stmts := parseSource(t, "{ var a = 1; print a; print a; }")
	locals, diags := Resolve(stmts)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	block := stmts[0].(*BlockStmt)
	first := block.Statements[1].(*PrintStmt).Expr
	second := block.Statements[2].(*PrintStmt).Expr
	if first == second {
		t.Fatalf("distinct references share a node")
	}
	if len(locals) != 2 {
		t.Fatalf("expected two resolved references, got %d", len(locals))
	}
}
