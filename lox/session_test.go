package lox

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestSessionKeepsGlobalsBetweenInputs(t *testing.T) {
	var out bytes.Buffer
	session := testEngine(t, &out).NewSession()
	ctx := context.Background()

	inputs := []string{
		"var a = 1;",
		"fun inc() { a = a + 1; return a; }",
		"inc();",
		"print a;",
		"a * 10;",
	}
	for _, input := range inputs {
		if err := session.Eval(ctx, input); err != nil {
			t.Fatalf("eval %q failed: %v", input, err)
		}
	}
	if out.String() != "2\n2\n20\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestSessionRecoversAfterErrors(t *testing.T) {
	var out bytes.Buffer
	session := testEngine(t, &out).NewSession()
	ctx := context.Background()

	if err := session.Eval(ctx, "var a = 1;"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	var diags Diagnostics
	if err := session.Eval(ctx, "var = ;"); !errors.As(err, &diags) {
		t.Fatalf("expected parse diagnostics, got %v", err)
	}
	if err := session.Eval(ctx, "a = 5; print 1 / 0;"); err == nil {
		t.Fatalf("expected runtime error")
	}
	out.Reset()
	if err := session.Eval(ctx, "a;"); err != nil {
		t.Fatalf("eval after errors failed: %v", err)
	}
	if out.String() != "5\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestSessionGlobalsListsUserBindings(t *testing.T) {
	var out bytes.Buffer
	session := testEngine(t, &out).NewSession()
	if err := session.Eval(context.Background(), "var b = 2; var a = \"x\"; var pending; class K {}"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	bindings := session.Globals()
	if len(bindings) != 3 {
		t.Fatalf("expected three bindings, got %+v", bindings)
	}
	names := []string{bindings[0].Name, bindings[1].Name, bindings[2].Name}
	if names[0] != "K" || names[1] != "a" || names[2] != "b" {
		t.Fatalf("unexpected binding order: %v", names)
	}
	if bindings[1].Value.String() != "x" {
		t.Fatalf("unexpected value for a: %v", bindings[1].Value)
	}
}

func TestSessionClosuresFromEarlierInputsKeepTheirScopes(t *testing.T) {
	var out bytes.Buffer
	session := testEngine(t, &out).NewSession()
	ctx := context.Background()

	inputs := []string{
		"fun makeCounter() { var count = 0; fun inc() { count = count + 1; return count; } return inc; }",
		"var next = makeCounter();",
		"{ var step = 10; print next() + step; }",
		"next();",
	}
	for _, input := range inputs {
		if err := session.Eval(ctx, input); err != nil {
			t.Fatalf("eval %q failed: %v", input, err)
		}
	}
	if out.String() != "11\n2\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
