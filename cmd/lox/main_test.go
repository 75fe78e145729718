package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/mgomes/loxscript/lox"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"lox", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIUnknownCommandIsUsageError(t *testing.T) {
	err := runCLI([]string{"lox", "unknown"})
	if err == nil {
		t.Fatalf("expected unknown command error")
	}
	if !strings.Contains(err.Error(), `unknown command "unknown"`) {
		t.Fatalf("unexpected error: %v", err)
	}
	if code := exitCode(err); code != exitUsage {
		t.Fatalf("expected exit code %d, got %d", exitUsage, code)
	}
}

func TestRunCLIWithoutCommandStartsLineREPL(t *testing.T) {
	isolateConfig(t)
	withStdin(t, "print 1 + 1;\n")

	out, err := captureStdout(t, func() error {
		return runCLI([]string{"lox"})
	})
	if err != nil {
		t.Fatalf("runCLI without command failed: %v", err)
	}
	if !strings.Contains(out, "2\n") {
		t.Fatalf("unexpected repl output: %q", out)
	}
}

func TestRunCommandPrintsOutput(t *testing.T) {
	isolateConfig(t)
	scriptPath := writeScript(t, heredoc.Doc(`
		fun greet(name) {
		  return "hello " + name;
		}
		print greet("lox");
		print 1 + 2;
	`))

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "hello lox\n3\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestRunCommandCheckOnly(t *testing.T) {
	isolateConfig(t)
	scriptPath := writeScript(t, `print "never";`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-check", scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand check failed: %v", err)
	}
	if out != "" {
		t.Fatalf("check mode should not execute, got %q", out)
	}
}

func TestRunCommandRequiresScriptPath(t *testing.T) {
	err := runCommand(nil)
	if err == nil {
		t.Fatalf("expected script path error")
	}
	if !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
	if code := exitCode(err); code != exitUsage {
		t.Fatalf("expected exit code %d, got %d", exitUsage, code)
	}
}

func TestRunCommandStaticErrorsExitWithDataCode(t *testing.T) {
	isolateConfig(t)
	scriptPath := writeScript(t, "print ;\nvar = 1;\n")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	var reported *reportedError
	if !errors.As(err, &reported) {
		t.Fatalf("expected reported error, got %v", err)
	}
	var diags lox.Diagnostics
	if !errors.As(err, &diags) || len(diags) != 2 {
		t.Fatalf("expected two diagnostics, got %v", err)
	}
	if code := exitCode(err); code != exitData {
		t.Fatalf("expected exit code %d, got %d", exitData, code)
	}
}

func TestRunCommandRuntimeErrorExitsWithSoftwareCode(t *testing.T) {
	isolateConfig(t)
	scriptPath := writeScript(t, "print \"before\";\nprint -\"a\";\nprint \"after\";\n")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if out != "before\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
	if code := exitCode(err); code != exitRuntime {
		t.Fatalf("expected exit code %d, got %d (%v)", exitRuntime, code, err)
	}
}

func TestRunCommandHonoursStepQuotaSetting(t *testing.T) {
	dir := isolateConfig(t)
	writeSettings(t, dir, "step_quota = 100\n")
	scriptPath := writeScript(t, "while (true) {}\n")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if !lox.IsStepQuotaExceeded(err) {
		t.Fatalf("expected step quota error, got %v", err)
	}
	if code := exitCode(err); code != exitRuntime {
		t.Fatalf("expected exit code %d, got %d", exitRuntime, code)
	}
}

func TestRunCommandExplicitConfigMustLoad(t *testing.T) {
	isolateConfig(t)
	scriptPath := writeScript(t, "print 1;\n")
	missing := filepath.Join(t.TempDir(), "missing.toml")

	err := runCommand([]string{"-config", missing, scriptPath})
	if err == nil {
		t.Fatalf("expected missing config error")
	}
	if !strings.Contains(err.Error(), "read settings") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandIgnoresBrokenDefaultSettings(t *testing.T) {
	dir := isolateConfig(t)
	writeSettings(t, dir, "step_quota = [\n")
	scriptPath := writeScript(t, "print 1;\n")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "1\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestTokensCommandListsTokens(t *testing.T) {
	scriptPath := writeScript(t, "var answer = 42;\n")

	out, err := captureStdout(t, func() error {
		return tokensCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("tokensCommand failed: %v", err)
	}
	for _, want := range []string{"== Tokens ==", "VAR var", "IDENTIFIER answer", "NUMBER 42 42", "EOF"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestASTCommandDumpsTree(t *testing.T) {
	scriptPath := writeScript(t, "print 1 + 2 * 3;\n")

	out, err := captureStdout(t, func() error {
		return astCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("astCommand failed: %v", err)
	}
	if out != "(print (+ 1 (* 2 3)))\n" {
		t.Fatalf("unexpected ast output: %q", out)
	}
}

func TestAnalyzeCommandNoIssues(t *testing.T) {
	scriptPath := writeScript(t, heredoc.Doc(`
		fun f(x) {
		  if (x) return 1;
		  return 2;
		}
		print f(true);
	`))

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected analyze output: %q", out)
	}
}

func TestAnalyzeCommandReportsUnreachableStatements(t *testing.T) {
	scriptPath := writeScript(t, heredoc.Doc(`
		fun f() {
		  return 1;
		  print 2;
		}
		while (true) {
		  break;
		  print 3;
		}
		class A {
		  m(x) {
		    if (x) return 1; else return 2;
		    print 4;
		  }
		}
		print f();
	`))

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected analyze command to report lint failures")
	}
	if !strings.Contains(err.Error(), "analysis found 3 issue(s)") {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	for _, want := range []string{":3: unreachable statement (f)", ":7: unreachable statement (<script>)", ":12: unreachable statement (A.m)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommandReportsUnreachableInLambdas(t *testing.T) {
	scriptPath := writeScript(t, heredoc.Doc(`
		var f = fun () {
		  return 1;
		  print 2;
		};
		print f();
		fun apply(g) { return g(); }
		print apply(fun () {
		  return 3;
		  print 4;
		});
	`))

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected analyze command to report lint failures")
	}
	if !strings.Contains(err.Error(), "analysis found 2 issue(s)") {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	for _, want := range []string{":3: unreachable statement (<script>.<lambda>)", ":9: unreachable statement (<script>.<lambda>)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestReportScriptErrorShowsFrameAndTrace(t *testing.T) {
	source := heredoc.Doc(`
		fun inner() {
		  return -"x";
		}
		fun outer() {
		  return inner();
		}
		outer();
	`)
	engine := lox.MustNewEngine(lox.Config{Stdout: io.Discard})
	runErr := engine.Run(context.Background(), source)
	if runErr == nil {
		t.Fatalf("expected runtime error")
	}

	var buf bytes.Buffer
	err := reportScriptError(&buf, source, runErr)
	if !errors.Is(err, runErr) {
		t.Fatalf("reported error should wrap the original")
	}
	out := buf.String()
	for _, want := range []string{"[line 2]", "at inner", "at outer", "--> line 2", `return -"x";`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestExitCodeDefaultsToOne(t *testing.T) {
	if code := exitCode(errors.New("boom")); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if code := exitCode(nil); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lox")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// isolateConfig points the settings lookup at an empty temporary directory.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOX_CONFIG_DIR", dir)
	return dir
}

func writeSettings(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, settingsFileName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	orig := os.Stdin
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	if _, err := io.WriteString(w, input); err != nil {
		t.Fatalf("write stdin: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close write pipe: %v", err)
	}
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = orig
		_ = r.Close()
	})
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
