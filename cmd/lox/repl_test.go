package main

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestREPL(t *testing.T) replModel {
	t.Helper()
	settings := defaultSettings()
	settings.REPL.Highlight = false
	m, err := newREPLModel(settings)
	if err != nil {
		t.Fatalf("newREPLModel failed: %v", err)
	}
	return m
}

func submit(t *testing.T, m replModel, input string) replModel {
	t.Helper()
	m.textInput.SetValue(input)
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}
	return rm
}

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateNonQuitCommandDoesNotReturnCmd(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue(":help")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if cmd != nil {
		t.Fatalf("expected no command for non-quit input")
	}
	if rm.quitting {
		t.Fatalf("quitting should remain false")
	}
	if !rm.showHelp {
		t.Fatalf("help toggle should be enabled")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after command")
	}
}

func TestEvaluateKeepsGlobalsAcrossInputs(t *testing.T) {
	m := newTestREPL(t)
	m = submit(t, m, "var score = 40;")
	m = submit(t, m, "score = score + 2;")
	m = submit(t, m, "print score;")

	last := m.history[len(m.history)-1]
	if last.output != "42" || last.errMsg != "" {
		t.Fatalf("unexpected last entry: %+v", last)
	}
	if echoed := m.history[1]; echoed.output != "42" {
		t.Fatalf("expression statements should echo their value, got %+v", echoed)
	}

	globals := m.session.Globals()
	if len(globals) != 1 || globals[0].Name != "score" || globals[0].Value.Number() != 42 {
		t.Fatalf("unexpected globals: %+v", globals)
	}
}

func TestEvaluateReportsErrorsAndContinues(t *testing.T) {
	m := newTestREPL(t)
	m = submit(t, m, `print "ok"; print -"a";`)

	entry := m.history[len(m.history)-1]
	if entry.output != "ok" {
		t.Fatalf("output before the error should be kept, got %q", entry.output)
	}
	if !strings.Contains(entry.errMsg, "Operand must be a number") {
		t.Fatalf("unexpected error message: %q", entry.errMsg)
	}

	m = submit(t, m, "1 + 1;")
	if entry := m.history[len(m.history)-1]; entry.output != "2" || entry.errMsg != "" {
		t.Fatalf("repl did not recover: %+v", entry)
	}
}

func TestResetCommandDropsGlobals(t *testing.T) {
	m := newTestREPL(t)
	m = submit(t, m, "var a = 1;")
	m = submit(t, m, ":reset")
	if len(m.session.Globals()) != 0 {
		t.Fatalf("expected no globals after reset")
	}
	m = submit(t, m, "a;")
	if entry := m.history[len(m.history)-1]; !strings.Contains(entry.errMsg, "Undefined variable 'a'") {
		t.Fatalf("unexpected entry after reset: %+v", entry)
	}
}

func TestAutocompleteCompletesGlobalsAndKeywords(t *testing.T) {
	m := newTestREPL(t)
	m = submit(t, m, "var counter = 1;")

	m.textInput.SetValue("print cou")
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(replModel)
	if got := m.textInput.Value(); got != "print counter" {
		t.Fatalf("unexpected completion: %q", got)
	}

	m.textInput.SetValue("whl")
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(replModel)
	if got := m.textInput.Value(); got != "while" {
		t.Fatalf("expected fuzzy completion to while, got %q", got)
	}
}

func TestAutocompleteListsSeveralMatches(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue("f")
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(replModel)

	entry := m.history[len(m.history)-1]
	if entry.output != "Completions: false, for, fun" {
		t.Fatalf("unexpected completions: %q", entry.output)
	}
}

func TestHistoryIsBoundedBySettings(t *testing.T) {
	m := newTestREPL(t)
	m.settings.REPL.HistorySize = 2
	for _, input := range []string{"1;", "2;", "3;"} {
		m = submit(t, m, input)
	}
	if len(m.cmdHistory) != 2 || m.cmdHistory[0] != "2;" {
		t.Fatalf("unexpected command history: %v", m.cmdHistory)
	}
	if len(m.history) != 2 {
		t.Fatalf("unexpected history length: %d", len(m.history))
	}
}

func TestViewShowsHistoryAndVariables(t *testing.T) {
	m := newTestREPL(t)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = model.(replModel)
	m = submit(t, m, "var greeting = \"hi\";")
	m = submit(t, m, ":vars")

	view := m.View()
	for _, want := range []string{"Lox REPL", "var greeting = \"hi\";", "Variables", "greeting", "hi"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestREPLEngineBoundsSteps(t *testing.T) {
	engine, err := replEngine(defaultSettings(), new(bytes.Buffer))
	if err != nil {
		t.Fatalf("replEngine failed: %v", err)
	}
	if engine.Config().StepQuota != replStepQuota {
		t.Fatalf("expected default repl step quota, got %d", engine.Config().StepQuota)
	}

	settings := defaultSettings()
	settings.StepQuota = 10
	engine, err = replEngine(settings, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("replEngine failed: %v", err)
	}
	if engine.Config().StepQuota != 10 {
		t.Fatalf("configured quota should win, got %d", engine.Config().StepQuota)
	}
}

func TestRunLineREPL(t *testing.T) {
	in := strings.NewReader("var a = 2;\na * 3;\n:vars\nprint b;\nprint a;\n:quit\nprint 99;\n")
	var out, errOut bytes.Buffer

	if err := runLineREPL(in, &out, &errOut, defaultSettings()); err != nil {
		t.Fatalf("runLineREPL failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"lox> ", "6\n", "a = 2\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "99") {
		t.Fatalf("input after :quit should not run:\n%s", got)
	}
	if !strings.Contains(errOut.String(), "Undefined variable 'b'") {
		t.Fatalf("unexpected error output: %q", errOut.String())
	}
}

func TestAppendBounded(t *testing.T) {
	items := []int{1, 2, 3}
	items = appendBounded(items, 4, 3)
	if len(items) != 3 || items[0] != 2 || items[2] != 4 {
		t.Fatalf("unexpected items: %v", items)
	}
	if got := appendBounded([]int{1}, 2, 0); len(got) != 2 {
		t.Fatalf("zero limit should keep everything, got %v", got)
	}
}
