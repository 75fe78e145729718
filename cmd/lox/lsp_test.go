package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/mgomes/loxscript/lox"
)

func TestRunCLIStartsLSPAndExitsOnEOF(t *testing.T) {
	withStdin(t, "")

	if err := runCLI([]string{"lox", "lsp"}); err != nil {
		t.Fatalf("runCLI lsp failed: %v", err)
	}
}

func TestDiagnosticsForSourceWithoutErrors(t *testing.T) {
	engine := lox.MustNewEngine(lox.Config{})
	diags := diagnosticsForSource(engine, "var a = 1;\nprint a;\n")
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %d", len(diags))
	}
}

func TestDiagnosticsForSourceUsesPipelineLines(t *testing.T) {
	engine := lox.MustNewEngine(lox.Config{})
	source := "print 1;\nprint ;\nvar = 2;\n"
	diags := diagnosticsForSource(engine, source)
	if len(diags) != 2 {
		t.Fatalf("expected two diagnostics, got %d", len(diags))
	}

	first := diags[0]
	if first["severity"] != 1 {
		t.Fatalf("expected severity 1, got %#v", first["severity"])
	}
	start := first["range"].(map[string]any)["start"].(map[string]any)
	if start["line"] != 1 {
		t.Fatalf("expected zero-based line 1, got %#v", start["line"])
	}
	message, ok := first["message"].(string)
	if !ok || !strings.Contains(message, "Expect expression") {
		t.Fatalf("unexpected diagnostic message: %#v", first["message"])
	}
	if first["code"] != "parse error" {
		t.Fatalf("unexpected diagnostic code: %#v", first["code"])
	}
}

func TestDiagnosticsForSourceIncludesResolveErrors(t *testing.T) {
	engine := lox.MustNewEngine(lox.Config{})
	diags := diagnosticsForSource(engine, "{\n  var a = a;\n}\n")
	if len(diags) == 0 {
		t.Fatalf("expected resolve diagnostics")
	}
	if diags[0]["code"] != "resolve error" {
		t.Fatalf("unexpected diagnostic code: %#v", diags[0]["code"])
	}
}

func TestCompletionItemsAreSortedAndCategorized(t *testing.T) {
	items := completionItems("fun area(r) { return r * r; }\nclass Shape { draw() {} }\nvar unit = 1;\n")
	if len(items) == 0 {
		t.Fatalf("expected completion items")
	}

	labels := make([]string, 0, len(items))
	for _, item := range items {
		label, ok := item["label"].(string)
		if !ok {
			t.Fatalf("unexpected completion label: %#v", item["label"])
		}
		labels = append(labels, label)
	}
	if !slices.IsSorted(labels) {
		t.Fatalf("expected sorted completion labels, got %v", labels)
	}

	cases := []struct {
		label  string
		detail string
		kind   int
	}{
		{"while", "keyword", 14},
		{"clock", "builtin", 3},
		{"area", "function", 3},
		{"Shape", "class", 7},
		{"draw", "method of Shape", 2},
		{"unit", "variable", 6},
	}
	for _, tc := range cases {
		item := findCompletionItem(t, items, tc.label)
		if item["detail"] != tc.detail {
			t.Fatalf("%s: expected detail %q, got %#v", tc.label, tc.detail, item["detail"])
		}
		if item["kind"] != tc.kind {
			t.Fatalf("%s: expected kind %d, got %#v", tc.label, tc.kind, item["kind"])
		}
	}
}

func TestHandleMessageDidOpenPublishesDiagnostics(t *testing.T) {
	server := &lspServer{
		engine: lox.MustNewEngine(lox.Config{}),
		docs:   make(map[string]string),
	}
	payload := mustMarshal(t, map[string]any{
		"textDocument": map[string]any{
			"uri":  "file:///tmp/test.lox",
			"text": "print (;\n",
		},
	})

	messages := server.handleMessage(lspInboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/didOpen",
		Params:  payload,
	})
	if len(messages) != 1 {
		t.Fatalf("expected one publishDiagnostics notification, got %d", len(messages))
	}
	if messages[0].Method != "textDocument/publishDiagnostics" {
		t.Fatalf("unexpected method: %q", messages[0].Method)
	}
	paramsMap, ok := messages[0].Params.(map[string]any)
	if !ok {
		t.Fatalf("unexpected params payload: %#v", messages[0].Params)
	}
	diags, ok := paramsMap["diagnostics"].([]map[string]any)
	if !ok {
		t.Fatalf("unexpected diagnostics payload: %#v", paramsMap["diagnostics"])
	}
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics for invalid source")
	}
	if server.docs["file:///tmp/test.lox"] != "print (;\n" {
		t.Fatalf("document not stored")
	}
}

func TestHandleMessageDidCloseForgetsDocument(t *testing.T) {
	server := &lspServer{
		engine: lox.MustNewEngine(lox.Config{}),
		docs:   map[string]string{"file:///tmp/test.lox": "print 1;"},
	}
	messages := server.handleMessage(lspInboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/didClose",
		Params:  mustMarshal(t, map[string]any{"textDocument": map[string]any{"uri": "file:///tmp/test.lox"}}),
	})
	if len(messages) != 0 {
		t.Fatalf("didClose should not respond, got %d messages", len(messages))
	}
	if _, ok := server.docs["file:///tmp/test.lox"]; ok {
		t.Fatalf("document should be forgotten")
	}
}

func TestHandleMessageHoverClassifiesSymbols(t *testing.T) {
	server := &lspServer{
		engine: lox.MustNewEngine(lox.Config{}),
		docs: map[string]string{
			"file:///tmp/test.lox": "fun start() {}\nprint clock() + start();\n",
		},
	}

	cases := []struct {
		character int
		want      string
	}{
		{1, "Lox keyword"},
		{7, "Lox builtin"},
		{17, "Lox function"},
	}
	for _, tc := range cases {
		messages := server.handleMessage(lspInboundMessage{
			JSONRPC: "2.0",
			ID:      rawID("1"),
			Method:  "textDocument/hover",
			Params: mustMarshal(t, map[string]any{
				"textDocument": map[string]any{"uri": "file:///tmp/test.lox"},
				"position":     map[string]any{"line": 1, "character": tc.character},
			}),
		})
		if len(messages) != 1 {
			t.Fatalf("expected one response, got %d", len(messages))
		}
		result, ok := messages[0].Result.(map[string]any)
		if !ok {
			t.Fatalf("unexpected hover result: %#v", messages[0].Result)
		}
		value := result["contents"].(map[string]any)["value"].(string)
		if !strings.Contains(value, tc.want) {
			t.Fatalf("character %d: expected %q in hover value, got %q", tc.character, tc.want, value)
		}
	}
}

func TestHandleMessageUnknownRequest(t *testing.T) {
	server := &lspServer{engine: lox.MustNewEngine(lox.Config{}), docs: map[string]string{}}
	messages := server.handleMessage(lspInboundMessage{JSONRPC: "2.0", ID: rawID("7"), Method: "workspace/symbol"})
	if len(messages) != 1 || messages[0].Error == nil || messages[0].Error.Code != -32601 {
		t.Fatalf("expected method not found error, got %#v", messages)
	}
}

func TestServeRoundTrip(t *testing.T) {
	var in bytes.Buffer
	for _, msg := range []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.lox","text":"print ;"}}}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		fmt.Fprintf(&in, "Content-Length: %d\r\n\r\n%s", len(msg), msg)
	}
	var out bytes.Buffer
	server := &lspServer{
		reader: bufio.NewReader(&in),
		writer: bufio.NewWriter(&out),
		engine: lox.MustNewEngine(lox.Config{}),
		docs:   make(map[string]string),
	}
	if err := server.serve(); err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	got := out.String()
	if strings.Count(got, "Content-Length:") != 2 {
		t.Fatalf("expected two framed messages, got:\n%s", got)
	}
	if !strings.Contains(got, `"hoverProvider":true`) || !strings.Contains(got, "publishDiagnostics") {
		t.Fatalf("unexpected server output:\n%s", got)
	}
}

func TestWordAtPosition(t *testing.T) {
	source := "var a = 1;\nprint clock();\n"
	if word := wordAtPosition(source, 1, 8); word != "clock" {
		t.Fatalf("expected clock, got %q", word)
	}
	if word := wordAtPosition(source, 1, 11); word != "clock" {
		t.Fatalf("expected clock just after the word, got %q", word)
	}
	if word := wordAtPosition(source, 5, 0); word != "" {
		t.Fatalf("expected no word past the end, got %q", word)
	}
}

func TestWordAtPositionUsesUTF16CharacterOffsets(t *testing.T) {
	source := "\"😀😀\" x y\n"
	word := wordAtPosition(source, 0, 7)
	if word != "x" {
		t.Fatalf("expected x, got %q", word)
	}
}

func rawID(value string) *json.RawMessage {
	raw := json.RawMessage(value)
	return &raw
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return payload
}

func findCompletionItem(t *testing.T, items []map[string]any, label string) map[string]any {
	t.Helper()
	for _, item := range items {
		itemLabel, ok := item["label"].(string)
		if ok && itemLabel == label {
			return item
		}
	}
	t.Fatalf("missing completion item %q", label)
	return nil
}
