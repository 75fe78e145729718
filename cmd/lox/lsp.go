package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/mgomes/loxscript/lox"
)

var lspBuiltins = []string{"clock"}

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspDidCloseParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	engine *lox.Engine
	docs   map[string]string
}

func runLSP() error {
	server := &lspServer{
		reader: bufio.NewReader(os.Stdin),
		writer: bufio.NewWriter(os.Stdout),
		engine: lox.MustNewEngine(lox.Config{}),
		docs:   make(map[string]string),
	}
	return server.serve()
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		messages := s.handleMessage(incoming)
		for _, msg := range messages {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"capabilities": map[string]any{
						"textDocumentSync": 1,
						"hoverProvider":    true,
						"completionProvider": map[string]any{
							"resolveProvider": false,
						},
					},
					"serverInfo": map[string]any{"name": "lox-lsp"},
				},
			},
		}
	case "initialized", "exit":
		return nil
	case "shutdown":
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: nil}}
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{
			s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text),
		}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		if len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{
			s.publishDiagnostics(params.TextDocument.URI, latest),
		}
	case "textDocument/didClose":
		var params lspDidCloseParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		delete(s.docs, params.TextDocument.URI)
		return nil
	case "textDocument/completion":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		_ = json.Unmarshal(incoming.Params, &params)
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"isIncomplete": false,
					"items":        completionItems(s.docs[params.TextDocument.URI]),
				},
			},
		}
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{
				{
					JSONRPC: "2.0",
					ID:      incoming.ID,
					Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
				},
			}
		}
		source := s.docs[params.TextDocument.URI]
		word := wordAtPosition(source, params.Position.Line, params.Position.Character)
		if word == "" {
			return []lspOutboundMessage{
				{JSONRPC: "2.0", ID: incoming.ID, Result: nil},
			}
		}
		kind := classifyWord(word, documentSymbols(source))
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Result: map[string]any{
					"contents": map[string]any{
						"kind":  "markdown",
						"value": fmt.Sprintf("`%s`\n\nLox %s", word, kind),
					},
				},
			},
		}
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{
			{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error: &lspResponseError{
					Code:    -32601,
					Message: "method not found",
				},
			},
		}
	}
}

func (s *lspServer) publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(s.engine, source),
		},
	}
}

// diagnosticsForSource reports the static diagnostics of source. Lox
// diagnostics carry lines only, so each one covers its whole line.
func diagnosticsForSource(engine *lox.Engine, source string) []map[string]any {
	_, err := engine.Check(source)
	if err == nil {
		return []map[string]any{}
	}

	var diags lox.Diagnostics
	if !errors.As(err, &diags) {
		return []map[string]any{newDiagnostic(0, 0, 0, err.Error(), "")}
	}

	lines := strings.Split(source, "\n")
	out := make([]map[string]any, 0, len(diags))
	for _, d := range diags {
		lineIdx := max(0, d.Line-1)
		width := 0
		if lineIdx < len(lines) {
			width = len(utf16.Encode([]rune(strings.TrimRight(lines[lineIdx], "\r"))))
		}
		out = append(out, newDiagnostic(lineIdx, 0, width, "Error"+d.Where+": "+d.Message, d.Kind.String()))
	}
	return out
}

func newDiagnostic(line, start, end int, message, code string) map[string]any {
	diag := map[string]any{
		"range": map[string]any{
			"start": map[string]any{
				"line":      line,
				"character": start,
			},
			"end": map[string]any{
				"line":      line,
				"character": max(end, start+1),
			},
		},
		"severity": 1,
		"source":   "lox-lsp",
		"message":  message,
	}
	if code != "" {
		diag["code"] = code
	}
	return diag
}

// documentSymbols maps the names declared at the top level of source, and
// the methods of its classes, to what they are. Unparsable source yields
// what the parser still recovered.
func documentSymbols(source string) map[string]string {
	symbols := make(map[string]string)
	tokens, _ := lox.Scan(source)
	stmts, _ := lox.Parse(tokens)
	for _, stmt := range stmts {
		switch typed := stmt.(type) {
		case *lox.VarStmt:
			symbols[typed.Name.Lexeme] = "variable"
		case *lox.FunctionStmt:
			symbols[typed.Name.Lexeme] = "function"
		case *lox.ClassStmt:
			symbols[typed.Name.Lexeme] = "class"
			for _, method := range typed.Methods {
				if _, taken := symbols[method.Name.Lexeme]; !taken {
					symbols[method.Name.Lexeme] = "method of " + typed.Name.Lexeme
				}
			}
		}
	}
	return symbols
}

func completionItems(source string) []map[string]any {
	keywords := lox.Keywords()
	symbols := documentSymbols(source)

	kinds := make(map[string]string, len(keywords)+len(lspBuiltins)+len(symbols))
	for name, kind := range symbols {
		kinds[name] = kind
	}
	for _, builtin := range lspBuiltins {
		kinds[builtin] = "builtin"
	}
	for _, keyword := range keywords {
		kinds[keyword] = "keyword"
	}

	labels := make([]string, 0, len(kinds))
	for label := range kinds {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	items := make([]map[string]any, 0, len(labels))
	for _, label := range labels {
		detail := kinds[label]
		items = append(items, map[string]any{
			"label":  label,
			"kind":   completionKind(detail),
			"detail": detail,
		})
	}
	return items
}

func completionKind(detail string) int {
	switch {
	case detail == "keyword":
		return 14
	case detail == "builtin", detail == "function":
		return 3
	case detail == "class":
		return 7
	case strings.HasPrefix(detail, "method"):
		return 2
	default:
		return 6
	}
}

func classifyWord(word string, symbols map[string]string) string {
	for _, keyword := range lox.Keywords() {
		if keyword == word {
			return "keyword"
		}
	}
	for _, builtin := range lspBuiltins {
		if builtin == word {
			return "builtin"
		}
	}
	if kind, ok := symbols[word]; ok {
		return kind
	}
	return "symbol"
}

// wordAtPosition returns the identifier under an LSP position, whose
// character offset counts UTF-16 code units.
func wordAtPosition(source string, line, character int) string {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	units := utf16.Encode([]rune(strings.TrimRight(lines[line], "\r")))
	if len(units) == 0 {
		return ""
	}
	character = min(max(character, 0), len(units))

	cursor := character
	if cursor == len(units) {
		cursor--
	}
	if !isWordUnit(units[cursor]) {
		if cursor > 0 && isWordUnit(units[cursor-1]) {
			cursor--
		} else {
			return ""
		}
	}

	start := cursor
	for start > 0 && isWordUnit(units[start-1]) {
		start--
	}
	end := cursor
	for end < len(units) && isWordUnit(units[end]) {
		end++
	}
	return string(utf16.Decode(units[start:end]))
}

func isWordUnit(u uint16) bool {
	return u == '_' || u >= 'a' && u <= 'z' || u >= 'A' && u <= 'Z' || u >= '0' && u <= '9'
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
