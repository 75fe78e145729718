package lox

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

type lexer struct {
	input string

	start   int
	current int
	line    int

	tokens   []Token
	diags    Diagnostics
	comments int
}

// HasComments reports whether source contains a line or block comment.
func HasComments(source string) bool {
	l := &lexer{input: source, line: 1}
	for !l.atEnd() {
		l.start = l.current
		l.scanToken()
	}
	return l.comments > 0
}

// Scan converts source text into tokens. It never fails: malformed input is
// reported as a diagnostic and scanning resumes after the offending text. The
// returned slice always ends with a single EOF token.
func Scan(source string) ([]Token, Diagnostics) {
	l := &lexer{input: source, line: 1}
	for !l.atEnd() {
		l.start = l.current
		l.scanToken()
	}
	l.tokens = append(l.tokens, Token{Type: TokenEOF, Line: l.line})
	return l.tokens, l.diags
}

func (l *lexer) atEnd() bool {
	return l.current >= len(l.input)
}

func (l *lexer) advance() byte {
	ch := l.input[l.current]
	l.current++
	return ch
}

func (l *lexer) match(expected byte) bool {
	if l.atEnd() || l.input[l.current] != expected {
		return false
	}
	l.current++
	return true
}

func (l *lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.input[l.current]
}

func (l *lexer) peekNext() byte {
	if l.current+1 >= len(l.input) {
		return 0
	}
	return l.input[l.current+1]
}

func (l *lexer) scanToken() {
	ch := l.advance()
	switch ch {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case ',':
		l.addToken(TokenComma)
	case '.':
		l.addToken(TokenDot)
	case '-':
		l.addToken(TokenMinus)
	case '+':
		l.addToken(TokenPlus)
	case ';':
		l.addToken(TokenSemicolon)
	case '*':
		l.addToken(TokenStar)
	case '!':
		l.addToken(l.pick('=', TokenBangEqual, TokenBang))
	case '=':
		l.addToken(l.pick('=', TokenEqualEqual, TokenEqual))
	case '>':
		l.addToken(l.pick('=', TokenGreaterEqual, TokenGreater))
	case '<':
		l.addToken(l.pick('=', TokenLessEqual, TokenLess))
	case '/':
		switch {
		case l.match('/'):
			l.comments++
			for l.peek() != '\n' && !l.atEnd() {
				l.advance()
			}
		case l.match('*'):
			l.comments++
			l.skipBlockComment()
		default:
			l.addToken(TokenSlash)
		}
	case ' ', '\r', '\t':
	case '\n':
		l.line++
	case '"':
		l.readString()
	default:
		switch {
		case isDigit(ch):
			l.readNumber()
		case isIdentifierStart(ch):
			l.readIdentifier()
		default:
			l.unexpected(ch)
		}
	}
}

func (l *lexer) pick(next byte, double, single TokenType) TokenType {
	if l.match(next) {
		return double
	}
	return single
}

func (l *lexer) addToken(tt TokenType) {
	l.addLiteral(tt, NewNil())
}

func (l *lexer) addLiteral(tt TokenType, literal Value) {
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  l.input[l.start:l.current],
		Literal: literal,
		Line:    l.line,
	})
}

func (l *lexer) errorAt(line int, format string, args ...any) {
	l.diags = append(l.diags, Diagnostic{Kind: ScanDiagnostic, Line: line, Message: fmt.Sprintf(format, args...)})
}

// skipBlockComment consumes a non-nesting /* */ comment. An unterminated
// comment is reported at the line it started on.
func (l *lexer) skipBlockComment() {
	startLine := l.line
	for !l.atEnd() && !(l.peek() == '*' && l.peekNext() == '/') {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.atEnd() {
		l.errorAt(startLine, "Unterminated comment")
		return
	}
	l.advance()
	l.advance()
}

func (l *lexer) readString() {
	startLine := l.line
	for l.peek() != '"' && !l.atEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.atEnd() {
		l.errorAt(startLine, "Unterminated string")
		return
	}
	l.advance()
	l.addLiteral(TokenString, NewString(l.input[l.start+1:l.current-1]))
}

func (l *lexer) readNumber() {
	for isDigit(l.peek()) {
		l.advance()
	}
	// A trailing '.' without a digit after it belongs to the next token.
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	value, err := strconv.ParseFloat(l.input[l.start:l.current], 64)
	if err != nil {
		l.errorAt(l.line, "Invalid number literal '%s'", l.input[l.start:l.current])
		return
	}
	l.addLiteral(TokenNumber, NewNumber(value))
}

func (l *lexer) readIdentifier() {
	for isIdentifierRune(l.peek()) {
		l.advance()
	}
	tt, ok := keywords[l.input[l.start:l.current]]
	if !ok {
		tt = TokenIdentifier
	}
	l.addToken(tt)
}

func (l *lexer) unexpected(ch byte) {
	if ch >= utf8.RuneSelf {
		// Skip the whole multi-byte sequence so it is reported once.
		r, width := utf8.DecodeRuneInString(l.input[l.start:])
		l.current = l.start + width
		l.errorAt(l.line, "Unexpected character '%c'", r)
		return
	}
	l.errorAt(l.line, "Unexpected character '%c'", ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentifierStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

func isIdentifierRune(ch byte) bool {
	return isIdentifierStart(ch) || isDigit(ch)
}
