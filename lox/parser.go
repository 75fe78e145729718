package lox

import "errors"

// maxArity bounds the number of parameters and call arguments.
const maxArity = 255

// errParse unwinds the parser to the nearest declaration after a diagnostic
// has been recorded.
var errParse = errors.New("parse error")

type parser struct {
	tokens  []Token
	current int

	// loopDepth counts the loops enclosing the current position inside the
	// current function body.
	loopDepth int

	diags Diagnostics
}

// Parse builds statements from a token stream produced by Scan. On a syntax
// error it records a diagnostic, skips to the next statement boundary and
// keeps going, so one call reports every syntax error in the input.
func Parse(tokens []Token) ([]Stmt, Diagnostics) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(append([]Token(nil), tokens...), Token{Type: TokenEOF, Line: line})
	}
	p := &parser{tokens: tokens}

	stmts := []Stmt{}
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

func (p *parser) atEnd() bool {
	return p.peek().Type == TokenEOF
}

func (p *parser) peek() Token {
	return p.tokens[p.current]
}

func (p *parser) peekNext() Token {
	if p.current+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.current+1]
}

func (p *parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) check(tt TokenType) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == tt
}

func (p *parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(tt TokenType, message string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.fail(p.peek(), message)
}

// synchronize discards tokens until a statement boundary: just past a ';' or
// in front of a keyword that begins a declaration or statement.
func (p *parser) synchronize() {
	for !p.atEnd() {
		switch p.peek().Type {
		case TokenSemicolon:
			p.advance()
			return
		case TokenClass, TokenFun, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		p.advance()
	}
}

// inFunctionBody runs parse with the loop counter cleared so a break inside a
// nested function never targets a loop outside it.
func (p *parser) inFunctionBody(parse func() ([]Stmt, error)) ([]Stmt, error) {
	enclosing := p.loopDepth
	p.loopDepth = 0
	defer func() {
		p.loopDepth = enclosing
	}()
	return parse()
}

func (p *parser) inLoop(parse func() (Stmt, error)) (Stmt, error) {
	p.loopDepth++
	defer func() {
		p.loopDepth--
	}()
	return parse()
}
