package lox

import "fmt"

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	TokenLeftParen  TokenType = "("
	TokenRightParen TokenType = ")"
	TokenLeftBrace  TokenType = "{"
	TokenRightBrace TokenType = "}"
	TokenComma      TokenType = ","
	TokenDot        TokenType = "."
	TokenMinus      TokenType = "-"
	TokenPlus       TokenType = "+"
	TokenSemicolon  TokenType = ";"
	TokenSlash      TokenType = "/"
	TokenStar       TokenType = "*"

	TokenBang         TokenType = "!"
	TokenBangEqual    TokenType = "!="
	TokenEqual        TokenType = "="
	TokenEqualEqual   TokenType = "=="
	TokenGreater      TokenType = ">"
	TokenGreaterEqual TokenType = ">="
	TokenLess         TokenType = "<"
	TokenLessEqual    TokenType = "<="

	TokenIdentifier TokenType = "IDENTIFIER"
	TokenString     TokenType = "STRING"
	TokenNumber     TokenType = "NUMBER"

	TokenAnd    TokenType = "AND"
	TokenBreak  TokenType = "BREAK"
	TokenClass  TokenType = "CLASS"
	TokenElse   TokenType = "ELSE"
	TokenFalse  TokenType = "FALSE"
	TokenFor    TokenType = "FOR"
	TokenFun    TokenType = "FUN"
	TokenIf     TokenType = "IF"
	TokenNil    TokenType = "NIL"
	TokenOr     TokenType = "OR"
	TokenPrint  TokenType = "PRINT"
	TokenReturn TokenType = "RETURN"
	TokenSuper  TokenType = "SUPER"
	TokenThis   TokenType = "THIS"
	TokenTrue   TokenType = "TRUE"
	TokenVar    TokenType = "VAR"
	TokenWhile  TokenType = "WHILE"

	TokenEOF TokenType = "EOF"
)

var keywords = map[string]TokenType{
	"and":    TokenAnd,
	"break":  TokenBreak,
	"class":  TokenClass,
	"else":   TokenElse,
	"false":  TokenFalse,
	"for":    TokenFor,
	"fun":    TokenFun,
	"if":     TokenIf,
	"nil":    TokenNil,
	"or":     TokenOr,
	"print":  TokenPrint,
	"return": TokenReturn,
	"super":  TokenSuper,
	"this":   TokenThis,
	"true":   TokenTrue,
	"var":    TokenVar,
	"while":  TokenWhile,
}

// Keywords returns the reserved words of the language in alphabetical order.
func Keywords() []string {
	return []string{
		"and", "break", "class", "else", "false", "for", "fun", "if", "nil",
		"or", "print", "return", "super", "this", "true", "var", "while",
	}
}

// Token captures lexical information for the parser. Literal is only set for
// NUMBER and STRING tokens.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal Value
	Line    int
}

func (t Token) String() string {
	switch t.Type {
	case TokenNumber, TokenString:
		return fmt.Sprintf("%s %s %s", t.Type, t.Lexeme, t.Literal.String())
	default:
		return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
	}
}
