package lox

import (
	"strconv"
	"strings"
)

// Dump renders statements in a parenthesized prefix form, one top-level
// statement per line, e.g. (print (+ 1 (group 2))).
func Dump(stmts []Stmt) string {
	var b strings.Builder
	for _, stmt := range stmts {
		b.WriteString(DumpStmt(stmt))
		b.WriteByte('\n')
	}
	return b.String()
}

// DumpStmt renders one statement in the parenthesized form.
func DumpStmt(stmt Stmt) string {
	switch s := stmt.(type) {
	case *ExprStmt:
		return parenthesize(";", DumpExpr(s.Expr))
	case *PrintStmt:
		return parenthesize("print", DumpExpr(s.Expr))
	case *VarStmt:
		if s.Initializer == nil {
			return parenthesize("var", s.Name.Lexeme)
		}
		return parenthesize("var", s.Name.Lexeme, DumpExpr(s.Initializer))
	case *BlockStmt:
		return parenthesize("block", dumpStmts(s.Statements)...)
	case *IfStmt:
		if s.Else == nil {
			return parenthesize("if", DumpExpr(s.Condition), DumpStmt(s.Then))
		}
		return parenthesize("if", DumpExpr(s.Condition), DumpStmt(s.Then), DumpStmt(s.Else))
	case *WhileStmt:
		return parenthesize("while", DumpExpr(s.Condition), DumpStmt(s.Body))
	case *BreakStmt:
		return "(break)"
	case *ReturnStmt:
		if s.Value == nil {
			return "(return)"
		}
		return parenthesize("return", DumpExpr(s.Value))
	case *FunctionStmt:
		return dumpFunction("fun", s)
	case *ClassStmt:
		parts := []string{s.Name.Lexeme}
		if s.Superclass != nil {
			parts = append(parts, "<", s.Superclass.Name.Lexeme)
		}
		for _, method := range s.ClassMethods {
			parts = append(parts, dumpFunction("class-fun", method))
		}
		for _, method := range s.Methods {
			parts = append(parts, dumpFunction("fun", method))
		}
		return parenthesize("class", parts...)
	default:
		return "(?)"
	}
}

// DumpExpr renders one expression in the parenthesized form.
func DumpExpr(expr Expr) string {
	switch e := expr.(type) {
	case *LiteralExpr:
		if e.Value.Kind() == KindString {
			return strconv.Quote(e.Value.Str())
		}
		return e.Value.String()
	case *GroupingExpr:
		return parenthesize("group", DumpExpr(e.Inner))
	case *UnaryExpr:
		return parenthesize(e.Operator.Lexeme, DumpExpr(e.Right))
	case *BinaryExpr:
		return parenthesize(e.Operator.Lexeme, DumpExpr(e.Left), DumpExpr(e.Right))
	case *LogicalExpr:
		return parenthesize(e.Operator.Lexeme, DumpExpr(e.Left), DumpExpr(e.Right))
	case *VariableExpr:
		return e.Name.Lexeme
	case *AssignExpr:
		return parenthesize("=", e.Name.Lexeme, DumpExpr(e.Value))
	case *CallExpr:
		parts := []string{DumpExpr(e.Callee)}
		for _, arg := range e.Args {
			parts = append(parts, DumpExpr(arg))
		}
		return parenthesize("call", parts...)
	case *GetExpr:
		return parenthesize(".", DumpExpr(e.Object), e.Name.Lexeme)
	case *SetExpr:
		return parenthesize("=", parenthesize(".", DumpExpr(e.Object), e.Name.Lexeme), DumpExpr(e.Value))
	case *ThisExpr:
		return "this"
	case *SuperExpr:
		return parenthesize("super", e.Method.Lexeme)
	case *LambdaExpr:
		parts := append([]string{"(" + strings.Join(tokenLexemes(e.Params), " ") + ")"}, dumpStmts(e.Body)...)
		return parenthesize("lambda", parts...)
	default:
		return "(?)"
	}
}

func dumpFunction(head string, fn *FunctionStmt) string {
	parts := []string{fn.Name.Lexeme}
	if fn.IsGetter() {
		head += "-get"
	} else {
		parts = append(parts, "("+strings.Join(tokenLexemes(fn.Params), " ")+")")
	}
	parts = append(parts, dumpStmts(fn.Body)...)
	return parenthesize(head, parts...)
}

func dumpStmts(stmts []Stmt) []string {
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = DumpStmt(stmt)
	}
	return parts
}

func tokenLexemes(tokens []Token) []string {
	lexemes := make([]string, len(tokens))
	for i, tok := range tokens {
		lexemes[i] = tok.Lexeme
	}
	return lexemes
}

func parenthesize(head string, parts ...string) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(head)
	for _, part := range parts {
		b.WriteByte(' ')
		b.WriteString(part)
	}
	b.WriteByte(')')
	return b.String()
}
