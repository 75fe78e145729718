package lox

import (
	"strconv"
	"strings"
)

const indentUnit = "  "

// Format renders statements back to Lox source in a canonical layout. The
// output parses to the same tree. Comments are not part of the tree and are
// not reproduced.
func Format(stmts []Stmt) string {
	p := &sourcePrinter{}
	for _, stmt := range stmts {
		p.stmt(stmt)
	}
	return p.b.String()
}

// FormatExpr renders a single expression as Lox source.
func FormatExpr(expr Expr) string {
	p := &sourcePrinter{}
	p.expr(expr)
	return p.b.String()
}

type sourcePrinter struct {
	b     strings.Builder
	depth int
}

func (p *sourcePrinter) line(parts ...string) {
	p.b.WriteString(strings.Repeat(indentUnit, p.depth))
	for _, part := range parts {
		p.b.WriteString(part)
	}
	p.b.WriteByte('\n')
}

func (p *sourcePrinter) exprString(expr Expr) string {
	sub := &sourcePrinter{depth: p.depth}
	sub.expr(expr)
	return sub.b.String()
}

func (p *sourcePrinter) stmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *ExprStmt:
		p.line(p.exprString(s.Expr), ";")
	case *PrintStmt:
		p.line("print ", p.exprString(s.Expr), ";")
	case *VarStmt:
		if s.Initializer == nil {
			p.line("var ", s.Name.Lexeme, ";")
			return
		}
		p.line("var ", s.Name.Lexeme, " = ", p.exprString(s.Initializer), ";")
	case *BlockStmt:
		p.line("{")
		p.body(s.Statements)
		p.line("}")
	case *IfStmt:
		braced := p.clause("if ("+p.exprString(s.Condition)+")", s.Then)
		if s.Else != nil {
			header := "else"
			if braced {
				header = "} else"
			}
			braced = p.clause(header, s.Else)
		}
		if braced {
			p.line("}")
		}
	case *WhileStmt:
		if p.clause("while ("+p.exprString(s.Condition)+")", s.Body) {
			p.line("}")
		}
	case *BreakStmt:
		p.line("break;")
	case *ReturnStmt:
		if s.Value == nil {
			p.line("return;")
			return
		}
		p.line("return ", p.exprString(s.Value), ";")
	case *FunctionStmt:
		p.function("fun ", s)
	case *ClassStmt:
		header := "class " + s.Name.Lexeme
		if s.Superclass != nil {
			header += " < " + s.Superclass.Name.Lexeme
		}
		p.line(header, " {")
		p.depth++
		for _, method := range s.ClassMethods {
			p.function("class ", method)
		}
		for _, method := range s.Methods {
			p.function("", method)
		}
		p.depth--
		p.line("}")
	}
}

// clause prints the header of an if, else or while with its body. A block
// body opens on the header line and the caller writes the closing brace,
// which lets "} else {" share a line.
func (p *sourcePrinter) clause(header string, body Stmt) bool {
	if block, ok := body.(*BlockStmt); ok {
		p.line(header, " {")
		p.body(block.Statements)
		return true
	}
	p.line(header)
	p.depth++
	p.stmt(body)
	p.depth--
	return false
}

func (p *sourcePrinter) body(stmts []Stmt) {
	p.depth++
	for _, stmt := range stmts {
		p.stmt(stmt)
	}
	p.depth--
}

func (p *sourcePrinter) function(prefix string, fn *FunctionStmt) {
	header := prefix + fn.Name.Lexeme
	if !fn.IsGetter() {
		header += "(" + joinParams(fn.Params) + ")"
	}
	p.line(header, " {")
	p.body(fn.Body)
	p.line("}")
}

func joinParams(params []Token) string {
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Lexeme
	}
	return strings.Join(names, ", ")
}

func (p *sourcePrinter) expr(expr Expr) {
	switch e := expr.(type) {
	case *LiteralExpr:
		p.b.WriteString(literalSource(e.Value))
	case *GroupingExpr:
		p.b.WriteByte('(')
		p.expr(e.Inner)
		p.b.WriteByte(')')
	case *UnaryExpr:
		p.b.WriteString(e.Operator.Lexeme)
		p.expr(e.Right)
	case *BinaryExpr:
		p.infix(e.Left, e.Operator.Lexeme, e.Right)
	case *LogicalExpr:
		p.infix(e.Left, e.Operator.Lexeme, e.Right)
	case *VariableExpr:
		p.b.WriteString(e.Name.Lexeme)
	case *AssignExpr:
		p.b.WriteString(e.Name.Lexeme)
		p.b.WriteString(" = ")
		p.expr(e.Value)
	case *CallExpr:
		p.expr(e.Callee)
		p.b.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				p.b.WriteString(", ")
			}
			p.expr(arg)
		}
		p.b.WriteByte(')')
	case *GetExpr:
		p.expr(e.Object)
		p.b.WriteByte('.')
		p.b.WriteString(e.Name.Lexeme)
	case *SetExpr:
		p.expr(e.Object)
		p.b.WriteByte('.')
		p.b.WriteString(e.Name.Lexeme)
		p.b.WriteString(" = ")
		p.expr(e.Value)
	case *ThisExpr:
		p.b.WriteString("this")
	case *SuperExpr:
		p.b.WriteString("super.")
		p.b.WriteString(e.Method.Lexeme)
	case *LambdaExpr:
		p.b.WriteString("fun (")
		p.b.WriteString(joinParams(e.Params))
		p.b.WriteString(") {\n")
		inner := &sourcePrinter{depth: p.depth}
		inner.body(e.Body)
		p.b.WriteString(inner.b.String())
		p.b.WriteString(strings.Repeat(indentUnit, p.depth))
		p.b.WriteByte('}')
	}
}

func (p *sourcePrinter) infix(left Expr, op string, right Expr) {
	p.expr(left)
	p.b.WriteByte(' ')
	p.b.WriteString(op)
	p.b.WriteByte(' ')
	p.expr(right)
}

// literalSource renders a literal so the scanner reads back the same value.
func literalSource(v Value) string {
	switch v.Kind() {
	case KindString:
		return `"` + v.Str() + `"`
	case KindNumber:
		return strconv.FormatFloat(v.Number(), 'f', -1, 64)
	default:
		return v.String()
	}
}
