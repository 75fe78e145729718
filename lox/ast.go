package lox

// Node is implemented by every expression and statement.
type Node interface {
	Line() int
}

// Stmt is a statement node. The set of implementations is closed.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node. The set of implementations is closed, and every
// implementation is a pointer so an Expr value identifies one occurrence in the
// tree.
type Expr interface {
	Node
	exprNode()
}

type LiteralExpr struct {
	Value Value
	line  int
}

func (e *LiteralExpr) exprNode() {}
func (e *LiteralExpr) Line() int { return e.line }

type GroupingExpr struct {
	Inner Expr
	line  int
}

func (e *GroupingExpr) exprNode() {}
func (e *GroupingExpr) Line() int { return e.line }

type UnaryExpr struct {
	Operator Token
	Right    Expr
}

func (e *UnaryExpr) exprNode() {}
func (e *UnaryExpr) Line() int { return e.Operator.Line }

type BinaryExpr struct {
	Left     Expr
	Operator Token
	Right    Expr
}

func (e *BinaryExpr) exprNode() {}
func (e *BinaryExpr) Line() int { return e.Operator.Line }

// LogicalExpr is an `and`/`or` expression; it short-circuits.
type LogicalExpr struct {
	Left     Expr
	Operator Token
	Right    Expr
}

func (e *LogicalExpr) exprNode() {}
func (e *LogicalExpr) Line() int { return e.Operator.Line }

type VariableExpr struct {
	Name Token
}

func (e *VariableExpr) exprNode() {}
func (e *VariableExpr) Line() int { return e.Name.Line }

type AssignExpr struct {
	Name  Token
	Value Expr
}

func (e *AssignExpr) exprNode() {}
func (e *AssignExpr) Line() int { return e.Name.Line }

type CallExpr struct {
	Callee Expr
	Paren  Token
	Args   []Expr
}

func (e *CallExpr) exprNode() {}
func (e *CallExpr) Line() int { return e.Paren.Line }

type GetExpr struct {
	Object Expr
	Name   Token
}

func (e *GetExpr) exprNode() {}
func (e *GetExpr) Line() int { return e.Name.Line }

type SetExpr struct {
	Object Expr
	Name   Token
	Value  Expr
}

func (e *SetExpr) exprNode() {}
func (e *SetExpr) Line() int { return e.Name.Line }

type ThisExpr struct {
	Keyword Token
}

func (e *ThisExpr) exprNode() {}
func (e *ThisExpr) Line() int { return e.Keyword.Line }

type SuperExpr struct {
	Keyword Token
	Method  Token
}

func (e *SuperExpr) exprNode() {}
func (e *SuperExpr) Line() int { return e.Keyword.Line }

// LambdaExpr is an anonymous function: fun (a, b) { ... }.
type LambdaExpr struct {
	Keyword Token
	Params  []Token
	Body    []Stmt
}

func (e *LambdaExpr) exprNode() {}
func (e *LambdaExpr) Line() int { return e.Keyword.Line }
