package lox

type ExprStmt struct {
	Expr Expr
}

func (s *ExprStmt) stmtNode() {}
func (s *ExprStmt) Line() int { return s.Expr.Line() }

type PrintStmt struct {
	Keyword Token
	Expr    Expr
}

func (s *PrintStmt) stmtNode() {}
func (s *PrintStmt) Line() int { return s.Keyword.Line }

// VarStmt declares a variable. Initializer is nil for `var a;`.
type VarStmt struct {
	Name        Token
	Initializer Expr
}

func (s *VarStmt) stmtNode() {}
func (s *VarStmt) Line() int { return s.Name.Line }

type BlockStmt struct {
	Statements []Stmt
	line       int
}

func (s *BlockStmt) stmtNode() {}
func (s *BlockStmt) Line() int { return s.line }

type IfStmt struct {
	Keyword   Token
	Condition Expr
	Then      Stmt
	Else      Stmt
}

func (s *IfStmt) stmtNode() {}
func (s *IfStmt) Line() int { return s.Keyword.Line }

type WhileStmt struct {
	Keyword   Token
	Condition Expr
	Body      Stmt
}

func (s *WhileStmt) stmtNode() {}
func (s *WhileStmt) Line() int { return s.Keyword.Line }

type BreakStmt struct {
	Keyword Token
}

func (s *BreakStmt) stmtNode() {}
func (s *BreakStmt) Line() int { return s.Keyword.Line }

// FunctionKind separates ordinary functions and methods from getters, which
// are declared without a parameter list and run on property access.
type FunctionKind int

const (
	FunctionPlain FunctionKind = iota
	FunctionGetter
)

type FunctionStmt struct {
	Name   Token
	Params []Token
	Body   []Stmt
	Kind   FunctionKind
}

func (s *FunctionStmt) stmtNode() {}
func (s *FunctionStmt) Line() int { return s.Name.Line }

// IsGetter reports whether the declaration had no parameter list.
func (s *FunctionStmt) IsGetter() bool { return s.Kind == FunctionGetter }

type ReturnStmt struct {
	Keyword Token
	Value   Expr
}

func (s *ReturnStmt) stmtNode() {}
func (s *ReturnStmt) Line() int { return s.Keyword.Line }

type ClassStmt struct {
	Name         Token
	Superclass   *VariableExpr
	Methods      []*FunctionStmt
	ClassMethods []*FunctionStmt
}

func (s *ClassStmt) stmtNode() {}
func (s *ClassStmt) Line() int { return s.Name.Line }
