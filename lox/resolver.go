package lox

import "fmt"

// Locals maps each resolved local variable reference (VariableExpr,
// AssignExpr, ThisExpr, SuperExpr) to the number of scopes between the
// reference and its binding. References missing from the map are globals.
type Locals map[Expr]int

type functionKind int

const (
	functionNone functionKind = iota
	functionFunction
	functionMethod
	functionInitializer
	functionGetter
	functionClassMethod
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

type binding struct {
	name    Token
	defined bool
	used    bool
}

// scope remembers declaration order so unused variables are reported in
// source order.
type scope struct {
	order    []string
	bindings map[string]*binding
}

func newScope() *scope {
	return &scope{bindings: make(map[string]*binding)}
}

type resolver struct {
	scopes []*scope
	locals Locals

	function      functionKind
	class         classKind
	inClassMethod bool

	diags Diagnostics
}

// Resolve computes the scope distance of every local variable reference and
// reports static errors. It always walks the whole program.
func Resolve(stmts []Stmt) (Locals, Diagnostics) {
	r := &resolver{locals: make(Locals)}
	r.resolveStmts(stmts)
	return r.locals, r.diags
}

func (r *resolver) errorAt(tok Token, format string, args ...any) {
	r.diags = append(r.diags, tokenDiagnostic(ResolveDiagnostic, tok, fmt.Sprintf(format, args...)))
}

func (r *resolver) resolveStmts(stmts []Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case *ExprStmt:
		r.resolveExpr(s.Expr)
	case *PrintStmt:
		r.resolveExpr(s.Expr)
	case *VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()
	case *IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)
	case *BreakStmt:
	case *FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s.Params, s.Body, functionFunction)
	case *ReturnStmt:
		r.resolveReturn(s)
	case *ClassStmt:
		r.resolveClass(s)
	}
}

func (r *resolver) resolveReturn(s *ReturnStmt) {
	if r.function == functionNone {
		r.errorAt(s.Keyword, "Cannot return from top-level code")
	}
	if s.Value == nil {
		return
	}
	if r.function == functionInitializer {
		r.errorAt(s.Keyword, "Cannot return a value from an initializer")
	}
	r.resolveExpr(s.Value)
}

// resolveClass mirrors the environments built when the class runs: a scope
// holding "super" when there is a superclass, and inside it a scope holding
// "this" for instance methods. Class methods close over the "super" scope
// directly.
func (r *resolver) resolveClass(s *ClassStmt) {
	enclosingClass := r.class
	enclosingClassMethod := r.inClassMethod
	defer func() {
		r.class = enclosingClass
		r.inClassMethod = enclosingClassMethod
	}()
	r.class = classClass

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Superclass.Name, "A class cannot inherit from itself")
		}
		r.class = classSubclass
		r.resolveExpr(s.Superclass)

		r.beginScope()
		r.defineSynthetic("super")
		defer r.endScope()
	}

	r.inClassMethod = true
	for _, method := range s.ClassMethods {
		kind := functionClassMethod
		if method.IsGetter() {
			kind = functionGetter
		}
		r.resolveFunction(method.Params, method.Body, kind)
	}

	r.inClassMethod = false
	r.beginScope()
	r.defineSynthetic("this")
	for _, method := range s.Methods {
		kind := functionMethod
		switch {
		case method.Name.Lexeme == "init":
			kind = functionInitializer
		case method.IsGetter():
			kind = functionGetter
		}
		r.resolveFunction(method.Params, method.Body, kind)
	}
	r.endScope()
}

func (r *resolver) resolveFunction(params []Token, body []Stmt, kind functionKind) {
	enclosing := r.function
	r.function = kind
	defer func() {
		r.function = enclosing
	}()

	r.beginScope()
	for _, param := range params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(body)
	r.endScope()
}

func (r *resolver) resolveExpr(expr Expr) {
	switch e := expr.(type) {
	case *LiteralExpr:
	case *GroupingExpr:
		r.resolveExpr(e.Inner)
	case *UnaryExpr:
		r.resolveExpr(e.Right)
	case *BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *VariableExpr:
		if len(r.scopes) > 0 {
			if b, ok := r.scopes[len(r.scopes)-1].bindings[e.Name.Lexeme]; ok && !b.defined {
				r.errorAt(e.Name, "Cannot read local variable in its own initializer")
			}
		}
		r.resolveLocal(e, e.Name)
	case *AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *GetExpr:
		r.resolveExpr(e.Object)
	case *SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ThisExpr:
		switch {
		case r.class == classNone:
			r.errorAt(e.Keyword, "Cannot use 'this' outside of a class")
		case r.inClassMethod:
			r.errorAt(e.Keyword, "Cannot use 'this' in a class method")
		default:
			r.resolveLocal(e, e.Keyword)
		}
	case *SuperExpr:
		switch {
		case r.class == classNone:
			r.errorAt(e.Keyword, "Cannot use 'super' outside of a class")
		case r.inClassMethod:
			r.errorAt(e.Keyword, "Cannot use 'super' in a class method")
		case r.class != classSubclass:
			r.errorAt(e.Keyword, "Cannot use 'super' in a class with no superclass")
		default:
			r.resolveLocal(e, e.Keyword)
		}
	case *LambdaExpr:
		r.resolveFunction(e.Params, e.Body, functionFunction)
	}
}

// resolveLocal records the distance to the innermost scope declaring name and
// marks the binding used. Names found in no scope are left to the globals.
func (r *resolver) resolveLocal(expr Expr, name Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if b, ok := r.scopes[i].bindings[name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			b.used = true
			return
		}
	}
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, newScope())
}

func (r *resolver) endScope() {
	s := r.scopes[len(r.scopes)-1]
	r.scopes = r.scopes[:len(r.scopes)-1]
	for _, name := range s.order {
		if b := s.bindings[name]; !b.used {
			r.errorAt(b.name, "Variable '%s' is never used", name)
		}
	}
}

func (r *resolver) declare(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.scopes[len(r.scopes)-1]
	if _, ok := s.bindings[name.Lexeme]; ok {
		r.errorAt(name, "Already a variable with this name in this scope")
	} else {
		s.order = append(s.order, name.Lexeme)
	}
	s.bindings[name.Lexeme] = &binding{name: name}
}

func (r *resolver) define(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	if b, ok := r.scopes[len(r.scopes)-1].bindings[name.Lexeme]; ok {
		b.defined = true
	}
}

// defineSynthetic binds an implicit name such as "this" that is never
// reported as unused.
func (r *resolver) defineSynthetic(name string) {
	s := r.scopes[len(r.scopes)-1]
	s.order = append(s.order, name)
	s.bindings[name] = &binding{name: Token{Type: TokenIdentifier, Lexeme: name}, defined: true, used: true}
}
