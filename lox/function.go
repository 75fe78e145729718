package lox

import "strings"

// Function is a user-defined function, method, getter or lambda together with
// the environment it closes over.
type Function struct {
	Name          string
	Params        []Token
	Body          []Stmt
	Closure       *Env
	IsInitializer bool
	IsGetter      bool
	IsLambda      bool
}

func newFunction(decl *FunctionStmt, closure *Env, isInitializer bool) *Function {
	return &Function{
		Name:          decl.Name.Lexeme,
		Params:        decl.Params,
		Body:          decl.Body,
		Closure:       closure,
		IsInitializer: isInitializer,
		IsGetter:      decl.IsGetter(),
	}
}

func newLambda(expr *LambdaExpr, closure *Env) *Function {
	return &Function{
		Name:     "anonymous",
		Params:   expr.Params,
		Body:     expr.Body,
		Closure:  closure,
		IsLambda: true,
	}
}

// Bind returns a copy of fn whose closure defines `this` as receiver.
func (fn *Function) Bind(receiver Value) *Function {
	env := newEnv(fn.Closure)
	env.Define("this", receiver)
	bound := *fn
	bound.Closure = env
	return &bound
}

func (fn *Function) Arity() int { return len(fn.Params) }

func (fn *Function) Call(interp *Interpreter, args []Value) (Value, error) {
	env := newEnv(fn.Closure)
	for i, param := range fn.Params {
		env.Define(param.Lexeme, args[i])
	}

	result, err := interp.executeBlock(fn.Body, env)
	if err != nil {
		return NewNil(), err
	}
	if fn.IsInitializer {
		return fn.Closure.lookup(0, "this"), nil
	}
	if result.kind == controlReturn {
		return result.value, nil
	}
	return NewNil(), nil
}

func (fn *Function) String() string {
	names := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		names[i] = param.Lexeme
	}
	var b strings.Builder
	b.WriteString("<")
	if fn.IsLambda {
		b.WriteString("anonymous fn")
	} else {
		b.WriteString("fn ")
		b.WriteString(fn.Name)
	}
	b.WriteString(" (")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(")>")
	return b.String()
}
