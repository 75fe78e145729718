package lox

func (interp *Interpreter) evalCall(e *CallExpr, env *Env) (Value, error) {
	callee, err := interp.evaluate(e.Callee, env)
	if err != nil {
		return NewNil(), err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := interp.evaluate(argExpr, env)
		if err != nil {
			return NewNil(), err
		}
		args = append(args, arg)
	}

	callable, ok := callee.Callable()
	if !ok {
		return NewNil(), newRuntimeError(e.Paren, "Can only call functions and classes")
	}
	if len(args) != callable.Arity() {
		return NewNil(), newRuntimeError(e.Paren, "Expected %d arguments but got %d", callable.Arity(), len(args))
	}
	return interp.invoke(callable, args, e.Paren)
}

// invoke runs a call with a new frame on the call stack. at is the token the
// call is reported against.
func (interp *Interpreter) invoke(callable Callable, args []Value, at Token) (Value, error) {
	if interp.recursionLimit > 0 && interp.depth >= interp.recursionLimit {
		return NewNil(), newRuntimeError(at, "Stack overflow")
	}
	if err := interp.step(); err != nil {
		return NewNil(), err
	}

	interp.depth++
	defer func() {
		interp.depth--
	}()

	result, err := callable.Call(interp, args)
	if err != nil {
		unwindFrame(err, frameName(callable), at.Line)
		return NewNil(), err
	}
	return result, nil
}

// bindMember turns a looked-up method into the value of a property read.
// Getters run at once; other methods become first-class function values.
func (interp *Interpreter) bindMember(method *Function, name Token) (Value, error) {
	if method.IsGetter {
		return interp.invoke(method, nil, name)
	}
	return NewFunction(method), nil
}

func frameName(callable Callable) string {
	switch c := callable.(type) {
	case *Function:
		return c.Name
	case *Class:
		return c.Name
	case *Native:
		return c.Name
	default:
		return "<call>"
	}
}
