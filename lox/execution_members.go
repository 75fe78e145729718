package lox

func (interp *Interpreter) evalGet(e *GetExpr, env *Env) (Value, error) {
	object, err := interp.evaluate(e.Object, env)
	if err != nil {
		return NewNil(), err
	}
	switch object.Kind() {
	case KindInstance:
		return object.Instance().Get(interp, object, e.Name)
	case KindClass:
		return object.Class().Get(interp, e.Name)
	default:
		return NewNil(), newRuntimeError(e.Name, "Only instances have properties")
	}
}

func (interp *Interpreter) evalSet(e *SetExpr, env *Env) (Value, error) {
	object, err := interp.evaluate(e.Object, env)
	if err != nil {
		return NewNil(), err
	}
	if object.Kind() != KindInstance {
		return NewNil(), newRuntimeError(e.Name, "Only instances have fields")
	}
	val, err := interp.evaluate(e.Value, env)
	if err != nil {
		return NewNil(), err
	}
	object.Instance().Set(e.Name, val)
	return val, nil
}

// evalSuper looks the method up starting at the superclass captured when the
// class was declared, and binds it to the current receiver, which lives one
// scope inside the "super" scope.
func (interp *Interpreter) evalSuper(e *SuperExpr, env *Env) (Value, error) {
	distance, ok := interp.locals[e]
	if !ok {
		return NewNil(), newRuntimeError(e.Keyword, "Cannot use 'super' outside of a class")
	}
	superclass := env.lookup(distance, "super").Class()
	receiver := env.lookup(distance-1, "this")
	if superclass == nil {
		return NewNil(), newRuntimeError(e.Keyword, "Superclass must be a class")
	}

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return NewNil(), newRuntimeError(e.Method, "Undefined property '%s'", e.Method.Lexeme)
	}
	return interp.bindMember(method.Bind(receiver), e.Method)
}

func (interp *Interpreter) execClass(s *ClassStmt, env *Env) error {
	env.Declare(s.Name.Lexeme)

	var superclass *Class
	if s.Superclass != nil {
		val, err := interp.evaluate(s.Superclass, env)
		if err != nil {
			return err
		}
		if val.Kind() != KindClass {
			return newRuntimeError(s.Superclass.Name, "Superclass must be a class")
		}
		superclass = val.Class()
	}

	methodEnv := env
	if superclass != nil {
		methodEnv = newEnv(env)
		methodEnv.Define("super", NewClass(superclass))
	}

	class := &Class{
		Name:         s.Name.Lexeme,
		Superclass:   superclass,
		Methods:      make(map[string]*Function, len(s.Methods)),
		ClassMethods: make(map[string]*Function, len(s.ClassMethods)),
	}
	for _, decl := range s.Methods {
		class.Methods[decl.Name.Lexeme] = newFunction(decl, methodEnv, decl.Name.Lexeme == "init")
	}
	for _, decl := range s.ClassMethods {
		class.ClassMethods[decl.Name.Lexeme] = newFunction(decl, methodEnv, false)
	}

	env.Define(s.Name.Lexeme, NewClass(class))
	return nil
}
