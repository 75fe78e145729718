package lox

import "fmt"

func (interp *Interpreter) execute(stmt Stmt, env *Env) (control, error) {
	if err := interp.step(); err != nil {
		return normal, err
	}

	switch s := stmt.(type) {
	case *ExprStmt:
		_, err := interp.evaluate(s.Expr, env)
		return normal, err
	case *PrintStmt:
		val, err := interp.evaluate(s.Expr, env)
		if err != nil {
			return normal, err
		}
		return normal, interp.println(val.String())
	case *VarStmt:
		return normal, interp.execVar(s, env)
	case *BlockStmt:
		return interp.executeBlock(s.Statements, newEnv(env))
	case *IfStmt:
		return interp.execIf(s, env)
	case *WhileStmt:
		return interp.execWhile(s, env)
	case *BreakStmt:
		return control{kind: controlBreak}, nil
	case *ReturnStmt:
		return interp.execReturn(s, env)
	case *FunctionStmt:
		env.Define(s.Name.Lexeme, NewFunction(newFunction(s, env, false)))
		return normal, nil
	case *ClassStmt:
		return normal, interp.execClass(s, env)
	default:
		return normal, fmt.Errorf("lox: unsupported statement %T", stmt)
	}
}

// executeBlock runs stmts in env and stops early on break or return, handing
// the signal to the caller.
func (interp *Interpreter) executeBlock(stmts []Stmt, env *Env) (control, error) {
	for _, stmt := range stmts {
		result, err := interp.execute(stmt, env)
		if err != nil {
			return normal, err
		}
		if result.kind != controlNormal {
			return result, nil
		}
	}
	return normal, nil
}

func (interp *Interpreter) execVar(s *VarStmt, env *Env) error {
	if s.Initializer == nil {
		env.Declare(s.Name.Lexeme)
		return nil
	}
	val, err := interp.evaluate(s.Initializer, env)
	if err != nil {
		return err
	}
	env.Define(s.Name.Lexeme, val)
	return nil
}

func (interp *Interpreter) evaluate(expr Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value, nil
	case *GroupingExpr:
		return interp.evaluate(e.Inner, env)
	case *UnaryExpr:
		return interp.evalUnary(e, env)
	case *BinaryExpr:
		return interp.evalBinary(e, env)
	case *LogicalExpr:
		return interp.evalLogical(e, env)
	case *VariableExpr:
		return interp.lookUpVariable(e.Name, e, env)
	case *AssignExpr:
		return interp.evalAssign(e, env)
	case *CallExpr:
		return interp.evalCall(e, env)
	case *GetExpr:
		return interp.evalGet(e, env)
	case *SetExpr:
		return interp.evalSet(e, env)
	case *ThisExpr:
		return interp.lookUpVariable(e.Keyword, e, env)
	case *SuperExpr:
		return interp.evalSuper(e, env)
	case *LambdaExpr:
		return NewFunction(newLambda(e, env)), nil
	default:
		return NewNil(), fmt.Errorf("lox: unsupported expression %T", expr)
	}
}

// lookUpVariable reads a resolved local at its recorded distance, or falls
// back to the globals.
func (interp *Interpreter) lookUpVariable(name Token, expr Expr, env *Env) (Value, error) {
	if distance, ok := interp.locals[expr]; ok {
		return env.GetAt(distance, name)
	}
	return interp.globals.Get(name)
}

func (interp *Interpreter) evalAssign(e *AssignExpr, env *Env) (Value, error) {
	val, err := interp.evaluate(e.Value, env)
	if err != nil {
		return NewNil(), err
	}
	if distance, ok := interp.locals[e]; ok {
		env.AssignAt(distance, e.Name, val)
		return val, nil
	}
	if err := interp.globals.Assign(e.Name, val); err != nil {
		return NewNil(), err
	}
	return val, nil
}
