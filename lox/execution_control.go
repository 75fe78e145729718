package lox

type controlKind int

const (
	controlNormal controlKind = iota
	controlBreak
	controlReturn
)

// control is how a statement finished. Break and return travel outward
// through the enclosing statement executors until a loop or a call consumes
// them.
type control struct {
	kind  controlKind
	value Value
}

var normal = control{kind: controlNormal}

func (interp *Interpreter) execIf(s *IfStmt, env *Env) (control, error) {
	cond, err := interp.evaluate(s.Condition, env)
	if err != nil {
		return normal, err
	}
	if cond.Truthy() {
		return interp.execute(s.Then, env)
	}
	if s.Else != nil {
		return interp.execute(s.Else, env)
	}
	return normal, nil
}

func (interp *Interpreter) execWhile(s *WhileStmt, env *Env) (control, error) {
	for {
		cond, err := interp.evaluate(s.Condition, env)
		if err != nil {
			return normal, err
		}
		if !cond.Truthy() {
			return normal, nil
		}
		result, err := interp.execute(s.Body, env)
		if err != nil {
			return normal, err
		}
		switch result.kind {
		case controlBreak:
			return normal, nil
		case controlReturn:
			return result, nil
		}
		if err := interp.step(); err != nil {
			return normal, err
		}
	}
}

func (interp *Interpreter) execReturn(s *ReturnStmt, env *Env) (control, error) {
	val := NewNil()
	if s.Value != nil {
		var err error
		if val, err = interp.evaluate(s.Value, env); err != nil {
			return normal, err
		}
	}
	return control{kind: controlReturn, value: val}, nil
}
