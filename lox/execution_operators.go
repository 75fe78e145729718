package lox

import "strings"

const maxRepeatBytes = 1 << 30

func (interp *Interpreter) evalUnary(e *UnaryExpr, env *Env) (Value, error) {
	right, err := interp.evaluate(e.Right, env)
	if err != nil {
		return NewNil(), err
	}
	switch e.Operator.Type {
	case TokenBang:
		return NewBool(!right.Truthy()), nil
	case TokenMinus:
		if right.Kind() != KindNumber {
			return NewNil(), newRuntimeError(e.Operator, "Operand must be a number")
		}
		return NewNumber(-right.Number()), nil
	case TokenPlus:
		if right.Kind() != KindNumber {
			return NewNil(), newRuntimeError(e.Operator, "Operand must be a number")
		}
		return right, nil
	default:
		return NewNil(), newRuntimeError(e.Operator, "Unsupported unary operator '%s'", e.Operator.Lexeme)
	}
}

func (interp *Interpreter) evalLogical(e *LogicalExpr, env *Env) (Value, error) {
	left, err := interp.evaluate(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	if e.Operator.Type == TokenOr {
		if left.Truthy() {
			return left, nil
		}
	} else if !left.Truthy() {
		return left, nil
	}
	return interp.evaluate(e.Right, env)
}

func (interp *Interpreter) evalBinary(e *BinaryExpr, env *Env) (Value, error) {
	left, err := interp.evaluate(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	right, err := interp.evaluate(e.Right, env)
	if err != nil {
		return NewNil(), err
	}

	op := e.Operator
	switch op.Type {
	case TokenEqualEqual:
		return NewBool(left.Equal(right)), nil
	case TokenBangEqual:
		return NewBool(!left.Equal(right)), nil
	case TokenPlus:
		return addValues(op, left, right)
	case TokenStar:
		return multiplyValues(op, left, right)
	}

	l, r, err := numberOperands(op, left, right)
	if err != nil {
		return NewNil(), err
	}
	switch op.Type {
	case TokenMinus:
		return NewNumber(l - r), nil
	case TokenSlash:
		if r == 0 {
			return NewNil(), newRuntimeError(op, "Division by zero")
		}
		return NewNumber(l / r), nil
	case TokenGreater:
		return NewBool(l > r), nil
	case TokenGreaterEqual:
		return NewBool(l >= r), nil
	case TokenLess:
		return NewBool(l < r), nil
	case TokenLessEqual:
		return NewBool(l <= r), nil
	default:
		return NewNil(), newRuntimeError(op, "Unsupported binary operator '%s'", op.Lexeme)
	}
}

func numberOperands(op Token, left, right Value) (float64, float64, error) {
	if left.Kind() != KindNumber {
		return 0, 0, newRuntimeError(op, "Left operand must be a number")
	}
	if right.Kind() != KindNumber {
		return 0, 0, newRuntimeError(op, "Right operand must be a number")
	}
	return left.Number(), right.Number(), nil
}

// addValues adds two numbers, or concatenates when either side is a string,
// converting the other side to its display form.
func addValues(op Token, left, right Value) (Value, error) {
	switch {
	case left.Kind() == KindNumber && right.Kind() == KindNumber:
		return NewNumber(left.Number() + right.Number()), nil
	case left.Kind() == KindString || right.Kind() == KindString:
		return NewString(left.String() + right.String()), nil
	default:
		return NewNil(), newRuntimeError(op, "Operands must be two numbers or include a string")
	}
}

// multiplyValues multiplies numbers. A string on the left and an integral
// count on the right repeats the string; a negative count or an empty string
// yields "".
func multiplyValues(op Token, left, right Value) (Value, error) {
	if left.Kind() == KindString && right.Kind() == KindNumber {
		count := right.Number()
		if !isIntegral(count) {
			return NewNil(), newRuntimeError(op, "Can't multiply by a floating-point number")
		}
		if count <= 0 || left.Str() == "" {
			return NewString(""), nil
		}
		if count*float64(len(left.Str())) > maxRepeatBytes {
			return NewNil(), newRuntimeError(op, "String repetition too large")
		}
		return NewString(strings.Repeat(left.Str(), int(count))), nil
	}
	l, r, err := numberOperands(op, left, right)
	if err != nil {
		return NewNil(), err
	}
	return NewNumber(l * r), nil
}
