package lox

func (p *parser) expression() (Expr, error) {
	return p.assignment()
}

// assignment is right-associative. The left side is parsed as an ordinary
// expression and then rewritten: a variable becomes AssignExpr and a property
// access becomes SetExpr.
func (p *parser) assignment() (Expr, error) {
	expr, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenEqual) {
		return expr, nil
	}

	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}

	switch target := expr.(type) {
	case *VariableExpr:
		return &AssignExpr{Name: target.Name, Value: value}, nil
	case *GetExpr:
		return &SetExpr{Object: target.Object, Name: target.Name, Value: value}, nil
	default:
		p.report(equals, "Invalid assignment target")
		return expr, nil
	}
}

func (p *parser) or() (Expr, error) {
	return p.logical(p.and, TokenOr)
}

func (p *parser) and() (Expr, error) {
	return p.logical(p.equality, TokenAnd)
}

func (p *parser) equality() (Expr, error) {
	return p.binary(p.comparison, TokenBangEqual, TokenEqualEqual)
}

func (p *parser) comparison() (Expr, error) {
	return p.binary(p.term, TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual)
}

func (p *parser) term() (Expr, error) {
	return p.binary(p.factor, TokenMinus, TokenPlus)
}

func (p *parser) factor() (Expr, error) {
	return p.binary(p.unary, TokenSlash, TokenStar)
}

// binary parses a left-associative chain of operands joined by any of ops.
// The chain is folded in a loop so long expressions do not deepen the stack.
func (p *parser) binary(operand func() (Expr, error), ops ...TokenType) (Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

func (p *parser) logical(operand func() (Expr, error), op TokenType) (Expr, error) {
	expr, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(op) {
		operator := p.previous()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		expr = &LogicalExpr{Left: expr, Operator: operator, Right: right}
	}
	return expr, nil
}

func (p *parser) unary() (Expr, error) {
	if p.match(TokenBang, TokenMinus, TokenPlus) {
		operator := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Operator: operator, Right: right}, nil
	}
	return p.call()
}

func (p *parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(TokenLeftParen):
			if expr, err = p.finishCall(expr); err != nil {
				return nil, err
			}
		case p.match(TokenDot):
			name, err := p.consume(TokenIdentifier, "Expected property name after '.'")
			if err != nil {
				return nil, err
			}
			expr = &GetExpr{Object: expr, Name: name}
		default:
			return expr, nil
		}
	}
}

func (p *parser) finishCall(callee Expr) (Expr, error) {
	args := []Expr{}
	if !p.check(TokenRightParen) {
		for {
			if len(args) >= maxArity {
				p.report(p.peek(), "Cannot have more than 255 arguments")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	paren, err := p.consume(TokenRightParen, "Expected ')' after arguments")
	if err != nil {
		return nil, err
	}
	return &CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()
	switch {
	case p.match(TokenFalse):
		return &LiteralExpr{Value: NewBool(false), line: tok.Line}, nil
	case p.match(TokenTrue):
		return &LiteralExpr{Value: NewBool(true), line: tok.Line}, nil
	case p.match(TokenNil):
		return &LiteralExpr{Value: NewNil(), line: tok.Line}, nil
	case p.match(TokenNumber, TokenString):
		return &LiteralExpr{Value: tok.Literal, line: tok.Line}, nil
	case p.match(TokenSuper):
		if _, err := p.consume(TokenDot, "Expected '.' after 'super'"); err != nil {
			return nil, err
		}
		method, err := p.consume(TokenIdentifier, "Expected superclass method name")
		if err != nil {
			return nil, err
		}
		return &SuperExpr{Keyword: tok, Method: method}, nil
	case p.match(TokenThis):
		return &ThisExpr{Keyword: tok}, nil
	case p.match(TokenIdentifier):
		return &VariableExpr{Name: tok}, nil
	case p.match(TokenFun):
		return p.lambda()
	case p.match(TokenLeftParen):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRightParen, "Expected ')' after expression"); err != nil {
			return nil, err
		}
		return &GroupingExpr{Inner: inner, line: tok.Line}, nil
	default:
		return nil, p.fail(tok, "Expected expression")
	}
}

func (p *parser) lambda() (Expr, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expected '(' after 'fun'"); err != nil {
		return nil, err
	}
	params, err := p.parameters()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, "Expected '{' before lambda body"); err != nil {
		return nil, err
	}
	body, err := p.inFunctionBody(p.blockStatements)
	if err != nil {
		return nil, err
	}
	return &LambdaExpr{Keyword: keyword, Params: params, Body: body}, nil
}
