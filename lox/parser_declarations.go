package lox

func (p *parser) declaration() Stmt {
	start := p.current
	stmt, err := p.parseDeclaration()
	if err != nil {
		p.synchronize()
		if p.current == start {
			// The failing token starts a declaration we cannot parse; drop it
			// so the loop makes progress.
			p.advance()
		}
		return nil
	}
	return stmt
}

func (p *parser) parseDeclaration() (Stmt, error) {
	switch {
	case p.match(TokenClass):
		return p.classDeclaration()
	case p.check(TokenFun) && p.peekNext().Type == TokenIdentifier:
		p.advance()
		return p.function("function")
	case p.match(TokenVar):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *parser) classDeclaration() (Stmt, error) {
	name, err := p.consume(TokenIdentifier, "Expected class name")
	if err != nil {
		return nil, err
	}

	var superclass *VariableExpr
	if p.match(TokenLess) {
		superName, err := p.consume(TokenIdentifier, "Expected superclass name")
		if err != nil {
			return nil, err
		}
		superclass = &VariableExpr{Name: superName}
	}

	if _, err := p.consume(TokenLeftBrace, "Expected '{' before class body"); err != nil {
		return nil, err
	}

	stmt := &ClassStmt{Name: name, Superclass: superclass}
	for !p.check(TokenRightBrace) && !p.atEnd() {
		if p.match(TokenClass) {
			method, err := p.function("class method")
			if err != nil {
				return nil, err
			}
			stmt.ClassMethods = append(stmt.ClassMethods, method)
			continue
		}
		method, err := p.function("method")
		if err != nil {
			return nil, err
		}
		stmt.Methods = append(stmt.Methods, method)
	}

	if _, err := p.consume(TokenRightBrace, "Expected '}' after class body"); err != nil {
		return nil, err
	}
	return stmt, nil
}

// function parses a named function, method or class method after its
// introducing keyword. Methods declared without a parameter list are getters.
func (p *parser) function(kind string) (*FunctionStmt, error) {
	name, err := p.consume(TokenIdentifier, "Expected "+kind+" name")
	if err != nil {
		return nil, err
	}

	fn := &FunctionStmt{Name: name}
	if kind != "function" && p.check(TokenLeftBrace) {
		fn.Kind = FunctionGetter
	} else {
		if _, err := p.consume(TokenLeftParen, "Expected '(' after "+kind+" name"); err != nil {
			return nil, err
		}
		if fn.Params, err = p.parameters(); err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(TokenLeftBrace, "Expected '{' before "+kind+" body"); err != nil {
		return nil, err
	}
	if fn.Body, err = p.inFunctionBody(p.blockStatements); err != nil {
		return nil, err
	}
	return fn, nil
}

// parameters parses a parameter list after '(' up to and including ')'.
func (p *parser) parameters() ([]Token, error) {
	params := []Token{}
	if !p.check(TokenRightParen) {
		for {
			if len(params) >= maxArity {
				p.report(p.peek(), "Cannot have more than 255 parameters")
			}
			param, err := p.consume(TokenIdentifier, "Expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.consume(TokenRightParen, "Expected ')' after parameters"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) varDeclaration() (Stmt, error) {
	name, err := p.consume(TokenIdentifier, "Expected variable name")
	if err != nil {
		return nil, err
	}

	var initializer Expr
	if p.match(TokenEqual) {
		if initializer, err = p.expression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(TokenSemicolon, "Expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &VarStmt{Name: name, Initializer: initializer}, nil
}
