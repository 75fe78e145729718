package lox

func (p *parser) statement() (Stmt, error) {
	switch {
	case p.match(TokenFor):
		return p.forStatement()
	case p.match(TokenIf):
		return p.ifStatement()
	case p.match(TokenPrint):
		return p.printStatement()
	case p.match(TokenReturn):
		return p.returnStatement()
	case p.match(TokenWhile):
		return p.whileStatement()
	case p.match(TokenBreak):
		return p.breakStatement()
	case p.match(TokenLeftBrace):
		line := p.previous().Line
		stmts, err := p.blockStatements()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Statements: stmts, line: line}, nil
	default:
		return p.expressionStatement()
	}
}

// blockStatements parses declarations after '{' up to and including '}'.
func (p *parser) blockStatements() ([]Stmt, error) {
	stmts := []Stmt{}
	for !p.check(TokenRightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(TokenRightBrace, "Expected '}' after block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
//
// so the loop variable lives in a block scope around the while loop.
func (p *parser) forStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var initializer Stmt
	var err error
	switch {
	case p.match(TokenSemicolon):
	case p.match(TokenVar):
		initializer, err = p.varDeclaration()
	default:
		initializer, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var condition Expr
	if !p.check(TokenSemicolon) {
		if condition, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "Expected ';' after loop condition"); err != nil {
		return nil, err
	}

	var increment Expr
	if !p.check(TokenRightParen) {
		if increment, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenRightParen, "Expected ')' after for clauses"); err != nil {
		return nil, err
	}

	body, err := p.inLoop(p.statement)
	if err != nil {
		return nil, err
	}

	if increment != nil {
		body = &BlockStmt{Statements: []Stmt{body, &ExprStmt{Expr: increment}}, line: body.Line()}
	}
	if condition == nil {
		condition = &LiteralExpr{Value: NewBool(true), line: keyword.Line}
	}

	loop := &WhileStmt{Keyword: keyword, Condition: condition, Body: body}
	outer := &BlockStmt{line: keyword.Line}
	if initializer != nil {
		outer.Statements = append(outer.Statements, initializer)
	}
	outer.Statements = append(outer.Statements, loop)
	return outer, nil
}

func (p *parser) ifStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expected '(' after 'if'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenRightParen, "Expected ')' after if condition"); err != nil {
		return nil, err
	}

	thenBranch, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch Stmt
	if p.match(TokenElse) {
		if elseBranch, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return &IfStmt{Keyword: keyword, Condition: condition, Then: thenBranch, Else: elseBranch}, nil
}

func (p *parser) printStatement() (Stmt, error) {
	keyword := p.previous()
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenSemicolon, "Expected ';' after value"); err != nil {
		return nil, err
	}
	return &PrintStmt{Keyword: keyword, Expr: value}, nil
}

func (p *parser) returnStatement() (Stmt, error) {
	keyword := p.previous()
	var value Expr
	if !p.check(TokenSemicolon) {
		var err error
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "Expected ';' after return value"); err != nil {
		return nil, err
	}
	return &ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *parser) whileStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expected '(' after 'while'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenRightParen, "Expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.inLoop(p.statement)
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Keyword: keyword, Condition: condition, Body: body}, nil
}

func (p *parser) breakStatement() (Stmt, error) {
	keyword := p.previous()
	if p.loopDepth == 0 {
		p.report(keyword, "Cannot use 'break' outside of a loop")
	}
	if _, err := p.consume(TokenSemicolon, "Expected ';' after 'break'"); err != nil {
		return nil, err
	}
	return &BreakStmt{Keyword: keyword}, nil
}

func (p *parser) expressionStatement() (Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenSemicolon, "Expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}
