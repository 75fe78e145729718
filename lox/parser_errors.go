package lox

// report records a diagnostic without unwinding; parsing of the current
// statement continues.
func (p *parser) report(tok Token, message string) {
	p.diags = append(p.diags, tokenDiagnostic(ParseDiagnostic, tok, message))
}

// fail records a diagnostic and returns errParse so the caller unwinds to
// declaration and synchronizes.
func (p *parser) fail(tok Token, message string) error {
	p.report(tok, message)
	return errParse
}
