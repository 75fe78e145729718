// Package lox implements a tree-walking interpreter for Lox, a small dynamically
// typed scripting language with closures, classes, single inheritance, getters
// and class methods.
//
// Source text flows through four stages:
//
//	tokens, diags := lox.Scan(source)
//	stmts, diags := lox.Parse(tokens)
//	locals, diags := lox.Resolve(stmts)
//	err := interp.Interpret(ctx, stmts, locals)
//
// Engine wires the stages together and Session keeps one interpreter alive
// across REPL lines.
package lox
