package lox

import (
	"context"
	"sort"
)

// Session evaluates a sequence of inputs against one set of globals, the way
// a REPL does. Expression statements print their value. Every input stays
// reachable for the life of the session, since closures from one input can be
// called from any later one; start a new session to release them.
type Session struct {
	engine *Engine
	interp *Interpreter
}

// Binding is a global name and its current value.
type Binding struct {
	Name  string
	Value Value
}

// NewSession starts a session with fresh globals.
func (e *Engine) NewSession() *Session {
	interp := e.NewInterpreter()
	interp.echo = true
	return &Session{engine: e, interp: interp}
}

// Eval runs one input. A static error leaves the globals untouched; a runtime
// error keeps whatever the input changed before it failed.
func (s *Session) Eval(ctx context.Context, source string) error {
	program, err := s.engine.Check(source)
	if err != nil {
		return err
	}
	return s.interp.Interpret(ctx, program.Statements, program.Locals)
}

// Globals lists the initialized global bindings sorted by name, skipping
// builtins the user has not replaced.
func (s *Session) Globals() []Binding {
	builtins := newEnv(nil)
	(&Interpreter{globals: builtins}).defineGlobals()

	env := s.interp.Globals()
	names := env.Names()
	sort.Strings(names)

	bindings := make([]Binding, 0, len(names))
	for _, name := range names {
		val, ok := env.Lookup(name)
		if !ok {
			continue
		}
		if builtin, isBuiltin := builtins.Lookup(name); isBuiltin && builtin.Kind() == val.Kind() && val.Kind() == KindNative {
			continue
		}
		bindings = append(bindings, Binding{Name: name, Value: val})
	}
	return bindings
}
