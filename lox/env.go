package lox

// slot holds one variable. A declared variable without an initializer has
// ready == false until it is first assigned.
type slot struct {
	value Value
	ready bool
}

// Env is one scope in the chain of environments. Children point at their
// parent; closures keep an Env alive after its block has finished.
type Env struct {
	parent *Env
	values map[string]*slot
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: make(map[string]*slot)}
}

// Define binds name in this scope, replacing any previous binding.
func (e *Env) Define(name string, val Value) {
	e.values[name] = &slot{value: val, ready: true}
}

// Declare binds name in this scope without a value; reading it before an
// assignment is an error.
func (e *Env) Declare(name string) {
	e.values[name] = &slot{}
}

// Get looks name up through the chain.
func (e *Env) Get(name Token) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.values[name.Lexeme]; ok {
			return s.read(name)
		}
	}
	return NewNil(), newRuntimeError(name, "Undefined variable '%s'", name.Lexeme)
}

// Assign updates an existing binding found through the chain.
func (e *Env) Assign(name Token, val Value) error {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.values[name.Lexeme]; ok {
			s.value, s.ready = val, true
			return nil
		}
	}
	return newRuntimeError(name, "Undefined variable '%s'", name.Lexeme)
}

// GetAt reads name from the scope exactly distance parents up.
func (e *Env) GetAt(distance int, name Token) (Value, error) {
	if s, ok := e.ancestor(distance).values[name.Lexeme]; ok {
		return s.read(name)
	}
	return NewNil(), newRuntimeError(name, "Undefined variable '%s'", name.Lexeme)
}

// AssignAt writes name in the scope exactly distance parents up.
func (e *Env) AssignAt(distance int, name Token, val Value) {
	env := e.ancestor(distance)
	if s, ok := env.values[name.Lexeme]; ok {
		s.value, s.ready = val, true
		return
	}
	env.Define(name.Lexeme, val)
}

// lookup reads an internal binding such as "this" or "super" that the
// resolver guarantees to exist.
func (e *Env) lookup(distance int, name string) Value {
	if s, ok := e.ancestor(distance).values[name]; ok {
		return s.value
	}
	return NewNil()
}

// ancestor walks exactly distance scopes up. The resolver never produces a
// distance deeper than the scope chain.
func (e *Env) ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}

// Names returns the names bound directly in this scope.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	return names
}

// Lookup returns the initialized value bound to name in this scope only.
func (e *Env) Lookup(name string) (Value, bool) {
	s, ok := e.values[name]
	if !ok || !s.ready {
		return NewNil(), false
	}
	return s.value, true
}

func (s *slot) read(name Token) (Value, error) {
	if !s.ready {
		return NewNil(), newRuntimeError(name, "Variable '%s' is not initialised", name.Lexeme)
	}
	return s.value, nil
}
