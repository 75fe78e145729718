package lox

// ValueKind identifies the runtime type of a Value.
type ValueKind int

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindNative
	KindFunction
	KindClass
	KindInstance
)

// Value is a Lox runtime value. The zero Value is nil.
type Value struct {
	kind ValueKind
	data any
}

// NativeFunc is the Go signature behind a builtin callable.
type NativeFunc func(interp *Interpreter, args []Value) (Value, error)

// Native is a builtin function implemented in Go.
type Native struct {
	Name   string
	Params int
	Fn     NativeFunc
}

// Callable is implemented by every value that can appear in call position.
type Callable interface {
	Arity() int
	Call(interp *Interpreter, args []Value) (Value, error)
}

func (n *Native) Arity() int { return n.Params }

func (n *Native) Call(interp *Interpreter, args []Value) (Value, error) {
	return n.Fn(interp, args)
}
