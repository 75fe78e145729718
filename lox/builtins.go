package lox

import "time"

func (interp *Interpreter) defineGlobals() {
	interp.globals.Define("clock", NewNative("clock", 0, builtinClock))
}

// builtinClock returns wall-clock seconds as a number.
func builtinClock(interp *Interpreter, args []Value) (Value, error) {
	now := interp.Now()
	return NewNumber(float64(now.UnixNano()) / float64(time.Second)), nil
}
