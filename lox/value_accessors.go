package lox

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() bool {
	b, _ := v.data.(bool)
	return b
}

func (v Value) Number() float64 {
	f, _ := v.data.(float64)
	return f
}

func (v Value) Str() string {
	s, _ := v.data.(string)
	return s
}

func (v Value) Function() *Function {
	fn, _ := v.data.(*Function)
	return fn
}

func (v Value) Native() *Native {
	n, _ := v.data.(*Native)
	return n
}

func (v Value) Class() *Class {
	c, _ := v.data.(*Class)
	return c
}

func (v Value) Instance() *Instance {
	i, _ := v.data.(*Instance)
	return i
}

// Callable returns the value as a Callable when it is a function, native or
// class.
func (v Value) Callable() (Callable, bool) {
	switch v.kind {
	case KindFunction:
		return v.Function(), true
	case KindNative:
		return v.Native(), true
	case KindClass:
		return v.Class(), true
	default:
		return nil, false
	}
}
