package lox

func NewNil() Value                  { return Value{kind: KindNil} }
func NewBool(b bool) Value           { return Value{kind: KindBool, data: b} }
func NewNumber(f float64) Value      { return Value{kind: KindNumber, data: f} }
func NewString(s string) Value       { return Value{kind: KindString, data: s} }
func NewFunction(fn *Function) Value { return Value{kind: KindFunction, data: fn} }
func NewClass(c *Class) Value        { return Value{kind: KindClass, data: c} }
func NewInstance(i *Instance) Value  { return Value{kind: KindInstance, data: i} }

// NewNative wraps a Go function as a callable Lox value.
func NewNative(name string, arity int, fn NativeFunc) Value {
	return Value{kind: KindNative, data: &Native{Name: name, Params: arity, Fn: fn}}
}
