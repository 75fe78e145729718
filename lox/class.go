package lox

import "fmt"

// Class is a runtime class. Methods are shared by every instance; class
// methods are looked up on the class value itself.
type Class struct {
	Name         string
	Superclass   *Class
	Methods      map[string]*Function
	ClassMethods map[string]*Function
}

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// FindMethod looks name up on the class and then its superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

// FindClassMethod looks a class method up the superclass chain.
func (c *Class) FindClassMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.ClassMethods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

// Arity is the initializer's arity, or zero without one.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call creates an instance and runs its initializer, if any.
func (c *Class) Call(interp *Interpreter, args []Value) (Value, error) {
	instance := NewInstance(&Instance{Class: c, Fields: make(map[string]Value)})
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(instance).Call(interp, args); err != nil {
			return NewNil(), err
		}
	}
	return instance, nil
}

// Get resolves a property read on the class value: a class method, or the
// result of a class getter. Class methods have no receiver.
func (c *Class) Get(interp *Interpreter, name Token) (Value, error) {
	method, ok := c.FindClassMethod(name.Lexeme)
	if !ok {
		return NewNil(), newRuntimeError(name, "Undefined property '%s'", name.Lexeme)
	}
	return interp.bindMember(method, name)
}

func (c *Class) String() string {
	return fmt.Sprintf("<class %s>", c.Name)
}

// Get reads a property: a field first, then a method bound to the instance.
// Getters run immediately and yield their result.
func (inst *Instance) Get(interp *Interpreter, self Value, name Token) (Value, error) {
	if val, ok := inst.Fields[name.Lexeme]; ok {
		return val, nil
	}
	method, ok := inst.Class.FindMethod(name.Lexeme)
	if !ok {
		return NewNil(), newRuntimeError(name, "Undefined property '%s'", name.Lexeme)
	}
	return interp.bindMember(method.Bind(self), name)
}

// Set writes a field, creating it when absent.
func (inst *Instance) Set(name Token, val Value) {
	inst.Fields[name.Lexeme] = val
}

func (inst *Instance) String() string {
	return inst.Class.String() + " instance"
}
