package lox

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNative:
		return "native"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// String renders the value the way print displays it.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Number())
	case KindString:
		return v.Str()
	case KindNative:
		return fmt.Sprintf("<native fn %s>", v.Native().Name)
	case KindFunction:
		return v.Function().String()
	case KindClass:
		return v.Class().String()
	case KindInstance:
		return v.Instance().String()
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

// formatNumber drops the fractional part of integral numbers so 3.0 prints as 3.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	return strings.Replace(s, "e+", "e", 1)
}

// Truthy follows Lox rules: only nil and false are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool()
	default:
		return true
	}
}

// Equal is Lox value equality. Values of different kinds are never equal;
// callables and instances compare by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool() == other.Bool()
	case KindNumber:
		return v.Number() == other.Number()
	case KindString:
		return v.Str() == other.Str()
	default:
		return v.data == other.data
	}
}

// isIntegral reports whether a number has no fractional part.
func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}
