package interpreter

import (
	"math"
	"strconv"
)

type ValueKind int

const (
	ValNil ValueKind = iota
	ValNumber
	ValString
	ValBool
	ValFunction
)

func (k ValueKind) String() string {
	switch k {
	case ValNil:
		return "nil"
	case ValNumber:
		return "number"
	case ValString:
		return "string"
	case ValBool:
		return "boolean"
	case ValFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Value is copied freely. A function value shares its Callable, so copies
// of it see the same closure.
type Value struct {
	Kind   ValueKind
	Number float64
	Str    string
	Bool   bool
	Fn     Callable
}

func NilValue() Value                { return Value{Kind: ValNil} }
func NumberValue(n float64) Value    { return Value{Kind: ValNumber, Number: n} }
func StringValue(s string) Value     { return Value{Kind: ValString, Str: s} }
func BoolValue(b bool) Value         { return Value{Kind: ValBool, Bool: b} }
func FunctionValue(c Callable) Value { return Value{Kind: ValFunction, Fn: c} }

// literalValue converts an ast.Literal payload.
func literalValue(v any) Value {
	switch x := v.(type) {
	case float64:
		return NumberValue(x)
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	default:
		return NilValue()
	}
}

func (v Value) ToString() string {
	switch v.Kind {
	case ValNumber:
		return formatNumber(v.Number)
	case ValString:
		return v.Str
	case ValBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValFunction:
		if v.Fn == nil {
			return "<fn>"
		}
		return v.Fn.String()
	default:
		return "nil"
	}
}

func (v Value) String() string { return v.ToString() }

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Equals is structural for primitives and by identity for functions.
func (v Value) Equals(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValNil:
		return true
	case ValNumber:
		return v.Number == o.Number
	case ValString:
		return v.Str == o.Str
	case ValBool:
		return v.Bool == o.Bool
	case ValFunction:
		return v.Fn == o.Fn
	default:
		return false
	}
}

// Truthy: only nil and false are falsy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValNil:
		return false
	case ValBool:
		return v.Bool
	default:
		return true
	}
}
