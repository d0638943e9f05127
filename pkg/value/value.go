// Package value implements the JVM's runtime value model: the tagged
// union of primitive and reference values bytecode operates on, object
// and array instances, and their identity semantics.
package value

import (
	"fmt"
	"sync/atomic"
)

// Type tags the computational category a Value belongs to (JVMS §2.11.1).
// Long and Double values occupy two local-variable/operand-stack slots;
// every other category occupies one.
type Type int

const (
	TypeInt Type = iota
	TypeLong
	TypeFloat
	TypeDouble
	TypeRef
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Slots reports how many stack/local slots a value of this type occupies.
func (t Type) Slots() int {
	if t == TypeLong || t == TypeDouble {
		return 2
	}
	return 1
}

// Value is a tagged variant covering every JVM computational type: the
// four primitive categories corevm tracks with distinct width, plus
// object/array/null/class-mirror references. Only the field matching
// Type is meaningful; the others are zero.
type Value struct {
	Type   Type
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Ref    interface{} // *JObject, *JArray, string (a java.lang.String), a host value kept in a synthetic field, or nil for Java null
}

func IntValue(v int32) Value       { return Value{Type: TypeInt, Int: v} }
func LongValue(v int64) Value      { return Value{Type: TypeLong, Long: v} }
func FloatValue(v float32) Value   { return Value{Type: TypeFloat, Float: v} }
func DoubleValue(v float64) Value  { return Value{Type: TypeDouble, Double: v} }
func RefValue(ref interface{}) Value { return Value{Type: TypeRef, Ref: ref} }
func NullValue() Value             { return Value{Type: TypeRef, Ref: nil} }

// BoolValue represents a Java boolean, which the JVM treats as an int
// (0 or 1) at the bytecode level (JVMS §2.3.4).
func BoolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

// IsNull reports whether this is a reference-typed null.
func (v Value) IsNull() bool {
	return v.Type == TypeRef && v.Ref == nil
}

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("int(%d)", v.Int)
	case TypeLong:
		return fmt.Sprintf("long(%d)", v.Long)
	case TypeFloat:
		return fmt.Sprintf("float(%g)", v.Float)
	case TypeDouble:
		return fmt.Sprintf("double(%g)", v.Double)
	case TypeRef:
		if v.Ref == nil {
			return "null"
		}
		return fmt.Sprintf("ref(%v)", v.Ref)
	default:
		return "invalid"
	}
}

var nextIdentity uint64

// allocIdentity hands out a monotonically increasing identity hash for
// new objects and arrays. Using atomic.AddUint64 rather than a plain
// counter keeps this safe if a future threading model starts allocating
// from more than one goroutine (spec's concurrency model reserves that
// hook without requiring it today).
func allocIdentity() uint64 {
	return atomic.AddUint64(&nextIdentity, 1)
}
