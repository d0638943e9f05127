package value

import "fmt"

// fieldKey qualifies an instance field by its declaring class, so two
// classes in a hierarchy can each declare a field of the same name
// without one shadowing the other's storage (spec's field-shadowing
// invariant, JVMS §5.4.3.2's "fields are not polymorphic" rule).
type fieldKey struct {
	Class string
	Name  string
}

// JObject represents a JVM object instance: a class pointer plus the
// per-declaring-class field storage that field shadowing requires.
type JObject struct {
	id     uint64
	Class  *Class
	fields map[fieldKey]Value

	// Closure backs a lambda or method-reference instance produced by an
	// invokedynamic call site bound through LambdaMetafactory: its
	// functional-interface method dispatches here instead of through
	// Class's (empty, abstract-only) method table.
	Closure *Closure
}

// Closure is the captured-call body of one lambda/method-reference
// object. MethodName is the functional interface's single abstract
// method name (e.g. "get" for Supplier, "apply" for Function);
// Invoke receives only the SAM call's own arguments, captured values
// having already been bound when the closure was created.
type Closure struct {
	MethodName string
	Invoke     func(args []Value) (Value, error)
}

// NewObject allocates a zero-initialized instance of class c. Every
// declared field (in c and its superclasses) is pre-seeded with its
// type's default value (JVMS §2.3/§2.4 default value rules), so field
// reads before the constructor runs see 0/0.0/false/null rather than a
// missing-key lookup.
func NewObject(c *Class) *JObject {
	obj := &JObject{id: allocIdentity(), Class: c, fields: make(map[fieldKey]Value)}
	for cur := c; cur != nil; cur = cur.Super {
		if cur.File == nil {
			continue
		}
		for _, f := range cur.File.Fields {
			if f.IsStatic() {
				continue
			}
			obj.fields[fieldKey{Class: cur.Name, Name: f.Name}] = DefaultForDescriptor(f.Descriptor)
		}
	}
	return obj
}

// GetField reads a field declared by declaringClass.
func (o *JObject) GetField(declaringClass, name string) (Value, bool) {
	v, ok := o.fields[fieldKey{Class: declaringClass, Name: name}]
	return v, ok
}

// SetField writes a field declared by declaringClass.
func (o *JObject) SetField(declaringClass, name string, v Value) {
	o.fields[fieldKey{Class: declaringClass, Name: name}] = v
}

// Identity returns the monotonic allocation-order identity used for
// System.identityHashCode and default Object.hashCode/toString.
func (o *JObject) Identity() uint64 { return o.id }

func (o *JObject) String() string {
	name := "?"
	if o.Class != nil {
		name = o.Class.Name
	}
	return fmt.Sprintf("%s@%x", name, o.id)
}

// DefaultForDescriptor returns the JVMS default value for a field
// descriptor: numeric zero, false, or null, matching the category the
// descriptor's leading character encodes.
func DefaultForDescriptor(descriptor string) Value {
	if descriptor == "" {
		return NullValue()
	}
	switch descriptor[0] {
	case 'B', 'C', 'S', 'Z', 'I':
		return IntValue(0)
	case 'J':
		return LongValue(0)
	case 'F':
		return FloatValue(0)
	case 'D':
		return DoubleValue(0)
	default: // 'L' object, '[' array
		return NullValue()
	}
}
