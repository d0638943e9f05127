package value

import "testing"

func TestValueConstructors(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		typ  Type
	}{
		{"int", IntValue(42), TypeInt},
		{"long", LongValue(1 << 40), TypeLong},
		{"float", FloatValue(1.5), TypeFloat},
		{"double", DoubleValue(2.5), TypeDouble},
		{"ref", RefValue("x"), TypeRef},
		{"null", NullValue(), TypeRef},
	}
	for _, c := range cases {
		if c.v.Type != c.typ {
			t.Errorf("%s: Type = %v, want %v", c.name, c.v.Type, c.typ)
		}
	}
}

func TestBoolValue(t *testing.T) {
	if BoolValue(true) != IntValue(1) {
		t.Errorf("BoolValue(true) = %v, want int(1)", BoolValue(true))
	}
	if BoolValue(false) != IntValue(0) {
		t.Errorf("BoolValue(false) = %v, want int(0)", BoolValue(false))
	}
}

func TestIsNull(t *testing.T) {
	if !NullValue().IsNull() {
		t.Error("NullValue().IsNull() = false, want true")
	}
	if RefValue("x").IsNull() {
		t.Error("RefValue(\"x\").IsNull() = true, want false")
	}
	if IntValue(0).IsNull() {
		t.Error("IntValue(0).IsNull() = true, want false")
	}
}

func TestTypeSlots(t *testing.T) {
	cases := map[Type]int{
		TypeInt:    1,
		TypeFloat:  1,
		TypeRef:    1,
		TypeLong:   2,
		TypeDouble: 2,
	}
	for typ, want := range cases {
		if got := typ.Slots(); got != want {
			t.Errorf("%v.Slots() = %d, want %d", typ, got, want)
		}
	}
}

func TestAllocIdentityMonotonic(t *testing.T) {
	a := allocIdentity()
	b := allocIdentity()
	if b <= a {
		t.Errorf("allocIdentity() not monotonic: a=%d b=%d", a, b)
	}
}
