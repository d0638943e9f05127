package classfile

import (
	"bytes"
	"reflect"
	"testing"
)

// minimalClass builds a small but structurally complete class file in
// memory: a single public class extending java/lang/Object with one
// static int-returning method, enough to exercise the encoder/parser
// round trip without needing a real javac-produced .class fixture.
func minimalClass() *ClassFile {
	pool := []ConstantPoolEntry{
		nil, // index 0 is unused
		&ConstantUtf8{Value: "Answer"},             // 1
		&ConstantClass{NameIndex: 1},                // 2 -> this_class
		&ConstantUtf8{Value: "java/lang/Object"},    // 3
		&ConstantClass{NameIndex: 3},                // 4 -> super_class
		&ConstantUtf8{Value: "compute"},             // 5
		&ConstantUtf8{Value: "()I"},                 // 6
		&ConstantUtf8{Value: "Code"},                // 7
	}
	code := []byte{0x10, 42, 0xAC} // bipush 42; ireturn
	return &ClassFile{
		MinorVersion: 0,
		MajorVersion: 61,
		ConstantPool: pool,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    2,
		SuperClass:   4,
		Methods: []MethodInfo{
			{
				AccessFlags: AccPublic | AccStatic,
				Name:        "compute",
				Descriptor:  "()I",
				Attributes: []AttributeInfo{
					{Name: "Code", Data: encodeCodeAttrBody(code)},
				},
				Code: &CodeAttribute{MaxStack: 1, MaxLocals: 0, Code: code},
			},
		},
	}
}

// encodeCodeAttrBody hand-assembles a Code attribute's body (the part
// after the name index + length word) for the no-exception-handlers,
// no-line-numbers case minimalClass needs.
func encodeCodeAttrBody(code []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x00) // max_stack hi
	buf.WriteByte(0x01) // max_stack lo
	buf.WriteByte(0x00) // max_locals hi
	buf.WriteByte(0x00) // max_locals lo
	buf.WriteByte(byte(len(code) >> 24))
	buf.WriteByte(byte(len(code) >> 16))
	buf.WriteByte(byte(len(code) >> 8))
	buf.WriteByte(byte(len(code)))
	buf.Write(code)
	buf.WriteByte(0x00) // exception_table_length hi
	buf.WriteByte(0x00) // exception_table_length lo
	buf.WriteByte(0x00) // attributes_count hi
	buf.WriteByte(0x00) // attributes_count lo
	return buf.Bytes()
}

func TestEncodeParseRoundTrip(t *testing.T) {
	cf := minimalClass()

	encoded, err := Encode(cf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	reparsed, err := Parse(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Parse(Encode(cf)): %v", err)
	}

	name, err := reparsed.ClassName()
	if err != nil || name != "Answer" {
		t.Errorf("ClassName() = %q, %v; want Answer, nil", name, err)
	}

	super, err := reparsed.SuperClassName()
	if err != nil || super != "java/lang/Object" {
		t.Errorf("SuperClassName() = %q, %v; want java/lang/Object, nil", super, err)
	}

	m := reparsed.FindMethod("compute", "()I")
	if m == nil {
		t.Fatal("compute()I not found after round trip")
	}
	if m.Code == nil || !reflect.DeepEqual(m.Code.Code, []byte{0x10, 42, 0xAC}) {
		t.Errorf("compute's Code = %+v, want bipush 42; ireturn", m.Code)
	}
}

func TestEncodeUnknownUtf8Fails(t *testing.T) {
	cf := &ClassFile{
		ConstantPool: []ConstantPoolEntry{nil},
		Methods: []MethodInfo{
			{Name: "missing", Descriptor: "()V"},
		},
	}
	if _, err := Encode(cf); err == nil {
		t.Error("Encode with a method name absent from the constant pool should fail")
	}
}
