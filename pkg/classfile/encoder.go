package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Encode serializes a ClassFile back to the .class binary format from
// the parsed model. Field and method attributes are written from their
// raw AttributeInfo; of the class-level attributes, Parse keeps only
// BootstrapMethods and SourceFile, so those are the only ones written
// here, and a class file carrying any other class-level attribute does
// not come back byte-for-byte.
func Encode(cf *ClassFile) ([]byte, error) {
	var buf bytes.Buffer

	write := func(v interface{}) error { return binary.Write(&buf, binary.BigEndian, v) }

	if err := write(uint32(classMagic)); err != nil {
		return nil, err
	}
	if err := write(cf.MinorVersion); err != nil {
		return nil, err
	}
	if err := write(cf.MajorVersion); err != nil {
		return nil, err
	}

	if err := write(uint16(len(cf.ConstantPool))); err != nil {
		return nil, err
	}
	if err := encodeConstantPool(&buf, cf.ConstantPool); err != nil {
		return nil, fmt.Errorf("encoding constant pool: %w", err)
	}

	if err := write(cf.AccessFlags); err != nil {
		return nil, err
	}
	if err := write(cf.ThisClass); err != nil {
		return nil, err
	}
	if err := write(cf.SuperClass); err != nil {
		return nil, err
	}

	if err := write(uint16(len(cf.Interfaces))); err != nil {
		return nil, err
	}
	for _, iface := range cf.Interfaces {
		if err := write(iface); err != nil {
			return nil, err
		}
	}

	if err := write(uint16(len(cf.Fields))); err != nil {
		return nil, err
	}
	for _, f := range cf.Fields {
		if err := encodeMember(&buf, f.AccessFlags, f.Name, f.Descriptor, f.Attributes, cf); err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", f.Name, err)
		}
	}

	if err := write(uint16(len(cf.Methods))); err != nil {
		return nil, err
	}
	for _, m := range cf.Methods {
		if err := encodeMember(&buf, m.AccessFlags, m.Name, m.Descriptor, m.Attributes, cf); err != nil {
			return nil, fmt.Errorf("encoding method %s: %w", m.Name, err)
		}
	}

	// Class attributes are re-derived rather than replayed from raw
	// AttributeInfo, since BootstrapMethods/SourceFile were promoted to
	// typed fields during parsing.
	classAttrs := encodeClassAttributes(cf)
	if err := write(uint16(len(classAttrs))); err != nil {
		return nil, err
	}
	for _, a := range classAttrs {
		if err := writeAttribute(&buf, a, cf); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func encodeMember(buf *bytes.Buffer, access uint16, name, desc string, attrs []AttributeInfo, cf *ClassFile) error {
	nameIdx, err := internUtf8Index(cf, name)
	if err != nil {
		return err
	}
	descIdx, err := internUtf8Index(cf, desc)
	if err != nil {
		return err
	}
	for _, w := range []interface{}{access, nameIdx, descIdx, uint16(len(attrs))} {
		if err := binary.Write(buf, binary.BigEndian, w); err != nil {
			return err
		}
	}
	for _, a := range attrs {
		if err := writeAttribute(buf, a, cf); err != nil {
			return err
		}
	}
	return nil
}

func writeAttribute(buf *bytes.Buffer, a AttributeInfo, cf *ClassFile) error {
	nameIdx, err := internUtf8Index(cf, a.Name)
	if err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, nameIdx); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(a.Data))); err != nil {
		return err
	}
	_, err = buf.Write(a.Data)
	return err
}

// internUtf8Index finds the constant pool index of a Utf8 entry with the
// given value. The codec never introduces new constant pool entries
// during encoding (the pool is fixed at parse time); a missing entry is
// a programmer error in the caller.
func internUtf8Index(cf *ClassFile, s string) (uint16, error) {
	for i, e := range cf.ConstantPool {
		if u, ok := e.(*ConstantUtf8); ok && u.Value == s {
			return uint16(i), nil
		}
	}
	return 0, fmt.Errorf("no Utf8 constant pool entry for %q", s)
}

func encodeClassAttributes(cf *ClassFile) []AttributeInfo {
	var attrs []AttributeInfo
	if len(cf.BootstrapMethods) > 0 {
		var data bytes.Buffer
		binary.Write(&data, binary.BigEndian, uint16(len(cf.BootstrapMethods)))
		for _, bm := range cf.BootstrapMethods {
			binary.Write(&data, binary.BigEndian, bm.MethodRef)
			binary.Write(&data, binary.BigEndian, uint16(len(bm.BootstrapArguments)))
			for _, arg := range bm.BootstrapArguments {
				binary.Write(&data, binary.BigEndian, arg)
			}
		}
		attrs = append(attrs, AttributeInfo{Name: "BootstrapMethods", Data: data.Bytes()})
	}
	if cf.SourceFile != "" {
		if idx, err := internUtf8Index(cf, cf.SourceFile); err == nil {
			var data bytes.Buffer
			binary.Write(&data, binary.BigEndian, idx)
			attrs = append(attrs, AttributeInfo{Name: "SourceFile", Data: data.Bytes()})
		}
	}
	return attrs
}

func encodeConstantPool(buf *bytes.Buffer, pool []ConstantPoolEntry) error {
	for i := 1; i < len(pool); i++ {
		entry := pool[i]
		if entry == nil {
			continue // second slot of a prior Long/Double entry
		}
		if err := buf.WriteByte(entry.Tag()); err != nil {
			return err
		}
		switch e := entry.(type) {
		case *ConstantUtf8:
			raw := []byte(e.Value)
			if err := binary.Write(buf, binary.BigEndian, uint16(len(raw))); err != nil {
				return err
			}
			if _, err := buf.Write(raw); err != nil {
				return err
			}
		case *ConstantInteger:
			if err := binary.Write(buf, binary.BigEndian, e.Value); err != nil {
				return err
			}
		case *ConstantFloat:
			if err := binary.Write(buf, binary.BigEndian, math.Float32bits(e.Value)); err != nil {
				return err
			}
		case *ConstantLong:
			if err := binary.Write(buf, binary.BigEndian, e.Value); err != nil {
				return err
			}
		case *ConstantDouble:
			if err := binary.Write(buf, binary.BigEndian, math.Float64bits(e.Value)); err != nil {
				return err
			}
		case *ConstantClass:
			if err := binary.Write(buf, binary.BigEndian, e.NameIndex); err != nil {
				return err
			}
		case *ConstantString:
			if err := binary.Write(buf, binary.BigEndian, e.StringIndex); err != nil {
				return err
			}
		case *ConstantFieldref:
			if err := writePair(buf, e.ClassIndex, e.NameAndTypeIndex); err != nil {
				return err
			}
		case *ConstantMethodref:
			if err := writePair(buf, e.ClassIndex, e.NameAndTypeIndex); err != nil {
				return err
			}
		case *ConstantInterfaceMethodref:
			if err := writePair(buf, e.ClassIndex, e.NameAndTypeIndex); err != nil {
				return err
			}
		case *ConstantNameAndType:
			if err := writePair(buf, e.NameIndex, e.DescriptorIndex); err != nil {
				return err
			}
		case *ConstantMethodHandle:
			if err := buf.WriteByte(e.ReferenceKind); err != nil {
				return err
			}
			if err := binary.Write(buf, binary.BigEndian, e.ReferenceIndex); err != nil {
				return err
			}
		case *ConstantMethodType:
			if err := binary.Write(buf, binary.BigEndian, e.DescriptorIndex); err != nil {
				return err
			}
		case *ConstantDynamic:
			if err := writePair(buf, e.BootstrapMethodAttrIndex, e.NameAndTypeIndex); err != nil {
				return err
			}
		case *ConstantInvokeDynamic:
			if err := writePair(buf, e.BootstrapMethodAttrIndex, e.NameAndTypeIndex); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported constant pool entry type at index %d", i)
		}
	}
	return nil
}

func writePair(buf *bytes.Buffer, a, b uint16) error {
	if err := binary.Write(buf, binary.BigEndian, a); err != nil {
		return err
	}
	return binary.Write(buf, binary.BigEndian, b)
}
