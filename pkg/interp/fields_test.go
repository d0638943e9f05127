package interp

import (
	"testing"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/value"
)

// addShadowedFieldClass registers a class declaring its own "name" field
// (descriptor Ljava/lang/String;), optionally extending superName, the
// way memLoader.addClass builds test fixtures in pkg/loader's tests.
func addShadowedFieldClass(fl *fakeLoader, binaryName, superName string) {
	pool := []classfile.ConstantPoolEntry{
		nil,
		&classfile.ConstantUtf8{Value: binaryName}, // 1
		&classfile.ConstantClass{NameIndex: 1},      // 2 this_class
		&classfile.ConstantUtf8{Value: "name"},      // 3
		&classfile.ConstantUtf8{Value: "Ljava/lang/String;"}, // 4
	}
	cf := &classfile.ClassFile{
		MajorVersion: 61,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    2,
		Fields: []classfile.FieldInfo{
			{Name: "name", Descriptor: "Ljava/lang/String;"},
		},
	}
	if superName != "" {
		utf8Idx := uint16(len(pool))
		classIdx := utf8Idx + 1
		pool = append(pool,
			&classfile.ConstantUtf8{Value: superName},
			&classfile.ConstantClass{NameIndex: utf8Idx},
		)
		cf.SuperClass = classIdx
	}
	cf.ConstantPool = pool

	data, err := classfile.Encode(cf)
	if err != nil {
		panic(err)
	}
	fl.classes[binaryName] = data
}

// TestExecuteGetfieldUsesStaticTypeNotDynamicType reproduces the field
// shadowing scenario spec.md §4.5 requires: a getfield resolved through
// a Fieldref naming an ancestor class must read that ancestor's "name"
// slot even though the receiver's dynamic type is the most-derived
// Child, not Child's own shadowing slot.
func TestExecuteGetfieldUsesStaticTypeNotDynamicType(t *testing.T) {
	fl := newFakeLoader()
	addShadowedFieldClass(fl, "GreatGrandParent", "")
	addShadowedFieldClass(fl, "GrandParent", "GreatGrandParent")
	addShadowedFieldClass(fl, "Parent", "GrandParent")
	addShadowedFieldClass(fl, "Child", "Parent")

	vm, _, _ := newTestVM(fl)

	childClass, err := vm.Registry.Resolve(vm.Loader, "Child")
	if err != nil {
		t.Fatalf("Resolve(Child): %v", err)
	}
	obj := value.NewObject(childClass)
	obj.SetField("Child", "name", value.RefValue("ChildName"))
	obj.SetField("Parent", "name", value.RefValue("ParentName"))
	obj.SetField("GrandParent", "name", value.RefValue("GrandParentName"))
	obj.SetField("GreatGrandParent", "name", value.RefValue("GreatGrandParentName"))

	// Build an accessor class whose constant pool carries one Fieldref
	// per ancestor, all naming the same "name"/Ljava/lang/String; member
	// but through a different declaring class, mirroring four casts of
	// the same receiver to Child/Parent/GrandParent/GreatGrandParent.
	pool := []classfile.ConstantPoolEntry{
		nil,
		&classfile.ConstantUtf8{Value: "Accessor"},  // 1
		&classfile.ConstantClass{NameIndex: 1},       // 2 this_class
		&classfile.ConstantUtf8{Value: "Child"},      // 3
		&classfile.ConstantClass{NameIndex: 3},       // 4
		&classfile.ConstantUtf8{Value: "Parent"},     // 5
		&classfile.ConstantClass{NameIndex: 5},       // 6
		&classfile.ConstantUtf8{Value: "GrandParent"}, // 7
		&classfile.ConstantClass{NameIndex: 7},        // 8
		&classfile.ConstantUtf8{Value: "GreatGrandParent"}, // 9
		&classfile.ConstantClass{NameIndex: 9},              // 10
		&classfile.ConstantUtf8{Value: "name"},                // 11
		&classfile.ConstantUtf8{Value: "Ljava/lang/String;"},  // 12
		&classfile.ConstantNameAndType{NameIndex: 11, DescriptorIndex: 12}, // 13
		&classfile.ConstantFieldref{ClassIndex: 4, NameAndTypeIndex: 13},  // 14 Child.name
		&classfile.ConstantFieldref{ClassIndex: 6, NameAndTypeIndex: 13},  // 15 Parent.name
		&classfile.ConstantFieldref{ClassIndex: 8, NameAndTypeIndex: 13},  // 16 GrandParent.name
		&classfile.ConstantFieldref{ClassIndex: 10, NameAndTypeIndex: 13}, // 17 GreatGrandParent.name
	}
	accessor := &classfile.ClassFile{
		MajorVersion: 61,
		ConstantPool: pool,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    2,
	}
	accessorClass := value.NewClass("Accessor", accessor, "test")

	cases := []struct {
		fieldrefIndex uint16
		want          string
	}{
		{14, "ChildName"},
		{15, "ParentName"},
		{16, "GrandParentName"},
		{17, "GreatGrandParentName"},
	}
	for _, c := range cases {
		m := methodWithCode("access", "()V", 2, 1, []byte{byte(c.fieldrefIndex >> 8), byte(c.fieldrefIndex)})
		f := frame.NewFrame(accessorClass.Name, &m, nil)
		f.Push(value.RefValue(obj))

		_, _, err := vm.executeGetfield(accessorClass, f)
		if err != nil {
			t.Fatalf("executeGetfield(fieldref %d): %v", c.fieldrefIndex, err)
		}
		got := f.Peek()
		if got.Ref != c.want {
			t.Errorf("executeGetfield(fieldref %d) = %v, want %q", c.fieldrefIndex, got.Ref, c.want)
		}
	}
}

// TestExecutePutfieldUsesStaticTypeNotDynamicType mirrors the getfield
// case for writes: a putfield through a Fieldref naming Parent must
// write Parent's shadowed slot, leaving Child's own slot untouched.
func TestExecutePutfieldUsesStaticTypeNotDynamicType(t *testing.T) {
	fl := newFakeLoader()
	addShadowedFieldClass(fl, "Parent", "")
	addShadowedFieldClass(fl, "Child", "Parent")

	vm, _, _ := newTestVM(fl)
	childClass, err := vm.Registry.Resolve(vm.Loader, "Child")
	if err != nil {
		t.Fatalf("Resolve(Child): %v", err)
	}
	obj := value.NewObject(childClass)
	obj.SetField("Child", "name", value.RefValue("ChildName"))
	obj.SetField("Parent", "name", value.RefValue("ParentName"))

	pool := []classfile.ConstantPoolEntry{
		nil,
		&classfile.ConstantUtf8{Value: "Accessor"}, // 1
		&classfile.ConstantClass{NameIndex: 1},      // 2 this_class
		&classfile.ConstantUtf8{Value: "Parent"},    // 3
		&classfile.ConstantClass{NameIndex: 3},       // 4
		&classfile.ConstantUtf8{Value: "name"},                // 5
		&classfile.ConstantUtf8{Value: "Ljava/lang/String;"},  // 6
		&classfile.ConstantNameAndType{NameIndex: 5, DescriptorIndex: 6}, // 7
		&classfile.ConstantFieldref{ClassIndex: 4, NameAndTypeIndex: 7},  // 8 Parent.name
	}
	accessor := &classfile.ClassFile{
		MajorVersion: 61,
		ConstantPool: pool,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    2,
	}
	accessorClass := value.NewClass("Accessor", accessor, "test")

	m := methodWithCode("access", "()V", 2, 1, []byte{0x00, 0x08})
	f := frame.NewFrame(accessorClass.Name, &m, nil)
	f.Push(value.RefValue(obj))
	f.Push(value.RefValue("NewParentName"))

	if _, _, err := vm.executePutfield(accessorClass, f); err != nil {
		t.Fatalf("executePutfield: %v", err)
	}

	parentVal, _ := obj.GetField("Parent", "name")
	if parentVal.Ref != "NewParentName" {
		t.Errorf("Parent.name = %v, want NewParentName", parentVal.Ref)
	}
	childVal, _ := obj.GetField("Child", "name")
	if childVal.Ref != "ChildName" {
		t.Errorf("Child.name = %v, want unchanged ChildName, got mutated to %v", "ChildName", childVal.Ref)
	}
}
