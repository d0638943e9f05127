package value

import (
	"testing"

	"github.com/go-jvm/corevm/pkg/classfile"
)

func TestIsSubclassOf(t *testing.T) {
	object := simpleClass("java/lang/Object", nil)
	base := simpleClass("Base", nil)
	base.Super = object
	derived := simpleClass("Derived", nil)
	derived.Super = base

	if !derived.IsSubclassOf(base) || !derived.IsSubclassOf(object) {
		t.Error("Derived should be a subclass of Base and Object")
	}
	if object.IsSubclassOf(derived) {
		t.Error("Object should not be a subclass of Derived")
	}
	if !derived.IsSubclassOf(derived) {
		t.Error("a class is always its own subclass")
	}
}

func TestImplementsInterface(t *testing.T) {
	runnable := &classfile.ClassFile{AccessFlags: classfile.AccInterface}
	runnableClass := NewClass("Runnable", runnable, "test")

	impl := simpleClass("Worker", nil)
	impl.Interfaces = []*Class{runnableClass}

	if !impl.ImplementsInterface(runnableClass) {
		t.Error("Worker should implement Runnable")
	}

	sub := simpleClass("SubWorker", nil)
	sub.Super = impl
	if !sub.ImplementsInterface(runnableClass) {
		t.Error("SubWorker should inherit Runnable through its superclass")
	}
}

func TestAssignableTo(t *testing.T) {
	iface := NewClass("Comparable", &classfile.ClassFile{AccessFlags: classfile.AccInterface}, "test")
	base := simpleClass("Base", nil)
	base.Interfaces = []*Class{iface}
	derived := simpleClass("Derived", nil)
	derived.Super = base

	if !derived.AssignableTo(base) {
		t.Error("Derived should be assignable to Base")
	}
	if !derived.AssignableTo(iface) {
		t.Error("Derived should be assignable to Comparable via Base")
	}
	if base.AssignableTo(derived) {
		t.Error("Base should not be assignable to Derived")
	}
}

func TestBeginInitFinishInit(t *testing.T) {
	c := simpleClass("X", nil)
	if !c.BeginInit() {
		t.Fatal("first BeginInit() should return true")
	}
	if c.BeginInit() {
		t.Error("a second concurrent BeginInit() should return false while initializing")
	}
	c.FinishInit()
	if !c.Initialized {
		t.Error("FinishInit() should mark the class Initialized")
	}
	if c.BeginInit() {
		t.Error("BeginInit() after FinishInit() should return false (already initialized)")
	}
}

func TestMirrorSingleton(t *testing.T) {
	c := simpleClass("X", nil)
	m1 := c.Mirror()
	m2 := c.Mirror()
	if m1 != m2 {
		t.Error("Mirror() should return the same instance on repeated calls")
	}
	if m1.Class != c {
		t.Error("the mirror object's Class should be the java.lang.Class descriptor's own class")
	}
}

func TestFindFieldAndMethod(t *testing.T) {
	cf := &classfile.ClassFile{
		Fields:  []classfile.FieldInfo{{Name: "x", Descriptor: "I"}},
		Methods: []classfile.MethodInfo{{Name: "getX", Descriptor: "()I"}},
	}
	base := NewClass("Base", cf, "test")
	derived := simpleClass("Derived", nil)
	derived.Super = base

	f, declaring := derived.FindField("x")
	if f == nil || declaring != base {
		t.Errorf("FindField(x) = %v, %v; want non-nil field declared by Base", f, declaring)
	}
	if _, declaring := derived.FindField("missing"); declaring != nil {
		t.Error("FindField(missing) should return a nil declaring class")
	}

	m, declaring := derived.FindMethod("getX", "()I")
	if m == nil || declaring != base {
		t.Errorf("FindMethod(getX) = %v, %v; want non-nil method declared by Base", m, declaring)
	}
}
