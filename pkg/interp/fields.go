package interp

import (
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/value"
)

func (vm *VM) executeGetstatic(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	ref, err := classfile.ResolveFieldref(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	if ref.ClassName == "java/lang/System" && (ref.FieldName == "out" || ref.FieldName == "err") {
		v, err := vm.systemOutOrErr(ref.FieldName)
		if err != nil {
			return value.Value{}, false, err
		}
		f.Push(v)
		return value.Value{}, false, nil
	}
	target, err := vm.Registry.Resolve(vm.Loader, ref.ClassName)
	if err != nil {
		return value.Value{}, false, err
	}
	if err := vm.EnsureInitialized(target, f); err != nil {
		return value.Value{}, false, err
	}
	owner := findStaticFieldOwner(target, ref.FieldName)
	if owner == nil {
		return value.Value{}, false, fmt.Errorf("NoSuchFieldError: %s.%s", ref.ClassName, ref.FieldName)
	}
	f.Push(owner.StaticFields[ref.FieldName])
	return value.Value{}, false, nil
}

func (vm *VM) executePutstatic(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	ref, err := classfile.ResolveFieldref(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	target, err := vm.Registry.Resolve(vm.Loader, ref.ClassName)
	if err != nil {
		return value.Value{}, false, err
	}
	if err := vm.EnsureInitialized(target, f); err != nil {
		return value.Value{}, false, err
	}
	owner := findStaticFieldOwner(target, ref.FieldName)
	if owner == nil {
		return value.Value{}, false, fmt.Errorf("NoSuchFieldError: %s.%s", ref.ClassName, ref.FieldName)
	}
	owner.StaticFields[ref.FieldName] = f.Pop()
	return value.Value{}, false, nil
}

func findStaticFieldOwner(c *value.Class, name string) *value.Class {
	for cur := c; cur != nil; cur = cur.Super {
		if _, ok := cur.StaticFields[name]; ok {
			return cur
		}
	}
	return nil
}

func (vm *VM) executeGetfield(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	ref, err := classfile.ResolveFieldref(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	recvVal := f.Pop()
	if recvVal.IsNull() {
		return value.Value{}, false, fmt.Errorf("NullPointerException: getfield %s.%s on null", ref.ClassName, ref.FieldName)
	}
	obj, ok := recvVal.Ref.(*value.JObject)
	if !ok {
		return value.Value{}, false, fmt.Errorf("getfield on non-object reference")
	}
	staticType, err := vm.Registry.Resolve(vm.Loader, ref.ClassName)
	if err != nil {
		return value.Value{}, false, err
	}
	_, declaring := staticType.FindField(ref.FieldName)
	if declaring == nil {
		return value.Value{}, false, fmt.Errorf("NoSuchFieldError: %s.%s", ref.ClassName, ref.FieldName)
	}
	v, _ := obj.GetField(declaring.Name, ref.FieldName)
	f.Push(v)
	return value.Value{}, false, nil
}

func (vm *VM) executePutfield(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	ref, err := classfile.ResolveFieldref(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	val := f.Pop()
	recvVal := f.Pop()
	if recvVal.IsNull() {
		return value.Value{}, false, fmt.Errorf("NullPointerException: putfield %s.%s on null", ref.ClassName, ref.FieldName)
	}
	obj, ok := recvVal.Ref.(*value.JObject)
	if !ok {
		return value.Value{}, false, fmt.Errorf("putfield on non-object reference")
	}
	staticType, err := vm.Registry.Resolve(vm.Loader, ref.ClassName)
	if err != nil {
		return value.Value{}, false, err
	}
	_, declaring := staticType.FindField(ref.FieldName)
	if declaring == nil {
		return value.Value{}, false, fmt.Errorf("NoSuchFieldError: %s.%s", ref.ClassName, ref.FieldName)
	}
	obj.SetField(declaring.Name, ref.FieldName, val)
	return value.Value{}, false, nil
}

func (vm *VM) executeNew(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	className, err := classfile.GetClassName(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	target, err := vm.Registry.Resolve(vm.Loader, className)
	if err != nil {
		return value.Value{}, false, err
	}
	if err := vm.EnsureInitialized(target, f); err != nil {
		return value.Value{}, false, err
	}
	f.Push(value.RefValue(value.NewObject(target)))
	return value.Value{}, false, nil
}

func (vm *VM) executeLdc(currentClass *value.Class, f *frame.Frame, index uint16) (value.Value, bool, error) {
	pool := currentClass.File.ConstantPool
	if int(index) >= len(pool) || pool[index] == nil {
		return value.Value{}, false, fmt.Errorf("invalid constant pool index %d for ldc", index)
	}
	switch e := pool[index].(type) {
	case *classfile.ConstantInteger:
		f.Push(value.IntValue(e.Value))
	case *classfile.ConstantFloat:
		f.Push(value.FloatValue(e.Value))
	case *classfile.ConstantLong:
		f.Push(value.LongValue(e.Value))
	case *classfile.ConstantDouble:
		f.Push(value.DoubleValue(e.Value))
	case *classfile.ConstantString:
		s, err := classfile.GetUtf8(pool, e.StringIndex)
		if err != nil {
			return value.Value{}, false, err
		}
		f.Push(value.RefValue(s))
	case *classfile.ConstantClass:
		name, err := classfile.GetClassName(pool, index)
		if err != nil {
			return value.Value{}, false, err
		}
		target, err := vm.Registry.Resolve(vm.Loader, name)
		if err != nil {
			return value.Value{}, false, err
		}
		f.Push(value.RefValue(target.Mirror()))
	default:
		return value.Value{}, false, fmt.Errorf("ldc: unsupported constant pool entry type %T at index %d", e, index)
	}
	return value.Value{}, false, nil
}
