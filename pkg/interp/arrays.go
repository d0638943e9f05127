package interp

import (
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/value"
)

func (vm *VM) executeNewarray(f *frame.Frame) (value.Value, bool, error) {
	atype := f.ReadU8()
	length := f.Pop().Int
	arr, err := value.NewArray(newarrayDescriptor(atype), int(length))
	if err != nil {
		return value.Value{}, false, err
	}
	f.Push(value.RefValue(arr))
	return value.Value{}, false, nil
}

func (vm *VM) executeAnewarray(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	className, err := classfile.GetClassName(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	length := f.Pop().Int
	arr, err := value.NewArray("L"+className+";", int(length))
	if err != nil {
		return value.Value{}, false, err
	}
	f.Push(value.RefValue(arr))
	return value.Value{}, false, nil
}

func (vm *VM) executeMultianewarray(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	dimensions := int(f.ReadU8())
	className, err := classfile.GetClassName(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	counts := make([]int, dimensions)
	for i := dimensions - 1; i >= 0; i-- {
		counts[i] = int(f.Pop().Int)
	}
	arr, err := buildMultiArray(className, counts)
	if err != nil {
		return value.Value{}, false, err
	}
	f.Push(value.RefValue(arr))
	return value.Value{}, false, nil
}

// buildMultiArray recursively allocates the dimensions of a
// multianewarray (JVMS §6.5.multianewarray): descriptor already carries
// the leading '[' characters for every remaining dimension below the
// current one.
func buildMultiArray(descriptor string, counts []int) (*value.JArray, error) {
	n := counts[0]
	if len(counts) == 1 {
		return value.NewArray(value.ArrayElementDescriptor(descriptor), n)
	}
	elems := make([]value.Value, n)
	for i := 0; i < n; i++ {
		sub, err := buildMultiArray(value.ArrayElementDescriptor(descriptor), counts[1:])
		if err != nil {
			return nil, err
		}
		elems[i] = value.RefValue(sub)
	}
	return value.NewArrayFrom(value.ArrayElementDescriptor(descriptor), elems), nil
}

func (vm *VM) executeArraylength(f *frame.Frame) (value.Value, bool, error) {
	v := f.Pop()
	if v.IsNull() {
		return value.Value{}, false, fmt.Errorf("NullPointerException: arraylength on null")
	}
	arr, ok := v.Ref.(*value.JArray)
	if !ok {
		return value.Value{}, false, fmt.Errorf("arraylength on non-array reference")
	}
	f.Push(value.IntValue(int32(arr.Length())))
	return value.Value{}, false, nil
}

// arrayLoad implements every *aload opcode: pop index then arrayref,
// bounds-check, and push the element (widened to int for the
// sub-int-width array kinds per JVMS's computational-type rules).
func (vm *VM) arrayLoad(f *frame.Frame) (value.Value, bool, error) {
	index := f.Pop().Int
	arrVal := f.Pop()
	if arrVal.IsNull() {
		return value.Value{}, false, fmt.Errorf("NullPointerException: array load on null")
	}
	arr, ok := arrVal.Ref.(*value.JArray)
	if !ok {
		return value.Value{}, false, fmt.Errorf("array load on non-array reference")
	}
	v, err := arr.Get(int(index))
	if err != nil {
		return value.Value{}, false, err
	}
	f.Push(v)
	return value.Value{}, false, nil
}

// arrayStore implements every *astore opcode, including the array-store
// covariance check aastore needs (JVMS §6.5.aastore): storing a value
// whose runtime class isn't assignable to the array's element type
// raises ArrayStoreException even though the verifier accepted the
// bytecode statically.
func (vm *VM) arrayStore(f *frame.Frame, checkCovariance bool) (value.Value, bool, error) {
	val := f.Pop()
	index := f.Pop().Int
	arrVal := f.Pop()
	if arrVal.IsNull() {
		return value.Value{}, false, fmt.Errorf("NullPointerException: array store on null")
	}
	arr, ok := arrVal.Ref.(*value.JArray)
	if !ok {
		return value.Value{}, false, fmt.Errorf("array store on non-array reference")
	}
	if checkCovariance && !val.IsNull() {
		if obj, ok := val.Ref.(*value.JObject); ok {
			elemClassName := value.ArrayElementDescriptor(arr.ElemType)
			if len(elemClassName) > 0 && elemClassName[0] == 'L' {
				elemClassName = elemClassName[1 : len(elemClassName)-1]
				elemClass, err := vm.Registry.Resolve(vm.Loader, elemClassName)
				if err == nil && !obj.Class.AssignableTo(elemClass) {
					return value.Value{}, false, fmt.Errorf("ArrayStoreException: %s", obj.Class.Name)
				}
			}
		}
	}
	if err := arr.Set(int(index), val); err != nil {
		return value.Value{}, false, err
	}
	return value.Value{}, false, nil
}

func (vm *VM) executeCheckcast(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	className, err := classfile.GetClassName(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	v := f.Peek()
	if v.IsNull() {
		return value.Value{}, false, nil // checkcast of null always succeeds
	}
	obj, ok := v.Ref.(*value.JObject)
	if !ok {
		return value.Value{}, false, nil // arrays: covariance already enforced at store time
	}
	target, err := vm.Registry.Resolve(vm.Loader, className)
	if err != nil {
		return value.Value{}, false, err
	}
	if !obj.Class.AssignableTo(target) {
		return value.Value{}, false, fmt.Errorf("ClassCastException: %s cannot be cast to %s", obj.Class.Name, className)
	}
	return value.Value{}, false, nil
}

func (vm *VM) executeInstanceof(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	index := f.ReadU16()
	className, err := classfile.GetClassName(currentClass.File.ConstantPool, index)
	if err != nil {
		return value.Value{}, false, err
	}
	v := f.Pop()
	if v.IsNull() {
		f.Push(value.IntValue(0))
		return value.Value{}, false, nil
	}
	obj, ok := v.Ref.(*value.JObject)
	if !ok {
		f.Push(value.IntValue(0))
		return value.Value{}, false, nil
	}
	target, err := vm.Registry.Resolve(vm.Loader, className)
	if err != nil {
		return value.Value{}, false, err
	}
	f.Push(value.BoolValue(obj.Class.AssignableTo(target)))
	return value.Value{}, false, nil
}
