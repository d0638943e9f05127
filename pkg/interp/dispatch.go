package interp

import (
	"fmt"
	"math"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/value"
)

// executeInstruction runs one bytecode instruction, whose opcode byte
// has already been consumed from f.Code (f.PC points just past it).
// hasReturn signals executeMethod to stop the dispatch loop and hand
// result back to the caller.
func (vm *VM) executeInstruction(class *value.Class, f *frame.Frame, op byte) (value.Value, bool, error) {
	switch op {
	case OpNop:
		return value.Value{}, false, nil
	case OpAconstNull:
		f.Push(value.NullValue())
	case OpIconstM1, OpIconst0, OpIconst1, OpIconst2, OpIconst3, OpIconst4, OpIconst5:
		f.Push(value.IntValue(int32(int(op) - OpIconst0)))
	case OpLconst0, OpLconst1:
		f.Push(value.LongValue(int64(op - OpLconst0)))
	case OpFconst0, OpFconst1, OpFconst2:
		f.Push(value.FloatValue(float32(op - OpFconst0)))
	case OpDconst0, OpDconst1:
		f.Push(value.DoubleValue(float64(op - OpDconst0)))
	case OpBipush:
		f.Push(value.IntValue(int32(f.ReadI8())))
	case OpSipush:
		f.Push(value.IntValue(int32(f.ReadI16())))
	case OpLdc:
		return vm.executeLdc(class, f, uint16(f.ReadU8()))
	case OpLdcW, OpLdc2W:
		return vm.executeLdc(class, f, f.ReadU16())

	case OpIload, OpFload, OpAload:
		f.Push(f.GetLocal(int(f.ReadU8())))
	case OpLload, OpDload:
		f.Push(f.GetLocal(int(f.ReadU8())))
	case OpIload0, OpIload1, OpIload2, OpIload3:
		f.Push(f.GetLocal(int(op - OpIload0)))
	case OpLload0, OpLload1, OpLload2, OpLload3:
		f.Push(f.GetLocal(int(op - OpLload0)))
	case OpFload0, OpFload1, OpFload2, OpFload3:
		f.Push(f.GetLocal(int(op - OpFload0)))
	case OpDload0, OpDload1, OpDload2, OpDload3:
		f.Push(f.GetLocal(int(op - OpDload0)))
	case OpAload0, OpAload1, OpAload2, OpAload3:
		f.Push(f.GetLocal(int(op - OpAload0)))

	case OpIaload, OpLaload, OpFaload, OpDaload, OpAaload, OpBaload, OpCaload, OpSaload:
		return vm.arrayLoad(f)

	case OpIstore, OpFstore, OpAstore, OpLstore, OpDstore:
		f.SetLocal(int(f.ReadU8()), f.Pop())
	case OpIstore0, OpIstore1, OpIstore2, OpIstore3:
		f.SetLocal(int(op-OpIstore0), f.Pop())
	case OpLstore0, OpLstore1, OpLstore2, OpLstore3:
		f.SetLocal(int(op-OpLstore0), f.Pop())
	case OpFstore0, OpFstore1, OpFstore2, OpFstore3:
		f.SetLocal(int(op-OpFstore0), f.Pop())
	case OpDstore0, OpDstore1, OpDstore2, OpDstore3:
		f.SetLocal(int(op-OpDstore0), f.Pop())
	case OpAstore0, OpAstore1, OpAstore2, OpAstore3:
		f.SetLocal(int(op-OpAstore0), f.Pop())

	case OpIastore, OpLastore, OpFastore, OpDastore, OpBastore, OpCastore, OpSastore:
		return vm.arrayStore(f, false)
	case OpAastore:
		return vm.arrayStore(f, true)

	case OpPop:
		f.Pop()
	case OpPop2:
		if f.Pop().Type.Slots() == 1 {
			f.Pop()
		}
	case OpDup:
		v := f.Peek()
		f.Push(v)
	case OpDupX1:
		v1, v2 := f.Pop(), f.Pop()
		f.Push(v1)
		f.Push(v2)
		f.Push(v1)
	case OpDupX2:
		v1, v2, v3 := f.Pop(), f.Pop(), f.Pop()
		f.Push(v1)
		f.Push(v3)
		f.Push(v2)
		f.Push(v1)
	case OpDup2:
		if v := f.Peek(); v.Type.Slots() == 2 {
			f.Push(v)
			break
		}
		v1, v2 := f.Pop(), f.Pop()
		f.Push(v2)
		f.Push(v1)
		f.Push(v2)
		f.Push(v1)
	case OpDup2X1:
		v1, v2, v3 := f.Pop(), f.Pop(), f.Pop()
		f.Push(v2)
		f.Push(v1)
		f.Push(v3)
		f.Push(v2)
		f.Push(v1)
	case OpDup2X2:
		v1, v2, v3, v4 := f.Pop(), f.Pop(), f.Pop(), f.Pop()
		f.Push(v2)
		f.Push(v1)
		f.Push(v4)
		f.Push(v3)
		f.Push(v2)
		f.Push(v1)
	case OpSwap:
		v1, v2 := f.Pop(), f.Pop()
		f.Push(v1)
		f.Push(v2)

	case OpIadd:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a + b))
	case OpLadd:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.LongValue(a + b))
	case OpFadd:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.FloatValue(a + b))
	case OpDadd:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.DoubleValue(a + b))
	case OpIsub:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a - b))
	case OpLsub:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.LongValue(a - b))
	case OpFsub:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.FloatValue(a - b))
	case OpDsub:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.DoubleValue(a - b))
	case OpImul:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a * b))
	case OpLmul:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.LongValue(a * b))
	case OpFmul:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.FloatValue(a * b))
	case OpDmul:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.DoubleValue(a * b))
	case OpIdiv:
		b, a := f.Pop().Int, f.Pop().Int
		if b == 0 {
			return value.Value{}, false, fmt.Errorf("ArithmeticException: / by zero")
		}
		f.Push(value.IntValue(a / b))
	case OpLdiv:
		b, a := f.Pop().Long, f.Pop().Long
		if b == 0 {
			return value.Value{}, false, fmt.Errorf("ArithmeticException: / by zero")
		}
		f.Push(value.LongValue(a / b))
	case OpFdiv:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.FloatValue(a / b))
	case OpDdiv:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.DoubleValue(a / b))
	case OpIrem:
		b, a := f.Pop().Int, f.Pop().Int
		if b == 0 {
			return value.Value{}, false, fmt.Errorf("ArithmeticException: / by zero")
		}
		f.Push(value.IntValue(a % b))
	case OpLrem:
		b, a := f.Pop().Long, f.Pop().Long
		if b == 0 {
			return value.Value{}, false, fmt.Errorf("ArithmeticException: / by zero")
		}
		f.Push(value.LongValue(a % b))
	case OpFrem:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.FloatValue(float32(math.Mod(float64(a), float64(b)))))
	case OpDrem:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.DoubleValue(math.Mod(a, b)))
	case OpIneg:
		f.Push(value.IntValue(-f.Pop().Int))
	case OpLneg:
		f.Push(value.LongValue(-f.Pop().Long))
	case OpFneg:
		f.Push(value.FloatValue(-f.Pop().Float))
	case OpDneg:
		f.Push(value.DoubleValue(-f.Pop().Double))

	case OpIshl:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a << (uint32(b) & 0x1F)))
	case OpLshl:
		b, a := f.Pop().Int, f.Pop().Long
		f.Push(value.LongValue(a << (uint32(b) & 0x3F)))
	case OpIshr:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a >> (uint32(b) & 0x1F)))
	case OpLshr:
		b, a := f.Pop().Int, f.Pop().Long
		f.Push(value.LongValue(a >> (uint32(b) & 0x3F)))
	case OpIushr:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(int32(uint32(a) >> (uint32(b) & 0x1F))))
	case OpLushr:
		b, a := f.Pop().Int, f.Pop().Long
		f.Push(value.LongValue(int64(uint64(a) >> (uint32(b) & 0x3F))))
	case OpIand:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a & b))
	case OpLand:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.LongValue(a & b))
	case OpIor:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a | b))
	case OpLor:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.LongValue(a | b))
	case OpIxor:
		b, a := f.Pop().Int, f.Pop().Int
		f.Push(value.IntValue(a ^ b))
	case OpLxor:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.LongValue(a ^ b))
	case OpIinc:
		index := int(f.ReadU8())
		delta := int32(f.ReadI8())
		f.SetLocal(index, value.IntValue(f.GetLocal(index).Int+delta))

	case OpI2l:
		f.Push(value.LongValue(int64(f.Pop().Int)))
	case OpI2f:
		f.Push(value.FloatValue(float32(f.Pop().Int)))
	case OpI2d:
		f.Push(value.DoubleValue(float64(f.Pop().Int)))
	case OpL2i:
		f.Push(value.IntValue(int32(f.Pop().Long)))
	case OpL2f:
		f.Push(value.FloatValue(float32(f.Pop().Long)))
	case OpL2d:
		f.Push(value.DoubleValue(float64(f.Pop().Long)))
	case OpF2i:
		f.Push(value.IntValue(int32(f.Pop().Float)))
	case OpF2l:
		f.Push(value.LongValue(int64(f.Pop().Float)))
	case OpF2d:
		f.Push(value.DoubleValue(float64(f.Pop().Float)))
	case OpD2i:
		f.Push(value.IntValue(int32(f.Pop().Double)))
	case OpD2l:
		f.Push(value.LongValue(int64(f.Pop().Double)))
	case OpD2f:
		f.Push(value.FloatValue(float32(f.Pop().Double)))
	case OpI2b:
		f.Push(value.IntValue(int32(int8(f.Pop().Int))))
	case OpI2c:
		f.Push(value.IntValue(int32(uint16(f.Pop().Int))))
	case OpI2s:
		f.Push(value.IntValue(int32(int16(f.Pop().Int))))

	case OpLcmp:
		b, a := f.Pop().Long, f.Pop().Long
		f.Push(value.IntValue(compare(a, b)))
	case OpFcmpl:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.IntValue(fcmp(float64(a), float64(b), -1)))
	case OpFcmpg:
		b, a := f.Pop().Float, f.Pop().Float
		f.Push(value.IntValue(fcmp(float64(a), float64(b), 1)))
	case OpDcmpl:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.IntValue(fcmp(a, b, -1)))
	case OpDcmpg:
		b, a := f.Pop().Double, f.Pop().Double
		f.Push(value.IntValue(fcmp(a, b, 1)))

	case OpIfeq:
		return value.Value{}, false, vm.branchIf(f, f.Pop().Int == 0)
	case OpIfne:
		return value.Value{}, false, vm.branchIf(f, f.Pop().Int != 0)
	case OpIflt:
		return value.Value{}, false, vm.branchIf(f, f.Pop().Int < 0)
	case OpIfge:
		return value.Value{}, false, vm.branchIf(f, f.Pop().Int >= 0)
	case OpIfgt:
		return value.Value{}, false, vm.branchIf(f, f.Pop().Int > 0)
	case OpIfle:
		return value.Value{}, false, vm.branchIf(f, f.Pop().Int <= 0)
	case OpIfIcmpeq:
		b, a := f.Pop().Int, f.Pop().Int
		return value.Value{}, false, vm.branchIf(f, a == b)
	case OpIfIcmpne:
		b, a := f.Pop().Int, f.Pop().Int
		return value.Value{}, false, vm.branchIf(f, a != b)
	case OpIfIcmplt:
		b, a := f.Pop().Int, f.Pop().Int
		return value.Value{}, false, vm.branchIf(f, a < b)
	case OpIfIcmpge:
		b, a := f.Pop().Int, f.Pop().Int
		return value.Value{}, false, vm.branchIf(f, a >= b)
	case OpIfIcmpgt:
		b, a := f.Pop().Int, f.Pop().Int
		return value.Value{}, false, vm.branchIf(f, a > b)
	case OpIfIcmple:
		b, a := f.Pop().Int, f.Pop().Int
		return value.Value{}, false, vm.branchIf(f, a <= b)
	case OpIfAcmpeq:
		b, a := f.Pop(), f.Pop()
		return value.Value{}, false, vm.branchIf(f, sameRef(a, b))
	case OpIfAcmpne:
		b, a := f.Pop(), f.Pop()
		return value.Value{}, false, vm.branchIf(f, !sameRef(a, b))
	case OpIfnull:
		return value.Value{}, false, vm.branchIf(f, f.Pop().IsNull())
	case OpIfnonnull:
		return value.Value{}, false, vm.branchIf(f, !f.Pop().IsNull())

	case OpGoto:
		opStart := f.PC - 1
		f.PC = opStart + int(f.ReadI16())
	case OpGotoW:
		opStart := f.PC - 1
		f.PC = opStart + int(f.ReadI32())
	case OpJsr:
		return vm.executeJsr(f, false)
	case OpJsrW:
		return vm.executeJsr(f, true)
	case OpRet:
		index := int(f.ReadU8())
		f.PC = int(f.GetLocal(index).Int)

	case OpTableswitch:
		return vm.executeTableswitch(f)
	case OpLookupswitch:
		return vm.executeLookupswitch(f)

	case OpIreturn, OpLreturn, OpFreturn, OpDreturn, OpAreturn:
		return f.Pop(), true, nil
	case OpReturn:
		return value.Value{}, true, nil

	case OpGetstatic:
		return vm.executeGetstatic(class, f)
	case OpPutstatic:
		return vm.executePutstatic(class, f)
	case OpGetfield:
		return vm.executeGetfield(class, f)
	case OpPutfield:
		return vm.executePutfield(class, f)

	case OpInvokevirtual:
		return vm.dispatchInvokevirtual(class, f)
	case OpInvokespecial:
		return vm.dispatchInvokespecial(class, f)
	case OpInvokestatic:
		return vm.dispatchInvokestatic(class, f)
	case OpInvokeinterface:
		return vm.dispatchInvokeinterface(class, f)
	case OpInvokedynamic:
		return vm.executeInvokedynamic(class, f)

	case OpNew:
		return vm.executeNew(class, f)
	case OpNewarray:
		return vm.executeNewarray(f)
	case OpAnewarray:
		return vm.executeAnewarray(class, f)
	case OpArraylength:
		return vm.executeArraylength(f)
	case OpAthrow:
		return vm.executeAthrow(f)
	case OpCheckcast:
		return vm.executeCheckcast(class, f)
	case OpInstanceof:
		return vm.executeInstanceof(class, f)
	case OpMonitorenter, OpMonitorexit:
		f.Pop() // single-threaded: locking is a no-op, but the operand is still consumed
	case OpMultianewarray:
		return vm.executeMultianewarray(class, f)
	case OpWide:
		return vm.executeWide(class, f)

	default:
		return value.Value{}, false, fmt.Errorf("unimplemented opcode 0x%02x at %s.%s:%d", op, class.Name, f.Method.Name, f.PC-1)
	}
	return value.Value{}, false, nil
}

func compare(a, b int64) int32 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// fcmp implements fcmpl/fcmpg's NaN handling: fcmpl returns -1 and
// fcmpg returns 1 when either operand is NaN (JVMS §6.5.fcmpl/fcmpg),
// passed in as nanResult.
func fcmp(a, b float64, nanResult int32) int32 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return nanResult
	}
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func sameRef(a, b value.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() == b.IsNull()
	}
	return a.Ref == b.Ref
}

// branchIf reads the signed 16-bit branch offset every if* opcode
// carries and, when taken is true, redirects f.PC relative to the
// opcode's own position (JVMS's branchbyte1/2 are relative to the
// instruction itself, not to the offset operand's position).
func (vm *VM) branchIf(f *frame.Frame, taken bool) error {
	opStart := f.PC - 1
	offset := f.ReadI16()
	if taken {
		f.PC = opStart + int(offset)
	}
	return nil
}

func (vm *VM) executeJsr(f *frame.Frame, wide bool) (value.Value, bool, error) {
	opStart := f.PC - 1
	var offset int
	if wide {
		offset = int(f.ReadI32())
	} else {
		offset = int(f.ReadI16())
	}
	f.Push(value.IntValue(int32(f.PC)))
	f.PC = opStart + offset
	return value.Value{}, false, nil
}

// executeTableswitch implements JVMS §6.5.tableswitch: padding to the
// next 4-byte boundary (measured from method start), then default
// offset, low, high, and (high-low+1) jump offsets.
func (vm *VM) executeTableswitch(f *frame.Frame) (value.Value, bool, error) {
	opStart := f.PC - 1
	pad := (4 - (f.PC % 4)) % 4
	for i := 0; i < pad; i++ {
		f.ReadU8()
	}
	defaultOffset := f.ReadI32()
	low := f.ReadI32()
	high := f.ReadI32()
	index := f.Pop().Int
	if index < low || index > high {
		f.PC = opStart + int(defaultOffset)
		return value.Value{}, false, nil
	}
	for i := int32(0); i < index-low; i++ {
		f.ReadI32()
	}
	offset := f.ReadI32()
	f.PC = opStart + int(offset)
	return value.Value{}, false, nil
}

// executeLookupswitch implements JVMS §6.5.lookupswitch: same padding
// rule as tableswitch, then default offset, npairs, and npairs
// (match, offset) pairs in ascending match order.
func (vm *VM) executeLookupswitch(f *frame.Frame) (value.Value, bool, error) {
	opStart := f.PC - 1
	pad := (4 - (f.PC % 4)) % 4
	for i := 0; i < pad; i++ {
		f.ReadU8()
	}
	defaultOffset := f.ReadI32()
	npairs := f.ReadI32()
	key := f.Pop().Int
	for i := int32(0); i < npairs; i++ {
		match := f.ReadI32()
		offset := f.ReadI32()
		if match == key {
			f.PC = opStart + int(offset)
			return value.Value{}, false, nil
		}
	}
	f.PC = opStart + int(defaultOffset)
	return value.Value{}, false, nil
}

func (vm *VM) executeAthrow(f *frame.Frame) (value.Value, bool, error) {
	v := f.Pop()
	if v.IsNull() {
		return value.Value{}, false, fmt.Errorf("NullPointerException: athrow of null")
	}
	obj, ok := v.Ref.(*value.JObject)
	if !ok {
		return value.Value{}, false, fmt.Errorf("athrow of non-throwable reference")
	}
	msg := ""
	if mv, ok := obj.GetField("java/lang/Throwable", "message"); ok && !mv.IsNull() {
		if s, ok := mv.Ref.(string); ok {
			msg = s
		}
	}
	return value.Value{}, false, &JavaException{class: obj.Class, object: obj, message: msg}
}

// executeWide implements the wide prefix (JVMS §6.5.wide): the next
// opcode's index operand (and, for iinc, its constant) widen from one
// byte to two.
func (vm *VM) executeWide(class *value.Class, f *frame.Frame) (value.Value, bool, error) {
	op := f.ReadU8()
	index := int(f.ReadU16())
	switch op {
	case OpIload, OpFload, OpAload, OpLload, OpDload:
		f.Push(f.GetLocal(index))
	case OpIstore, OpFstore, OpAstore, OpLstore, OpDstore:
		f.SetLocal(index, f.Pop())
	case OpIinc:
		delta := f.ReadI16()
		f.SetLocal(index, value.IntValue(f.GetLocal(index).Int+int32(delta)))
	case OpRet:
		f.PC = int(f.GetLocal(index).Int)
	default:
		return value.Value{}, false, fmt.Errorf("wide: unsupported opcode 0x%02x", op)
	}
	return value.Value{}, false, nil
}

// resolveInvocation reads the constant-pool index operand every
// invoke* opcode carries, resolves it to a (class, name, descriptor)
// triple, and — for invokeinterface — consumes its trailing count and
// reserved-zero operand bytes (JVMS §6.5.invokeinterface).
func resolveInvocation(pool []classfile.ConstantPoolEntry, f *frame.Frame, interfaceForm bool) (*classfile.MethodRefInfo, error) {
	index := f.ReadU16()
	var ref *classfile.MethodRefInfo
	var err error
	if interfaceForm {
		ref, err = classfile.ResolveInterfaceMethodref(pool, index)
		f.ReadU8() // count
		f.ReadU8() // reserved zero
	} else {
		ref, err = classfile.ResolveMethodref(pool, index)
	}
	return ref, err
}

func (vm *VM) dispatchInvokestatic(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	ref, err := resolveInvocation(currentClass.File.ConstantPool, f, false)
	if err != nil {
		return value.Value{}, false, err
	}
	target, err := vm.Registry.Resolve(vm.Loader, ref.ClassName)
	if err != nil {
		return value.Value{}, false, err
	}
	method, declaring := target.FindMethod(ref.MethodName, ref.Descriptor)
	if method == nil {
		return value.Value{}, false, fmt.Errorf("NoSuchMethodError: %s.%s%s", ref.ClassName, ref.MethodName, ref.Descriptor)
	}
	params, ret, _ := value.ParseMethodDescriptor(ref.Descriptor)
	args, _ := vm.popArgs(f, params, false)
	result, err := vm.InvokeStaticMethod(declaring, method, args, f)
	if err != nil {
		return value.Value{}, false, err
	}
	if !value.IsVoid(ret) {
		f.Push(result)
	}
	return value.Value{}, false, nil
}

func (vm *VM) dispatchInvokespecial(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	ref, err := resolveInvocation(currentClass.File.ConstantPool, f, false)
	if err != nil {
		return value.Value{}, false, err
	}
	staticClass, err := vm.Registry.Resolve(vm.Loader, ref.ClassName)
	if err != nil {
		return value.Value{}, false, err
	}
	params, ret, _ := value.ParseMethodDescriptor(ref.Descriptor)
	args, _ := vm.popArgs(f, params, true)
	result, err := vm.invokeSpecial(staticClass, ref.MethodName, ref.Descriptor, args, f)
	if err != nil {
		return value.Value{}, false, err
	}
	if !value.IsVoid(ret) {
		f.Push(result)
	}
	return value.Value{}, false, nil
}

func (vm *VM) dispatchInvokevirtual(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	ref, err := resolveInvocation(currentClass.File.ConstantPool, f, false)
	if err != nil {
		return value.Value{}, false, err
	}
	params, ret, _ := value.ParseMethodDescriptor(ref.Descriptor)
	args, recv := vm.popArgs(f, params, true)
	if recv != nil && recv.Class.Name == "java/io/PrintStream" {
		return vm.invokePrintStream(recv, ref.MethodName, ref.Descriptor, args[1:])
	}
	result, err := vm.invokeVirtual(recv, ref.MethodName, ref.Descriptor, args, f)
	if err != nil {
		return value.Value{}, false, err
	}
	if !value.IsVoid(ret) {
		f.Push(result)
	}
	return value.Value{}, false, nil
}

func (vm *VM) dispatchInvokeinterface(currentClass *value.Class, f *frame.Frame) (value.Value, bool, error) {
	ref, err := resolveInvocation(currentClass.File.ConstantPool, f, true)
	if err != nil {
		return value.Value{}, false, err
	}
	params, ret, _ := value.ParseMethodDescriptor(ref.Descriptor)
	args, recv := vm.popArgs(f, params, true)
	result, err := vm.invokeInterface(recv, ref.MethodName, ref.Descriptor, args, f)
	if err != nil {
		return value.Value{}, false, err
	}
	if !value.IsVoid(ret) {
		f.Push(result)
	}
	return value.Value{}, false, nil
}
