package natives

import (
	"fmt"
	"math"
	"time"

	"github.com/go-jvm/corevm/pkg/value"
)

// RegisterBuiltins binds the small set of native methods a class
// library stub needs to get off the ground: Object's identity
// operations, System's console/clock/copy primitives, and the
// Float/Double bit-conversion pair every boxed-primitive class calls
// through to.
func RegisterBuiltins(reg *Registry) {
	reg.Register("java/lang/Object", "hashCode", "()I", objectHashCode)
	reg.Register("java/lang/Object", "getClass", "()Ljava/lang/Class;", objectGetClass)
	reg.Register("java/lang/Object", "clone", "()Ljava/lang/Object;", objectClone)
	reg.Register("java/lang/Object", "notify", "()V", noopVoid)
	reg.Register("java/lang/Object", "notifyAll", "()V", noopVoid)
	reg.Register("java/lang/Object", "wait", "()V", noopVoid)
	reg.Register("java/lang/Object", "registerNatives", "()V", noopVoid)

	reg.Register("java/lang/System", "registerNatives", "()V", noopVoid)
	reg.Register("java/lang/System", "currentTimeMillis", "()J", systemCurrentTimeMillis)
	reg.Register("java/lang/System", "nanoTime", "()J", systemNanoTime)
	reg.Register("java/lang/System", "identityHashCode", "(Ljava/lang/Object;)I", systemIdentityHashCode)
	reg.Register("java/lang/System", "arraycopy", "(Ljava/lang/Object;ILjava/lang/Object;II)V", systemArraycopy)
	reg.Register("java/lang/System", "getProperty", "(Ljava/lang/String;)Ljava/lang/String;", systemGetProperty)
	reg.Register("java/lang/System", "lineSeparator", "()Ljava/lang/String;", systemLineSeparator)

	reg.Register("java/lang/Float", "floatToRawIntBits", "(F)I", floatToRawIntBits)
	reg.Register("java/lang/Float", "intBitsToFloat", "(I)F", intBitsToFloat)
	reg.Register("java/lang/Double", "doubleToRawLongBits", "(D)J", doubleToRawLongBits)
	reg.Register("java/lang/Double", "longBitsToDouble", "(J)D", longBitsToDouble)

	reg.Register("java/lang/Thread", "registerNatives", "()V", noopVoid)
	reg.Register("java/lang/Thread", "currentThread", "()Ljava/lang/Thread;", noopNullRef)

	reg.Register("java/lang/Class", "getName", "()Ljava/lang/String;", classGetName)
	reg.Register("java/lang/Class", "registerNatives", "()V", noopVoid)

	RegisterBootstraps(reg)
}

func noopVoid(vm VMContext, args []value.Value) (value.Value, error) {
	return value.Value{}, nil
}

func noopNullRef(vm VMContext, args []value.Value) (value.Value, error) {
	return value.NullValue(), nil
}

func objectHashCode(vm VMContext, args []value.Value) (value.Value, error) {
	recv := args[0]
	return value.IntValue(int32(identityOf(recv))), nil
}

func identityOf(v value.Value) uint64 {
	switch r := v.Ref.(type) {
	case *value.JObject:
		return r.Identity()
	case *value.JArray:
		return r.Identity()
	default:
		return 0
	}
}

func objectGetClass(vm VMContext, args []value.Value) (value.Value, error) {
	obj, ok := args[0].Ref.(*value.JObject)
	if !ok {
		return value.Value{}, fmt.Errorf("NullPointerException: getClass on null")
	}
	return value.RefValue(obj.Class.Mirror()), nil
}

func objectClone(vm VMContext, args []value.Value) (value.Value, error) {
	switch r := args[0].Ref.(type) {
	case *value.JArray:
		return value.RefValue(value.NewArrayFrom(r.ElemType, r.Snapshot())), nil
	case *value.JObject:
		clone := value.NewObject(r.Class)
		return value.RefValue(clone), nil
	default:
		return value.Value{}, fmt.Errorf("CloneNotSupportedException")
	}
}

func systemCurrentTimeMillis(vm VMContext, args []value.Value) (value.Value, error) {
	return value.LongValue(time.Now().UnixMilli()), nil
}

func systemNanoTime(vm VMContext, args []value.Value) (value.Value, error) {
	return value.LongValue(time.Now().UnixNano()), nil
}

func systemIdentityHashCode(vm VMContext, args []value.Value) (value.Value, error) {
	if args[0].IsNull() {
		return value.IntValue(0), nil
	}
	return value.IntValue(int32(identityOf(args[0]))), nil
}

// systemArraycopy implements the five-argument native at the heart of
// every collection class's growth path (JVMS native, not bytecode):
// src, srcPos, dst, dstPos, length.
func systemArraycopy(vm VMContext, args []value.Value) (value.Value, error) {
	src, ok := args[0].Ref.(*value.JArray)
	if !ok {
		return value.Value{}, fmt.Errorf("NullPointerException: arraycopy src")
	}
	dst, ok := args[2].Ref.(*value.JArray)
	if !ok {
		return value.Value{}, fmt.Errorf("NullPointerException: arraycopy dst")
	}
	srcPos := int(args[1].Int)
	dstPos := int(args[3].Int)
	length := int(args[4].Int)
	snapshot := src.Snapshot()
	if srcPos < 0 || dstPos < 0 || length < 0 || srcPos+length > len(snapshot) || dstPos+length > dst.Length() {
		return value.Value{}, fmt.Errorf("ArrayIndexOutOfBoundsException: arraycopy range")
	}
	for i := 0; i < length; i++ {
		if err := dst.Set(dstPos+i, snapshot[srcPos+i]); err != nil {
			return value.Value{}, err
		}
	}
	return value.Value{}, nil
}

func systemGetProperty(vm VMContext, args []value.Value) (value.Value, error) {
	key, _ := args[0].Ref.(string)
	if v, ok := vm.SystemProperty(key); ok {
		return value.RefValue(v), nil
	}
	return value.NullValue(), nil
}

func systemLineSeparator(vm VMContext, args []value.Value) (value.Value, error) {
	v, _ := vm.SystemProperty("line.separator")
	return value.RefValue(v), nil
}

func floatToRawIntBits(vm VMContext, args []value.Value) (value.Value, error) {
	return value.IntValue(int32(math.Float32bits(args[0].Float))), nil
}

func intBitsToFloat(vm VMContext, args []value.Value) (value.Value, error) {
	return value.FloatValue(math.Float32frombits(uint32(args[0].Int))), nil
}

func doubleToRawLongBits(vm VMContext, args []value.Value) (value.Value, error) {
	return value.LongValue(int64(math.Float64bits(args[0].Double))), nil
}

func longBitsToDouble(vm VMContext, args []value.Value) (value.Value, error) {
	return value.DoubleValue(math.Float64frombits(uint64(args[0].Long))), nil
}

func classGetName(vm VMContext, args []value.Value) (value.Value, error) {
	obj, ok := args[0].Ref.(*value.JObject)
	if !ok {
		return value.Value{}, fmt.Errorf("NullPointerException: Class.getName on null")
	}
	descriptor, ok := obj.GetField("java/lang/Class", "__descriptor")
	if !ok {
		return value.Value{}, fmt.Errorf("InternalError: Class mirror missing descriptor")
	}
	described, ok := descriptor.Ref.(*value.Class)
	if !ok {
		return value.Value{}, fmt.Errorf("InternalError: Class mirror descriptor has wrong type")
	}
	return value.RefValue(described.Name), nil
}
