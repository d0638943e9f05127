package jit

import (
	"testing"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/value"
)

func intMethod(descriptor string, isStatic bool, code []byte) *classfile.MethodInfo {
	flags := classfile.AccPublic
	if isStatic {
		flags |= classfile.AccStatic
	}
	return &classfile.MethodInfo{
		AccessFlags: flags,
		Name:        "m",
		Descriptor:  descriptor,
		Code:        &classfile.CodeAttribute{MaxStack: 4, MaxLocals: 4, Code: code},
	}
}

func TestTryInvokeCompilesAndRunsLeafArithmetic(t *testing.T) {
	// static int add(int a, int b) { return a + b; }
	m := intMethod("(II)I", true, []byte{opIload0, opIload, 0x01, opIadd, opIreturn})
	c := NewCompiler()

	result, ok, err := c.TryInvoke("Arith", m, []value.Value{value.IntValue(3), value.IntValue(4)})
	if err != nil {
		t.Fatalf("TryInvoke: %v", err)
	}
	if !ok {
		t.Fatal("TryInvoke should accept a static int-only leaf method")
	}
	if result != value.IntValue(7) {
		t.Errorf("TryInvoke result = %v, want int(7)", result)
	}
}

func TestTryInvokeCachesCompiledEntry(t *testing.T) {
	m := intMethod("(I)I", true, []byte{opIload0, opIconst5, opImul, opIreturn})
	c := NewCompiler()

	for i, want := range []int32{15, 20} {
		arg := int32(i + 3)
		result, ok, err := c.TryInvoke("Mul", m, []value.Value{value.IntValue(arg)})
		if err != nil || !ok {
			t.Fatalf("TryInvoke(%d): ok=%v err=%v", arg, ok, err)
		}
		if result.Int != want {
			t.Errorf("TryInvoke(%d) = %d, want %d", arg, result.Int, want)
		}
	}
	if len(c.entries) != 1 {
		t.Errorf("compiler cached %d entries, want 1 (same method reused)", len(c.entries))
	}
}

func TestTryInvokeRejectsNonIntArgs(t *testing.T) {
	m := intMethod("(Ljava/lang/Object;)I", true, []byte{opIconst0, opIreturn})
	c := NewCompiler()
	_, ok, err := c.TryInvoke("Ref", m, []value.Value{value.NullValue()})
	if err != nil {
		t.Fatalf("TryInvoke: %v", err)
	}
	if ok {
		t.Error("TryInvoke should decline a reference-typed argument")
	}
}

func TestCompileRejectsInstanceMethod(t *testing.T) {
	m := intMethod("(I)I", false, []byte{opIload0, opIreturn})
	c := NewCompiler()
	entry := c.compile("Inst", m)
	if !entry.failed {
		t.Error("compile should reject an instance method (local 0 is `this`, not an int)")
	}
}

func TestCompileRejectsNonIntReturn(t *testing.T) {
	m := intMethod("(I)Ljava/lang/Object;", true, []byte{opIconst0, opIreturn})
	c := NewCompiler()
	entry := c.compile("Ret", m)
	if !entry.failed {
		t.Error("compile should reject a non-int return type")
	}
}

func TestJittableRejectsBranches(t *testing.T) {
	code := []byte{opIload0, opIconst0, 0x9F, 0x00, 0x03, opIreturn} // if_icmpeq
	if jittable(code) {
		t.Error("jittable should reject code containing a branch opcode")
	}
}

func TestJittableAcceptsArithmeticSubset(t *testing.T) {
	code := []byte{opIload0, opIload, 0x01, opIadd, opIneg, opIreturn}
	if !jittable(code) {
		t.Error("jittable should accept pure int load/arithmetic/return code")
	}
}

func TestEvalCompiledNegation(t *testing.T) {
	code := []byte{opIload0, opIneg, opIreturn}
	result, err := evalCompiled(code, []int32{9})
	if err != nil {
		t.Fatalf("evalCompiled: %v", err)
	}
	if result != -9 {
		t.Errorf("evalCompiled negation = %d, want -9", result)
	}
}

func TestEvalCompiledMissingReturnErrors(t *testing.T) {
	code := []byte{opIload0}
	if _, err := evalCompiled(code, []int32{1}); err == nil {
		t.Error("evalCompiled should error when code falls off the end without ireturn")
	}
}
