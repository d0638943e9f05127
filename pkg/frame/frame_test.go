package frame

import (
	"testing"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/value"
)

func newTestFrame(maxStack, maxLocals int, code []byte) *Frame {
	m := &classfile.MethodInfo{
		Name: "test",
		Code: &classfile.CodeAttribute{
			MaxStack:  uint16(maxStack),
			MaxLocals: uint16(maxLocals),
			Code:      code,
		},
	}
	return NewFrame("Test", m, nil)
}

func TestPushPop(t *testing.T) {
	f := newTestFrame(2, 0, nil)
	f.Push(value.IntValue(1))
	f.Push(value.IntValue(2))
	if got := f.Pop(); got != value.IntValue(2) {
		t.Errorf("Pop() = %v, want int(2)", got)
	}
	if got := f.Pop(); got != value.IntValue(1) {
		t.Errorf("Pop() = %v, want int(1)", got)
	}
}

func TestPeekDoesNotPop(t *testing.T) {
	f := newTestFrame(1, 0, nil)
	f.Push(value.IntValue(5))
	if got := f.Peek(); got != value.IntValue(5) {
		t.Errorf("Peek() = %v, want int(5)", got)
	}
	if f.SP != 1 {
		t.Errorf("SP after Peek() = %d, want 1 (unchanged)", f.SP)
	}
}

func TestPushOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Push past capacity should panic")
		}
	}()
	f := newTestFrame(1, 0, nil)
	f.Push(value.IntValue(1))
	f.Push(value.IntValue(2))
}

func TestPopUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Pop on an empty stack should panic")
		}
	}()
	f := newTestFrame(1, 0, nil)
	f.Pop()
}

func TestLocalVars(t *testing.T) {
	f := newTestFrame(0, 2, nil)
	f.SetLocal(0, value.IntValue(10))
	f.SetLocal(1, value.RefValue("x"))
	if got := f.GetLocal(0); got != value.IntValue(10) {
		t.Errorf("GetLocal(0) = %v, want int(10)", got)
	}
	if got := f.GetLocal(1); got != value.RefValue("x") {
		t.Errorf("GetLocal(1) = %v, want ref(x)", got)
	}
}

func TestLocalVarsOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("GetLocal out of range should panic")
		}
	}()
	f := newTestFrame(0, 1, nil)
	f.GetLocal(5)
}

func TestReadOperands(t *testing.T) {
	f := newTestFrame(0, 0, []byte{0x01, 0xFF, 0x12, 0x34, 0xFF, 0xFF, 0xFF, 0xFE})
	if got := f.ReadU8(); got != 0x01 {
		t.Errorf("ReadU8() = %#x, want 0x01", got)
	}
	if got := f.ReadI8(); got != -1 {
		t.Errorf("ReadI8() = %d, want -1", got)
	}
	if got := f.ReadU16(); got != 0x1234 {
		t.Errorf("ReadU16() = %#x, want 0x1234", got)
	}
	if got := f.ReadI32(); got != -2 {
		t.Errorf("ReadI32() = %d, want -2", got)
	}
	if f.PC != 8 {
		t.Errorf("PC after reads = %d, want 8", f.PC)
	}
}

func TestLineForPC(t *testing.T) {
	f := newTestFrame(0, 0, make([]byte, 10))
	f.Method.Code.LineNumbers = []classfile.LineNumberEntry{
		{StartPC: 0, LineNumber: 5},
		{StartPC: 4, LineNumber: 6},
	}
	if got := f.LineForPC(0); got != 5 {
		t.Errorf("LineForPC(0) = %d, want 5", got)
	}
	if got := f.LineForPC(3); got != 5 {
		t.Errorf("LineForPC(3) = %d, want 5", got)
	}
	if got := f.LineForPC(4); got != 6 {
		t.Errorf("LineForPC(4) = %d, want 6", got)
	}
}

func TestCaptureStackTrace(t *testing.T) {
	caller := newTestFrame(0, 0, make([]byte, 4))
	caller.ClassName = "Outer"
	caller.Method.Name = "outer"

	inner := NewFrame("Inner", &classfile.MethodInfo{Name: "inner", Code: &classfile.CodeAttribute{Code: make([]byte, 4)}}, caller)

	trace := CaptureStackTrace(inner)
	if len(trace) != 2 {
		t.Fatalf("CaptureStackTrace length = %d, want 2", len(trace))
	}
	if trace[0].ClassName != "Inner" || trace[0].MethodName != "inner" {
		t.Errorf("trace[0] = %+v, want Inner.inner", trace[0])
	}
	if trace[1].ClassName != "Outer" || trace[1].MethodName != "outer" {
		t.Errorf("trace[1] = %+v, want Outer.outer", trace[1])
	}
}
