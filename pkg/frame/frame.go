// Package frame implements the JVM frame and call stack: the operand
// stack, local variable array, and program counter a single method
// activation owns, plus the linked call stack used for exception
// unwinding and stack trace capture.
package frame

import (
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/value"
)

// Frame is one method activation (JVMS §2.6). PC is a byte offset into
// Code — the JVM's bytecode index (bci) is itself a byte offset, so
// Frame does not keep a separate "instruction number"; pkg/interp's
// instruction boundary table (see pkg/interp/decode.go) translates a bci
// to a sequential instruction position; the interpreter itself runs on
// bcis only.
type Frame struct {
	Method      *classfile.MethodInfo
	ClassName   string
	LocalVars   []value.Value
	OperandStack []value.Value
	SP          int
	Code        []byte
	PC          int
	Caller      *Frame // back-pointer for exception unwinding and stack traces
}

// NewFrame allocates a frame for invoking method m, declared by
// className, with maxLocals/maxStack taken from its Code attribute.
func NewFrame(className string, m *classfile.MethodInfo, caller *Frame) *Frame {
	var maxLocals, maxStack int
	var code []byte
	if m.Code != nil {
		maxLocals = int(m.Code.MaxLocals)
		maxStack = int(m.Code.MaxStack)
		code = m.Code.Code
	}
	return &Frame{
		Method:       m,
		ClassName:    className,
		LocalVars:    make([]value.Value, maxLocals),
		OperandStack: make([]value.Value, maxStack),
		Code:         code,
		Caller:       caller,
	}
}

func (f *Frame) Push(v value.Value) {
	if f.SP >= len(f.OperandStack) {
		panic(fmt.Sprintf("%s.%s: operand stack overflow (capacity %d)", f.ClassName, f.Method.Name, len(f.OperandStack)))
	}
	f.OperandStack[f.SP] = v
	f.SP++
}

func (f *Frame) Pop() value.Value {
	if f.SP <= 0 {
		panic(fmt.Sprintf("%s.%s: operand stack underflow", f.ClassName, f.Method.Name))
	}
	f.SP--
	return f.OperandStack[f.SP]
}

// Peek returns the top-of-stack value without popping it.
func (f *Frame) Peek() value.Value {
	if f.SP <= 0 {
		panic(fmt.Sprintf("%s.%s: operand stack underflow on peek", f.ClassName, f.Method.Name))
	}
	return f.OperandStack[f.SP-1]
}

func (f *Frame) GetLocal(index int) value.Value {
	if index < 0 || index >= len(f.LocalVars) {
		panic(fmt.Sprintf("%s.%s: local variable index %d out of range (max %d)", f.ClassName, f.Method.Name, index, len(f.LocalVars)))
	}
	return f.LocalVars[index]
}

func (f *Frame) SetLocal(index int, v value.Value) {
	if index < 0 || index >= len(f.LocalVars) {
		panic(fmt.Sprintf("%s.%s: local variable index %d out of range (max %d)", f.ClassName, f.Method.Name, index, len(f.LocalVars)))
	}
	f.LocalVars[index] = v
}

// ReadU8 reads an unsigned byte operand and advances PC.
func (f *Frame) ReadU8() uint8 {
	v := f.Code[f.PC]
	f.PC++
	return v
}

// ReadI8 reads a signed byte operand and advances PC.
func (f *Frame) ReadI8() int8 {
	return int8(f.ReadU8())
}

// ReadU16 reads a big-endian unsigned 16-bit operand and advances PC.
func (f *Frame) ReadU16() uint16 {
	hi := f.ReadU8()
	lo := f.ReadU8()
	return uint16(hi)<<8 | uint16(lo)
}

// ReadI16 reads a big-endian signed 16-bit operand and advances PC.
func (f *Frame) ReadI16() int16 {
	return int16(f.ReadU16())
}

// ReadU32 reads a big-endian unsigned 32-bit operand and advances PC.
func (f *Frame) ReadU32() uint32 {
	a := uint32(f.ReadU8())
	b := uint32(f.ReadU8())
	c := uint32(f.ReadU8())
	d := uint32(f.ReadU8())
	return a<<24 | b<<16 | c<<8 | d
}

// ReadI32 reads a big-endian signed 32-bit operand and advances PC.
func (f *Frame) ReadI32() int32 {
	return int32(f.ReadU32())
}

// LineForPC maps a bci to a source line using the method's
// LineNumberTable, returning 0 when no line information is present.
func (f *Frame) LineForPC(pc int) int {
	if f.Method == nil || f.Method.Code == nil {
		return 0
	}
	line := 0
	for _, e := range f.Method.Code.LineNumbers {
		if int(e.StartPC) <= pc {
			line = int(e.LineNumber)
		} else {
			break
		}
	}
	return line
}

// StackTraceElement describes one frame the way
// Throwable.getStackTrace()/printStackTrace render it.
type StackTraceElement struct {
	ClassName  string
	MethodName string
	Line       int
}

// CaptureStackTrace walks Caller links from f to the root, producing the
// stack trace a Throwable captures at construction time (JVMS's
// fillInStackTrace semantics, simplified to the synchronous case corevm
// always runs in).
func CaptureStackTrace(f *Frame) []StackTraceElement {
	var trace []StackTraceElement
	for cur := f; cur != nil; cur = cur.Caller {
		name := ""
		if cur.Method != nil {
			name = cur.Method.Name
		}
		trace = append(trace, StackTraceElement{
			ClassName:  cur.ClassName,
			MethodName: name,
			Line:       cur.LineForPC(cur.PC),
		})
	}
	return trace
}
