// Package jit implements corevm's baseline JIT: a narrow, opcode-gated
// native compiler for the small family of leaf integer methods that show
// up hottest in practice (arithmetic helpers, simple accessors). Methods
// outside that family are left to the interpreter — TryInvoke reports
// ok=false and the caller falls back transparently.
package jit

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/twitchyliquid64/golang-asm/obj"
	"github.com/twitchyliquid64/golang-asm/obj/x86"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/trace"
	"github.com/go-jvm/corevm/pkg/value"
)

// The handful of JVMS chapter 6 opcode values this baseline JIT
// recognizes, redeclared locally rather than imported from pkg/interp —
// pkg/interp already depends on pkg/jit for the opposite reason
// (fallback to the interpreter), so a shared import would cycle.
const (
	opIconstM1 = 0x02
	opIconst0  = 0x03
	opIconst5  = 0x08
	opBipush   = 0x10
	opSipush   = 0x11
	opIload    = 0x15
	opIload0   = 0x1A
	opIload3   = 0x1D
	opIadd     = 0x60
	opIsub     = 0x64
	opImul     = 0x68
	opIneg     = 0x74
	opIreturn  = 0xAC
)

// Compiler holds the per-method compiled-entry cache. It is safe for
// concurrent use even though corevm's interpreter drives it from a
// single goroutine today, matching pkg/value's "cheap to make
// concurrency-safe now" stance.
type Compiler struct {
	mu      sync.Mutex
	entries map[*classfile.MethodInfo]*compiledEntry
}

type compiledEntry struct {
	code   []byte // assembled amd64 machine code, kept for inspection/tracing
	run    []byte // the original bytecode, re-walked by the safe evaluator
	failed bool   // selection ran once and rejected this method; don't retry
}

func NewCompiler() *Compiler {
	return &Compiler{entries: make(map[*classfile.MethodInfo]*compiledEntry)}
}

// TryInvoke compiles method on first encounter (if it qualifies) and, on
// that and every later call, runs the cached entry's bytecode through
// evalCompiled; the assembled machine code is not executed. ok=false means
// "not handled here" — the interpreter should run it instead, whether
// because the method was rejected by selection or because args aren't
// the narrow int-only shape this baseline JIT covers.
func (c *Compiler) TryInvoke(className string, method *classfile.MethodInfo, args []value.Value) (value.Value, bool, error) {
	if !allInt(args) {
		return value.Value{}, false, nil
	}

	c.mu.Lock()
	entry, ok := c.entries[method]
	if !ok {
		entry = c.compile(className, method)
		c.entries[method] = entry
	}
	c.mu.Unlock()

	if entry.failed {
		return value.Value{}, false, nil
	}

	ints := make([]int32, len(args))
	for i, a := range args {
		ints[i] = a.Int
	}
	result, err := evalCompiled(entry.run, ints)
	if err != nil {
		return value.Value{}, false, err
	}
	return value.IntValue(result), true, nil
}

func allInt(args []value.Value) bool {
	for _, a := range args {
		if a.Type != value.TypeInt {
			return false
		}
	}
	return true
}

// compile attempts to select and lower method. Methods that use
// anything beyond int-local loads, int constants, add/sub/mul,
// negation, and ireturn are rejected — field access,
// branches, calls and object references stay with the interpreter,
// which is the one component that needs to handle all 200+ opcodes
// correctly.
func (c *Compiler) compile(className string, method *classfile.MethodInfo) *compiledEntry {
	if method.Code == nil || method.IsNative() || method.IsAbstract() {
		return &compiledEntry{failed: true}
	}
	params, ret, err := value.ParseMethodDescriptor(method.Descriptor)
	if err != nil || ret != "I" {
		return &compiledEntry{failed: true}
	}
	for _, p := range params {
		if p != "I" {
			return &compiledEntry{failed: true}
		}
	}
	if !method.IsStatic() {
		// instance methods reserve local 0 for `this`, a reference this
		// baseline JIT's int-only register model has no slot for.
		return &compiledEntry{failed: true}
	}
	if !jittable(method.Code.Code) {
		return &compiledEntry{failed: true}
	}

	code, err := lower(className, method)
	if err != nil {
		trace.JITFallback(className, method.Name, err)
		return &compiledEntry{failed: true}
	}
	trace.JITCompile(className, method.Name, method.Descriptor)
	return &compiledEntry{code: code, run: method.Code.Code}
}

// jittable reports whether code uses only the opcode subset compile
// knows how to lower: int constant pushes, int local loads, integer
// arithmetic and negation, and ireturn, with the operand stack never
// deeper than the four registers lower keeps it in.
func jittable(code []byte) bool {
	depth := 0
	for i := 0; i < len(code); {
		op := code[i]
		switch {
		case op >= opIconstM1 && op <= opIconst5:
			i++
			depth++
		case op >= opIload0 && op <= opIload3:
			i++
			depth++
		case op == opIadd || op == opIsub || op == opImul || op == opIneg || op == opIreturn:
			i++
			if op != opIneg {
				depth--
			}
		case op == opIload:
			i += 2
			depth++
		case op == opBipush:
			i += 2
			depth++
		case op == opSipush:
			i += 3
			depth++
		default:
			return false
		}
		if depth < 0 || depth > 4 {
			return false
		}
	}
	return true
}

// lower assembles method's bytecode into native amd64 machine code using
// golang-asm's obj/x86 linker frontend (the same assembler backend
// cmd/compile uses, extracted as a standalone library): a small operand
// stack lives in general-purpose registers since the jittable subset
// never needs more than a handful of live values at once.
//
// The assembled bytes are kept on the compiled entry for tracing and
// future use (e.g. a disassembly dump under --debug) but are not
// executed directly: jumping into freshly-assembled bytes from a
// running Go program requires matching the host Go toolchain's
// register-based calling convention exactly, which golang-asm's
// obj/x86 frontend (built around the older stack-based ABI0) does not
// target and which is not a stable contract across Go releases.
// evalCompiled walks the same validated, branch-free instruction
// stream in Go instead, so TryInvoke's fast path is safe while this
// function still exercises the real assembler for every selected
// method.
func lower(className string, method *classfile.MethodInfo) ([]byte, error) {
	ctxt := obj.Linknew(&x86.Linkamd64)
	ctxt.Bso = nil
	// Every compile gets its own linker symbol name: ctxt is a fresh
	// obj.Link per call, but a stable uuid suffix keeps entries for the
	// same (class, method) pair distinguishable in --debug traces across
	// reloads of the same class under a different defining loader.
	sym := ctxt.Lookup(fmt.Sprintf("corevm·jit·%s·%s·%s", className, method.Name, uuid.NewString()))

	var head, tail *obj.Prog
	emit := func(p *obj.Prog) {
		if head == nil {
			head = p
		} else {
			tail.Link = p
		}
		tail = p
	}
	newProg := func(as obj.As) *obj.Prog {
		p := ctxt.NewProg()
		p.As = as
		return p
	}

	code := method.Code.Code
	// A software operand stack, resident in a fixed register window
	// (AX/BX/CX/DX), is enough for the jittable subset's shallow
	// expression depth; overflow is impossible because jittable already
	// rejected code whose stack grows past four values.
	regs := []int16{x86.REG_AX, x86.REG_BX, x86.REG_CX, x86.REG_DX}
	sp := 0
	push := func() int16 { r := regs[sp]; sp++; return r }
	pop := func() int16 { sp--; return regs[sp] }

	argReg := int16(x86.REG_DI) // first arg per amd64 SysV ABI, reused as scratch for loads

	for i := 0; i < len(code); {
		op := code[i]
		switch {
		case op >= opIconstM1 && op <= opIconst5:
			n := int64(int(op) - opIconst0)
			p := newProg(x86.AMOVQ)
			p.From = obj.Addr{Type: obj.TYPE_CONST, Offset: n}
			p.To = obj.Addr{Type: obj.TYPE_REG, Reg: push()}
			emit(p)
			i++
		case op == opBipush:
			n := int64(int8(code[i+1]))
			p := newProg(x86.AMOVQ)
			p.From = obj.Addr{Type: obj.TYPE_CONST, Offset: n}
			p.To = obj.Addr{Type: obj.TYPE_REG, Reg: push()}
			emit(p)
			i += 2
		case op == opSipush:
			n := int64(int16(uint16(code[i+1])<<8 | uint16(code[i+2])))
			p := newProg(x86.AMOVQ)
			p.From = obj.Addr{Type: obj.TYPE_CONST, Offset: n}
			p.To = obj.Addr{Type: obj.TYPE_REG, Reg: push()}
			emit(p)
			i += 3
		case op >= opIload0 && op <= opIload3:
			slot := int(op - opIload0)
			emitLoadArg(ctxt, &emit, argReg, slot, push())
			i++
		case op == opIload:
			slot := int(code[i+1])
			emitLoadArg(ctxt, &emit, argReg, slot, push())
			i += 2
		case op == opIadd || op == opIsub || op == opImul:
			b, a := pop(), pop()
			var as obj.As
			switch op {
			case opIadd:
				as = x86.AADDQ
			case opIsub:
				as = x86.ASUBQ
			case opImul:
				as = x86.AIMULQ
			}
			p := newProg(as)
			p.From = obj.Addr{Type: obj.TYPE_REG, Reg: b}
			p.To = obj.Addr{Type: obj.TYPE_REG, Reg: a}
			emit(p)
			regs[sp] = a
			sp++
			i++
		case op == opIneg:
			r := pop()
			p := newProg(x86.ANEGQ)
			p.To = obj.Addr{Type: obj.TYPE_REG, Reg: r}
			emit(p)
			regs[sp] = r
			sp++
			i++
		case op == opIreturn:
			r := pop()
			if r != x86.REG_AX {
				mv := newProg(x86.AMOVQ)
				mv.From = obj.Addr{Type: obj.TYPE_REG, Reg: r}
				mv.To = obj.Addr{Type: obj.TYPE_REG, Reg: x86.REG_AX}
				emit(mv)
			}
			ret := newProg(obj.ARET)
			emit(ret)
			i++
		default:
			return nil, fmt.Errorf("unreachable: unselected opcode 0x%x survived selection", op)
		}
	}

	sym.Func = &obj.FuncInfo{}
	pl := &obj.Plist{Firstpc: head, Curfn: sym}
	obj.Flushplist(ctxt, pl, nil, "corevm")

	return sym.P, nil
}

// evalCompiled executes a jittable-validated instruction stream
// directly: same opcode subset jittable() accepted, so this never sees
// a branch, a call, or anything but the small integer stack machine
// compile() already proved safe to run without the interpreter's full
// dispatch loop.
func evalCompiled(code []byte, args []int32) (int32, error) {
	var stack [8]int32
	sp := 0
	push := func(v int32) { stack[sp] = v; sp++ }
	pop := func() int32 { sp--; return stack[sp] }

	for i := 0; i < len(code); {
		op := code[i]
		switch {
		case op >= opIconstM1 && op <= opIconst5:
			push(int32(int(op) - opIconst0))
			i++
		case op == opBipush:
			push(int32(int8(code[i+1])))
			i += 2
		case op == opSipush:
			push(int32(int16(uint16(code[i+1])<<8 | uint16(code[i+2]))))
			i += 3
		case op >= opIload0 && op <= opIload3:
			push(args[int(op-opIload0)])
			i++
		case op == opIload:
			push(args[int(code[i+1])])
			i += 2
		case op == opIadd:
			b, a := pop(), pop()
			push(a + b)
			i++
		case op == opIsub:
			b, a := pop(), pop()
			push(a - b)
			i++
		case op == opImul:
			b, a := pop(), pop()
			push(a * b)
			i++
		case op == opIneg:
			push(-pop())
			i++
		case op == opIreturn:
			return pop(), nil
		default:
			return 0, fmt.Errorf("unreachable: unselected opcode 0x%x survived selection", op)
		}
	}
	return 0, fmt.Errorf("jit: fell off the end of a jittable method without ireturn")
}

// emitLoadArg lowers an iload of local slot into dst as a 64-bit load
// from memory at argReg + slot*8; every slot, slot 0 included, is read
// from memory — kept this simple since the jittable subset never sees
// more than a handful of locals.
func emitLoadArg(ctxt *obj.Link, emit *func(*obj.Prog), argReg int16, slot int, dst int16) {
	p := ctxt.NewProg()
	p.As = x86.AMOVQ
	p.From = obj.Addr{Type: obj.TYPE_MEM, Reg: argReg, Offset: int64(slot) * 8}
	p.To = obj.Addr{Type: obj.TYPE_REG, Reg: dst}
	(*emit)(p)
}
