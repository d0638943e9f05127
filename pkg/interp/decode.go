package interp

import "fmt"

// InstructionBoundaries walks a method's code array once and returns the
// byte offset of every instruction in order, plus a set membership map
// from offset to instruction index. This is the byte-offset-to-
// instruction-index translation spec's data model calls for: exception
// handlers, line numbers, and branch targets are all stored as byte
// offsets in the class file. The table answers "which instruction is
// this" and "is this offset really an instruction boundary" rather than
// an arbitrary byte inside a multi-byte operand. The verifier, the JIT
// selector and the interpreter do not call it; each works on byte
// offsets directly.
func InstructionBoundaries(code []byte) ([]int, map[int]int, error) {
	var offsets []int
	index := map[int]int{}
	pc := 0
	for pc < len(code) {
		index[pc] = len(offsets)
		offsets = append(offsets, pc)
		n, err := instructionLength(code, pc)
		if err != nil {
			return nil, nil, err
		}
		pc += n
	}
	return offsets, index, nil
}

// instructionLength returns the total encoded length (opcode + operands)
// of the instruction starting at pc.
func instructionLength(code []byte, pc int) (int, error) {
	if pc >= len(code) {
		return 0, fmt.Errorf("pc %d out of range (code length %d)", pc, len(code))
	}
	op := code[pc]
	switch op {
	case OpTableswitch:
		p := pc + 1
		for p%4 != 0 { // skip 0-3 padding bytes to 4-byte alignment
			p++
		}
		if p+12 > len(code) {
			return 0, fmt.Errorf("truncated tableswitch at pc %d", pc)
		}
		low := be32(code[p+4 : p+8])
		high := be32(code[p+8 : p+12])
		count := high - low + 1
		if count < 0 {
			return 0, fmt.Errorf("invalid tableswitch range at pc %d", pc)
		}
		end := p + 12 + int(count)*4
		return end - pc, nil

	case OpLookupswitch:
		p := pc + 1
		for p%4 != 0 {
			p++
		}
		if p+8 > len(code) {
			return 0, fmt.Errorf("truncated lookupswitch at pc %d", pc)
		}
		npairs := be32(code[p+4 : p+8])
		if npairs < 0 {
			return 0, fmt.Errorf("invalid lookupswitch count at pc %d", pc)
		}
		end := p + 8 + int(npairs)*8
		return end - pc, nil

	case OpWide:
		if pc+1 >= len(code) {
			return 0, fmt.Errorf("truncated wide at pc %d", pc)
		}
		if code[pc+1] == OpIinc {
			return 6, nil // wide + opcode + u2 index + s2 const
		}
		return 4, nil // wide + opcode + u2 index

	default:
		return fixedLength(op), nil
	}
}

func be32(b []byte) int32 {
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

// fixedLength returns the encoded length of every instruction whose
// length doesn't depend on its operand values (everything but the two
// switch opcodes and the wide prefix, handled above).
func fixedLength(op byte) int {
	switch op {
	case OpBipush, OpLdc, OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore, OpRet, OpNewarray:
		return 2
	case OpSipush, OpLdcW, OpLdc2W, OpIinc, OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpGoto, OpJsr, OpGetstatic, OpPutstatic, OpGetfield, OpPutfield,
		OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpNew, OpAnewarray,
		OpCheckcast, OpInstanceof, OpIfnull, OpIfnonnull:
		return 3
	case OpMultianewarray:
		return 4
	case OpInvokeinterface, OpInvokedynamic, OpGotoW, OpJsrW:
		return 5
	default:
		return 1
	}
}
