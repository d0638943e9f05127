package classfile

import (
	"encoding/binary"
	"fmt"
)

// VerificationTypeInfo tags one local-variable or operand-stack slot's
// type within a stack map frame (JVMS §4.7.4). Object/Uninitialized
// carry an extra operand (a constant pool index or a code offset
// respectively); every other tag is a bare one-byte marker.
type VerificationTypeInfo struct {
	Tag            uint8
	CPoolIndex     uint16 // Tag == VerifyObject
	Offset         uint16 // Tag == VerifyUninitialized
}

const (
	VerifyTop = iota
	VerifyInteger
	VerifyFloat
	VerifyDouble
	VerifyLong
	VerifyNull
	VerifyUninitializedThis
	VerifyObject
	VerifyUninitialized
)

// StackMapFrame is one decoded entry of a StackMapTable attribute (JVMS
// §4.7.4), normalized to an absolute bytecode offset and full
// locals/stack lists regardless of which of the seven frame type ranges
// the class file encoded it as.
type StackMapFrame struct {
	Offset int
	Locals []VerificationTypeInfo
	Stack  []VerificationTypeInfo
}

// parseStackMapTable decodes a StackMapTable attribute body (JVMS
// §4.7.4) into absolute-offset frames, tracking the locals array
// chop/append/replace rules across frames the way a real verifier's
// frame-merge step does, short of actually merging against the
// bytecode's inferred types.
func parseStackMapTable(data []byte) ([]StackMapFrame, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("StackMapTable: truncated entry count")
	}
	count := binary.BigEndian.Uint16(data[0:2])
	pos := 2

	var frames []StackMapFrame
	var locals []VerificationTypeInfo
	bci := -1 // first frame's offset_delta is its absolute offset; later frames add 1

	readVerificationType := func() (VerificationTypeInfo, error) {
		if pos >= len(data) {
			return VerificationTypeInfo{}, fmt.Errorf("truncated verification_type_info")
		}
		tag := data[pos]
		pos++
		vti := VerificationTypeInfo{Tag: tag}
		switch tag {
		case VerifyObject:
			if pos+2 > len(data) {
				return VerificationTypeInfo{}, fmt.Errorf("truncated Object verification_type_info")
			}
			vti.CPoolIndex = binary.BigEndian.Uint16(data[pos : pos+2])
			pos += 2
		case VerifyUninitialized:
			if pos+2 > len(data) {
				return VerificationTypeInfo{}, fmt.Errorf("truncated Uninitialized verification_type_info")
			}
			vti.Offset = binary.BigEndian.Uint16(data[pos : pos+2])
			pos += 2
		}
		return vti, nil
	}

	for i := uint16(0); i < count; i++ {
		if pos >= len(data) {
			return nil, fmt.Errorf("StackMapTable: truncated frame %d", i)
		}
		frameType := data[pos]
		pos++

		var offsetDelta int
		switch {
		case frameType <= 63: // SAME
			offsetDelta = int(frameType)
		case frameType <= 127: // SAME_LOCALS_1_STACK_ITEM
			offsetDelta = int(frameType) - 64
			vti, err := readVerificationType()
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			frames = append(frames, advanceFrame(&bci, offsetDelta, locals, []VerificationTypeInfo{vti}))
			continue
		case frameType >= 128 && frameType <= 246:
			return nil, fmt.Errorf("frame %d: reserved frame_type %d", i, frameType)
		case frameType == 247: // SAME_LOCALS_1_STACK_ITEM_EXTENDED
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated offset_delta", i)
			}
			offsetDelta = int(binary.BigEndian.Uint16(data[pos : pos+2]))
			pos += 2
			vti, err := readVerificationType()
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			frames = append(frames, advanceFrame(&bci, offsetDelta, locals, []VerificationTypeInfo{vti}))
			continue
		case frameType >= 248 && frameType <= 250: // CHOP
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated offset_delta", i)
			}
			offsetDelta = int(binary.BigEndian.Uint16(data[pos : pos+2]))
			pos += 2
			chop := 251 - int(frameType)
			if chop > len(locals) {
				return nil, fmt.Errorf("frame %d: CHOP %d exceeds %d live locals", i, chop, len(locals))
			}
			locals = locals[:len(locals)-chop]
			frames = append(frames, advanceFrame(&bci, offsetDelta, locals, nil))
			continue
		case frameType == 251: // SAME_FRAME_EXTENDED
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated offset_delta", i)
			}
			offsetDelta = int(binary.BigEndian.Uint16(data[pos : pos+2]))
			pos += 2
			frames = append(frames, advanceFrame(&bci, offsetDelta, locals, nil))
			continue
		case frameType >= 252 && frameType <= 254: // APPEND
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated offset_delta", i)
			}
			offsetDelta = int(binary.BigEndian.Uint16(data[pos : pos+2]))
			pos += 2
			n := int(frameType) - 251
			appended := make([]VerificationTypeInfo, 0, n)
			for j := 0; j < n; j++ {
				vti, err := readVerificationType()
				if err != nil {
					return nil, fmt.Errorf("frame %d: %w", i, err)
				}
				appended = append(appended, vti)
			}
			locals = append(append([]VerificationTypeInfo{}, locals...), appended...)
			frames = append(frames, advanceFrame(&bci, offsetDelta, locals, nil))
			continue
		case frameType == 255: // FULL_FRAME
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated offset_delta", i)
			}
			offsetDelta = int(binary.BigEndian.Uint16(data[pos : pos+2]))
			pos += 2
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated number_of_locals", i)
			}
			numLocals := binary.BigEndian.Uint16(data[pos : pos+2])
			pos += 2
			newLocals := make([]VerificationTypeInfo, 0, numLocals)
			for j := uint16(0); j < numLocals; j++ {
				vti, err := readVerificationType()
				if err != nil {
					return nil, fmt.Errorf("frame %d: %w", i, err)
				}
				newLocals = append(newLocals, vti)
			}
			if pos+2 > len(data) {
				return nil, fmt.Errorf("frame %d: truncated number_of_stack_items", i)
			}
			numStack := binary.BigEndian.Uint16(data[pos : pos+2])
			pos += 2
			stack := make([]VerificationTypeInfo, 0, numStack)
			for j := uint16(0); j < numStack; j++ {
				vti, err := readVerificationType()
				if err != nil {
					return nil, fmt.Errorf("frame %d: %w", i, err)
				}
				stack = append(stack, vti)
			}
			locals = newLocals
			frames = append(frames, advanceFrame(&bci, offsetDelta, locals, stack))
			continue
		}

		// SAME and nothing-read cases fall through to here.
		frames = append(frames, advanceFrame(&bci, offsetDelta, locals, nil))
	}

	return frames, nil
}

// advanceFrame applies JVMS §4.7.4's offset_delta rule (the first frame's
// delta is its absolute offset; every later frame's is delta+1 added to
// the previous frame's offset) and records a defensive copy of locals so
// later CHOP/APPEND mutation of the shared slice doesn't retroactively
// change an already-recorded frame.
func advanceFrame(bci *int, offsetDelta int, locals, stack []VerificationTypeInfo) StackMapFrame {
	if *bci < 0 {
		*bci = offsetDelta
	} else {
		*bci += offsetDelta + 1
	}
	localsCopy := append([]VerificationTypeInfo{}, locals...)
	return StackMapFrame{Offset: *bci, Locals: localsCopy, Stack: stack}
}
