package classfile

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/go-jvm/corevm/pkg/vmerr"
)

// Verify performs the structural checks of linking's verification phase
// (JVMS §4.10, spec §4.1's "Verify" stage): this_class, super_class and
// the interfaces resolve to class names, each method's exception table
// and LineNumberTable entries stay within its code array, and each
// method's StackMapTable frames (if present) have strictly increasing
// in-range offsets and no more locals/stack entries than the method's
// declared limits. Instructions are not decoded: their operands, the
// constant pool indices they use, and branch targets are not checked.
// This is a structural, attribute-consulting pass, not full data-flow
// type checking — corevm does not implement the type-inferring verifier
// a production JVM runs, matching spec's scope.
//
// All findings are collected via multierr rather than stopping at the
// first one, so a caller sees every defect in a single VerificationError.
func Verify(cf *ClassFile) error {
	var errs error

	if _, err := cf.ClassName(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("this_class: %w", err))
	}
	if cf.SuperClass != 0 {
		if _, err := cf.SuperClassName(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("super_class: %w", err))
		}
	}
	if _, err := cf.InterfaceNames(); err != nil {
		errs = multierr.Append(errs, err)
	}

	for i, m := range cf.Methods {
		if m.Code == nil {
			continue
		}
		if verr := verifyCode(m.Code); verr != nil {
			errs = multierr.Append(errs, fmt.Errorf("method %d (%s%s): %w", i, m.Name, m.Descriptor, verr))
		}
	}

	if errs != nil {
		name, _ := cf.ClassName()
		return &vmerr.VerificationError{Class: name, Reasons: stringify(multierr.Errors(errs))}
	}
	return nil
}

func stringify(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// verifyCode checks that every exception handler and LineNumberTable
// entry stays within the code array and that the StackMapTable is
// consistent with it. Instructions and their operands are not decoded.
func verifyCode(code *CodeAttribute) error {
	var errs error
	n := uint32(len(code.Code))

	for i, h := range code.ExceptionHandlers {
		if uint32(h.StartPC) >= n || uint32(h.EndPC) > n || uint32(h.HandlerPC) >= n {
			errs = multierr.Append(errs, fmt.Errorf("exception handler %d out of range (start=%d end=%d handler=%d len=%d)", i, h.StartPC, h.EndPC, h.HandlerPC, n))
			continue
		}
		if h.StartPC >= h.EndPC {
			errs = multierr.Append(errs, fmt.Errorf("exception handler %d has empty or inverted range [%d,%d)", i, h.StartPC, h.EndPC))
		}
	}

	for _, l := range code.LineNumbers {
		if uint32(l.StartPC) >= n {
			errs = multierr.Append(errs, fmt.Errorf("line number entry start_pc %d out of range", l.StartPC))
		}
	}

	if verr := verifyStackMapTable(code); verr != nil {
		errs = multierr.Append(errs, verr)
	}

	return errs
}

// verifyStackMapTable checks the JVMS §4.7.4 structural constraints a
// StackMapTable's frames must satisfy relative to the method they
// describe: offsets strictly increase and land within the code array,
// and no frame claims more locals or stack items than the method
// declared room for. This does not re-derive frame types from the
// bytecode itself (that's full verification-type dataflow analysis,
// out of scope here) — it only checks that the attribute is internally
// consistent with the code it annotates.
func verifyStackMapTable(code *CodeAttribute) error {
	if len(code.StackMapFrames) == 0 {
		return nil
	}
	var errs error
	n := int(len(code.Code))
	prevOffset := -1
	for i, frame := range code.StackMapFrames {
		if frame.Offset < 0 || frame.Offset >= n {
			errs = multierr.Append(errs, fmt.Errorf("stack map frame %d: offset %d out of range [0,%d)", i, frame.Offset, n))
		}
		if frame.Offset <= prevOffset {
			errs = multierr.Append(errs, fmt.Errorf("stack map frame %d: offset %d does not strictly increase past %d", i, frame.Offset, prevOffset))
		}
		prevOffset = frame.Offset

		if len(frame.Locals) > int(code.MaxLocals) {
			errs = multierr.Append(errs, fmt.Errorf("stack map frame %d: %d locals exceeds max_locals %d", i, len(frame.Locals), code.MaxLocals))
		}
		if len(frame.Stack) > int(code.MaxStack) {
			errs = multierr.Append(errs, fmt.Errorf("stack map frame %d: %d stack items exceeds max_stack %d", i, len(frame.Stack), code.MaxStack))
		}
	}
	return errs
}
