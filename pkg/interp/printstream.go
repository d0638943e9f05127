package interp

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-jvm/corevm/pkg/value"
)

// printStreamWriterField is the synthetic field corevm stores a
// java.io.PrintStream instance's backing writer under. System.out/err
// are the only two instances the bootstrap class library needs, so
// corevm special-cases their construction instead of running
// FileOutputStream's real native bridge down to an OS file descriptor
// (spec §6's "no persisted state beyond stdio" scope).
const printStreamWriterField = "__writer"

// systemOutOrErr builds a new System.out/System.err PrintStream instance
// on every getstatic, backed directly by vm.stdout/vm.stderr.
func (vm *VM) systemOutOrErr(name string) (value.Value, error) {
	class, err := vm.Registry.Resolve(vm.Loader, "java/io/PrintStream")
	if err != nil {
		return value.Value{}, err
	}
	obj := value.NewObject(class)
	var w io.Writer
	if name == "out" {
		w = vm.stdout
	} else {
		w = vm.stderr
	}
	obj.SetField("java/io/PrintStream", printStreamWriterField, value.RefValue(w))
	return value.RefValue(obj), nil
}

// invokePrintStream implements the print/println overloads javac emits
// for System.out/err calls, writing straight to the instance's backing
// writer rather than interpreting java.io.PrintStream's real bytecode.
func (vm *VM) invokePrintStream(recv *value.JObject, methodName, descriptor string, args []value.Value) (value.Value, bool, error) {
	wv, _ := recv.GetField("java/io/PrintStream", printStreamWriterField)
	w, _ := wv.Ref.(io.Writer)
	if w == nil {
		return value.Value{}, false, fmt.Errorf("InternalError: PrintStream instance missing backing writer")
	}

	newline := methodName == "println"
	if !newline && methodName != "print" {
		return value.Value{}, false, nil
	}

	var s string
	switch descriptor {
	case "()V":
		s = ""
	case "(I)V":
		s = strconv.FormatInt(int64(args[0].Int), 10)
	case "(J)V":
		s = strconv.FormatInt(args[0].Long, 10)
	case "(D)V":
		s = strconv.FormatFloat(args[0].Double, 'g', -1, 64)
	case "(F)V":
		s = strconv.FormatFloat(float64(args[0].Float), 'g', -1, 32)
	case "(Z)V":
		s = "false"
		if args[0].Int != 0 {
			s = "true"
		}
	case "(C)V":
		s = string(rune(args[0].Int))
	case "(Ljava/lang/String;)V", "(Ljava/lang/Object;)V":
		s = printStreamArgString(args[0])
	default:
		return value.Value{}, false, fmt.Errorf("PrintStream.%s: unsupported descriptor %s", methodName, descriptor)
	}

	if newline {
		s += "\n"
	}
	fmt.Fprint(w, s)
	return value.Value{}, false, nil
}

func printStreamArgString(v value.Value) string {
	if v.IsNull() {
		return "null"
	}
	if s, ok := v.Ref.(string); ok {
		return s
	}
	if obj, ok := v.Ref.(*value.JObject); ok {
		return obj.String()
	}
	return fmt.Sprintf("%v", v.Ref)
}
