package interp

import (
	"testing"

	"github.com/go-jvm/corevm/pkg/value"
)

func TestSystemOutPrintln(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/io/PrintStream")
	vm, out, _ := newTestVM(fl)

	sysOut, err := vm.systemOutOrErr("out")
	if err != nil {
		t.Fatalf("systemOutOrErr(out): %v", err)
	}
	recv := sysOut.Ref.(*value.JObject)

	if _, _, err := vm.invokePrintStream(recv, "println", "(Ljava/lang/String;)V", []value.Value{value.RefValue("Hello, World!")}); err != nil {
		t.Fatalf("invokePrintStream: %v", err)
	}
	if got := out.String(); got != "Hello, World!\n" {
		t.Errorf("stdout = %q, want %q", got, "Hello, World!\n")
	}
}

func TestSystemErrDistinctFromOut(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/io/PrintStream")
	vm, out, errBuf := newTestVM(fl)

	sysErr, err := vm.systemOutOrErr("err")
	if err != nil {
		t.Fatalf("systemOutOrErr(err): %v", err)
	}
	recv := sysErr.Ref.(*value.JObject)
	vm.invokePrintStream(recv, "print", "(Ljava/lang/String;)V", []value.Value{value.RefValue("oops")})

	if out.Len() != 0 {
		t.Errorf("stdout = %q, want empty (message went to System.err)", out.String())
	}
	if got := errBuf.String(); got != "oops" {
		t.Errorf("stderr = %q, want %q", got, "oops")
	}
}

func TestPrintStreamNumericDescriptors(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/io/PrintStream")
	vm, out, _ := newTestVM(fl)
	sysOut, _ := vm.systemOutOrErr("out")
	recv := sysOut.Ref.(*value.JObject)

	cases := []struct {
		descriptor string
		arg        value.Value
		want       string
	}{
		{"(I)V", value.IntValue(-7), "-7\n"},
		{"(J)V", value.LongValue(1 << 40), "1099511627776\n"},
		{"(Z)V", value.BoolValue(true), "true\n"},
		{"(C)V", value.IntValue('A'), "A\n"},
		{"()V", value.Value{}, "\n"},
	}
	for _, c := range cases {
		out.Reset()
		args := []value.Value{c.arg}
		if c.descriptor == "()V" {
			args = nil
		}
		if _, _, err := vm.invokePrintStream(recv, "println", c.descriptor, args); err != nil {
			t.Fatalf("invokePrintStream(%s): %v", c.descriptor, err)
		}
		if got := out.String(); got != c.want {
			t.Errorf("println%s = %q, want %q", c.descriptor, got, c.want)
		}
	}
}

func TestPrintStreamNullString(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/io/PrintStream")
	vm, out, _ := newTestVM(fl)
	sysOut, _ := vm.systemOutOrErr("out")
	recv := sysOut.Ref.(*value.JObject)

	vm.invokePrintStream(recv, "println", "(Ljava/lang/String;)V", []value.Value{value.NullValue()})
	if got := out.String(); got != "null\n" {
		t.Errorf("println(null) = %q, want %q", got, "null\n")
	}
}

func TestPrintStreamUnsupportedDescriptor(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/io/PrintStream")
	vm, _, _ := newTestVM(fl)
	sysOut, _ := vm.systemOutOrErr("out")
	recv := sysOut.Ref.(*value.JObject)

	_, _, err := vm.invokePrintStream(recv, "println", "([I)V", []value.Value{value.NullValue()})
	if err == nil {
		t.Error("println([I)V should be reported as unsupported")
	}
}
