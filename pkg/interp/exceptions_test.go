package interp

import (
	"errors"
	"testing"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/value"
)

func TestClassifyHostError(t *testing.T) {
	cases := []struct {
		msg  string
		want string
	}{
		{"division by zero: ArithmeticException", "java/lang/ArithmeticException"},
		{"NullPointerException: receiver is null", "java/lang/NullPointerException"},
		{"index 9 out of bounds: ArrayIndexOutOfBoundsException", "java/lang/ArrayIndexOutOfBoundsException"},
		{"NegativeArraySizeException: -1", "java/lang/NegativeArraySizeException"},
		{"ClassCastException: Foo cannot be cast to Bar", "java/lang/ClassCastException"},
		{"StackOverflowError", "java/lang/StackOverflowError"},
		{"NoSuchMethodError: Foo.bar()V", "java/lang/NoSuchMethodError"},
		{"NoSuchFieldError: Foo.bar", "java/lang/NoSuchFieldError"},
		{"some other condition", "java/lang/InternalError"},
	}
	for _, c := range cases {
		if got := classifyHostError(c.msg); got != c.want {
			t.Errorf("classifyHostError(%q) = %q, want %q", c.msg, got, c.want)
		}
	}
}

func TestWrapHostError(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/lang/ArithmeticException")
	vm, _, _ := newTestVM(fl)

	je, err := vm.wrapHostError(nil, errors.New("/ by zero: ArithmeticException"))
	if err != nil {
		t.Fatalf("wrapHostError: %v", err)
	}
	if je.ClassName() != "java/lang/ArithmeticException" {
		t.Errorf("ClassName() = %q, want java/lang/ArithmeticException", je.ClassName())
	}
	if je.Object() == nil {
		t.Error("wrapped exception should carry a live object")
	}
}

func TestFindExceptionHandlerMatchesRange(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/lang/ArithmeticException")
	vm, _, _ := newTestVM(fl)

	je, err := vm.wrapHostError(nil, errors.New("ArithmeticException"))
	if err != nil {
		t.Fatalf("wrapHostError: %v", err)
	}

	handlers := []classfile.ExceptionHandler{
		{StartPC: 0, EndPC: 5, HandlerPC: 10, CatchType: 0}, // catch-all
	}
	pc, ok := vm.findExceptionHandler(nil, handlers, 2, je)
	if !ok || pc != 10 {
		t.Errorf("findExceptionHandler in-range = (%d, %v), want (10, true)", pc, ok)
	}

	_, ok = vm.findExceptionHandler(nil, handlers, 9, je)
	if ok {
		t.Error("findExceptionHandler should not match a pc outside [StartPC, EndPC)")
	}
}

func TestDispatchExceptionSetsHandlerPC(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/lang/ArithmeticException")
	vm, _, _ := newTestVM(fl)

	code := []byte{0x10, 42, 0xAC} // irrelevant to this test; only length matters for PC math
	m := methodWithCode("m", "()I", 2, 1, code)
	m.Code.ExceptionHandlers = []classfile.ExceptionHandler{
		{StartPC: 0, EndPC: 3, HandlerPC: 2, CatchType: 0},
	}
	class := selfContainedClass("Thrower", []classfile.MethodInfo{m})
	f := frame.NewFrame(class.Name, &class.File.Methods[0], nil)
	f.PC = 1 // pretend the faulting opcode was at index 0, PC already advanced past it

	handled, err := vm.dispatchException(class, f, errors.New("/ by zero: ArithmeticException"))
	if !handled || err != nil {
		t.Fatalf("dispatchException = (%v, %v), want (true, nil)", handled, err)
	}
	if f.PC != 2 {
		t.Errorf("f.PC = %d, want 2 (handler pc)", f.PC)
	}
	if f.SP != 1 {
		t.Errorf("f.SP = %d, want 1 (exception object pushed)", f.SP)
	}
}

func TestDispatchExceptionNoHandlerPropagates(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/lang/ArithmeticException")
	vm, _, _ := newTestVM(fl)

	m := methodWithCode("m", "()I", 2, 1, []byte{0xAC})
	class := selfContainedClass("Thrower", []classfile.MethodInfo{m})
	f := frame.NewFrame(class.Name, &class.File.Methods[0], nil)
	f.PC = 1

	handled, err := vm.dispatchException(class, f, errors.New("/ by zero: ArithmeticException"))
	if handled {
		t.Fatal("dispatchException should report false with no matching handler")
	}
	je, ok := err.(*JavaException)
	if !ok {
		t.Fatalf("propagated error type = %T, want *JavaException", err)
	}
	if je.ClassName() != "java/lang/ArithmeticException" {
		t.Errorf("ClassName() = %q, want java/lang/ArithmeticException", je.ClassName())
	}
}

func TestExecuteMethodDivideByZeroThrows(t *testing.T) {
	fl := newFakeLoader()
	fl.add("java/lang/ArithmeticException")
	vm, _, _ := newTestVM(fl)

	// int divZero(int a) { return a / 0; }
	code := []byte{OpIload0, OpIconst0, OpIdiv, OpIreturn}
	m := methodWithCode("divZero", "(I)I", 2, 1, code)
	class := selfContainedClass("Div", []classfile.MethodInfo{m})

	_, err := vm.executeMethod(class, &class.File.Methods[0], []value.Value{value.IntValue(10)}, nil)
	if err == nil {
		t.Fatal("divide by zero should propagate an error")
	}
	je, ok := err.(*JavaException)
	if !ok {
		t.Fatalf("error type = %T, want *JavaException", err)
	}
	if je.ClassName() != "java/lang/ArithmeticException" {
		t.Errorf("ClassName() = %q, want java/lang/ArithmeticException", je.ClassName())
	}
}
