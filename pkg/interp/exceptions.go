package interp

import (
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/value"
)

// JavaException represents a Java-observable throw in flight. It
// implements error so it can travel through ordinary Go error returns
// until the interpreter's exception-table dispatch catches it or it
// escapes the top frame.
type JavaException struct {
	class   *value.Class
	object  *value.JObject
	message string
}

func (e *JavaException) Error() string {
	if e.class == nil {
		return e.message
	}
	if e.message != "" {
		return fmt.Sprintf("%s: %s", e.class.Name, e.message)
	}
	return e.class.Name
}

func (e *JavaException) ClassName() string {
	if e.class == nil {
		return "<unresolved>"
	}
	return e.class.Name
}

func (e *JavaException) Object() *value.JObject { return e.object }

// Describe renders the exception the way an uncaught exception's "main"
// thread report does: ClassName: message.
func (e *JavaException) Describe() string { return e.Error() }

// NewJavaException allocates a throwable of the named class with a
// message, resolving the class through the VM's loader/registry.
func (vm *VM) NewJavaException(className, message string) (*JavaException, error) {
	class, err := vm.Registry.Resolve(vm.Loader, className)
	if err != nil {
		return nil, fmt.Errorf("resolving exception class %s: %w", className, err)
	}
	obj := value.NewObject(class)
	obj.SetField("java/lang/Throwable", "message", value.RefValue(message))
	return &JavaException{class: class, object: obj, message: message}, nil
}

// dispatchException looks for a handler for err within the current
// frame's exception table. If found, it sets f.PC to the handler and
// pushes the exception object, returning (true, nil) so the dispatch
// loop continues. Otherwise it returns (false, err) so the caller
// unwinds to its own caller (frames are popped by the unwind, not
// retained). No stack trace is recorded on the exception as it unwinds.
func (vm *VM) dispatchException(class *value.Class, f *frame.Frame, err error) (bool, error) {
	je, ok := err.(*JavaException)
	if !ok {
		var convErr error
		je, convErr = vm.wrapHostError(class, err)
		if convErr != nil {
			return false, err
		}
	}

	if f.Method.Code != nil {
		if handlerPC, ok := vm.findExceptionHandler(class, f.Method.Code.ExceptionHandlers, f.PC-1, je); ok {
			f.SP = 0
			f.Push(value.RefValue(je.object))
			f.PC = handlerPC
			return true, nil
		}
	}
	return false, je
}

// wrapHostError converts a plain Go error raised for a VM-level
// condition (division by zero, null deref, bad array index, bad cast)
// into the matching java.lang exception class, the way a real JVM's
// interpreter raises these conditions without any bytecode athrow.
func (vm *VM) wrapHostError(class *value.Class, err error) (*JavaException, error) {
	msg := err.Error()
	kind := classifyHostError(msg)
	je := vm.throwableError(class, kind, msg)
	return je, nil
}

func classifyHostError(msg string) string {
	switch {
	case contains(msg, "ArithmeticException"):
		return "java/lang/ArithmeticException"
	case contains(msg, "NullPointerException"):
		return "java/lang/NullPointerException"
	case contains(msg, "ArrayIndexOutOfBoundsException"):
		return "java/lang/ArrayIndexOutOfBoundsException"
	case contains(msg, "NegativeArraySizeException"):
		return "java/lang/NegativeArraySizeException"
	case contains(msg, "ClassCastException"):
		return "java/lang/ClassCastException"
	case contains(msg, "StackOverflowError"):
		return "java/lang/StackOverflowError"
	case contains(msg, "NoSuchMethodError"):
		return "java/lang/NoSuchMethodError"
	case contains(msg, "NoSuchFieldError"):
		return "java/lang/NoSuchFieldError"
	default:
		return "java/lang/InternalError"
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// findExceptionHandler scans a method's exception table for a handler
// whose range covers pc and whose catch type is either absent (a
// finally block) or a superclass of je's runtime class (JVMS §2.10's
// exception matching rule).
func (vm *VM) findExceptionHandler(currentClass *value.Class, handlers []classfile.ExceptionHandler, pc int, je *JavaException) (int, bool) {
	for _, h := range handlers {
		if pc < int(h.StartPC) || pc >= int(h.EndPC) {
			continue
		}
		if h.CatchType == 0 {
			return int(h.HandlerPC), true // finally / catch-all
		}
		catchName, err := classfile.GetClassName(currentClass.File.ConstantPool, h.CatchType)
		if err != nil {
			continue
		}
		catchClass, err := vm.Registry.Resolve(vm.Loader, catchName)
		if err != nil {
			continue
		}
		if je.class != nil && je.class.AssignableTo(catchClass) {
			return int(h.HandlerPC), true
		}
	}
	return 0, false
}
