// Package interp implements the bytecode interpreter: the dispatch loop,
// the five method-invocation variants, field and array access, exception
// dispatch, and class-initialization triggers spec §4.5 describes.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/config"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/jit"
	"github.com/go-jvm/corevm/pkg/loader"
	"github.com/go-jvm/corevm/pkg/natives"
	"github.com/go-jvm/corevm/pkg/trace"
	"github.com/go-jvm/corevm/pkg/value"
)

// defaultMaxCallDepth bounds recursion the way a real JVM's -Xss stack size
// bounds it; exceeding it raises StackOverflowError instead of crashing
// the host Go process.
const defaultMaxCallDepth = 2048

// VM holds everything execution needs to share across frames: the
// defining class loader, the class descriptor registry, the native
// method registry, and the baseline JIT.
type VM struct {
	Loader   loader.ClassLoader
	Registry *loader.Registry
	Natives  *natives.Registry
	Options  *config.Options

	stdout io.Writer
	stderr io.Writer

	jit       *jit.Compiler
	callDepth int
	callSites map[cacheKey]*callSite
}

// Stdout, Stderr, SystemProperty, ResolveClass, ThrowNew and
// InvokeMethodHandle together satisfy natives.VMContext: the narrow
// slice of VM that native method and bootstrap implementations are
// allowed to touch, so pkg/natives never imports pkg/interp back.
func (vm *VM) Stdout() io.Writer { return vm.stdout }
func (vm *VM) Stderr() io.Writer { return vm.stderr }

func (vm *VM) SystemProperty(key string) (string, bool) {
	v, ok := vm.Options.SystemProps[key]
	return v, ok
}

func (vm *VM) ResolveClass(binaryName string) (*value.Class, error) {
	return vm.Registry.Resolve(vm.Loader, binaryName)
}

// ThrowNew builds a JavaException for className/message and returns it
// as a plain error so native method bodies can `return value.Value{},
// vm.ThrowNew(...)` exactly like bytecode-level athrow handling expects.
func (vm *VM) ThrowNew(className, message string) error {
	je, err := vm.NewJavaException(className, message)
	if err != nil {
		return err
	}
	return je
}

// InvokeMethodHandle dispatches a resolved method handle (JVMS table
// 5.4.3.5-A reference kinds) on behalf of a linked invokedynamic call
// site — the mechanism LambdaMetafactory-produced lambdas use to invoke
// their captured implementation method.
func (vm *VM) InvokeMethodHandle(kind uint8, className, methodName, descriptor string, args []value.Value) (value.Value, error) {
	switch kind {
	case classfile.RefInvokeStatic:
		class, err := vm.Registry.Resolve(vm.Loader, className)
		if err != nil {
			return value.Value{}, err
		}
		method, declaring := class.FindMethod(methodName, descriptor)
		if method == nil {
			return value.Value{}, fmt.Errorf("NoSuchMethodError: %s.%s%s", className, methodName, descriptor)
		}
		return vm.executeMethod(declaring, method, args, nil)
	case classfile.RefInvokeSpecial, classfile.RefNewInvokeSpecial:
		class, err := vm.Registry.Resolve(vm.Loader, className)
		if err != nil {
			return value.Value{}, err
		}
		if kind == classfile.RefNewInvokeSpecial {
			if err := vm.EnsureInitialized(class, nil); err != nil {
				return value.Value{}, err
			}
			obj := value.NewObject(class)
			ctorArgs := append([]value.Value{value.RefValue(obj)}, args...)
			if _, err := vm.invokeSpecial(class, methodName, descriptor, ctorArgs, nil); err != nil {
				return value.Value{}, err
			}
			return value.RefValue(obj), nil
		}
		ctorArgs := args
		return vm.invokeSpecial(class, methodName, descriptor, ctorArgs, nil)
	case classfile.RefInvokeVirtual:
		if len(args) == 0 {
			return value.Value{}, fmt.Errorf("invokevirtual method handle requires a receiver argument")
		}
		recv, _ := args[0].Ref.(*value.JObject)
		return vm.invokeVirtual(recv, methodName, descriptor, args, nil)
	case classfile.RefInvokeInterface:
		if len(args) == 0 {
			return value.Value{}, fmt.Errorf("invokeinterface method handle requires a receiver argument")
		}
		recv, _ := args[0].Ref.(*value.JObject)
		return vm.invokeInterface(recv, methodName, descriptor, args, nil)
	default:
		return value.Value{}, fmt.Errorf("unsupported method handle reference kind %d", kind)
	}
}

// NewVM wires the given class loader, a fresh registry, the
// native method table, and (unless disabled) the baseline JIT into a
// ready-to-run VM.
func NewVM(cl loader.ClassLoader, opts *config.Options) *VM {
	if opts == nil {
		opts = config.DefaultOptions()
	}
	vm := &VM{
		Loader:   cl,
		Registry: loader.NewRegistry(),
		Natives:  natives.NewRegistry(),
		Options:  opts,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	natives.RegisterBuiltins(vm.Natives)
	if opts.JITEnabled {
		vm.jit = jit.NewCompiler()
	}
	return vm
}

// Execute resolves mainClass, runs its static initializer if needed, and
// invokes its `public static void main(String[])` entry point.
func (vm *VM) Execute(mainClassName string, args []string) error {
	class, err := vm.Registry.Resolve(vm.Loader, mainClassName)
	if err != nil {
		return fmt.Errorf("resolving main class %s: %w", mainClassName, err)
	}
	if err := vm.EnsureInitialized(class, nil); err != nil {
		return fmt.Errorf("initializing %s: %w", mainClassName, err)
	}

	method := class.File.FindMethod("main", "([Ljava/lang/String;)V")
	if method == nil {
		return fmt.Errorf("no main(String[]) method found in %s", mainClassName)
	}

	argArray, _ := value.NewArray("Ljava/lang/String;", len(args))
	for i, a := range args {
		argArray.Set(i, value.RefValue(a))
	}

	_, err = vm.InvokeStaticMethod(class, method, []value.Value{value.RefValue(argArray)}, nil)
	if je, ok := err.(*JavaException); ok {
		trace.Uncaught(je.ClassName(), je)
		fmt.Fprintf(vm.stderr, "Exception in thread \"main\" %s\n", je.Describe())
		return je
	}
	return err
}

// executeMethod runs the bytecode of method (declared by class) in a
// fresh frame, dispatching instructions until a return or an uncaught
// exception unwinds past this frame.
func (vm *VM) executeMethod(class *value.Class, method *classfile.MethodInfo, args []value.Value, caller *frame.Frame) (value.Value, error) {
	vm.callDepth++
	defer func() { vm.callDepth-- }()
	if vm.callDepth > defaultMaxCallDepth {
		return value.Value{}, vm.throwableError(class, "java/lang/StackOverflowError", "")
	}

	if method.IsNative() {
		return vm.invokeNative(class, method, args)
	}
	if method.IsAbstract() || method.Code == nil {
		return value.Value{}, fmt.Errorf("%s.%s%s has no Code attribute (abstract or native without registration)", class.Name, method.Name, method.Descriptor)
	}

	if vm.jit != nil {
		if result, ok, err := vm.jit.TryInvoke(class.Name, method, args); ok {
			return result, err
		}
	}

	f := frame.NewFrame(class.Name, method, caller)
	params, _, _ := value.ParseMethodDescriptor(method.Descriptor)
	loadArgsIntoLocals(f, args, params, method.IsStatic())

	for {
		if f.PC >= len(f.Code) {
			return value.Value{}, fmt.Errorf("%s.%s: fell off the end of code at pc %d", class.Name, method.Name, f.PC)
		}
		opcode := f.Code[f.PC]
		f.PC++
		result, hasReturn, err := vm.executeInstruction(class, f, opcode)
		if err != nil {
			handled, recovered := vm.dispatchException(class, f, err)
			if !handled {
				return value.Value{}, recovered
			}
			continue
		}
		if hasReturn {
			return result, nil
		}
	}
}

// loadArgsIntoLocals places invocation arguments into local variable
// slots 0..N, reserving slot 0 for `this` on instance invocations
// (JVMS §2.6.1).
func loadArgsIntoLocals(f *frame.Frame, args []value.Value, paramDescriptors []string, isStatic bool) {
	slot := 0
	argIdx := 0
	if !isStatic {
		if len(args) > 0 {
			f.SetLocal(0, args[0])
		}
		slot = 1
		argIdx = 1
	}
	for _, desc := range paramDescriptors {
		if argIdx >= len(args) {
			break
		}
		f.SetLocal(slot, args[argIdx])
		slot += value.TypeOfDescriptor(desc).Slots()
		argIdx++
	}
}

// throwableError builds a *JavaException for a VM-raised condition
// (array bounds, null pointer, arithmetic, class cast, and so on) when
// the exception class itself may not need full resolution to report —
// the message still flows through the same dispatch path as a
// bytecode-issued athrow.
func (vm *VM) throwableError(ctx *value.Class, className, message string) *JavaException {
	target, err := vm.Registry.Resolve(vm.Loader, className)
	if err != nil {
		// The exception class itself failed to resolve (a badly broken
		// bootstrap classpath); return a class-less JavaException whose
		// message carries the resolution failure instead of panicking.
		return &JavaException{class: nil, message: fmt.Sprintf("%s: %s (and %s could not be resolved: %v)", className, message, className, err)}
	}
	obj := value.NewObject(target)
	obj.SetField("java/lang/Throwable", "message", value.RefValue(message))
	return &JavaException{class: target, object: obj, message: message}
}
