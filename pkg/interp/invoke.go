package interp

import (
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/frame"
	"github.com/go-jvm/corevm/pkg/trace"
	"github.com/go-jvm/corevm/pkg/value"
)

// EnsureInitialized triggers <clinit> for class and, transitively, its
// superclass chain, the way any first active use does (JVMS §5.5): a
// new instance, a static field access, a static method call, or a
// subclass's own initialization. caller is threaded through purely so a
// failing <clinit> reports a stack trace rooted at the triggering site.
func (vm *VM) EnsureInitialized(class *value.Class, caller *frame.Frame) error {
	if class.Super != nil {
		if err := vm.EnsureInitialized(class.Super, caller); err != nil {
			return err
		}
	}
	if !class.BeginInit() {
		return nil
	}
	defer class.FinishInit()

	trace.ClassInit(class.Name)

	clinit := class.File.FindMethod("<clinit>", "()V")
	if clinit == nil {
		return nil
	}
	_, err := vm.executeMethod(class, clinit, nil, caller)
	if err != nil {
		if je, ok := err.(*JavaException); ok {
			return vm.wrapInInitializerError(class, je)
		}
		return err
	}
	return nil
}

func (vm *VM) wrapInInitializerError(class *value.Class, cause *JavaException) error {
	wrapped, err := vm.NewJavaException("java/lang/ExceptionInInitializerError", fmt.Sprintf("%s: %s", class.Name, cause.Error()))
	if err != nil {
		return cause
	}
	return wrapped
}

// InvokeStaticMethod runs a static method after ensuring its declaring
// class is initialized.
func (vm *VM) InvokeStaticMethod(class *value.Class, method *classfile.MethodInfo, args []value.Value, caller *frame.Frame) (value.Value, error) {
	if err := vm.EnsureInitialized(class, caller); err != nil {
		return value.Value{}, err
	}
	return vm.executeMethod(class, method, args, caller)
}

// invokeSpecial implements invokespecial's resolution rule: start the
// search at the statically named class rather than the receiver's
// runtime class (JVMS §6.5.invokespecial) — this is how private
// methods, constructors, and super.foo() calls bypass virtual dispatch.
func (vm *VM) invokeSpecial(staticClass *value.Class, name, descriptor string, args []value.Value, caller *frame.Frame) (value.Value, error) {
	method, declaring := staticClass.FindMethod(name, descriptor)
	if method == nil {
		return value.Value{}, fmt.Errorf("NoSuchMethodError: %s.%s%s", staticClass.Name, name, descriptor)
	}
	return vm.executeMethod(declaring, method, args, caller)
}

// invokeVirtual implements virtual dispatch: start the method search at
// the receiver's actual runtime class (JVMS §6.5.invokevirtual).
func (vm *VM) invokeVirtual(receiver *value.JObject, name, descriptor string, args []value.Value, caller *frame.Frame) (value.Value, error) {
	if receiver == nil {
		return value.Value{}, fmt.Errorf("NullPointerException: invoking %s%s on null", name, descriptor)
	}
	if receiver.Closure != nil && receiver.Closure.MethodName == name {
		return receiver.Closure.Invoke(args[1:])
	}
	method, declaring := receiver.Class.FindMethod(name, descriptor)
	if method == nil {
		return value.Value{}, fmt.Errorf("NoSuchMethodError: %s.%s%s", receiver.Class.Name, name, descriptor)
	}
	return vm.executeMethod(declaring, method, args, caller)
}

// invokeInterface resolves through the receiver's class hierarchy and,
// when no class implementation is found, its interface graph's default
// methods (JVMS §6.5.invokeinterface / §5.4.3.4).
func (vm *VM) invokeInterface(receiver *value.JObject, name, descriptor string, args []value.Value, caller *frame.Frame) (value.Value, error) {
	if receiver == nil {
		return value.Value{}, fmt.Errorf("NullPointerException: invoking %s%s on null", name, descriptor)
	}
	if receiver.Closure != nil && receiver.Closure.MethodName == name {
		return receiver.Closure.Invoke(args[1:])
	}
	if method, declaring := receiver.Class.FindMethod(name, descriptor); method != nil {
		return vm.executeMethod(declaring, method, args, caller)
	}
	if method, declaring := findDefaultMethod(receiver.Class, name, descriptor); method != nil {
		return vm.executeMethod(declaring, method, args, caller)
	}
	return value.Value{}, fmt.Errorf("NoSuchMethodError: %s.%s%s (interface default)", receiver.Class.Name, name, descriptor)
}

// findDefaultMethod walks the interface graph looking for a
// non-abstract method, the JVMS-defined source of interface default
// methods (spec's "5 invocation variants" including interface dispatch).
func findDefaultMethod(c *value.Class, name, descriptor string) (*classfile.MethodInfo, *value.Class) {
	seen := map[*value.Class]bool{}
	var walk func(*value.Class) (*classfile.MethodInfo, *value.Class)
	walk = func(cur *value.Class) (*classfile.MethodInfo, *value.Class) {
		if cur == nil || seen[cur] {
			return nil, nil
		}
		seen[cur] = true
		for _, iface := range cur.Interfaces {
			if m := iface.File.FindMethod(name, descriptor); m != nil && !m.IsAbstract() {
				return m, iface
			}
			if m, d := walk(iface); m != nil {
				return m, d
			}
		}
		if cur.Super != nil {
			return walk(cur.Super)
		}
		return nil, nil
	}
	return walk(c)
}

// invokeNative dispatches to the native method registry. A missing
// registration is an UnsatisfiedLinkError, the same condition a real
// JVM raises when a native method has no bound implementation.
func (vm *VM) invokeNative(class *value.Class, method *classfile.MethodInfo, args []value.Value) (value.Value, error) {
	fn, ok := vm.Natives.Lookup(class.Name, method.Name, method.Descriptor, vm.Options.RuntimeVersion)
	if !ok {
		return value.Value{}, fmt.Errorf("UnsatisfiedLinkError: %s.%s%s", class.Name, method.Name, method.Descriptor)
	}
	return fn(vm, args)
}

// popArgs pops a method's arguments off the operand stack in
// the correct (first-argument-deepest) order and, for instance
// invocations, the receiver beneath them.
func (vm *VM) popArgs(f *frame.Frame, params []string, includeReceiver bool) ([]value.Value, *value.JObject) {
	args := make([]value.Value, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		args[i] = f.Pop()
	}
	if !includeReceiver {
		return args, nil
	}
	recvVal := f.Pop()
	var recv *value.JObject
	if !recvVal.IsNull() {
		recv, _ = recvVal.Ref.(*value.JObject)
	}
	full := make([]value.Value, 0, len(args)+1)
	full = append(full, value.RefValue(recv))
	full = append(full, args...)
	return full, recv
}
