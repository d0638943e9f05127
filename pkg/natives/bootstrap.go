package natives

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/value"
)

// RegisterBootstraps binds the two java.lang.invoke bootstrap methods
// javac actually emits for ordinary source: string concatenation (Java
// 9+'s indy-based `+`) and lambda/method-reference call sites. Any other
// bootstrap target surfaces as BootstrapMethodError at the call site
// (see pkg/interp/invokedynamic.go) rather than here.
func RegisterBootstraps(reg *Registry) {
	reg.RegisterBootstrap(
		"java/lang/invoke/StringConcatFactory", "makeConcatWithConstants",
		"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/String;[Ljava/lang/Object;)Ljava/lang/invoke/CallSite;",
		stringConcatFactory,
	)
	reg.RegisterBootstrap(
		"java/lang/invoke/LambdaMetafactory", "metafactory",
		"(Ljava/lang/invoke/MethodHandles$Lookup;Ljava/lang/String;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodType;Ljava/lang/invoke/MethodHandle;Ljava/lang/invoke/MethodType;)Ljava/lang/invoke/CallSite;",
		lambdaMetafactory,
	)
}

// stringConcatFactory implements the indy-based string concatenation
// strategy javac 9+ emits in place of StringBuilder chains: the
// recipe's first bootstrap argument is the literal template with '\1'
// marking an argument substitution and '\2' a constant substitution
// (JEP 280); remaining bootstrap arguments are those constants in order.
func stringConcatFactory(vm VMContext, name, descriptor string, bootstrapArgs []classfile.ConstantPoolEntry, pool []classfile.ConstantPoolEntry) (*BootstrapResult, error) {
	if len(bootstrapArgs) == 0 {
		return nil, fmt.Errorf("BootstrapMethodError: makeConcatWithConstants missing recipe argument")
	}
	recipeEntry, ok := bootstrapArgs[0].(*classfile.ConstantUtf8)
	if !ok {
		return nil, fmt.Errorf("BootstrapMethodError: makeConcatWithConstants recipe is not a UTF8 constant")
	}
	recipe := recipeEntry.Value
	constants := bootstrapArgs[1:]

	target := func(vm VMContext, args []value.Value) (value.Value, error) {
		var b strings.Builder
		argIdx := 0
		constIdx := 0
		for i := 0; i < len(recipe); i++ {
			switch recipe[i] {
			case '\x01':
				if argIdx >= len(args) {
					return value.Value{}, fmt.Errorf("BootstrapMethodError: concat recipe references missing argument")
				}
				b.WriteString(javaToString(args[argIdx]))
				argIdx++
			case '\x02':
				if constIdx >= len(constants) {
					return value.Value{}, fmt.Errorf("BootstrapMethodError: concat recipe references missing constant")
				}
				b.WriteString(constantToString(constants[constIdx]))
				constIdx++
			default:
				b.WriteByte(recipe[i])
			}
		}
		return value.RefValue(b.String()), nil
	}

	return &BootstrapResult{Descriptor: descriptor, ReturnDescriptor: "Ljava/lang/String;", Target: target}, nil
}

func javaToString(v value.Value) string {
	switch v.Type {
	case value.TypeInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case value.TypeLong:
		return strconv.FormatInt(v.Long, 10)
	case value.TypeFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	case value.TypeDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	default:
		if v.IsNull() {
			return "null"
		}
		if s, ok := v.Ref.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v.Ref)
	}
}

func constantToString(entry classfile.ConstantPoolEntry) string {
	switch e := entry.(type) {
	case *classfile.ConstantUtf8:
		return e.Value
	case *classfile.ConstantInteger:
		return strconv.FormatInt(int64(e.Value), 10)
	case *classfile.ConstantLong:
		return strconv.FormatInt(e.Value, 10)
	case *classfile.ConstantFloat:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32)
	case *classfile.ConstantDouble:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	default:
		return ""
	}
}

// lambdaMetafactory implements the metafactory javac emits for every
// lambda expression and unbound/bound method reference: it resolves the
// captured implementation method handle once, and its CallSite target
// builds a functional-interface instance whose SAM method forwards to
// that handle with the lambda's captured arguments prepended (JVMS
// §4.4.10 "the interposed call site").
func lambdaMetafactory(vm VMContext, name, descriptor string, bootstrapArgs []classfile.ConstantPoolEntry, pool []classfile.ConstantPoolEntry) (*BootstrapResult, error) {
	if len(bootstrapArgs) < 3 {
		return nil, fmt.Errorf("BootstrapMethodError: metafactory expects (samMethodType, implMethod, instantiatedMethodType)")
	}
	implHandleEntry, ok := bootstrapArgs[1].(*classfile.ConstantMethodHandle)
	if !ok {
		return nil, fmt.Errorf("BootstrapMethodError: metafactory's implMethod argument is not a MethodHandle")
	}
	mref, err := classfile.ResolveMethodref(pool, implHandleEntry.ReferenceIndex)
	if err != nil {
		return nil, fmt.Errorf("BootstrapMethodError: resolving implementation method handle: %w", err)
	}
	kind := implHandleEntry.ReferenceKind

	// descriptor is the invokedynamic site's own descriptor: its
	// parameter types are the lambda's captured (free) variables, and
	// its return type names the functional interface being implemented.
	_, ifaceReturn, err := value.ParseMethodDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	ifaceClassName := strings.TrimSuffix(strings.TrimPrefix(ifaceReturn, "L"), ";")
	// The indy call site's own name IS the functional interface's single
	// abstract method name (e.g. "get" for Supplier, "apply" for
	// Function) — javac emits it that way, not the interface's own name.
	samName := name

	target := func(vm VMContext, captured []value.Value) (value.Value, error) {
		ifaceClass, err := vm.ResolveClass(ifaceClassName)
		if err != nil {
			return value.Value{}, err
		}
		lambda := value.NewObject(ifaceClass)
		lambda.Closure = &value.Closure{
			MethodName: samName,
			Invoke: func(samArgs []value.Value) (value.Value, error) {
				full := make([]value.Value, 0, len(captured)+len(samArgs))
				full = append(full, captured...)
				full = append(full, samArgs...)
				return vm.InvokeMethodHandle(kind, mref.ClassName, mref.MethodName, mref.Descriptor, full)
			},
		}
		return value.RefValue(lambda), nil
	}

	return &BootstrapResult{Descriptor: descriptor, ReturnDescriptor: ifaceReturn, Target: target}, nil
}
