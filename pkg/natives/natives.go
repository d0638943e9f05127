// Package natives implements the native method registry: the
// (class, name, descriptor, runtime version) lookup table that backs
// every ACC_NATIVE method corevm's interpreter encounters, plus the
// handful of java.lang.invoke bootstrap methods (LambdaMetafactory,
// StringConcatFactory) it intercepts the same way.
package natives

import (
	"io"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/value"
)

// VMContext is the slice of *interp.VM that native implementations need.
// It is declared here, not in pkg/interp, so this package has no import
// back to pkg/interp — pkg/interp imports pkg/natives, not the reverse.
type VMContext interface {
	Stdout() io.Writer
	Stderr() io.Writer
	SystemProperty(key string) (string, bool)
	ResolveClass(binaryName string) (*value.Class, error)
	ThrowNew(className, message string) error
	// InvokeMethodHandle dispatches a resolved method handle the way
	// JVMS table 5.4.3.5-A's reference kinds describe: virtual, static,
	// special, interface, or constructor (newinvokespecial).
	InvokeMethodHandle(kind uint8, className, methodName, descriptor string, args []value.Value) (value.Value, error)
}

// Func is a native method or a linked invokedynamic target's invocation
// body: arguments in (receiver first, for instance methods), one value
// out (zero Value for void).
type Func func(vm VMContext, args []value.Value) (value.Value, error)

// BootstrapFunc models one java.lang.invoke bootstrap method: given the
// invoked name/descriptor at the call site and the bootstrap's own
// static arguments (already resolved from the constant pool), it
// produces the linked call site's target.
type BootstrapFunc func(vm VMContext, name, descriptor string, bootstrapArgs []classfile.ConstantPoolEntry, pool []classfile.ConstantPoolEntry) (*BootstrapResult, error)

// BootstrapResult is a linked CallSite: enough information for the
// interpreter to invoke the target on every subsequent execution of the
// call site without re-running the bootstrap method (JVMS
// §6.5.invokedynamic's "resolved once" rule).
type BootstrapResult struct {
	Descriptor       string
	ReturnDescriptor string
	Target           Func
}

type methodKey struct {
	class      string
	name       string
	descriptor string
}

// Registry is the (class, name, descriptor, runtime version) lookup
// table spec §4.7 describes. Entries are versioned: RegisterVersioned
// lets a later runtime version shadow an earlier one's behavior, the
// way real JDK native methods occasionally change semantics across
// releases.
type Registry struct {
	methods    map[methodKey]map[int]Func // version -> implementation, 0 = any version
	bootstraps map[methodKey]BootstrapFunc
}

func NewRegistry() *Registry {
	return &Registry{
		methods:    make(map[methodKey]map[int]Func),
		bootstraps: make(map[methodKey]BootstrapFunc),
	}
}

// Register binds a native method for every runtime version.
func (r *Registry) Register(class, name, descriptor string, fn Func) {
	r.RegisterVersioned(class, name, descriptor, 0, fn)
}

// RegisterVersioned binds a native method for one specific runtime
// version (e.g. 17), or every version when version is 0.
func (r *Registry) RegisterVersioned(class, name, descriptor string, version int, fn Func) {
	key := methodKey{class: class, name: name, descriptor: descriptor}
	if r.methods[key] == nil {
		r.methods[key] = map[int]Func{}
	}
	r.methods[key][version] = fn
}

// Lookup finds the best match for runtimeVersion: an exact version match
// first, then the version-agnostic (0) entry.
func (r *Registry) Lookup(class, name, descriptor string, runtimeVersion int) (Func, bool) {
	versions, ok := r.methods[methodKey{class: class, name: name, descriptor: descriptor}]
	if !ok {
		return nil, false
	}
	if fn, ok := versions[runtimeVersion]; ok {
		return fn, true
	}
	fn, ok := versions[0]
	return fn, ok
}

// RegisterBootstrap binds a java.lang.invoke bootstrap method.
func (r *Registry) RegisterBootstrap(class, name, descriptor string, fn BootstrapFunc) {
	r.bootstraps[methodKey{class: class, name: name, descriptor: descriptor}] = fn
}

func (r *Registry) LookupBootstrap(class, name, descriptor string) (BootstrapFunc, bool) {
	fn, ok := r.bootstraps[methodKey{class: class, name: name, descriptor: descriptor}]
	return fn, ok
}
