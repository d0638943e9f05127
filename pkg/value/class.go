package value

import (
	"sync"

	"github.com/go-jvm/corevm/pkg/classfile"
)

// Class is the runtime class descriptor: the linked, initializable view
// of a parsed ClassFile. Descriptors are singletons per (loader, binary
// name) — pkg/loader's Registry is what enforces that; Class itself is
// just the payload.
type Class struct {
	Name       string
	File       *classfile.ClassFile
	Super      *Class
	Interfaces []*Class
	LoaderID   string // identifies which ClassLoader produced this descriptor

	mu            sync.Mutex
	Initialized   bool
	Initializing  bool
	initializedBy int // goroutine-free recursion guard token; 0 means "no one"

	StaticFields map[string]Value

	mirror *JObject
}

// NewClass builds an as-yet-unlinked descriptor; pkg/loader populates
// Super/Interfaces/StaticFields during the linking pipeline.
func NewClass(name string, file *classfile.ClassFile, loaderID string) *Class {
	return &Class{
		Name:         name,
		File:         file,
		LoaderID:     loaderID,
		StaticFields: make(map[string]Value),
	}
}

// IsSubclassOf walks the Super chain.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == other {
			return true
		}
	}
	return false
}

// ImplementsInterface walks declared and inherited interfaces.
func (c *Class) ImplementsInterface(iface *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		for _, i := range cur.Interfaces {
			if i == iface || i.ImplementsInterface(iface) {
				return true
			}
		}
	}
	return false
}

// AssignableTo implements the reference-assignability rules class
// casting and instanceof need: same class, a subclass, or an interface
// implementor.
func (c *Class) AssignableTo(target *Class) bool {
	if c == target {
		return true
	}
	if target.File != nil && target.File.IsInterface() {
		return c.ImplementsInterface(target)
	}
	return c.IsSubclassOf(target)
}

// BeginInit attempts to claim class initialization for the calling
// frame. It returns (proceed=true) when the caller should run <clinit>,
// false when another in-progress or completed initialization means the
// caller should just continue (JVMS §5.5's recursive-initialization
// rule, simplified for corevm's single-threaded execution model).
func (c *Class) BeginInit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Initialized || c.Initializing {
		return false
	}
	c.Initializing = true
	return true
}

// FinishInit marks initialization complete after <clinit> returns
// (normally or via an ExceptionInInitializerError, spec's error design
// for class-init failures).
func (c *Class) FinishInit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Initializing = false
	c.Initialized = true
}

// Mirror returns the singleton java.lang.Class instance this descriptor
// publishes to Java code (e.g. via getClass()), lazily allocated.
func (c *Class) Mirror() *JObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mirror == nil {
		c.mirror = &JObject{
			id:     allocIdentity(),
			Class:  c,
			fields: map[fieldKey]Value{{Class: "java/lang/Class", Name: "__descriptor"}: RefValue(c)},
		}
	}
	return c.mirror
}

// FindField locates a field declaration by walking from this class
// upward, returning both the FieldInfo and the class that declares it —
// the declaring class is the shadowing key JObject fields are stored
// under (spec's field-shadowing invariant).
func (c *Class) FindField(name string) (*classfile.FieldInfo, *Class) {
	for cur := c; cur != nil; cur = cur.Super {
		if cur.File == nil {
			continue
		}
		if f := cur.File.FindField(name); f != nil {
			return f, cur
		}
	}
	return nil, nil
}

// FindMethod resolves a virtual method starting from this class upward
// through superclasses only (interface default methods are resolved by
// pkg/interp's findDefaultMethod, which walks the interface graph).
func (c *Class) FindMethod(name, descriptor string) (*classfile.MethodInfo, *Class) {
	for cur := c; cur != nil; cur = cur.Super {
		if cur.File == nil {
			continue
		}
		if m := cur.File.FindMethod(name, descriptor); m != nil {
			return m, cur
		}
	}
	return nil, nil
}
