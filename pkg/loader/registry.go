package loader

import (
	"errors"
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/value"
	"github.com/go-jvm/corevm/pkg/vmerr"
)

// Registry is the singleton-per-(loader, binary name) class descriptor
// store (spec §3's class descriptor identity invariant). It's backed by
// a swiss-table map rather than a plain Go map: resolution of symbolic
// references consults it on essentially every invokevirtual/getstatic/
// checkcast, making it the hottest string-keyed lookup in the
// interpreter.
type Registry struct {
	classes *swiss.Map[string, *value.Class]
}

func NewRegistry() *Registry {
	return &Registry{classes: swiss.NewMap[string, *value.Class](256)}
}

func registryKey(loaderID, binaryName string) string {
	return loaderID + "!" + binaryName
}

// Resolve returns the linked descriptor for binaryName as seen through
// loader l, loading, parsing, verifying, and linking it on first use and
// returning the cached descriptor on every subsequent call.
func (reg *Registry) Resolve(l ClassLoader, binaryName string) (*value.Class, error) {
	key := registryKey(l.ID(), binaryName)
	if c, ok := reg.classes.Get(key); ok {
		return c, nil
	}

	cf, err := Load(l, binaryName)
	if err != nil {
		var vmErr *vmerr.VMError
		var verifyErr *vmerr.VerificationError
		if errors.As(err, &vmErr) || errors.As(err, &verifyErr) {
			return nil, err
		}
		return nil, vmerr.NoClassDefFoundError(binaryName)
	}

	c := value.NewClass(binaryName, cf, l.ID())
	// Publish before recursing into the superclass/interface chain so a
	// cyclic reference (which JVMS forbids, but a malformed class file
	// could still attempt) resolves to this in-progress descriptor
	// instead of recursing forever.
	reg.classes.Put(key, c)

	if err := reg.link(l, c); err != nil {
		reg.classes.Delete(key)
		return nil, err
	}

	return c, nil
}

func (reg *Registry) link(l ClassLoader, c *value.Class) error {
	superName, err := c.File.SuperClassName()
	if err != nil {
		return fmt.Errorf("linking %s: %w", c.Name, err)
	}
	if superName != "" {
		super, err := reg.Resolve(l, superName)
		if err != nil {
			return fmt.Errorf("linking %s: resolving superclass %s: %w", c.Name, superName, err)
		}
		c.Super = super
	}

	ifaceNames, err := c.File.InterfaceNames()
	if err != nil {
		return fmt.Errorf("linking %s: %w", c.Name, err)
	}
	for _, in := range ifaceNames {
		iface, err := reg.Resolve(l, in)
		if err != nil {
			return fmt.Errorf("linking %s: resolving interface %s: %w", c.Name, in, err)
		}
		c.Interfaces = append(c.Interfaces, iface)
	}

	prepare(c)
	return nil
}

// prepare implements JVMS §5.4.2's Prepare phase: every static field
// gets its default value, and `static final` fields with a
// ConstantValue attribute get their compile-time constant immediately
// (since those never observe <clinit> side effects).
func prepare(c *value.Class) {
	for _, f := range c.File.Fields {
		if !f.IsStatic() {
			continue
		}
		v := value.DefaultForDescriptor(f.Descriptor)
		if f.HasConstant {
			if cv, ok := constantValue(f.Descriptor, f.ConstantValue, c.File.ConstantPool); ok {
				v = cv
			}
		}
		c.StaticFields[f.Name] = v
	}
}

func constantValue(descriptor string, entry classfile.ConstantPoolEntry, pool []classfile.ConstantPoolEntry) (value.Value, bool) {
	switch e := entry.(type) {
	case *classfile.ConstantInteger:
		return value.IntValue(e.Value), true
	case *classfile.ConstantLong:
		return value.LongValue(e.Value), true
	case *classfile.ConstantFloat:
		return value.FloatValue(e.Value), true
	case *classfile.ConstantDouble:
		return value.DoubleValue(e.Value), true
	case *classfile.ConstantString:
		s, err := classfile.GetUtf8(pool, e.StringIndex)
		if err != nil {
			return value.Value{}, false
		}
		return value.RefValue(s), true
	default:
		return value.Value{}, false
	}
}
