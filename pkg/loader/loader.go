// Package loader implements class loading, the three-phase linking
// pipeline (verify/prepare/resolve), and the class descriptor registry
// spec §4.2 describes.
package loader

import (
	"bytes"
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/classpath"
	"github.com/go-jvm/corevm/pkg/trace"
	"github.com/go-jvm/corevm/pkg/vmerr"
)

// ClassLoader loads the raw bytes for a binary class name; Load parses
// and verifies them. Implementations never link the result; that's Registry's job,
// so every loader stays a simple name-to-bytes lookup the way JVMS
// describes user-defined class loaders.
type ClassLoader interface {
	ID() string
	LoadBytes(binaryName string) ([]byte, error)
	Parent() ClassLoader
}

// BootstrapClassLoader reads the platform's core classes from a single
// module image (java.base), the root of the parent-delegation chain.
// It has no parent: a failed lookup here is NoClassDefFoundError.
type BootstrapClassLoader struct {
	module *classpath.ModuleEntry
}

func NewBootstrapClassLoader(jmodPath string) (*BootstrapClassLoader, error) {
	m, err := classpath.OpenModule(jmodPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap loader: %w", err)
	}
	return &BootstrapClassLoader{module: m}, nil
}

func (b *BootstrapClassLoader) ID() string     { return "bootstrap" }
func (b *BootstrapClassLoader) Parent() ClassLoader { return nil }

func (b *BootstrapClassLoader) LoadBytes(binaryName string) ([]byte, error) {
	return b.module.Find(binaryName)
}

// AppClassLoader loads user classes from a set of class path entries,
// delegating to its parent before searching locally (JVMS §5.3.2's
// parent-delegation model).
type AppClassLoader struct {
	id      string
	entries []classpath.Entry
	parent  ClassLoader
}

func NewAppClassLoader(id string, entries []classpath.Entry, parent ClassLoader) *AppClassLoader {
	return &AppClassLoader{id: id, entries: entries, parent: parent}
}

func (a *AppClassLoader) ID() string          { return a.id }
func (a *AppClassLoader) Parent() ClassLoader { return a.parent }

func (a *AppClassLoader) LoadBytes(binaryName string) ([]byte, error) {
	for _, e := range a.entries {
		if data, err := e.Find(binaryName); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%s: class %s not found on any class path entry", a.id, binaryName)
}

// Load performs parent-delegated class loading: ask the parent first,
// fall back to this loader's own entries only if every ancestor misses.
func Load(l ClassLoader, binaryName string) (*classfile.ClassFile, error) {
	if parent := l.Parent(); parent != nil {
		if cf, err := Load(parent, binaryName); err == nil {
			return cf, nil
		}
	}
	data, err := l.LoadBytes(binaryName)
	if err != nil {
		return nil, err
	}
	trace.ClassLoad(l.ID(), binaryName)
	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, vmerr.ClassFormatError(binaryName, err.Error())
	}
	if err := classfile.Verify(cf); err != nil {
		return nil, err
	}
	return cf, nil
}
