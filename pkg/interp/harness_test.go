package interp

import (
	"bytes"
	"fmt"

	"github.com/go-jvm/corevm/pkg/classfile"
	"github.com/go-jvm/corevm/pkg/config"
	"github.com/go-jvm/corevm/pkg/loader"
	"github.com/go-jvm/corevm/pkg/natives"
)

// fakeLoader is an in-memory ClassLoader backing interp's tests: it
// serves pre-encoded minimal class files without touching a real
// classpath or java.base jmod, the way a hand-rolled test double for a
// narrow loader.ClassLoader interface should.
type fakeLoader struct {
	classes map[string][]byte
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{classes: map[string][]byte{}}
}

func (f *fakeLoader) ID() string            { return "fake" }
func (f *fakeLoader) Parent() loader.ClassLoader { return nil }

// add registers a minimal, superclass-less class file under binaryName,
// encoding it through the real classfile codec so loader.Load's
// Parse+Verify path runs for real instead of being bypassed.
func (f *fakeLoader) add(binaryName string) {
	pool := []classfile.ConstantPoolEntry{
		nil,
		&classfile.ConstantUtf8{Value: binaryName},
		&classfile.ConstantClass{NameIndex: 1},
	}
	cf := &classfile.ClassFile{
		MajorVersion: 61,
		ConstantPool: pool,
		AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		ThisClass:    2,
	}
	data, err := classfile.Encode(cf)
	if err != nil {
		panic(err)
	}
	f.classes[binaryName] = data
}

func (f *fakeLoader) LoadBytes(binaryName string) ([]byte, error) {
	data, ok := f.classes[binaryName]
	if !ok {
		return nil, fmt.Errorf("fakeLoader: unregistered class %s", binaryName)
	}
	return data, nil
}

// newTestVM builds a VM wired to l with stdout/stderr redirected to
// buffers the test can inspect, bypassing NewVM's real os.Stdout/Stderr
// and java.base jmod lookup.
func newTestVM(l loader.ClassLoader) (*VM, *bytes.Buffer, *bytes.Buffer) {
	var out, errBuf bytes.Buffer
	vm := &VM{
		Loader:   l,
		Registry: loader.NewRegistry(),
		Natives:  natives.NewRegistry(),
		Options:  config.DefaultOptions(),
		stdout:   &out,
		stderr:   &errBuf,
	}
	natives.RegisterBuiltins(vm.Natives)
	return vm, &out, &errBuf
}
