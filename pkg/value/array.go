package value

import (
	"fmt"
	"sync"
)

// JArray represents a JVM array instance. Spec models arrays as a
// "concurrent vector": bounds-checked, fixed-length, safe for concurrent
// index access. corevm is single-threaded today, but the mutex makes the
// abstraction genuinely concurrency-safe rather than documentation-only,
// so the future-threading hook spec's design notes mention costs nothing
// to exercise now.
type JArray struct {
	id       uint64
	ElemType string // descriptor of the element type, e.g. "I", "Ljava/lang/String;"

	mu   sync.RWMutex
	elems []Value
}

// NewArray allocates a fixed-length array with every slot set to the
// default value for elemType (JVMS §2.4).
func NewArray(elemType string, length int) (*JArray, error) {
	if length < 0 {
		return nil, fmt.Errorf("NegativeArraySizeException: %d", length)
	}
	elems := make([]Value, length)
	def := DefaultForDescriptor(elemType)
	for i := range elems {
		elems[i] = def
	}
	return &JArray{id: allocIdentity(), ElemType: elemType, elems: elems}, nil
}

// NewArrayFrom wraps an already-built slice (used by multianewarray and
// by native bridging code materializing a Go slice as a Java array).
func NewArrayFrom(elemType string, elems []Value) *JArray {
	return &JArray{id: allocIdentity(), ElemType: elemType, elems: elems}
}

func (a *JArray) Length() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.elems)
}

// Get returns the element at index, or an error describing an
// ArrayIndexOutOfBoundsException condition for the interpreter to throw.
func (a *JArray) Get(index int) (Value, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index < 0 || index >= len(a.elems) {
		return Value{}, fmt.Errorf("ArrayIndexOutOfBoundsException: index %d out of bounds for length %d", index, len(a.elems))
	}
	return a.elems[index], nil
}

// Set writes the element at index.
func (a *JArray) Set(index int, v Value) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if index < 0 || index >= len(a.elems) {
		return fmt.Errorf("ArrayIndexOutOfBoundsException: index %d out of bounds for length %d", index, len(a.elems))
	}
	a.elems[index] = v
	return nil
}

// Identity returns the monotonic allocation-order identity, the same
// scheme JObject uses.
func (a *JArray) Identity() uint64 { return a.id }

// Snapshot copies the current contents out, used by the System.arraycopy
// and Object.clone natives.
func (a *JArray) Snapshot() []Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Value, len(a.elems))
	copy(out, a.elems)
	return out
}

func (a *JArray) String() string {
	return fmt.Sprintf("%s[%d]@%x", a.ElemType, a.Length(), a.id)
}
