package trace

import (
	"errors"
	"testing"
)

// These exercise every sink entry point for panics; trace is a diagnostic
// side effect, so there is no observable return value to assert on beyond
// "the process doesn't crash".
func TestSinkCallsDoNotPanic(t *testing.T) {
	SetDebug(true)
	ClassLoad("bootstrap", "java/lang/Object")
	ClassInit("java/lang/Object")
	JITCompile("Foo", "bar", "()I")
	JITFallback("Foo", "bar", errors.New("not a leaf method"))
	Uncaught("java/lang/RuntimeException", errors.New("boom"))
	Warnf("heads up: %s", "something")
	Sync()

	SetDebug(false)
	ClassLoad("bootstrap", "java/lang/Object")
	Sync()
}
