package vmerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestVMErrorMessage(t *testing.T) {
	e := Internalf("resolve", "Foo", "not found on %s", "classpath")
	want := "resolve: Foo: not found on classpath"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noClass := &VMError{Op: "boom", Message: "broke"}
	if got := noClass.Error(); got != "boom: broke" {
		t.Errorf("Error() with no Class = %q, want %q", got, "boom: broke")
	}
}

func TestVMErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	e := Internal("resolve", "Foo", inner)
	if !errors.Is(e, inner) {
		t.Error("errors.Is should see through VMError.Unwrap to the wrapped error")
	}
}

func TestVMErrorIs(t *testing.T) {
	a := NoClassDefFoundError("Foo")
	b := NoClassDefFoundError("Bar")
	if !errors.Is(a, b) {
		t.Error("two NoClassDefFoundError values with the same Kind/Op should compare equal via errors.Is")
	}
	c := ClassFormatError("Foo", "bad magic")
	if errors.Is(a, c) {
		t.Error("errors of different Op should not compare equal")
	}
}

func TestClassFormatError(t *testing.T) {
	e := ClassFormatError("Foo", "bad magic number")
	if e.Kind != KindInternal {
		t.Errorf("ClassFormatError Kind = %v, want KindInternal", e.Kind)
	}
	if e.Class != "Foo" {
		t.Errorf("ClassFormatError Class = %q, want Foo", e.Class)
	}
}

func TestVerificationErrorMessage(t *testing.T) {
	e := &VerificationError{Class: "Foo", Reasons: []string{"bad branch target", "bad index"}}
	got := e.Error()
	want := fmt.Sprintf("VerifyError in Foo: 2 issue(s): %v", e.Reasons)
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLinkageError(t *testing.T) {
	e := LinkageError("Foo", "incompatible class change")
	if e.Op != "LinkageError" {
		t.Errorf("Op = %q, want LinkageError", e.Op)
	}
}
