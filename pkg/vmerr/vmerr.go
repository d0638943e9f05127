// Package vmerr defines the internal error taxonomy used throughout corevm
// and the adapter that turns internal errors into Java-observable exceptions.
package vmerr

import (
	"errors"
	"fmt"
)

// Kind classifies an internal error the way spec's error-handling design
// separates "errors a real JVM would never surface to bytecode" from
// "conditions bytecode is meant to observe via athrow/exception tables".
type Kind int

const (
	// KindInternal covers host-side failures: malformed class files,
	// missing class path entries, I/O failures. These abort execution
	// outright; they are never caught by a Java catch clause.
	KindInternal Kind = iota
	// KindJava covers conditions the JVM specification models as Java
	// exceptions (NullPointerException, ArrayIndexOutOfBoundsException,
	// ClassCastException, and so on). These flow through the interpreter's
	// exception-table dispatch like any other throw.
	KindJava
)

// VMError wraps an internal failure with enough context to report a class
// loading, verification, or linking failure without walking Go's stack.
type VMError struct {
	Kind    Kind
	Class   string
	Op      string
	Message string
	Err     error
}

func (e *VMError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Class, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *VMError) Unwrap() error { return e.Err }

// Internal builds a KindInternal error.
func Internal(op, class string, err error) *VMError {
	return &VMError{Kind: KindInternal, Op: op, Class: class, Message: msg(err), Err: err}
}

// Internalf builds a KindInternal error from a format string.
func Internalf(op, class, format string, args ...interface{}) *VMError {
	return &VMError{Kind: KindInternal, Op: op, Class: class, Message: fmt.Sprintf(format, args...)}
}

func msg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ClassFormatError corresponds to java.lang.ClassFormatError: the class
// file's byte layout violates the format described by spec §6.1.
func ClassFormatError(class, reason string) *VMError {
	return &VMError{Kind: KindInternal, Op: "ClassFormatError", Class: class, Message: reason}
}

// VerificationError corresponds to java.lang.VerifyError: the class file
// parses but fails the structural checks of classfile.Verify (class name
// references, exception-table and line-number ranges, StackMapTable
// consistency).
type VerificationError struct {
	Class   string
	Reasons []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("VerifyError in %s: %d issue(s): %v", e.Class, len(e.Reasons), e.Reasons)
}

// NoClassDefFoundError corresponds to java.lang.NoClassDefFoundError:
// resolution of a symbolic class reference failed to find the class
// anywhere on the delegating class loader chain.
func NoClassDefFoundError(name string) *VMError {
	return &VMError{Kind: KindInternal, Op: "NoClassDefFoundError", Class: name, Message: "class not found on any loader"}
}

// LinkageError wraps failures during the prepare/resolve phases of linking
// (spec §4.2's three-phase linking pipeline).
func LinkageError(class, reason string) *VMError {
	return &VMError{Kind: KindInternal, Op: "LinkageError", Class: class, Message: reason}
}

// Is supports errors.Is comparisons between VMErrors: two match when
// their Kind and Op are equal.
func (e *VMError) Is(target error) bool {
	var other *VMError
	if errors.As(target, &other) {
		return e.Kind == other.Kind && e.Op == other.Op
	}
	return false
}
