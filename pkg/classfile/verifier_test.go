package classfile

import "testing"

func TestVerifyValidClassPasses(t *testing.T) {
	cf := minimalClass()
	if err := Verify(cf); err != nil {
		t.Errorf("Verify(minimalClass()) = %v, want nil", err)
	}
}

func TestVerifyRejectsOutOfRangeExceptionHandler(t *testing.T) {
	cf := minimalClass()
	cf.Methods[0].Code.ExceptionHandlers = []ExceptionHandler{
		{StartPC: 0, EndPC: 100, HandlerPC: 0, CatchType: 0},
	}
	err := Verify(cf)
	if err == nil {
		t.Fatal("Verify should reject an exception handler whose range exceeds the code length")
	}
}

func TestVerifyRejectsInvertedExceptionRange(t *testing.T) {
	cf := minimalClass()
	cf.Methods[0].Code.ExceptionHandlers = []ExceptionHandler{
		{StartPC: 2, EndPC: 1, HandlerPC: 0, CatchType: 0},
	}
	if err := Verify(cf); err == nil {
		t.Fatal("Verify should reject an exception handler with an inverted [start,end) range")
	}
}

func TestVerifyRejectsBadLineNumberEntry(t *testing.T) {
	cf := minimalClass()
	cf.Methods[0].Code.LineNumbers = []LineNumberEntry{{StartPC: 99, LineNumber: 1}}
	if err := Verify(cf); err == nil {
		t.Fatal("Verify should reject a line number entry whose start_pc exceeds the code length")
	}
}
