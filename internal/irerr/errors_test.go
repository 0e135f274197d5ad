package irerr_test

import (
	"testing"

	"octoir/internal/irerr"
)

func TestDefaultStateByKind(t *testing.T) {
	cases := []struct {
		kind irerr.Kind
		want irerr.State
	}{
		{irerr.UndefinedVariable, irerr.Stable},
		{irerr.TypeConflict, irerr.Stable},
		{irerr.InternalInvariantViolated, irerr.Fatal},
	}
	for _, c := range cases {
		got := irerr.New(c.kind, irerr.Location{}, "boom").State
		if got != c.want {
			t.Errorf("New(%s).State = %s, want %s", c.kind, got, c.want)
		}
	}
}

func TestIsFatal(t *testing.T) {
	stable := irerr.New(irerr.UndefinedVariable, irerr.Location{}, "x undefined")
	if irerr.IsFatal(stable) {
		t.Fatalf("stable error reported fatal")
	}
	fatal := irerr.New(irerr.InternalInvariantViolated, irerr.Location{}, "dt.Incoming non-empty with nil timeline")
	if !irerr.IsFatal(fatal) {
		t.Fatalf("fatal error not reported fatal")
	}
}

func TestWithStateOverride(t *testing.T) {
	e := irerr.New(irerr.CodegenFailure, irerr.Location{}, "llvm verify failed").WithState(irerr.Fatal)
	if !irerr.IsFatal(e) {
		t.Fatalf("codegen_failure overridden to fatal should report fatal")
	}
}

func TestErrorMessageIncludesLocation(t *testing.T) {
	e := irerr.New(irerr.ParseMissingOperand, irerr.Location{File: "a.m", Line: 3, Column: 5}, "missing rhs")
	got := e.Error()
	want := "a.m:3:5"
	if !contains(got, want) {
		t.Fatalf("Error() = %q, want it to contain %q", got, want)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
