package opcode

import "testing"

func TestHasDef(t *testing.T) {
	tests := []struct {
		op   Opcode
		want bool
	}{
		{Add, true},
		{Phi, true},
		{Call, true},
		{Cbranch, false},
		{Ucbranch, false},
		{Terminate, false},
	}
	for _, test := range tests {
		if got := HasDef(test.op); got != test.want {
			t.Errorf("HasDef(%s) = %v, want %v", test.op, got, test.want)
		}
	}
}

func TestArity(t *testing.T) {
	tests := []struct {
		op   Opcode
		want Arity
	}{
		{Neg, Unary},
		{Add, Binary},
		{Phi, NAry},
		{Call, NAry},
		{Terminate, Nullary},
	}
	for _, test := range tests {
		if got := ArityOf(test.op); got != test.want {
			t.Errorf("ArityOf(%s) = %v, want %v", test.op, got, test.want)
		}
	}
}

func TestIsA(t *testing.T) {
	if !IsA(Add, Arithmetic) {
		t.Error("Add should be an Arithmetic")
	}
	if !IsA(Lnot, Logical) {
		t.Error("Lnot should be a Logical")
	}
	if IsA(Add, Logical) {
		t.Error("Add should not be a Logical")
	}
	if !IsA(Arithmetic, Arithmetic) {
		t.Error("an opcode is always IsA itself")
	}
}

func TestNames(t *testing.T) {
	if Add.String() != "add" {
		t.Errorf("Add.String() = %q, want %q", Add.String(), "add")
	}
}
