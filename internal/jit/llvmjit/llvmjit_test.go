package llvmjit_test

import (
	"strings"
	"testing"

	"octoir/internal/irtype"
	"octoir/internal/jit/llvmjit"
	"octoir/internal/opcode"
	"octoir/internal/staticir"
)

// buildAddFunction hand-builds the static form of `return a + b`: one
// block, two fetches folded into the arg values, one add, one return.
func buildAddFunction() *staticir.StaticFunction {
	retDef := staticir.StaticDef{Variable: 0, Def: 1}
	return &staticir.StaticFunction{
		Name: "add_two",
		Args: []staticir.VariableID{0, 1, 2},
		Variables: []staticir.StaticVariable{
			{Name: "return", Type: irtype.Int32, NumDefs: 2},
			{Name: "a", Type: irtype.Int32, NumDefs: 1},
			{Name: "b", Type: irtype.Int32, NumDefs: 1},
		},
		Blocks: []*staticir.StaticBlock{
			{
				ID: 0,
				Instructions: []*staticir.StaticInstruction{
					{
						Opcode: opcode.Add,
						Def:    &retDef,
						Operands: []staticir.StaticOperand{
							staticir.StaticUse{Variable: 1, Def: 0},
							staticir.StaticUse{Variable: 2, Def: 0},
						},
					},
				},
				ReturnValue: &retDef,
			},
		},
	}
}

func TestCompileEmitsAddAndRet(t *testing.T) {
	b := llvmjit.New(llvmjit.Options{})
	h, err := b.Compile(buildAddFunction())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if h.Name != "add_two" {
		t.Fatalf("handle name = %q, want add_two", h.Name)
	}
	if !strings.Contains(h.IR, "define") || !strings.Contains(h.IR, "add_two") {
		t.Fatalf("IR missing function definition:\n%s", h.IR)
	}
	if !strings.Contains(h.IR, "add ") {
		t.Fatalf("IR missing add instruction:\n%s", h.IR)
	}
	if !strings.Contains(h.IR, "ret ") {
		t.Fatalf("IR missing ret instruction:\n%s", h.IR)
	}
}

// buildForkFunction hand-builds a block that phi-joins two case results,
// exercising the two-pass phi fixup.
func buildForkFunction() *staticir.StaticFunction {
	thenDef := staticir.StaticDef{Variable: 1, Def: 0}
	elseDef := staticir.StaticDef{Variable: 1, Def: 1}
	phiDef := staticir.StaticDef{Variable: 1, Def: 2}
	condDef := staticir.StaticDef{Variable: 2, Def: 0}

	return &staticir.StaticFunction{
		Name: "fork_join",
		Args: []staticir.VariableID{0},
		Variables: []staticir.StaticVariable{
			{Name: "return", Type: irtype.Int32},
			{Name: "x", Type: irtype.Int32, NumDefs: 3},
			{Name: "cond", Type: irtype.Bool, NumDefs: 1},
		},
		Blocks: []*staticir.StaticBlock{
			{
				ID: 0,
				Instructions: []*staticir.StaticInstruction{
					{Opcode: opcode.Fetch, Def: &condDef, Operands: []staticir.StaticOperand{
						staticir.StaticConstant{Type: irtype.Bool, Bytes: []byte{1}},
					}},
				},
				Cases: []staticir.BlockID{1, 2},
			},
			{
				ID: 1,
				Instructions: []*staticir.StaticInstruction{
					{Opcode: opcode.Fetch, Def: &thenDef, Operands: []staticir.StaticOperand{
						staticir.StaticConstant{Type: irtype.Int32, Bytes: []byte{1}},
					}},
				},
				Fallthrough: blockID(3),
			},
			{
				ID: 2,
				Instructions: []*staticir.StaticInstruction{
					{Opcode: opcode.Fetch, Def: &elseDef, Operands: []staticir.StaticOperand{
						staticir.StaticConstant{Type: irtype.Int32, Bytes: []byte{0}},
					}},
				},
				Fallthrough: blockID(3),
			},
			{
				ID: 3,
				Instructions: []*staticir.StaticInstruction{
					{
						Opcode: opcode.Phi,
						Def:    &phiDef,
						Operands: []staticir.StaticOperand{
							staticir.StaticUse{Variable: 1, Def: 0}, staticir.StaticBlockRef{Block: 1},
							staticir.StaticUse{Variable: 1, Def: 1}, staticir.StaticBlockRef{Block: 2},
						},
					},
				},
				ReturnValue: &phiDef,
			},
		},
	}
}

func blockID(id staticir.BlockID) *staticir.BlockID { return &id }

func TestCompileFillsPhiIncomings(t *testing.T) {
	b := llvmjit.New(llvmjit.Options{})
	h, err := b.Compile(buildForkFunction())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(h.IR, "phi") {
		t.Fatalf("IR missing phi instruction:\n%s", h.IR)
	}
	if !strings.Contains(h.IR, "br i1") {
		t.Fatalf("IR missing conditional branch on the fork condition:\n%s", h.IR)
	}
}
