package staticir_test

import (
	"reflect"
	"testing"

	"octoir/internal/ir"
	"octoir/internal/irtype"
	"octoir/internal/opcode"
	"octoir/internal/ssa"
	"octoir/internal/staticir"
)

func fetchConst(b *ir.Block, v *ir.Variable, bytes []byte) *ir.Def {
	def := &ir.Def{Var: v, ID: v.NextDefID()}
	ssa.Append(b, opcode.Fetch, def, []ir.Operand{ir.Constant{Type: irtype.Int32, Bytes: bytes}})
	return def
}

// TestLowerStraightLine mirrors S1: a single block with no joins lowers to
// one static block holding no phis, in source order.
func TestLowerStraightLine(t *testing.T) {
	fn := ir.NewFunction("straight_line")
	b := ir.NewBlock(fn)
	fn.SetBody(b)
	a := fn.DeclareVariable("a")
	fetchConst(b, a, []byte{1})

	sf := staticir.Lower(fn)
	if len(sf.Blocks) != 1 {
		t.Fatalf("block count = %d, want 1", len(sf.Blocks))
	}
	if len(sf.Blocks[0].Instructions) != 1 {
		t.Fatalf("instruction count = %d, want 1", len(sf.Blocks[0].Instructions))
	}
	if sf.Blocks[0].Instructions[0].Opcode != opcode.Fetch {
		t.Fatalf("opcode = %v, want Fetch", sf.Blocks[0].Instructions[0].Opcode)
	}
}

// TestLowerForkJoinPhiFormat mirrors S2: the materialised phi lowers to an
// alternating (use, pred_block) operand list, one pair per predecessor, and
// appears before any body instruction in the join block.
func TestLowerForkJoinPhiFormat(t *testing.T) {
	fn := ir.NewFunction("fork_join")
	seq := ir.NewSequence(fn)
	fn.SetBody(seq)

	fork := ir.NewFork(seq)
	seq.Append(fork)
	after := ir.NewBlock(seq)
	seq.Append(after)

	x := fn.DeclareVariable("x")

	thenCase := ir.NewBlock(fork)
	fork.AddCase(thenCase)
	elseCase := ir.NewBlock(fork)
	fork.AddCase(elseCase)

	fetchConst(thenCase, x, []byte{1})
	fetchConst(elseCase, x, []byte{0})

	// Force the join before lowering, as a builder would while emitting
	// the after-block's own instructions.
	ssa.ReadVar(after, x, 0)

	sf := staticir.Lower(fn)

	var afterBlock *staticir.StaticBlock
	for _, blk := range sf.Blocks {
		for _, instr := range blk.Instructions {
			if instr.Opcode == opcode.Phi {
				afterBlock = blk
			}
		}
	}
	if afterBlock == nil {
		t.Fatalf("no phi found in lowered output")
	}
	phi := afterBlock.Instructions[0]
	if phi.Opcode != opcode.Phi {
		t.Fatalf("phi must be first instruction in its block, got %v", phi.Opcode)
	}
	if len(phi.Operands) != 4 {
		t.Fatalf("phi operand count = %d, want 4 (2 alternating pairs)", len(phi.Operands))
	}
	for i := 0; i < len(phi.Operands); i += 2 {
		if _, ok := phi.Operands[i].(staticir.StaticUse); !ok {
			t.Fatalf("operand %d = %T, want StaticUse", i, phi.Operands[i])
		}
		if _, ok := phi.Operands[i+1].(staticir.StaticBlockRef); !ok {
			t.Fatalf("operand %d = %T, want StaticBlockRef", i+1, phi.Operands[i+1])
		}
	}
}

// TestLowerIsDeterministic mirrors §8 invariant 8: lowering an unchanged
// function twice yields structurally identical output.
func TestLowerIsDeterministic(t *testing.T) {
	fn := ir.NewFunction("loop_accumulator")
	loop := ir.NewLoop(fn)
	fn.SetBody(loop)
	acc := fn.DeclareVariable("acc")

	start := ir.NewBlock(loop)
	loop.SetStart(start)
	fetchConst(start, acc, []byte{0})

	ssa.ReadVar(loop.Condition, acc, 0)

	body := ir.NewBlock(loop)
	loop.SetBody(body)
	bodyUse := ssa.ReadVar(body, acc, 0)
	oneDef := &ir.Def{Var: acc, ID: acc.NextDefID()}
	ssa.Append(body, opcode.Add, oneDef, []ir.Operand{bodyUse, ir.Constant{Type: irtype.Int32, Bytes: []byte{1}}})

	update := ir.NewBlock(loop)
	loop.SetUpdate(update)
	after := ir.NewBlock(loop)
	loop.SetAfter(after)

	ssa.SealLoop(loop)

	first := staticir.Lower(fn)
	second := staticir.Lower(fn)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Lower is not deterministic across repeated calls on an unchanged function")
	}
}

// TestLowerArgsAndVariables checks that args map to the variable's static
// id and that every declared variable is present with its NumDefs count.
func TestLowerArgsAndVariables(t *testing.T) {
	fn := ir.NewFunction("with_args")
	b := ir.NewBlock(fn)
	fn.SetBody(b)
	ret := fn.DeclareVariable("return")
	argX := fn.DeclareVariable("x")
	fn.Args = []*ir.Variable{ret, argX}
	fetchConst(b, argX, []byte{7})

	sf := staticir.Lower(fn)
	if len(sf.Args) != 2 {
		t.Fatalf("arg count = %d, want 2", len(sf.Args))
	}
	if sf.Variables[sf.Args[0]].Name != "return" {
		t.Fatalf("arg 0 = %q, want %q", sf.Variables[sf.Args[0]].Name, "return")
	}
	if sf.Variables[sf.Args[1]].NumDefs != 1 {
		t.Fatalf("x NumDefs = %d, want 1", sf.Variables[sf.Args[1]].NumDefs)
	}
}
