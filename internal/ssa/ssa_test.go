package ssa_test

import (
	"testing"

	"octoir/internal/ir"
	"octoir/internal/irtype"
	"octoir/internal/opcode"
	"octoir/internal/ssa"
)

func fetchConst(b *ir.Block, v *ir.Variable, bytes []byte) *ir.Def {
	def := &ir.Def{Var: v, ID: v.NextDefID()}
	ssa.Append(b, opcode.Fetch, def, []ir.Operand{ir.Constant{Type: irtype.Int32, Bytes: bytes}})
	return def
}

// TestStraightLineForward mirrors S1: two fetches and an add in a single
// block never need a join: a plain local lookup suffices.
func TestStraightLineForward(t *testing.T) {
	fn := ir.NewFunction("straight_line")
	b := ir.NewBlock(fn)
	fn.SetBody(b)
	s := fn.DeclareVariable("s")

	aDef := fetchConst(b, fn.DeclareVariable("a"), []byte{1})
	cDef := fetchConst(b, fn.DeclareVariable("c"), []byte{2})

	useA := ssa.ReadVar(b, aDef.Var, b.BodyLen())
	useC := ssa.ReadVar(b, cDef.Var, b.BodyLen())
	sDef := &ir.Def{Var: s, ID: s.NextDefID()}
	ssa.Append(b, opcode.Add, sDef, []ir.Operand{useA, useC})

	got := ssa.ReachingDefAt(b, s, b.BodyLen())
	if got != sDef {
		t.Fatalf("reaching def = %v, want %v", got, sDef)
	}
}

// TestForkJoinMaterialisesPhi mirrors S2: an if with two distinct defs of
// the same variable joins heterogeneously, producing a real phi.
func TestForkJoinMaterialisesPhi(t *testing.T) {
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

	thenDef := fetchConst(thenCase, x, []byte{1})
	elseDef := fetchConst(elseCase, x, []byte{0})

	use := ssa.ReadVar(after, x, 0)

	if use.Timeline.Def == nil || !use.Timeline.Def.Instr.IsPhi() {
		t.Fatalf("expected a materialised phi, got def %v", use.Timeline.Def)
	}
	phi := use.Timeline.Def.Instr
	if len(phi.Operands) != 2 {
		t.Fatalf("phi operand count = %d, want 2", len(phi.Operands))
	}
	seen := map[*ir.Def]bool{}
	for _, op := range phi.Operands {
		seen[op.(*ir.Use).Timeline.Def] = true
	}
	if !seen[thenDef] || !seen[elseDef] {
		t.Fatalf("phi operands = %v, want {%v,%v}", seen, thenDef, elseDef)
	}
}

// TestLoopAccumulatorSeals mirrors S3: a loop accumulator's condition read
// is provisional (a forward of Start) until Body and Update exist and
// SealLoop runs, after which it observes a real phi joining the start and
// update edges.
func TestLoopAccumulatorSeals(t *testing.T) {
	fn := ir.NewFunction("loop_accumulator")
	loop := ir.NewLoop(fn)
	fn.SetBody(loop)
	acc := fn.DeclareVariable("acc")

	start := ir.NewBlock(loop)
	loop.SetStart(start)
	startDef := fetchConst(start, acc, []byte{0})

	condUse := ssa.ReadVar(loop.Condition, acc, 0)
	if condUse.Timeline.Def != startDef {
		t.Fatalf("provisional condition read = %v, want forward of start %v", condUse.Timeline.Def, startDef)
	}

	body := ir.NewBlock(loop)
	loop.SetBody(body)
	bodyReadUse := ssa.ReadVar(body, acc, 0)
	oneDef := &ir.Def{Var: acc, ID: acc.NextDefID()}
	ssa.Append(body, opcode.Add, oneDef, []ir.Operand{bodyReadUse, ir.Constant{Type: irtype.Int32, Bytes: []byte{1}}})

	update := ir.NewBlock(loop)
	loop.SetUpdate(update)

	after := ir.NewBlock(loop)
	loop.SetAfter(after)

	ssa.SealLoop(loop)

	if condUse.Timeline.Def == startDef {
		t.Fatalf("condition read still forwards start after seal, want a phi joining start and update")
	}
	if !condUse.Timeline.Def.Instr.IsPhi() {
		t.Fatalf("sealed condition def is not a phi: %v", condUse.Timeline.Def)
	}
}

// TestUninitializedReadIsOrphaned mirrors S6: reading a variable with no
// reachable def anywhere up to the function root marks its timeline
// orphaned rather than resolving to a def.
func TestUninitializedReadIsOrphaned(t *testing.T) {
	fn := ir.NewFunction("uninitialized_read")
	b := ir.NewBlock(fn)
	fn.SetBody(b)
	v := fn.DeclareVariable("never_set")

	use := ssa.ReadVar(b, v, 0)
	if use.Timeline.Def != nil {
		t.Fatalf("expected nil def for an orphaned read, got %v", use.Timeline.Def)
	}
	dt := b.DefTimeline(v)
	if !dt.Orphaned {
		t.Fatalf("expected def-timeline to be marked orphaned")
	}
}

// TestEraseRetargetsSuccessors covers the def-propagator: erasing a block's
// last local def for a variable must push the prior reaching def forward to
// whatever had already resolved against the erased one.
func TestEraseRetargetsSuccessors(t *testing.T) {
	fn := ir.NewFunction("erase_propagates")
	seq := ir.NewSequence(fn)
	fn.SetBody(seq)
	v := fn.DeclareVariable("v")

	pred := ir.NewBlock(seq)
	seq.Append(pred)
	succ := ir.NewBlock(seq)
	seq.Append(succ)

	firstDef := fetchConst(pred, v, []byte{1})
	secondDef := fetchConst(pred, v, []byte{2})

	use := ssa.ReadVar(succ, v, 0)
	if use.Timeline.Def != secondDef {
		t.Fatalf("successor read = %v, want %v", use.Timeline.Def, secondDef)
	}

	ssa.Erase(secondDef.Instr)

	if use.Timeline.Def != firstDef {
		t.Fatalf("after erasing the later def, successor read = %v, want it retargeted to %v", use.Timeline.Def, firstDef)
	}
}

// TestEraseOnlyLocalRejoinsIncoming covers §3.3's origin well-formedness
// invariant: erasing a block's only local def, with no prior read having
// forced the incoming timeline to resolve yet, must still rebind surviving
// uses onto a real (possibly freshly-joined) incoming timeline rather than
// leaving them pointed at the detached, erased one.
func TestEraseOnlyLocalRejoinsIncoming(t *testing.T) {
	fn := ir.NewFunction("erase_only_local")
	b := ir.NewBlock(fn)
	fn.SetBody(b)
	v := fn.DeclareVariable("v")

	def := fetchConst(b, v, []byte{1})
	use := ssa.ReadVar(b, v, b.BodyLen())
	if use.Timeline.Def != def {
		t.Fatalf("read before erase = %v, want %v", use.Timeline.Def, def)
	}

	ssa.Erase(def.Instr)

	if use.Timeline.Def != nil {
		t.Fatalf("after erasing the function's only def, read should rejoin an orphaned incoming timeline with a nil def, got %v", use.Timeline.Def)
	}
	dt := b.DefTimeline(v)
	if !dt.Orphaned {
		t.Fatalf("expected def-timeline to be marked orphaned after the join")
	}
	if use.Timeline != dt.IncomingTimeline {
		t.Fatalf("use still bound to the detached erased timeline instead of the block's incoming timeline")
	}
}

// TestInsertBindsReachingDefBeforePos covers insert<Op>: an instruction
// spliced in at pos must see the def that reached pos, and a read already
// resolved against the local timeline that used to sit at pos keeps its
// binding (no retroactive transfer).
func TestInsertBindsReachingDefBeforePos(t *testing.T) {
	fn := ir.NewFunction("insert_mid_body")
	b := ir.NewBlock(fn)
	fn.SetBody(b)
	v := fn.DeclareVariable("v")

	firstDef := fetchConst(b, v, []byte{1})
	secondDef := fetchConst(b, v, []byte{2})

	existingUse := ssa.ReadVar(b, v, b.BodyLen())
	if existingUse.Timeline.Def != secondDef {
		t.Fatalf("existing read = %v, want %v", existingUse.Timeline.Def, secondDef)
	}

	insertPos := 1
	insertOperand := ssa.ReadVar(b, v, insertPos)
	if insertOperand.Timeline.Def != firstDef {
		t.Fatalf("inserted instruction's operand = %v, want the def reaching pos %d (%v)", insertOperand.Timeline.Def, insertPos, firstDef)
	}
	midVar := fn.DeclareVariable("mid")
	midDef := &ir.Def{Var: midVar, ID: midVar.NextDefID()}
	ssa.Insert(b, insertPos, opcode.Add, midDef, []ir.Operand{insertOperand, ir.Constant{Type: irtype.Int32, Bytes: []byte{9}}})

	if b.BodyLen() != 3 {
		t.Fatalf("body length after insert = %d, want 3", b.BodyLen())
	}
	if b.Body[insertPos].Def != midDef {
		t.Fatalf("instruction at pos %d has def %v, want %v", insertPos, b.Body[insertPos].Def, midDef)
	}
	if b.Body[2].Def != secondDef {
		t.Fatalf("instruction shifted to pos 2 has def %v, want %v", b.Body[2].Def, secondDef)
	}
	if existingUse.Timeline.Def != secondDef {
		t.Fatalf("pre-existing read retargeted by insert: got %v, want still %v", existingUse.Timeline.Def, secondDef)
	}
	if ssa.ReachingDefAt(b, v, b.BodyLen()) != secondDef {
		t.Fatalf("reaching def at end of body = %v, want %v", ssa.ReachingDefAt(b, v, b.BodyLen()), secondDef)
	}
}

// TestCreatePhiThenErasePhi covers create_phi/erase_phi as an explicit
// block operation, independent of the demand-driven resolver: a caller
// installs a phi up front, wires one operand per predecessor, then tears
// it down and confirms the def-timeline is left resolvable from scratch.
func TestCreatePhiThenErasePhi(t *testing.T) {
	fn := ir.NewFunction("explicit_phi")
	seq := ir.NewSequence(fn)
	fn.SetBody(seq)
	v := fn.DeclareVariable("v")

	fork := ir.NewFork(seq)
	seq.Append(fork)
	after := ir.NewBlock(seq)
	seq.Append(after)

	thenCase := ir.NewBlock(fork)
	fork.AddCase(thenCase)
	elseCase := ir.NewBlock(fork)
	fork.AddCase(elseCase)

	fetchConst(thenCase, v, []byte{1})
	fetchConst(elseCase, v, []byte{0})

	phi := ssa.CreatePhi(after, v)
	if len(phi.Operands) != 0 {
		t.Fatalf("freshly created phi has %d operands, want 0", len(phi.Operands))
	}
	if len(after.PhiPrefix) != 1 || after.PhiPrefix[0] != phi {
		t.Fatalf("phi not installed in after's phi prefix")
	}

	dt := after.DefTimeline(v)
	thenDT := thenCase.DefTimeline(v)
	elseDT := elseCase.DefTimeline(v)
	dt.AppendIncoming(thenCase, thenDT)
	dt.AppendIncoming(elseCase, elseDT)
	use1 := &ir.Use{}
	thenDT.OutgoingTimeline().AddUse(use1)
	use2 := &ir.Use{}
	elseDT.OutgoingTimeline().AddUse(use2)
	phi.Operands = []ir.Operand{use1, use2}

	read := ssa.ReadVar(after, v, 0)
	if read.Timeline.Def != phi.Def {
		t.Fatalf("read after wiring phi operands = %v, want the phi's def %v", read.Timeline.Def, phi.Def)
	}

	if !ssa.ErasePhi(after, v) {
		t.Fatalf("ErasePhi reported no phi found")
	}
	if len(after.PhiPrefix) != 0 {
		t.Fatalf("phi prefix still has %d entries after erase", len(after.PhiPrefix))
	}
	if dt.IncomingTimeline.Def != nil {
		t.Fatalf("incoming timeline's def = %v, want nil after erase", dt.IncomingTimeline.Def)
	}
	if dt.Orphaned {
		t.Fatalf("unexpected orphaned flag after erase")
	}

	reResolved := ssa.JoinAt(after, v)
	if reResolved.Def == nil || !reResolved.Def.Instr.IsPhi() {
		t.Fatalf("re-resolved join should materialise a fresh phi, got def %v", reResolved.Def)
	}
}
