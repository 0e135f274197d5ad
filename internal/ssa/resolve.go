package ssa

import (
	"octoir/internal/ir"
	"octoir/internal/opcode"
)

// ReachingDefAt returns the def of v that reaches body position pos in b:
// the latest local def before pos, or (if none) the block's resolved
// incoming def, joining across predecessors as needed.
func ReachingDefAt(b *ir.Block, v *ir.Variable, pos int) *ir.Def {
	dt := b.DefTimeline(v)
	for i := len(dt.Local) - 1; i >= 0; i-- {
		if dt.Local[i].Position() < pos {
			return dt.Local[i].Def
		}
	}
	return newResolver().resolveIncoming(dt).Def
}

// ReadVar returns a new Use of v as observed at body position pos in b,
// bound to whichever use-timeline currently reaches that point (resolving
// a join across predecessors if b has no local def of v before pos). The
// returned Use must be installed as an instruction operand; binding it here
// rather than in the caller keeps every timeline's Uses list consistent
// with what ReachingDefAt reports.
func ReadVar(b *ir.Block, v *ir.Variable, pos int) *ir.Use {
	dt := b.DefTimeline(v)
	for i := len(dt.Local) - 1; i >= 0; i-- {
		if dt.Local[i].Position() < pos {
			use := &ir.Use{}
			dt.Local[i].AddUse(use)
			return use
		}
	}
	use := &ir.Use{}
	newResolver().resolveIncoming(dt).AddUse(use)
	return use
}

// JoinAt resolves (materialising a phi if necessary) the incoming timeline
// of v's def-timeline in block b and returns it (§3.4, §4.5).
func JoinAt(b *ir.Block, v *ir.Variable) *ir.UseTimeline {
	return newResolver().resolveIncoming(b.DefTimeline(v))
}

// resolver carries the in-progress set for one top-level resolution call.
// A def-timeline is marked in-progress for the duration of resolving its own
// incoming timeline; a recursive request that loops back onto it (the loop
// condition/update cycle, §4.5 "Loop fixed point") observes the half-built
// placeholder instead of recursing forever. This rederives the join
// without the original ascending-resolution-builder's dominator bookkeeping:
// a join with more than one predecessor is materialised as a phi before its
// operands are resolved, so a cyclic request finds a stable placeholder,
// then simplified away afterward if every operand (other than the phi's own
// self-reference) turns out to agree. A join with a single predecessor
// forwards that predecessor's def and builds no phi.
type resolver struct {
	inProgress map[*ir.DefTimeline]*ir.UseTimeline
}

func newResolver() *resolver {
	return &resolver{inProgress: make(map[*ir.DefTimeline]*ir.UseTimeline)}
}

// resolveIncoming ensures dt's incoming timeline is resolved (a forwarded
// def, a materialised phi, or an orphaned/uninitialised marker) and returns
// it.
func (r *resolver) resolveIncoming(dt *ir.DefTimeline) *ir.UseTimeline {
	if dt.IncomingTimeline != nil && (dt.IncomingTimeline.Def != nil || dt.Orphaned) {
		return dt.IncomingTimeline
	}
	if ut, ok := r.inProgress[dt]; ok {
		return ut
	}

	preds := predecessorDefTimelines(dt.Block, dt.Var)
	ut := dt.EnsureIncomingTimeline()

	switch len(preds) {
	case 0:
		// No predecessor anywhere up to the function root: every path to
		// this point leaves v undefined (§4.5 Termination; §9 design note).
		dt.Orphaned = true
		return ut
	case 1:
		r.inProgress[dt] = ut
		src := r.reachingOutgoing(preds[0])
		delete(r.inProgress, dt)
		dt.AppendIncoming(preds[0].Block, preds[0])
		ut.Def = src.Def
		return ut
	default:
		return r.materializePhi(dt, ut, preds)
	}
}

// reachingOutgoing returns the use-timeline reaching the end of dt's block:
// its latest local def, or its resolved incoming timeline if it has none.
func (r *resolver) reachingOutgoing(dt *ir.DefTimeline) *ir.UseTimeline {
	if dt.HasLocal() {
		return dt.OutgoingTimeline()
	}
	return r.resolveIncoming(dt)
}

// materializePhi builds a phi instruction for dt up front (so a cyclic
// predecessor observes a stable placeholder), fills its operands from every
// predecessor, then collapses it back to a forward if every operand agrees.
func (r *resolver) materializePhi(dt *ir.DefTimeline, ut *ir.UseTimeline, preds []*ir.DefTimeline) *ir.UseTimeline {
	instr := newPhiInstr(dt, ut)

	r.inProgress[dt] = ut

	for _, p := range preds {
		dt.AppendIncoming(p.Block, p)
	}
	operands := make([]ir.Operand, len(preds))
	for i, p := range preds {
		src := r.reachingOutgoing(p)
		use := &ir.Use{}
		src.AddUse(use)
		operands[i] = use
	}
	instr.Operands = operands

	delete(r.inProgress, dt)

	if agreed, ok := trivialDef(instr.Def, operands); ok {
		removePhi(dt, instr)
		ut.Def = agreed
	}
	return ut
}

// trivialDef reports the single def every operand (other than a
// self-reference back to self) agrees on, if they all do.
func trivialDef(self *ir.Def, operands []ir.Operand) (*ir.Def, bool) {
	var found *ir.Def
	seen := false
	for _, op := range operands {
		use, ok := op.(*ir.Use)
		if !ok {
			return nil, false
		}
		d := use.Timeline.Def
		if d == self {
			continue
		}
		if !seen {
			found, seen = d, true
		} else if found != d {
			return nil, false
		}
	}
	if found == nil {
		return nil, false
	}
	return found, true
}

// newPhiInstr creates a fresh phi instruction for dt with no operands yet,
// installs it as dt's incoming timeline's def, and appends it to the block's
// phi prefix. Shared by the demand-driven resolver (which fills operands
// from every predecessor immediately) and the explicit CreatePhi operation
// (which leaves that to the caller).
func newPhiInstr(dt *ir.DefTimeline, ut *ir.UseTimeline) *ir.Instruction {
	def := &ir.Def{Var: dt.Var, ID: dt.Var.NextDefID()}
	instr := ir.NewInstruction(opcode.Phi, def, nil)
	instr.BindPosition(dt.Block, -1)
	ut.Def = def
	dt.Block.PhiPrefix = append(dt.Block.PhiPrefix, instr)
	return instr
}

// removePhi discards a just-simplified phi: it leaves its block's phi
// prefix and every operand's use-list, keeping bidirectional consistency.
func removePhi(dt *ir.DefTimeline, instr *ir.Instruction) {
	prefix := dt.Block.PhiPrefix
	for i, in := range prefix {
		if in == instr {
			dt.Block.PhiPrefix = append(prefix[:i:i], prefix[i+1:]...)
			break
		}
	}
	for _, op := range instr.Operands {
		if use, ok := op.(*ir.Use); ok && use.Timeline != nil {
			use.Timeline.RemoveUse(use)
		}
	}
}

// CreatePhi explicitly materialises an empty phi instruction for v at b's
// phi prefix (§4.3 create_phi), independent of the demand-driven resolver:
// a caller that already knows b needs a phi for v (e.g. hand-wiring
// predecessor edges while building a loop header) can install one directly
// instead of waiting for it to fall out of a read. The returned instruction
// has no operands; the caller appends one per predecessor (AddIncoming on
// dt, a Use on the operand list) before anything reads through it.
func CreatePhi(b *ir.Block, v *ir.Variable) *ir.Instruction {
	dt := b.DefTimeline(v)
	ut := dt.EnsureIncomingTimeline()
	return newPhiInstr(dt, ut)
}

// ErasePhi removes the phi instruction materialised for v in b, if any
// (§4.3 erase_phi): splices it out of the phi prefix, releases its
// operands' use-links, and clears the def-timeline's resolved incoming
// state so a later read re-triggers resolution from scratch. Reports
// whether a phi was found.
func ErasePhi(b *ir.Block, v *ir.Variable) bool {
	dt, ok := b.MaybeDefTimeline(v)
	if !ok || dt.IncomingTimeline == nil {
		return false
	}
	def := dt.IncomingTimeline.Def
	if def == nil || def.Instr == nil || !def.Instr.IsPhi() {
		return false
	}
	instr := def.Instr
	removePhi(dt, instr)
	for _, node := range dt.Incoming {
		node.Clear()
	}
	dt.Incoming = nil
	dt.IncomingTimeline.Def = nil
	dt.Orphaned = false
	return true
}

// predecessorDefTimelines resolves the immediate predecessor blocks of b
// (descending through b's parent structure, ascending past structure
// boundaries where b is itself the entry) into their def-timelines for v.
func predecessorDefTimelines(b *ir.Block, v *ir.Variable) []*ir.DefTimeline {
	blocks := predecessorBlocks(b)
	if len(blocks) == 0 {
		return nil
	}
	dts := make([]*ir.DefTimeline, len(blocks))
	for i, pb := range blocks {
		dts[i] = pb.DefTimeline(v)
	}
	return dts
}

// predecessorBlocks returns the blocks that directly flow into c. It asks
// c's parent structure first (one level, §4.4); if c is that structure's
// own entry, the predecessor lies further out, so it ascends to the
// parent's parent. At the function root it returns nil: c has no
// predecessor anywhere.
func predecessorBlocks(c ir.Component) []*ir.Block {
	sub, ok := c.(ir.Subcomponent)
	if !ok {
		return nil
	}
	parent := sub.Parent()
	if parent == nil {
		return nil
	}
	if leaves := parent.PredecessorLeaves(c); len(leaves) > 0 {
		return leaves
	}
	return predecessorBlocks(parent)
}
