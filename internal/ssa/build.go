package ssa

import (
	"octoir/internal/ir"
	"octoir/internal/opcode"
)

// Append creates and appends a new instruction to the end of b's body. If
// def is non-nil, a local use-timeline pinned at the new position is
// created for def.Var's def-timeline in b.
func Append(b *ir.Block, op opcode.Opcode, def *ir.Def, operands []ir.Operand) *ir.Instruction {
	instr := ir.NewInstruction(op, def, operands)
	pos := b.BodyLen()
	b.Body = append(b.Body, instr)
	instr.BindPosition(b, pos)
	if def != nil {
		b.DefTimeline(def.Var).NewLocalUseTimeline(def, pos)
	}
	return instr
}

// Erase removes instr from its block. If it defined a variable, its uses
// are rebound to whatever def reached it (the prior local def, or the
// block's incoming timeline, joined now if it hadn't been already),
// trailing positions are renumbered, and, if the erased def was the
// block's outgoing def, PropagateDef retargets any successor that had
// already resolved against it (§4.6).
func Erase(instr *ir.Instruction) {
	b := instr.Block()
	def := instr.Def
	if def == nil {
		pos := instr.Position()
		removeFromBody(b, instr)
		renumberFrom(b, pos)
		return
	}

	dt := b.DefTimeline(def.Var)
	removed, idx := dt.RemoveLocal(def)
	if removed == nil {
		return
	}
	wasOutgoing := idx == len(dt.Local)

	var prior *ir.UseTimeline
	if idx > 0 {
		prior = dt.Local[idx-1]
	} else {
		// No earlier local def in this block: the surviving uses must
		// re-attach to the incoming timeline, joining across predecessors
		// now if that join hasn't happened yet (§3.3 origin well-formedness,
		// §4.3 "removing the last local that shadowed an incoming").
		prior = JoinAt(b, def.Var)
	}

	removeFromBody(b, instr)
	renumberFrom(b, idx)

	removed.Rebind(prior)
	if wasOutgoing {
		PropagateDef(b, def.Var, def)
	}
}

// Insert creates a new instruction and splices it into b's body at index
// pos, shifting every later instruction one position down. Operand binding
// must already reflect the reaching def before pos (callers build operands
// with ReadVar/ReachingDefAt at pos, same as for Append); uses that were
// already bound to the local timeline that used to sit at pos are left
// alone; a Use is bound to its timeline for life (§3.1) and nothing about
// inserting an earlier def retroactively touches it.
func Insert(b *ir.Block, pos int, op opcode.Opcode, def *ir.Def, operands []ir.Operand) *ir.Instruction {
	instr := ir.NewInstruction(op, def, operands)
	b.Body = append(b.Body, nil)
	copy(b.Body[pos+1:], b.Body[pos:])
	b.Body[pos] = instr
	if def != nil {
		b.DefTimeline(def.Var).InsertLocal(def, pos)
	}
	renumberFrom(b, pos)
	return instr
}

func removeFromBody(b *ir.Block, instr *ir.Instruction) {
	for i, in := range b.Body {
		if in == instr {
			b.Body = append(b.Body[:i:i], b.Body[i+1:]...)
			for _, op := range instr.Operands {
				if u, ok := op.(*ir.Use); ok && u.Timeline != nil {
					u.Timeline.RemoveUse(u)
				}
			}
			return
		}
	}
}

// renumberFrom re-pins the body position of every instruction from index
// from onward (and, for instructions with a def, their local use-timeline),
// after Erase or Insert shifted everything from that point on.
func renumberFrom(b *ir.Block, from int) {
	for i := from; i < len(b.Body); i++ {
		instr := b.Body[i]
		instr.BindPosition(b, i)
		if instr.Def != nil {
			b.DefTimeline(instr.Def.Var).RepinLocal(instr.Def, i)
		}
	}
}
