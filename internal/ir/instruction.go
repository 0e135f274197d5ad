package ir

import (
	"octoir/internal/irtype"
	"octoir/internal/opcode"
)

// Operand is either a Constant or a Use bound to a UseTimeline (§3.1).
type Operand interface {
	IsOperand()
}

// Constant is a literal operand of a fixed IR type.
type Constant struct {
	Type  irtype.Type
	Bytes []byte // raw representation, interpreted per Type
}

func (Constant) IsOperand() {}

// Use is an operand referring to a def via the use-timeline it is currently
// bound to. A use is bound to exactly one timeline for its lifetime and
// rebinds in place (Timeline is reassigned) when that timeline splits;
// e.g. when an incoming timeline materialises into a phi.
type Use struct {
	Timeline *UseTimeline
}

func (*Use) IsOperand() {}

// Instruction holds an opcode, an optional Def, and an ordered operand
// list. HasDef(Opcode) must agree with Def != nil; that invariant is
// maintained by the builders in package ssa, not enforced here.
type Instruction struct {
	Opcode   opcode.Opcode
	Def      *Def
	Operands []Operand

	block *Block
	pos   int // index into the owning Block's body slice (phi prefix uses -1)
}

// NewInstruction creates an unattached instruction and, if def is non-nil,
// backlinks def.Instr to it; package ssa attaches the instruction to a
// block body via BindPosition.
func NewInstruction(op opcode.Opcode, def *Def, operands []Operand) *Instruction {
	instr := &Instruction{Opcode: op, Def: def, Operands: operands, pos: -1}
	if def != nil {
		def.Instr = instr
	}
	return instr
}

// BindPosition attaches the instruction to b at body index pos. Called by
// package ssa when appending, inserting, or renumbering a block's body, and
// with pos -1 when installing a phi in the block's phi prefix.
func (i *Instruction) BindPosition(b *Block, pos int) {
	i.block = b
	i.pos = pos
}

// Position returns the instruction's body index, or -1 if unattached or in
// the phi prefix.
func (i *Instruction) Position() int { return i.pos }

// Block returns the instruction's owning block.
func (i *Instruction) Block() *Block { return i.block }

// IsPhi reports whether this instruction is a phi.
func (i *Instruction) IsPhi() bool { return i.Opcode == opcode.Phi }
