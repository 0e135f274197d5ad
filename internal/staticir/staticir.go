// Package staticir flattens a fully-resolved ir.Function into the linear,
// fully-SSA static_function the JIT interface consumes (spec §4.8, §6.3).
// Lowering is pure and deterministic: block and def numbering follow the
// structured tree's stable left-to-right order, so lowering an unchanged
// function twice yields structurally identical output (§8 invariant 8).
package staticir

import (
	"octoir/internal/ir"
	"octoir/internal/irtype"
	"octoir/internal/opcode"
	"octoir/internal/ssa"
	"octoir/internal/visit"
)

type VariableID int
type BlockID int
type DefID int

// StaticVariable is a variable's static-IR record: name, declared type
// (falling back to irtype.Any, its zero value, when unconstrained), and
// total def count.
type StaticVariable struct {
	Name    string
	Type    irtype.Type
	NumDefs int
}

// StaticOperand is a reference to a def, a literal constant, (only inside a
// phi's argument list) a predecessor block reference, or StaticUninitialised,
// standing for a use that no def reaches.
type StaticOperand interface{ isStaticOperand() }

type StaticUse struct {
	Variable VariableID
	Def      DefID
}

type StaticConstant struct {
	Type  irtype.Type
	Bytes []byte
}

// StaticBlockRef names a block by its static id; it appears only as the
// second element of each phi's alternating (use, pred_block) pair.
type StaticBlockRef struct{ Block BlockID }

// StaticUninitialised replaces a use whose resolved def-timeline turned out
// to be orphaned: every path reaching that read leaves the variable
// undefined (ir.DefTimeline.Orphaned, §9 design note). Lowering cannot
// itself reject this: an orphaned operand can legitimately feed a phi
// whose OTHER incoming is well-defined (S6), so the marker is carried
// through and it is the JIT backend's job to trap or error on it.
type StaticUninitialised struct{ Type irtype.Type }

func (StaticUse) isStaticOperand()           {}
func (StaticConstant) isStaticOperand()      {}
func (StaticBlockRef) isStaticOperand()      {}
func (StaticUninitialised) isStaticOperand() {}

// StaticDef is a dense (variable_id, def_id) pair.
type StaticDef struct {
	Variable VariableID
	Def      DefID
}

// StaticInstruction mirrors ir.Instruction with all references resolved to
// dense ids. A phi's Operands alternate (StaticUse, StaticBlockRef) pairs,
// one per predecessor, in the same order as the source DT's Incoming list.
type StaticInstruction struct {
	Opcode   opcode.Opcode
	Def      *StaticDef
	Operands []StaticOperand
}

// StaticBlock holds phi instructions first, then body instructions, both
// already flattened into one ordered list (§4.8). A block whose last
// instruction is not itself a branch/terminate falls through structurally;
// Fallthrough names that successor explicitly so a consumer (the JIT
// backend) never has to re-derive structural adjacency from a
// StaticFunction alone.
type StaticBlock struct {
	ID           BlockID
	Instructions []*StaticInstruction
	Fallthrough  *BlockID

	// Cases holds the entry blocks this block conditionally dispatches
	// to, when it is a fork's condition (one id per ir.Fork.AddCase call,
	// in order) or a loop's condition ([body, after]); nil for every
	// other block. The backend dispatches on this block's last
	// value-producing instruction's result: case 0 on true, case 1 on
	// false (§4.4 Fork models a binary if/else; wider N-case forks are a
	// structural generality this backend does not translate).
	Cases []BlockID

	// ReturnValue is set only on the function's own exit block (no
	// Fallthrough, no Cases): the reaching def of the return variable
	// (args[0], §6.3) at that point, resolved via ssa.ReachingDefAt
	// rather than re-derived by the backend.
	ReturnValue *StaticDef
}

// StaticFunction is the binary contract handed to the JIT (§6.3): Blocks[0]
// is the entry block, Args[0] is the implicit return slot.
type StaticFunction struct {
	Name      string
	Args      []VariableID
	Variables []StaticVariable
	Blocks    []*StaticBlock
}

// Lower flattens fn's structured tree into a StaticFunction. fn must be
// fully resolved: every variable read reachable from its body must already
// have triggered its join (via ssa.ReadVar/ssa.JoinAt) so every use's
// timeline carries a def.
func Lower(fn *ir.Function) *StaticFunction {
	blocks := visit.Blocks(fn)
	blockID := make(map[*ir.Block]BlockID, len(blocks))
	for i, b := range blocks {
		blockID[b] = BlockID(i)
	}

	vars := fn.Variables()
	varID := make(map[*ir.Variable]VariableID, len(vars))
	svars := make([]StaticVariable, len(vars))
	for i, v := range vars {
		varID[v] = VariableID(i)
		svars[i] = StaticVariable{Name: v.Name, Type: v.Type, NumDefs: v.NumDefs()}
	}

	sblocks := make([]*StaticBlock, len(blocks))
	for i, b := range blocks {
		sb := &StaticBlock{ID: BlockID(i)}
		for _, instr := range b.PhiPrefix {
			sb.Instructions = append(sb.Instructions, lowerPhi(instr, varID, blockID))
		}
		for _, instr := range b.Body {
			sb.Instructions = append(sb.Instructions, lowerInstr(instr, varID))
		}
		switch parent := b.Parent().(type) {
		case *ir.Fork:
			if parent.IsCondition(b) {
				for _, c := range parent.Cases {
					sb.Cases = append(sb.Cases, blockID[ir.EntryBlock(c)])
				}
			}
		case *ir.Loop:
			if role, ok := parent.GetID(b); ok && role == ir.RoleCondition {
				// true -> body, false -> after, same convention as Fork.
				sb.Cases = []BlockID{blockID[ir.EntryBlock(parent.Body)], blockID[ir.EntryBlock(parent.After)]}
			}
		}
		if len(sb.Cases) == 0 && !endsInBranch(sb) {
			if next, ok := ssa.FallthroughOf(b); ok {
				id := blockID[next]
				sb.Fallthrough = &id
			} else if len(fn.Args) > 0 {
				returnVar := fn.Args[0]
				def := ssa.ReachingDefAt(b, returnVar, b.BodyLen())
				if def != nil {
					sb.ReturnValue = &StaticDef{Variable: varID[returnVar], Def: DefID(def.ID)}
				}
			}
		}
		sblocks[i] = sb
	}

	args := make([]VariableID, len(fn.Args))
	for i, a := range fn.Args {
		args[i] = varID[a]
	}

	return &StaticFunction{Name: fn.Name, Args: args, Variables: svars, Blocks: sblocks}
}

// endsInBranch reports whether sb's last instruction already transfers
// control explicitly, making a derived Fallthrough unnecessary.
func endsInBranch(sb *StaticBlock) bool {
	if len(sb.Instructions) == 0 {
		return false
	}
	last := sb.Instructions[len(sb.Instructions)-1].Opcode
	return opcode.IsA(last, opcode.Branch) || last == opcode.Terminate
}

func lowerInstr(instr *ir.Instruction, varID map[*ir.Variable]VariableID) *StaticInstruction {
	si := &StaticInstruction{Opcode: instr.Opcode}
	if instr.Def != nil {
		si.Def = &StaticDef{Variable: varID[instr.Def.Var], Def: DefID(instr.Def.ID)}
	}
	for _, op := range instr.Operands {
		si.Operands = append(si.Operands, lowerOperand(op, varID))
	}
	return si
}

func lowerOperand(op ir.Operand, varID map[*ir.Variable]VariableID) StaticOperand {
	switch t := op.(type) {
	case ir.Constant:
		return StaticConstant{Type: t.Type, Bytes: append([]byte(nil), t.Bytes...)}
	case *ir.Use:
		def := t.Timeline.Def
		if def == nil {
			return StaticUninitialised{Type: t.Timeline.DT.Var.Type}
		}
		return StaticUse{Variable: varID[def.Var], Def: DefID(def.ID)}
	default:
		panic("staticir: unknown operand kind")
	}
}

// lowerPhi reconstructs the alternating (use, pred_block) argument list
// from the phi's owning def-timeline's Incoming list (§4.8 Phi format),
// since ir.Instruction's own Operands slice carries only the use side, one
// per incoming node, in the same order.
func lowerPhi(instr *ir.Instruction, varID map[*ir.Variable]VariableID, blockID map[*ir.Block]BlockID) *StaticInstruction {
	def := instr.Def
	dt := instr.Block().DefTimeline(def.Var)
	si := &StaticInstruction{
		Opcode: opcode.Phi,
		Def:    &StaticDef{Variable: varID[def.Var], Def: DefID(def.ID)},
	}
	for i, node := range dt.Incoming {
		use := instr.Operands[i].(*ir.Use)
		si.Operands = append(si.Operands,
			lowerOperand(use, varID),
			StaticBlockRef{Block: blockID[node.Pred]},
		)
	}
	return si
}
