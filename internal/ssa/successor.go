package ssa

import "octoir/internal/ir"

// FallthroughOf reports the block control reaches when b ends without an
// explicit branch/terminate instruction: the mirror image of
// predecessorBlocks, ascending the parent chain until a structure has more
// to do after b's position, or descending into the next thing found.
// Reports ok == false at a loop or fork condition (whose successors are the
// structure's cases rather than a single fallthrough) or at the function
// body's own exit (implicit return).
func FallthroughOf(b *ir.Block) (*ir.Block, bool) {
	var cur ir.Component = b
	for {
		sub, ok := cur.(ir.Subcomponent)
		if !ok {
			return nil, false
		}
		parent := sub.Parent()
		if parent == nil {
			return nil, false
		}
		switch p := parent.(type) {
		case *ir.Sequence:
			idx := p.Find(cur)
			if idx >= 0 && idx+1 < len(p.Elements) {
				return ir.EntryBlock(p.Elements[idx+1]), true
			}
			cur = p
		case *ir.Fork:
			if p.IsCondition(cur) {
				// A fork's condition dispatches to N case entries, not a
				// single fallthrough; the caller derives that from the
				// fork's own case list (§4.8 StaticBlock.Cases).
				return nil, false
			}
			cur = p
		case *ir.Loop:
			role, ok := p.GetID(cur)
			if !ok {
				return nil, false
			}
			switch role {
			case ir.RoleStart:
				return p.Condition, true
			case ir.RoleCondition:
				return nil, false
			case ir.RoleBody:
				return ir.EntryBlock(p.Update), true
			case ir.RoleUpdate:
				return p.Condition, true
			case ir.RoleAfter:
				cur = p
			default:
				return nil, false
			}
		case *ir.Function:
			return nil, false
		default:
			return nil, false
		}
	}
}
