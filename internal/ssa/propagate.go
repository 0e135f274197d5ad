package ssa

import "octoir/internal/ir"

// PropagateDef must be called after a block's outgoing def for v changes
// out from under already-resolved successors: concretely, after Erase
// removes what had been the block's last local def for v. It descends the
// Succs links recorded by every prior join (§8 invariant 3) and retargets
// any incoming timeline that had forwarded to the stale def. A successor
// that locally redefines v still has its incoming timeline retargeted (reads
// before its first local def see it), but the walk goes no further past it,
// since its own local def shadows v from there on. The walk also stops at a
// successor whose incoming timeline turns out to be a
// phi rather than a plain forward (a phi's operand uses are bound to the
// specific use-timeline object, not copied by value, so they already see
// the new def through it, §4.6).
func PropagateDef(b *ir.Block, v *ir.Variable, old *ir.Def) {
	dt, ok := b.MaybeDefTimeline(v)
	if !ok {
		return
	}
	newDef := dt.OutgoingDef()
	if newDef == old {
		return
	}
	propagateFrom(dt, old, newDef, make(map[*ir.DefTimeline]bool))
}

func propagateFrom(dt *ir.DefTimeline, old, new *ir.Def, visited map[*ir.DefTimeline]bool) {
	dt.Succs.ForEach(func(succ *ir.DefTimeline) {
		if visited[succ] {
			return
		}
		visited[succ] = true
		if succ.IncomingTimeline == nil || succ.IncomingTimeline.Def != old {
			return
		}
		succ.IncomingTimeline.Def = new
		if succ.HasLocal() {
			return
		}
		propagateFrom(succ, old, new, visited)
	})
}
