package ssa

import "octoir/internal/ir"

// SealLoop must be called once a loop's Body and Update have both been
// attached (ir.Loop.SetBody, ir.Loop.SetUpdate). Before that point, any
// variable read inside the loop's condition block needed to resolve its
// incoming value while Update was still unset, so predecessorDefTimelines
// could only see the Start edge, so the condition may have resolved to a
// plain forward of Start's def rather than the full two-predecessor phi
// the loop actually has.
//
// SealLoop re-resolves every variable with an existing def-timeline in the
// condition block now that both edges exist, and, where the resolved def
// changes, propagates the corrected value to whatever had already
// consumed the provisional one (via the ordinary def-propagator, since a
// forward's consumers copied its def by value rather than holding a live
// reference to the def-timeline). This is the rederived, non-FIXME
// replacement for the original ascending loop resolver: rather than
// threading a resolution-in-progress state through the structured ascent,
// the loop header is resolved twice (once optimistically with whatever is
// known, once for real once the back edge exists), and the difference, if
// any, is propagated forward.
func SealLoop(l *ir.Loop) {
	cond := l.Condition
	for _, v := range cond.Variables() {
		dt, ok := cond.MaybeDefTimeline(v)
		if !ok || !dt.HasIncoming() || dt.Orphaned {
			continue
		}
		old := dt.OutgoingDef()
		resetIncoming(dt)
		newResolver().resolveIncoming(dt)
		if dt.OutgoingDef() != old {
			PropagateDef(cond, v, old)
		}
	}
}

// resetIncoming discards dt's resolved incoming state, unlinking it from
// every predecessor it had previously recorded, so it can be re-resolved
// from scratch. It deliberately keeps the existing IncomingTimeline object
// alive (only clearing its Def) rather than replacing it: any use already
// bound to it (e.g. the condition block's own read of the variable, which
// is what triggered the first, provisional resolution) reads Def through
// that same object, so it observes the corrected def automatically once
// resolveIncoming fills it back in.
func resetIncoming(dt *ir.DefTimeline) {
	for _, node := range dt.Incoming {
		node.Clear()
	}
	dt.Incoming = nil
	if dt.IncomingTimeline != nil {
		dt.IncomingTimeline.Def = nil
	}
	dt.Orphaned = false
}
