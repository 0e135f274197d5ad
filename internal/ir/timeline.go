package ir

import "octoir/internal/irutil"

// HeadKind classifies what a UseTimeline's head represents.
type HeadKind int

const (
	// HeadLocal: the timeline's head is a local defining instruction.
	HeadLocal HeadKind = iota
	// HeadPhi: the timeline's head is a phi instruction materialised at
	// the owning block's entry (an incoming timeline that resolved
	// heterogeneously).
	HeadPhi
	// HeadUninitialized: an orphaned incoming timeline with no incoming
	// node and no phi: a synthetic uninitialised-use marker (§9).
	HeadUninitialized
)

// UseTimeline is an ordered list of uses sharing a single def, pinned to a
// position in its owning block (§3.3). Its head is either a local defining
// instruction, a materialised phi, or (only for the incoming timeline of an
// unresolved root-level def) an uninitialised marker.
type UseTimeline struct {
	DT   *DefTimeline
	Def  *Def // nil iff Kind == HeadUninitialized and no phi has been created yet
	Uses []*Use

	// pos pins a local timeline to a position in the block's body; -1 for
	// the incoming timeline, which always precedes every local timeline.
	pos int
}

// Kind reports what this timeline's head currently is.
func (t *UseTimeline) Kind() HeadKind {
	if t.Def == nil {
		return HeadUninitialized
	}
	if t.Def.Instr != nil && t.Def.Instr.IsPhi() {
		return HeadPhi
	}
	return HeadLocal
}

// Position returns the pinned body position, or -1 for the incoming
// timeline.
func (t *UseTimeline) Position() int { return t.pos }

// Rebind moves all of t's uses onto next and clears t's use list. Used when
// erasing a def instruction (its local timeline's uses splice forward) and
// when an incoming timeline materialises a phi (existing incoming uses
// already point at the timeline itself, so no rebind is needed there; only
// the Def field changes).
func (t *UseTimeline) Rebind(next *UseTimeline) {
	for _, u := range t.Uses {
		u.Timeline = next
		next.Uses = append(next.Uses, u)
	}
	t.Uses = nil
}

// AddUse binds u to this timeline.
func (t *UseTimeline) AddUse(u *Use) {
	u.Timeline = t
	t.Uses = append(t.Uses, u)
}

// RemoveUse unbinds u from this timeline, if present. Used when an
// instruction referencing u is erased.
func (t *UseTimeline) RemoveUse(u *Use) {
	for i, e := range t.Uses {
		if e == u {
			t.Uses = append(t.Uses[:i], t.Uses[i+1:]...)
			return
		}
	}
}

// IncomingNode records one predecessor edge into a DefTimeline: the
// predecessor block and the set of predecessor def-timelines that flow in
// along that edge (§3.3).
type IncomingNode struct {
	Pred      *Block
	Timelines irutil.LinkSet[DefTimeline]
	owner     *DefTimeline
}

// DefTimeline is the complete per-(block, variable) SSA record (§3.3): an
// at-most-one incoming node list sharing a single incoming use-timeline,
// and an ordered list of local use-timelines, one per local def of the
// variable in this block.
type DefTimeline struct {
	Block *Block
	Var   *Variable

	Incoming         []*IncomingNode
	IncomingTimeline *UseTimeline // non-nil iff Incoming is non-empty, or the DT is orphaned

	Local []*UseTimeline // ordered by body position

	// Succs is the bidirectional back-link: the set of DefTimelines whose
	// incoming node lists this DT as a predecessor timeline (invariant 3,
	// §8).
	Succs irutil.LinkSet[DefTimeline]

	// Orphaned marks an incoming timeline created with no incoming node:
	// "uninitialised on some path" reached the function root (§4.5
	// Termination; §9 design note, replacing the source's self-reference
	// trick with an explicit marker).
	Orphaned bool
}

// HasIncoming reports whether this DT has a (possibly orphaned) incoming
// timeline.
func (dt *DefTimeline) HasIncoming() bool { return dt.IncomingTimeline != nil }

// HasLocal reports whether this DT has any local def in its block.
func (dt *DefTimeline) HasLocal() bool { return len(dt.Local) > 0 }

// OutgoingTimeline returns the use-timeline that reaches the end of the
// block: the latest local timeline, or the incoming timeline if there is no
// local def.
func (dt *DefTimeline) OutgoingTimeline() *UseTimeline {
	if n := len(dt.Local); n > 0 {
		return dt.Local[n-1]
	}
	return dt.IncomingTimeline
}

// OutgoingDef returns the def reached at the end of the block, or nil if
// none (including an unmaterialised incoming timeline).
func (dt *DefTimeline) OutgoingDef() *Def {
	if t := dt.OutgoingTimeline(); t != nil {
		return t.Def
	}
	return nil
}

// ensureIncoming creates dt's incoming timeline if absent and returns it.
// It does not populate Incoming nodes or materialise a phi; callers in
// package ssa decide whether the join is homogeneous first.
func (dt *DefTimeline) ensureIncoming() *UseTimeline {
	if dt.IncomingTimeline == nil {
		dt.IncomingTimeline = &UseTimeline{DT: dt, pos: -1}
	}
	return dt.IncomingTimeline
}

// EnsureIncomingTimeline is the exported form of ensureIncoming, used by
// package ssa when materialising a join.
func (dt *DefTimeline) EnsureIncomingTimeline() *UseTimeline { return dt.ensureIncoming() }

// NewLocalUseTimeline creates a local use-timeline for def, pinned at body
// position pos, and appends it to dt.Local. Callers in package ssa must
// call this in increasing pos order, matching the body's instruction order.
func (dt *DefTimeline) NewLocalUseTimeline(def *Def, pos int) *UseTimeline {
	t := &UseTimeline{DT: dt, Def: def, pos: pos}
	dt.Local = append(dt.Local, t)
	return t
}

// InsertLocal creates a local use-timeline for def, pinned at body position
// pos, and splices it into dt.Local ahead of every existing entry whose
// position is >= pos. Used when an instruction is inserted mid-body rather
// than appended; package ssa renumbers the positions of everything after it.
func (dt *DefTimeline) InsertLocal(def *Def, pos int) *UseTimeline {
	t := &UseTimeline{DT: dt, Def: def, pos: pos}
	idx := len(dt.Local)
	for i, e := range dt.Local {
		if e.pos >= pos {
			idx = i
			break
		}
	}
	dt.Local = append(dt.Local, nil)
	copy(dt.Local[idx+1:], dt.Local[idx:])
	dt.Local[idx] = t
	return t
}

// RemoveLocal splices out the local timeline defining def. It does not
// rebind uses or renumber positions; package ssa's Erase does both.
func (dt *DefTimeline) RemoveLocal(def *Def) (*UseTimeline, int) {
	for i, t := range dt.Local {
		if t.Def == def {
			dt.Local = append(dt.Local[:i], dt.Local[i+1:]...)
			return t, i
		}
	}
	return nil, -1
}

// RepinLocal updates the pinned body position of the local timeline
// defining def. Used by package ssa after an erase shifts body indices.
func (dt *DefTimeline) RepinLocal(def *Def, pos int) {
	for _, t := range dt.Local {
		if t.Def == def {
			t.pos = pos
			return
		}
	}
}

// AppendIncoming records a new incoming node for pred flowing in the given
// predecessor def-timelines, and maintains bidirectional succs links.
func (dt *DefTimeline) AppendIncoming(pred *Block, preds ...*DefTimeline) *IncomingNode {
	node := &IncomingNode{Pred: pred, owner: dt}
	for _, p := range preds {
		node.Timelines.Insert(p)
		p.Succs.Insert(dt)
	}
	dt.Incoming = append(dt.Incoming, node)
	return node
}

// Clear empties this node's set of predecessor timelines and erases their
// succs back-links to the owning def-timeline, without touching the
// incoming timeline itself.
func (n *IncomingNode) Clear() {
	n.Timelines.ForEach(func(p *DefTimeline) { p.Succs.Erase(n.owner) })
	n.Timelines = irutil.LinkSet[DefTimeline]{}
}

// AddPredecessor adds p as a flowing predecessor timeline for this node.
func (n *IncomingNode) AddPredecessor(p *DefTimeline) {
	n.Timelines.Insert(p)
	p.Succs.Insert(n.owner)
}
