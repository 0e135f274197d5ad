package ir

// LoopRole tags the five roles of a loop's subcomponents (§3.2, §4.4).
type LoopRole int

const (
	RoleStart LoopRole = iota
	RoleCondition
	RoleBody
	RoleUpdate
	RoleAfter
)

// Loop is start -> condition -> {body -> update -> condition}* -> after.
// The condition is always a block; the cycle edge is update -> condition
// (§3.2).
type Loop struct {
	Start     Subcomponent
	Condition *Block
	Body      Subcomponent
	Update    Subcomponent
	After     Subcomponent

	parent Substructure
	leafCache
}

// NewLoop creates a loop owned by parent with an empty condition block; the
// caller must set Start/Body/Update/After before the loop is well-formed.
func NewLoop(parent Substructure) *Loop {
	l := &Loop{parent: parent}
	l.Condition = NewBlock(l)
	return l
}

func (l *Loop) Parent() Substructure     { return l.parent }
func (l *Loop) setParent(p Substructure) { l.parent = p }
func (l *Loop) Accept(v Visitor) any     { return v.VisitLoop(l) }
func (l *Loop) Tag() ComponentTag        { return TagLoop }

func (l *Loop) EntryComponent() Component { return l.Start }

// SetStart, SetBody, SetUpdate, SetAfter install the given subcomponent
// for that role, taking ownership and invalidating the leaves cache.
func (l *Loop) SetStart(sub Subcomponent) {
	reparent(sub, l)
	l.Start = sub
	invalidateLeaves(l)
}

func (l *Loop) SetBody(sub Subcomponent) {
	reparent(sub, l)
	l.Body = sub
	invalidateLeaves(l)
}

func (l *Loop) SetUpdate(sub Subcomponent) {
	reparent(sub, l)
	l.Update = sub
	invalidateLeaves(l)
}

func (l *Loop) SetAfter(sub Subcomponent) {
	reparent(sub, l)
	l.After = sub
	invalidateLeaves(l)
}

// GetID reports which of the five roles sub plays in this loop.
func (l *Loop) GetID(sub Component) (LoopRole, bool) {
	switch {
	case sub == Component(l.Start):
		return RoleStart, true
	case sub == Component(l.Condition):
		return RoleCondition, true
	case sub == Component(l.Body):
		return RoleBody, true
	case sub == Component(l.Update):
		return RoleUpdate, true
	case sub == Component(l.After):
		return RoleAfter, true
	default:
		return 0, false
	}
}

// Leaves is the leaves of after; start/condition/body/update are internal
// to the loop's cycle (§4.4).
func (l *Loop) Leaves() []*Block {
	if !l.valid {
		l.blocks = leavesOf(l.After)
		l.valid = true
	}
	return l.blocks
}

// IsLeaf reports whether sub is the after component; every other role
// stays inside the loop.
func (l *Loop) IsLeaf(sub Component) bool {
	role, ok := l.GetID(sub)
	return ok && role == RoleAfter
}

// PredecessorLeaves implements the loop's one-level adjacency:
//
//	condition <- leaves(start) union leaves(update)
//	body      <- {condition}
//	update    <- leaves(body)
//	after     <- {condition}
//	start     <- nil (predecessor lies outside the loop)
func (l *Loop) PredecessorLeaves(sub Component) []*Block {
	role, ok := l.GetID(sub)
	if !ok {
		return nil
	}
	switch role {
	case RoleCondition:
		out := append([]*Block{}, leavesOf(l.Start)...)
		out = append(out, leavesOf(l.Update)...)
		return out
	case RoleBody, RoleAfter:
		return []*Block{l.Condition}
	case RoleUpdate:
		return leavesOf(l.Body)
	default:
		return nil
	}
}
