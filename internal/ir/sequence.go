package ir

// Sequence is an ordered list of subcomponents with sequential control flow
// (§3.2). Its entry is its first element; its leaves are its last
// element's leaves.
type Sequence struct {
	Elements []Subcomponent

	parent Substructure
	leafCache
}

// NewSequence creates an empty sequence owned by parent.
func NewSequence(parent Substructure) *Sequence {
	return &Sequence{parent: parent}
}

func (s *Sequence) Parent() Substructure   { return s.parent }
func (s *Sequence) setParent(p Substructure) { s.parent = p }
func (s *Sequence) Accept(v Visitor) any   { return v.VisitSequence(s) }
func (s *Sequence) Tag() ComponentTag      { return TagSequence }

func (s *Sequence) EntryComponent() Component {
	if len(s.Elements) == 0 {
		return nil
	}
	return s.Elements[0]
}

// Append adds sub at the end of the sequence, taking ownership (sub.parent
// is repointed to s).
func (s *Sequence) Append(sub Subcomponent) {
	reparent(sub, s)
	s.Elements = append(s.Elements, sub)
	invalidateLeaves(s)
}

// Find returns the index of sub among the direct elements, or -1.
func (s *Sequence) Find(sub Component) int {
	for i, e := range s.Elements {
		if e == sub {
			return i
		}
	}
	return -1
}

// Leaves returns the leaves of the last element, cached until invalidated.
func (s *Sequence) Leaves() []*Block {
	if !s.valid {
		if len(s.Elements) == 0 {
			s.blocks = nil
		} else {
			s.blocks = leavesOf(s.Elements[len(s.Elements)-1])
		}
		s.valid = true
	}
	return s.blocks
}

// IsLeaf reports whether sub is the last element (its successor, the
// sequence's own successor, lies outside).
func (s *Sequence) IsLeaf(sub Component) bool {
	i := s.Find(sub)
	return i >= 0 && i == len(s.Elements)-1
}

// PredecessorLeaves returns the leaves of the element directly before sub,
// or nil if sub is the first element (its predecessors lie outside s).
func (s *Sequence) PredecessorLeaves(sub Component) []*Block {
	i := s.Find(sub)
	if i <= 0 {
		return nil
	}
	return leavesOf(s.Elements[i-1])
}

// Flatten merges nested sequences into this one in place. It is idempotent:
// after Flatten, no element is itself a sequence, and the resulting size
// equals the sum of sizes of the original leaf (non-sequence) elements
// (§4.4, §8 invariant 5).
func (s *Sequence) Flatten() {
	flat := make([]Subcomponent, 0, len(s.Elements))
	var walk func(elems []Subcomponent)
	walk = func(elems []Subcomponent) {
		for _, e := range elems {
			if inner, ok := e.(*Sequence); ok {
				inner.Flatten()
				walk(inner.Elements)
				continue
			}
			flat = append(flat, e)
		}
	}
	walk(s.Elements)
	for _, e := range flat {
		reparent(e, s)
	}
	s.Elements = flat
	invalidateLeaves(s)
}

// Size reports the number of direct elements.
func (s *Sequence) Size() int { return len(s.Elements) }
