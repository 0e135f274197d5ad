package ir

// Fork is a condition block plus N >= 1 case subcomponents; control merges
// implicitly at the fork's successor (§3.2). The condition is always a
// plain block, never itself a nested structure.
type Fork struct {
	Condition Block
	Cases     []Subcomponent

	parent Substructure
	leafCache
}

// NewFork creates a fork owned by parent with an empty condition block and
// no cases yet; AddCase must be called at least once before the fork is
// well-formed.
func NewFork(parent Substructure) *Fork {
	f := &Fork{parent: parent}
	f.Condition = *NewBlock(f)
	return f
}

func (f *Fork) Parent() Substructure     { return f.parent }
func (f *Fork) setParent(p Substructure) { f.parent = p }
func (f *Fork) Accept(v Visitor) any     { return v.VisitFork(f) }
func (f *Fork) Tag() ComponentTag        { return TagFork }

func (f *Fork) EntryComponent() Component { return &f.Condition }

// IsCondition reports whether sub is this fork's condition block.
func (f *Fork) IsCondition(sub Component) bool { return sub == Component(&f.Condition) }

// AddCase appends a new case to the fork, taking ownership.
func (f *Fork) AddCase(sub Subcomponent) {
	reparent(sub, f)
	f.Cases = append(f.Cases, sub)
	invalidateLeaves(f)
}

// Leaves is the union of all cases' leaves (§4.4: "all cases' leaves are
// the fork's leaves union").
func (f *Fork) Leaves() []*Block {
	if !f.valid {
		seen := make(map[*Block]bool)
		var out []*Block
		for _, c := range f.Cases {
			for _, b := range leavesOf(c) {
				if !seen[b] {
					seen[b] = true
					out = append(out, b)
				}
			}
		}
		f.blocks = out
		f.valid = true
	}
	return f.blocks
}

// IsLeaf reports whether sub is one of the cases (every case's successor is
// the fork's own successor, outside the fork); the condition is never a
// leaf.
func (f *Fork) IsLeaf(sub Component) bool {
	if f.IsCondition(sub) {
		return false
	}
	for _, c := range f.Cases {
		if c == sub {
			return true
		}
	}
	return false
}

// PredecessorLeaves returns {condition} for any case, and nil for the
// condition itself (its predecessor lies outside the fork).
func (f *Fork) PredecessorLeaves(sub Component) []*Block {
	if f.IsCondition(sub) {
		return nil
	}
	return []*Block{&f.Condition}
}
