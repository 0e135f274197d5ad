package ir

// Block is a leaf of the structured CFG: an ordered instruction list split
// into a phi prefix and a body (§3.2), plus the def-timelines of every
// variable touched in this block. Mutating operations (append/insert/erase,
// reaching-def lookup) live in package ssa, which may need to trigger a
// join across the structured tree; Block itself only exposes the data.
type Block struct {
	PhiPrefix []*Instruction
	Body      []*Instruction

	timelines map[*Variable]*DefTimeline

	parent Substructure
}

// NewBlock creates an empty block. Blocks are always created through a
// structure (Sequence/Fork/Loop/Function) so their parent is set at
// construction.
func NewBlock(parent Substructure) *Block {
	return &Block{timelines: make(map[*Variable]*DefTimeline), parent: parent}
}

// Parent returns the structure that owns this block as a subcomponent.
func (b *Block) Parent() Substructure { return b.parent }

func (b *Block) setParent(p Substructure) { b.parent = p }

// DefTimeline returns the DT for v in this block, creating an empty one if
// absent.
func (b *Block) DefTimeline(v *Variable) *DefTimeline {
	if dt, ok := b.timelines[v]; ok {
		return dt
	}
	dt := &DefTimeline{Block: b, Var: v}
	b.timelines[v] = dt
	return dt
}

// MaybeDefTimeline returns the DT for v without creating one.
func (b *Block) MaybeDefTimeline(v *Variable) (*DefTimeline, bool) {
	dt, ok := b.timelines[v]
	return dt, ok
}

// Variables returns every variable with a DT in this block, in no
// particular order; callers that need determinism should sort by name.
func (b *Block) Variables() []*Variable {
	vs := make([]*Variable, 0, len(b.timelines))
	for v := range b.timelines {
		vs = append(vs, v)
	}
	return vs
}

// Accept implements Component for double-dispatch (§4.7).
func (b *Block) Accept(v Visitor) any { return v.VisitBlock(b) }

// Tag implements Component.
func (b *Block) Tag() ComponentTag { return TagBlock }

// instrAt returns the instruction at body index pos, or nil if pos is the
// end of the body.
func (b *Block) instrAt(pos int) *Instruction {
	if pos < 0 || pos >= len(b.Body) {
		return nil
	}
	return b.Body[pos]
}

// BodyLen reports the number of instructions in the body (excluding the phi
// prefix).
func (b *Block) BodyLen() int { return len(b.Body) }
