package ir

// ComponentTag is the closed tag set double-dispatch and the visitor
// infrastructure switch on (§4.7).
type ComponentTag int

const (
	TagBlock ComponentTag = iota
	TagSequence
	TagFork
	TagLoop
	TagFunction
)

func (t ComponentTag) String() string {
	switch t {
	case TagBlock:
		return "block"
	case TagSequence:
		return "sequence"
	case TagFork:
		return "fork"
	case TagLoop:
		return "loop"
	case TagFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Visitor double-dispatches over the closed component tag set. Inspector
// visitors (read-only) and mutator visitors share this single interface;
// package visit distinguishes the two categories at a higher level.
type Visitor interface {
	VisitBlock(*Block) any
	VisitSequence(*Sequence) any
	VisitFork(*Fork) any
	VisitLoop(*Loop) any
	VisitFunction(*Function) any
}

// Component is any node of the structured tree.
type Component interface {
	Accept(Visitor) any
	Tag() ComponentTag
}

// Substructure is a structure that owns subcomponents: sequence, fork,
// loop, or function (§3.2/§4.4).
type Substructure interface {
	Component

	// EntryComponent returns the uniquely-defined entry subcomponent,
	// found by descending left-first through sequence/fork/loop.
	EntryComponent() Component

	// Leaves returns the blocks whose outgoing edges leave this
	// structure, cached until a leaf position is mutated.
	Leaves() []*Block

	// IsLeaf reports whether sub's successor lies outside this
	// structure.
	IsLeaf(sub Component) bool

	// PredecessorLeaves returns the blocks that directly flow into sub
	// from within this structure only (one level; callers ascend via
	// Subcomponent.Parent to go further). Empty if sub is this
	// structure's own entry.
	PredecessorLeaves(sub Component) []*Block
}

// Subcomponent is any non-root component; it has exactly one parent
// (§3.2: "Each subcomponent has exactly one parent").
type Subcomponent interface {
	Component
	Parent() Substructure
}

// EntryBlock descends left-first through c until it reaches a block: the
// structure's uniquely-defined entry point (§3.2).
func EntryBlock(c Component) *Block {
	for {
		switch t := c.(type) {
		case *Block:
			return t
		case *Sequence:
			if len(t.Elements) == 0 {
				return nil
			}
			c = t.Elements[0]
		case *Fork:
			c = &t.Condition
		case *Loop:
			c = t.Start
		case *Function:
			c = t.Body
		default:
			return nil
		}
	}
}

// cacheInvalidator is implemented by every Substructure so invalidateLeaves
// can walk the parent chain clearing caches.
type cacheInvalidator interface {
	invalidateCache()
}

// invalidateLeaves clears s's leaves cache and every ancestor's, since a
// change to an inner leaf can change an outer structure's leaf set too.
func invalidateLeaves(s Substructure) {
	var cur Component = s
	for cur != nil {
		if ci, ok := cur.(cacheInvalidator); ok {
			ci.invalidateCache()
		}
		sub, ok := cur.(Subcomponent)
		if !ok {
			return
		}
		parent := sub.Parent()
		if parent == nil {
			return
		}
		cur = parent
	}
}

// leafCache is the embeddable cache used by Sequence/Fork/Loop.
type leafCache struct {
	valid  bool
	blocks []*Block
}

func (c *leafCache) invalidateCache() { c.valid = false; c.blocks = nil }
