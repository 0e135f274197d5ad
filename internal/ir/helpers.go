package ir

// parentSetter is implemented by every concrete Subcomponent type so
// reparent can repoint ownership uniformly on move/append/flatten (§9
// design notes: "moves/splices must re-point children").
type parentSetter interface {
	setParent(Substructure)
}

func reparent(sub Subcomponent, parent Substructure) {
	if ps, ok := sub.(parentSetter); ok {
		ps.setParent(parent)
	}
}

// leavesOf returns c's leaves: itself if c is a block, or its structure's
// cached Leaves() otherwise.
func leavesOf(c Component) []*Block {
	switch t := c.(type) {
	case *Block:
		return []*Block{t}
	case Substructure:
		return t.Leaves()
	default:
		return nil
	}
}
