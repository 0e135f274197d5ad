package irutil

import "golang.org/x/exp/maps"

// Pack is a type-indexed table keyed by a closed tag enumeration, the Go
// stand-in for the source's compile-time type-list indexing
// (ir-type-traits.hpp): instead of indexing a template pack by type, we
// index a map by the closed tag set every visitor dispatches on.
type Pack[Tag comparable, V any] struct {
	entries map[Tag]V
}

// NewPack builds an empty pack ready for Set.
func NewPack[Tag comparable, V any]() Pack[Tag, V] {
	return Pack[Tag, V]{entries: make(map[Tag]V)}
}

// Set installs the handler for tag, overwriting any previous entry.
func (p *Pack[Tag, V]) Set(tag Tag, v V) {
	if p.entries == nil {
		p.entries = make(map[Tag]V)
	}
	p.entries[tag] = v
}

// Get looks up the handler for tag.
func (p *Pack[Tag, V]) Get(tag Tag) (V, bool) {
	v, ok := p.entries[tag]
	return v, ok
}

// Tags returns the installed tags, in no particular order.
func (p *Pack[Tag, V]) Tags() []Tag {
	return maps.Keys(p.entries)
}

// Len reports how many tags have handlers installed.
func (p *Pack[Tag, V]) Len() int { return len(p.entries) }
