// Package irutil provides the small set of generic containers and
// combinators the IR core builds on: an ordered set of non-owning
// references (LinkSet), a maybe/optional monad (Maybe), and a type-indexed
// pack helper. None of these leak into the public contracts of the higher
// packages; they are internal plumbing, same role as the teacher's various
// small container helpers.
package irutil

import (
	"golang.org/x/exp/slices"
)

// LinkSet is a sorted set of non-nil borrowed references to T, comparing
// elements by pointer identity. It never allocates beyond the growth of its
// backing slice and never owns its elements; it is the Go analogue of
// ir_link_set<T>, which stores nonnull_ptr<T> rather than T.
type LinkSet[T any] struct {
	items []*T
}

// NewLinkSet builds a LinkSet from zero or more references, de-duplicating
// and sorting by pointer identity.
func NewLinkSet[T any](refs ...*T) LinkSet[T] {
	var s LinkSet[T]
	for _, r := range refs {
		s.Insert(r)
	}
	return s
}

func ptrLess[T any](a, b *T) bool {
	// Ordered by address. The IR core never inspects this order for meaning
	// beyond determinism of iteration; it only needs it to be stable and
	// total across a run.
	return uintptrOf(a) < uintptrOf(b)
}

// Insert adds ref if not already present; reports whether it was inserted.
func (s *LinkSet[T]) Insert(ref *T) bool {
	if ref == nil {
		panic("irutil: LinkSet does not hold nil references")
	}
	i, found := s.search(ref)
	if found {
		return false
	}
	s.items = slices.Insert(s.items, i, ref)
	return true
}

// Erase removes ref if present; reports whether it was removed.
func (s *LinkSet[T]) Erase(ref *T) bool {
	i, found := s.search(ref)
	if !found {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Contains reports whether ref is a member.
func (s *LinkSet[T]) Contains(ref *T) bool {
	_, found := s.search(ref)
	return found
}

func (s *LinkSet[T]) search(ref *T) (int, bool) {
	return slices.BinarySearchFunc(s.items, ref, func(a, b *T) int {
		if a == b {
			return 0
		}
		if ptrLess(a, b) {
			return -1
		}
		return 1
	})
}

// Len reports the number of members.
func (s *LinkSet[T]) Len() int { return len(s.items) }

// Empty reports whether the set has no members.
func (s *LinkSet[T]) Empty() bool { return len(s.items) == 0 }

// Slice returns the members in sorted order. The caller must not mutate it.
func (s *LinkSet[T]) Slice() []*T { return s.items }

// Equal reports whether s and o contain exactly the same references.
func (s *LinkSet[T]) Equal(o *LinkSet[T]) bool {
	return slices.Equal(s.items, o.items)
}

// Union returns a new LinkSet containing the members of both sets.
func (s *LinkSet[T]) Union(o *LinkSet[T]) LinkSet[T] {
	var out LinkSet[T]
	for _, r := range s.items {
		out.Insert(r)
	}
	for _, r := range o.items {
		out.Insert(r)
	}
	return out
}

// ForEach visits members in sorted order.
func (s *LinkSet[T]) ForEach(f func(*T)) {
	for _, r := range s.items {
		f(r)
	}
}
