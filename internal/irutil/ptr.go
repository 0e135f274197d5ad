package irutil

import "unsafe"

// uintptrOf gives a total order over *T values for LinkSet's binary search.
// It is never dereferenced as an address past this comparison.
func uintptrOf[T any](p *T) uintptr {
	return uintptr(unsafe.Pointer(p))
}
