// Package jit defines the abstract compiler_impl contract the core hands a
// static_function to (spec §4.9): compile it to an opaque handle, and
// toggle IR printing for diagnostics. internal/jit/llvmjit provides the
// concrete LLVM-ORCv2-flavoured implementation.
package jit

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"octoir/internal/staticir"
)

// Handle is the opaque result of a successful compile: an id unique to this
// build (so a later rebuild of the same function name is distinguishable),
// the function name it was built from, and the backend's textual IR for
// inspection (populated when EnablePrinting is on, or always for backends
// cheap enough to keep it around).
type Handle struct {
	ID   uuid.UUID
	Name string
	IR   string
}

func (h Handle) String() string { return fmt.Sprintf("%s@%s", h.Name, h.ID) }

// CompilerImpl is the backend contract (§4.9): compile a static_function to
// a handle, and enable or disable IR printing.
type CompilerImpl interface {
	Compile(sf *staticir.StaticFunction) (Handle, error)
	EnablePrinting(enabled bool)
}

// Dedup wraps a CompilerImpl so concurrent Compile calls for the same
// function name join a single in-flight build instead of racing the
// backend's shared module/context state, relevant once callers drive the
// single-threaded IR core from a pool of worker goroutines feeding compile
// requests (§5).
type Dedup struct {
	impl  CompilerImpl
	group singleflight.Group
}

func NewDedup(impl CompilerImpl) *Dedup {
	return &Dedup{impl: impl}
}

func (d *Dedup) EnablePrinting(enabled bool) { d.impl.EnablePrinting(enabled) }

func (d *Dedup) Compile(sf *staticir.StaticFunction) (Handle, error) {
	v, err, _ := d.group.Do(sf.Name, func() (any, error) {
		return d.impl.Compile(sf)
	})
	if err != nil {
		return Handle{}, err
	}
	return v.(Handle), nil
}
