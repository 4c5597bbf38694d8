// Package literal implements the intern table described in spec.md §4.1:
// a hash-keyed set of literal records (function and file identifiers)
// that uniques names into stable handles carrying mutable per-identifier
// metadata. A table is owned exclusively by one goroutine at a time (one
// per parse shard, or the single destination of a merge), so unlike the
// rest of the pipeline it does no internal locking.
package literal

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Flag is a bitset of facts recorded on a Handle.
type Flag uint32

const (
	// Function marks a literal as a function/method name.
	Function Flag = 1 << iota
	// File marks a literal as a file path.
	File
	// Global marks a function whose storage class is not extern —
	// see spec.md §9 "storage-class mapping" for why this is named
	// Global despite static functions satisfying it too.
	Global
	// Inline marks a function declared inline.
	Inline
	// Defined marks a function for which a definition body (not just
	// a declaration) has been observed.
	Defined
	// Duplicated marks a function literal that two merged shards
	// both claimed a definition file for, and those files disagreed.
	Duplicated
)

// Handle is a stable reference to an interned literal. It is never
// invalidated by further Put calls or by the table's internal growth;
// only tearing down the owning Table releases the memory behind it.
type Handle = *record

type record struct {
	hash  uint64
	name  string
	file  Handle
	line  int
	col   int
	flags Flag
	// scratch is transient per-algorithm storage: an offset-into-edges
	// index in its upper 48 bits, and a DFS visited mark in its low
	// bit. See internal/index and internal/filter.
	scratch uint64
}

// Name returns the interned, immutable name.
func (h Handle) Name() string { return h.name }

// Hash returns the 64-bit hash of the name, computed once at Put time.
func (h Handle) Hash() uint64 { return h.hash }

// FileHandle returns the owning file literal, or nil if none is set.
func (h Handle) FileHandle() Handle { return h.file }

// SetFile sets the owning file literal. Spec.md §3 invariant: a FUNCTION
// literal's file is none until a definition is observed, and thereafter
// fixed unless reconciled by merge (which may set Duplicated instead of
// overwriting silently) — callers enforcing that invariant live in
// internal/clangvisit and internal/merge, not here.
func (h Handle) SetFile(f Handle) { h.file = f }

// Location returns the recorded (line, column).
func (h Handle) Location() (line, col int) { return h.line, h.col }

// SetLocation records a (line, column) pair.
func (h Handle) SetLocation(line, col int) { h.line, h.col = line, col }

// Flags returns the current flag bitset.
func (h Handle) Flags() Flag { return h.flags }

// SetFlags ORs the given bits into the flag set.
func (h Handle) SetFlags(f Flag) { h.flags |= f }

// ClearFlags clears the given bits from the flag set.
func (h Handle) ClearFlags(f Flag) { h.flags &^= f }

// HasFlag reports whether every bit in f is set.
func (h Handle) HasFlag(f Flag) bool { return h.flags&f == f }

// Scratch returns the raw scratch word.
func (h Handle) Scratch() uint64 { return h.scratch }

// SetScratch overwrites the scratch word.
func (h Handle) SetScratch(v uint64) { h.scratch = v }

// ScratchMut returns a pointer to the scratch word so callers (the graph
// index and the filter pipeline's DFS) can read-modify-write it without
// a second lookup.
func (h Handle) ScratchMut() *uint64 { return &h.scratch }

// ID returns a stable, process-unique node identifier suitable for DOT
// output, matching the original's "n%p" node naming.
func (h Handle) ID() string {
	if h == nil {
		return "n0"
	}
	return fmt.Sprintf("n%p", h)
}

// Less orders two handles by their (stable, but run-specific) identity.
// spec.md §5 calls the final graph "deterministic modulo handle
// addresses"; every algorithm that needs a total order over handles
// (defs dedup, DOT clustering) sorts by Less after sorting by whatever
// semantic key actually matters, so ties break consistently within one
// run without claiming any meaning across runs.
func Less(a, b Handle) bool {
	return addrOf(a) < addrOf(b)
}

func addrOf(h Handle) uintptr {
	if h == nil {
		return 0
	}
	return reflect.ValueOf(h).Pointer()
}

// hash64 hashes a name the way spec.md §4.1 requires: a 64-bit hash used
// as the intern table's probe key alongside the literal bytes.
func hash64(name string) uint64 {
	return xxhash.Sum64String(name)
}
