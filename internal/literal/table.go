package literal

import "iter"

// initialCaps is the bucket count a freshly created Table starts with.
// literal.c sizes its table per translation unit; a parse shard rarely
// interns more than a few hundred names, so this avoids early regrowth
// without over-allocating for the common case.
const initialCaps = 64

// growLoadFactor is the occupancy ratio past which Put grows the bucket
// array before returning, matching the 0.75 threshold spec.md §4.1
// calls out.
const growLoadFactor = 0.75

// growFactor is how much the bucket array grows by when it does.
const growFactor = 1.5

// Table is an open-addressed, linear-probed set of interned literals.
// Handles are *record pointers and are never moved by growth or further
// Puts — only the bucket array (which merely references them) is
// reallocated.
type Table struct {
	buckets []Handle
	count   int
}

// NewTable returns an empty table ready to intern names into.
func NewTable() *Table {
	return &Table{buckets: make([]Handle, initialCaps)}
}

// Len reports the number of distinct literals interned.
func (t *Table) Len() int { return t.count }

// lookupSlot finds the bucket index a (hash, name) pair occupies or
// would occupy on insert. found is true only when an existing record
// with that exact name is already there.
func (t *Table) lookupSlot(hash uint64, name string) (idx int, found bool) {
	n := len(t.buckets)
	idx = int(hash % uint64(n))
	for {
		h := t.buckets[idx]
		if h == nil {
			return idx, false
		}
		if h.hash == hash && h.name == name {
			return idx, true
		}
		idx++
		if idx == n {
			idx = 0
		}
	}
}

// Get looks up name without interning it.
func (t *Table) Get(name string) (Handle, bool) {
	idx, found := t.lookupSlot(hash64(name), name)
	if !found {
		return nil, false
	}
	return t.buckets[idx], true
}

// Put interns name, returning its existing handle if already present or
// a freshly allocated one otherwise.
func (t *Table) Put(name string) Handle {
	hash := hash64(name)
	idx, found := t.lookupSlot(hash, name)
	if found {
		return t.buckets[idx]
	}
	rec := &record{hash: hash, name: name}
	t.buckets[idx] = rec
	t.count++
	if float64(t.count) > growLoadFactor*float64(len(t.buckets)) {
		t.grow()
	}
	return rec
}

// PutWithFlags interns name and ORs flags into its handle, whether or
// not the name was already present.
func (t *Table) PutWithFlags(name string, flags Flag) Handle {
	h := t.Put(name)
	h.SetFlags(flags)
	return h
}

// Adopt inserts an existing record — typically one being moved out of
// another shard's table during a merge — under its own hash and name.
// The caller must already have established that no equal name is
// present; Adopt does not check.
func (t *Table) Adopt(h Handle) {
	n := len(t.buckets)
	idx := int(h.hash % uint64(n))
	for t.buckets[idx] != nil {
		idx++
		if idx == n {
			idx = 0
		}
	}
	t.buckets[idx] = h
	t.count++
	if float64(t.count) > growLoadFactor*float64(len(t.buckets)) {
		t.grow()
	}
}

func (t *Table) grow() {
	newCap := int(float64(len(t.buckets)) * growFactor)
	if newCap <= len(t.buckets) {
		newCap = len(t.buckets) + 1
	}
	old := t.buckets
	t.buckets = make([]Handle, newCap)
	for _, h := range old {
		if h == nil {
			continue
		}
		idx := int(h.hash % uint64(newCap))
		for t.buckets[idx] != nil {
			idx++
			if idx == newCap {
				idx = 0
			}
		}
		t.buckets[idx] = h
	}
}

// All iterates every interned handle in unspecified (bucket) order.
func (t *Table) All() iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		for _, h := range t.buckets {
			if h == nil {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}
