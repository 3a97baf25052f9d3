// Package ptrindex rehydrates pointer-map builder output (spec.md §4.C)
// into the three searchable structures the chain scanner consumes: a
// ForwardIndex (location→value), a ReverseIndex (value→locations), and a
// ModuleIndex (address range→module name). All three are built once and
// are immutable afterward (spec.md §3 "Lifecycle").
package ptrindex

import (
	"sort"

	"ptrscan/memory"
)

// ForwardIndex maps a memory location to the word value stored there.
// Keys are unique; iteration is ascending by key.
type ForwardIndex struct {
	locations []memory.Address
	values    []memory.Address
}

// Len returns the number of entries in the index.
func (f *ForwardIndex) Len() int { return len(f.locations) }

// Get returns the value stored at loc, if present.
func (f *ForwardIndex) Get(loc memory.Address) (memory.Address, bool) {
	i := sort.Search(len(f.locations), func(i int) bool { return f.locations[i] >= loc })
	if i < len(f.locations) && f.locations[i] == loc {
		return f.values[i], true
	}
	return 0, false
}

// ForEach calls fn for every (location, value) pair in ascending location
// order.
func (f *ForwardIndex) ForEach(fn func(loc, val memory.Address)) {
	for i, loc := range f.locations {
		fn(loc, f.values[i])
	}
}

// InRange returns the locations in [start, end) in ascending order. This
// is the "roots" extraction spec.md §4.E describes: "the subset of
// forward's keys that fall inside any module's [start,end)".
func (f *ForwardIndex) InRange(start, end memory.Address) []memory.Address {
	lo := sort.Search(len(f.locations), func(i int) bool { return f.locations[i] >= start })
	hi := sort.Search(len(f.locations), func(i int) bool { return f.locations[i] >= end })
	if lo >= hi {
		return nil
	}
	out := make([]memory.Address, hi-lo)
	copy(out, f.locations[lo:hi])
	return out
}

// forwardBuilder accumulates (location, value) pairs during a load, then
// produces an immutable, sorted ForwardIndex.
type forwardBuilder struct {
	seen  map[memory.Address]memory.Address
	order []memory.Address
}

func newForwardBuilder() *forwardBuilder {
	return &forwardBuilder{seen: make(map[memory.Address]memory.Address)}
}

// insert records loc->val, keeping the first value seen for a duplicate
// location, and reports whether this was the first time loc was seen
// (the original's `self.forward.insert(key)` guard, which gates whether
// the pair is also pushed into the reverse index).
func (b *forwardBuilder) insert(loc, val memory.Address) bool {
	if _, ok := b.seen[loc]; ok {
		return false
	}
	b.seen[loc] = val
	b.order = append(b.order, loc)
	return true
}

func (b *forwardBuilder) build() *ForwardIndex {
	locs := make([]memory.Address, len(b.order))
	copy(locs, b.order)
	sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
	vals := make([]memory.Address, len(locs))
	for i, l := range locs {
		vals[i] = b.seen[l]
	}
	return &ForwardIndex{locations: locs, values: vals}
}
