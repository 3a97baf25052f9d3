package ptrindex

import (
	"sort"

	"ptrscan/memory"
)

// ReverseIndex maps a value to the ordered sequence of locations that
// store it. Order within a bucket is unspecified but deterministic for a
// given input (spec.md §3) — this implementation preserves the order
// locations were first read from the pair file.
type ReverseIndex struct {
	values  []memory.Address
	buckets [][]memory.Address
}

// Len returns the number of distinct values indexed.
func (r *ReverseIndex) Len() int { return len(r.values) }

// Locations returns the bucket of locations storing val, if any.
func (r *ReverseIndex) Locations(val memory.Address) []memory.Address {
	i := sort.Search(len(r.values), func(i int) bool { return r.values[i] >= val })
	if i < len(r.values) && r.values[i] == val {
		return r.buckets[i]
	}
	return nil
}

// RangeEntry is one (value, locations) bucket returned by Range.
type RangeEntry struct {
	Value     memory.Address
	Locations []memory.Address
}

// Range returns every bucket whose value falls in [min, max], in
// ascending value order — the hot-path query the chain scanner issues at
// every DFS node (spec.md §4.E).
func (r *ReverseIndex) Range(min, max memory.Address) []RangeEntry {
	lo := sort.Search(len(r.values), func(i int) bool { return r.values[i] >= min })
	hi := sort.Search(len(r.values), func(i int) bool { return r.values[i] > max })
	if lo >= hi {
		return nil
	}
	out := make([]RangeEntry, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = RangeEntry{Value: r.values[i], Locations: r.buckets[i]}
	}
	return out
}

// reverseBuilder accumulates value->locations during a load.
type reverseBuilder struct {
	buckets map[memory.Address][]memory.Address
	order   []memory.Address
}

func newReverseBuilder() *reverseBuilder {
	return &reverseBuilder{buckets: make(map[memory.Address][]memory.Address)}
}

func (b *reverseBuilder) insert(val, loc memory.Address) {
	if _, ok := b.buckets[val]; !ok {
		b.order = append(b.order, val)
	}
	b.buckets[val] = append(b.buckets[val], loc)
}

func (b *reverseBuilder) build() *ReverseIndex {
	values := make([]memory.Address, len(b.order))
	copy(values, b.order)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	buckets := make([][]memory.Address, len(values))
	for i, v := range values {
		buckets[i] = b.buckets[v]
	}
	return &ReverseIndex{values: values, buckets: buckets}
}
