package ptrindex

import (
	"sort"

	"ptrscan/memory"
)

// A ModuleInterval is one named, numbered base region (spec.md §3).
type ModuleInterval struct {
	Start memory.Address
	End   memory.Address // half-open, End > Start
	Name  string
}

// ModuleIndex is a half-open, non-overlapping interval map from address
// range to module name, supporting point lookup of the owning interval.
type ModuleIndex struct {
	intervals []ModuleInterval // sorted by Start
}

// NewModuleIndex builds a ModuleIndex from a set of module lines. If two
// lines overlap (which shouldn't happen per spec.md §4.D), the
// last-registered one wins for the overlapping span, matching
// spec.md §4.D's documented tie-break ("No two modules should overlap; if
// they do, last write wins").
func NewModuleIndex(lines []ModuleInterval) *ModuleIndex {
	m := &ModuleIndex{}
	for _, l := range lines {
		m.insert(l)
	}
	return m
}

func (m *ModuleIndex) insert(l ModuleInterval) {
	// "Last write wins" on overlap: drop any existing interval's span
	// that the new one covers. Since modules are few (tens, not
	// millions, unlike the teacher's full heap-object page table — see
	// DESIGN.md), a linear scan-and-rebuild is simplest and clear.
	var kept []ModuleInterval
	for _, existing := range m.intervals {
		switch {
		case existing.End <= l.Start || existing.Start >= l.End:
			kept = append(kept, existing)
		case existing.Start < l.Start && existing.End > l.End:
			kept = append(kept, ModuleInterval{Start: existing.Start, End: l.Start, Name: existing.Name})
			kept = append(kept, ModuleInterval{Start: l.End, End: existing.End, Name: existing.Name})
		case existing.Start < l.Start:
			kept = append(kept, ModuleInterval{Start: existing.Start, End: l.Start, Name: existing.Name})
		case existing.End > l.End:
			kept = append(kept, ModuleInterval{Start: l.End, End: existing.End, Name: existing.Name})
		}
	}
	kept = append(kept, l)
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	m.intervals = kept
}

// Lookup returns the module interval containing addr, if any.
func (m *ModuleIndex) Lookup(addr memory.Address) (ModuleInterval, bool) {
	i := sort.Search(len(m.intervals), func(i int) bool { return m.intervals[i].End > addr })
	if i < len(m.intervals) && m.intervals[i].Start <= addr {
		return m.intervals[i], true
	}
	return ModuleInterval{}, false
}

// Intervals returns every module interval in ascending Start order.
func (m *ModuleIndex) Intervals() []ModuleInterval {
	out := make([]ModuleInterval, len(m.intervals))
	copy(out, m.intervals)
	return out
}
