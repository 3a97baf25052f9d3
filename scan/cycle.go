package scan

import "ptrscan/memory"

// LevelKey pairs the bucket key matched at one DFS level (the forward
// value a candidate location was found to store) with the offset pushed
// at that level. Recording these alongside Scan's normal Emission lets
// DetectCycle run as an optional post-filter.
type LevelKey struct {
	Key    memory.Address
	Offset int64
}

// DetectCycle is the ref_cycle diagnostic (spec.md §4.E.1): some chains
// loop back through the same forward value more than once (the reverse
// index bucket for that value contains a location that is itself on the
// chain being built). levels is recorded in push order — index 0 is the
// level-1 (innermost) link, matching Scan's internal stack order, not the
// display order Emission.Offsets uses.
//
// If the key at level 0 recurs at some later index i, the sub-chain
// between them is a cycle: it can be elided, leaving a shortened chain
// that still reaches the same target. DetectCycle reports the shortened
// offsets (display order, outermost-first) and true if a recurrence was
// found.
func DetectCycle(levels []LevelKey) (shortened []int64, ok bool) {
	if len(levels) < 2 {
		return nil, false
	}
	first := levels[0].Key
	recur := -1
	for i := 1; i < len(levels); i++ {
		if levels[i].Key == first {
			recur = i
			break
		}
	}
	if recur < 0 {
		return nil, false
	}

	// Keep level 0 (it closes the loop) and everything from the
	// recurrence onward; drop the looping middle section.
	kept := make([]LevelKey, 0, len(levels)-recur+1)
	kept = append(kept, levels[0])
	kept = append(kept, levels[recur:]...)

	out := make([]int64, len(kept))
	for i, lv := range kept {
		out[len(kept)-1-i] = lv.Offset
	}
	return out, true
}
