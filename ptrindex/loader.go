package ptrindex

import (
	"fmt"
	"io"

	"ptrscan/ptrcodec"
)

// LoadPairs reads the pair file from r and returns its ForwardIndex and
// the ReverseIndex derived from it. Both are filled in a single pass over
// the file: each newly seen location goes into forward and is pushed into
// the reverse bucket of its value, so bucket order is file order. A
// duplicate location keeps the first value seen for it and is not pushed
// into reverse a second time, matching original_source/ptrsx/src/lib.rs's
// load_pointer_map.
func LoadPairs(r io.Reader) (*ForwardIndex, *ReverseIndex, error) {
	fb := newForwardBuilder()
	rb := newReverseBuilder()

	err := ptrcodec.ReadPairsBuffered(r, func(p ptrcodec.Pair) error {
		if fb.insert(p.Location, p.Value) {
			rb.insert(p.Value, p.Location)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load pairs: %w", err)
	}
	return fb.build(), rb.build(), nil
}

// LoadModules reads the module text file from r into a ModuleIndex.
// Malformed lines are skipped (ptrcodec.ReadModules; spec.md §4.D).
func LoadModules(r io.Reader) (*ModuleIndex, error) {
	var lines []ModuleInterval
	err := ptrcodec.ReadModules(r, func(m ptrcodec.ModuleLine) {
		lines = append(lines, ModuleInterval{Start: m.Start, End: m.End, Name: m.Name})
	})
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	return NewModuleIndex(lines), nil
}
