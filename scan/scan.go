package scan

import (
	"sort"

	"ptrscan/memory"
	"ptrscan/ptrindex"
)

// rootsBinarySearchThreshold is the cutover between a linear and a binary
// search over roots (spec.md §9: "somewhere in [32,256]; pick 32"). Below
// it a linear scan wins on cache locality for a tiny slice; at or above it
// sort.Search pays for itself.
const rootsBinarySearchThreshold = 32

// Outcome is a PerChain callback's instruction to the scanner.
type Outcome int

const (
	// Continue resumes the search for further chains.
	Continue Outcome = iota
	// StopOK ends the search successfully; no further nodes are visited.
	StopOK
)

// Emission is one accepted chain, handed to a PerChain callback with
// offsets already reordered outermost-link-first for display.
type Emission struct {
	Head    memory.Address
	Offsets []int64
	// Module is the base module owning Head, set only when Scan was run
	// in module-relative mode and the lookup succeeded.
	Module *ptrindex.ModuleInterval
}

// PerChain is invoked for every accepted chain. Returning a non-nil error
// aborts the scan immediately with that error (stop_err). Returning
// StopOK ends the scan successfully after this chain.
type PerChain func(Emission) (Outcome, error)

// Scan runs the bounded DFS of spec.md §4.E. roots is the ascending,
// de-duplicated set of admissible first-link addresses (typically
// forward-index keys that fall inside some module's range). reverse
// supplies the value->locations buckets the search walks. When
// moduleRelative is true, modules resolves each candidate head to a
// (name, base-offset) pair and emission is skipped — silently, the search
// continues — for any head outside every module.
func Scan(param Param, roots []memory.Address, reverse *ptrindex.ReverseIndex, modules *ptrindex.ModuleIndex, moduleRelative bool, per PerChain) error {
	if err := param.Validate(); err != nil {
		return err
	}
	s := &scanner{
		param:          param,
		roots:          roots,
		reverse:        reverse,
		modules:        modules,
		moduleRelative: moduleRelative,
		per:            per,
	}
	stack := make([]int64, 0, param.Depth+1)
	_, err := s.visit(param.Target, 1, stack)
	return err
}

type scanner struct {
	param          Param
	roots          []memory.Address
	reverse        *ptrindex.ReverseIndex
	modules        *ptrindex.ModuleIndex
	moduleRelative bool
	per            PerChain
}

// visit explores one DFS node. It returns (true, err) the instant the
// search must stop — either because per() returned StopOK or because it
// returned an error — so callers unwind immediately without visiting
// further siblings.
func (s *scanner) visit(a memory.Address, lv int, stack []int64) (bool, error) {
	min := saturatingSub(a, s.param.Window.Back)
	max := saturatingAdd(a, s.param.Window.Forward)

	if len(stack) >= s.param.NodeMin && rootWindowHit(s.roots, min, max) {
		if emission, ok := s.resolveEmission(a, stack); ok {
			outcome, err := s.per(emission)
			if err != nil {
				return true, err
			}
			if outcome == StopOK {
				return true, nil
			}
		}
	}

	if lv > s.param.Depth {
		return false, nil
	}

	for _, entry := range s.reverse.Range(min, max) {
		offset := a.Sub(entry.Value)
		stack = append(stack, offset)
		for _, loc := range entry.Locations {
			stop, err := s.visit(loc, lv+1, stack)
			if stop {
				return true, err
			}
		}
		stack = stack[:len(stack)-1]
	}
	return false, nil
}

// resolveEmission builds the Emission for head a with accumulated offsets
// stack (innermost-first). It reverses the offsets to outermost-first for
// display and, in module-relative mode, resolves a's owning module —
// failure to resolve silently vetoes emission without stopping the scan
// (spec.md §4.E).
func (s *scanner) resolveEmission(a memory.Address, stack []int64) (Emission, bool) {
	offsets := make([]int64, len(stack))
	for i, o := range stack {
		offsets[len(stack)-1-i] = o
	}

	if !s.moduleRelative {
		return Emission{Head: a, Offsets: offsets}, true
	}
	iv, ok := s.modules.Lookup(a)
	if !ok {
		return Emission{}, false
	}
	return Emission{Head: a, Offsets: offsets, Module: &iv}, true
}

// rootWindowHit reports whether any root address falls in [min, max].
func rootWindowHit(roots []memory.Address, min, max memory.Address) bool {
	if len(roots) >= rootsBinarySearchThreshold {
		return binaryRootHit(roots, min, max)
	}
	return linearRootHit(roots, min, max)
}

func binaryRootHit(roots []memory.Address, min, max memory.Address) bool {
	i := sort.Search(len(roots), func(i int) bool { return roots[i] >= min })
	return i < len(roots) && roots[i] <= max
}

func linearRootHit(roots []memory.Address, min, max memory.Address) bool {
	for _, r := range roots {
		if r >= min && r <= max {
			return true
		}
	}
	return false
}
