// Package scan implements the bounded depth-first pointer-chain search
// (spec.md §4.E): from a target address, enumerate all chains ending at
// that address whose first link originates in a permitted base region,
// subject to an offset-range window and a depth bound.
package scan

import (
	"fmt"

	"ptrscan/errs"
	"ptrscan/memory"
)

// MaxDepth is the hard ceiling on chain length (spec.md §3 Param: "depth:
// u32 (≤ 32)").
const MaxDepth = 32

// Window is the inclusive offset-range tolerance [A-Back, A+Forward] used
// to admit approximate matches at every DFS node (spec.md GLOSSARY
// "Window").
type Window struct {
	Back    uint64
	Forward uint64
}

// Param bounds and targets one scan.
type Param struct {
	Depth   int // <= MaxDepth
	Target  memory.Address
	NodeMin int // lower bound on emitted chain length
	Window  Window
}

// Validate checks the library-level constraints spec.md §3 names. The
// stricter command-surface constraint "depth > node_min" (spec.md §6) is
// enforced by cmd/ptrscan, not here — spec.md §8's boundary scenario
// "node_min = depth" is a valid library-level call.
func (p Param) Validate() error {
	if p.Depth < 0 || p.Depth > MaxDepth {
		return fmt.Errorf("%w: depth %d out of range [0,%d]", errs.ErrParams, p.Depth, MaxDepth)
	}
	if p.NodeMin < 0 {
		return fmt.Errorf("%w: node_min %d must be >= 0", errs.ErrParams, p.NodeMin)
	}
	return nil
}

func saturatingSub(a memory.Address, n uint64) memory.Address {
	if uint64(a) < n {
		return 0
	}
	return memory.Address(uint64(a) - n)
}

func saturatingAdd(a memory.Address, n uint64) memory.Address {
	sum := uint64(a) + n
	if sum < uint64(a) {
		return memory.Address(^uint64(0))
	}
	return memory.Address(sum)
}
