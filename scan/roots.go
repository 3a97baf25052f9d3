package scan

import (
	"sort"

	"ptrscan/memory"
	"ptrscan/ptrindex"
)

// Roots collects the forward-index locations that fall inside any module
// interval — the admissible first links of a module-relative scan
// (spec.md §4.E, §9). The result is ascending and duplicate-free, ready
// for Scan's roots argument.
func Roots(fwd *ptrindex.ForwardIndex, modules *ptrindex.ModuleIndex) []memory.Address {
	var roots []memory.Address
	fwd.ForEach(func(loc, _ memory.Address) {
		if _, ok := modules.Lookup(loc); ok {
			roots = append(roots, loc)
		}
	})
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}
