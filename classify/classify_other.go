//go:build !linux && !darwin && !windows

package classify

import "ptrscan/memory"

// Classify is the conservative fallback for GOOS values the pack's
// original source doesn't carry a policy for (it ports
// linux/macos/windows only, see original_source/ptrsx/src/mapping_filter.rs).
// Anonymous regions are sources; anything file-backed is excluded, since
// there is no known-good magic to check it against.
func Classify(r memory.Region, open Opener) Class {
	if r.Perm&memory.Read == 0 {
		return ClassNeither
	}
	if isAnonymous(r.Backing) {
		return classifyModule(r, ClassSource)
	}
	return ClassNeither
}
