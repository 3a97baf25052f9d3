//go:build darwin

package classify

import (
	"strings"

	"ptrscan/memory"
)

// Mach-O magic numbers (0xfeedface, 0xfeedfacf) as their first four bytes
// appear in a little-endian image file.
var machoMagic32 = []byte{0xce, 0xfa, 0xed, 0xfe}
var machoMagic64 = []byte{0xcf, 0xfa, 0xed, 0xfe}

// Classify applies the macOS policy ported from
// original_source/ptrsx/src/mapping_filter.rs's target_os = "macos"
// variant: system frameworks, /usr/lib, the iOS support overlay, and
// /private are excluded, as is anything not given as an absolute path;
// anonymous regions are a source, and any other file-backed region is a
// source only if its backing file starts with a Mach-O magic.
func Classify(r memory.Region, open Opener) Class {
	if r.Perm&memory.Read == 0 {
		return ClassNeither
	}

	name := r.Backing
	if isAnonymous(name) {
		return classifyModule(r, ClassSource)
	}

	if strings.HasPrefix(name, "/System/Library/") ||
		strings.HasPrefix(name, "/usr/lib") ||
		strings.HasPrefix(name, "/System/iOSSupport") ||
		strings.HasPrefix(name, "/private") ||
		!strings.HasPrefix(name, "/") {
		return ClassNeither
	}

	if hasMagic(open, name, machoMagic64) || hasMagic(open, name, machoMagic32) {
		return classifyModule(r, ClassSource)
	}
	return ClassNeither
}
