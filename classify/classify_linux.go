//go:build linux

package classify

import (
	"path/filepath"
	"strings"

	"ptrscan/memory"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Classify decides whether r is a pointer source, a candidate base
// module, or neither, using the Linux policy ported from
// original_source/ptrsx/src/mapping_filter.rs's target_os = "linux"
// variant: anonymous memory and bracketed pseudo-mappings ([heap],
// [stack], [vdso], ...) are always a source and never a module; /memfd:
// mappings, other relative paths, and anything under /dev are excluded;
// everything else must carry the ELF magic in its backing file.
func Classify(r memory.Region, open Opener) Class {
	if r.Perm&memory.Read == 0 {
		return ClassNeither
	}

	if isAnonymous(r.Backing) {
		return classifyModule(r, ClassSource)
	}

	name := r.Backing
	if strings.HasPrefix(name, "[") || name == "[heap]" || name == "[stack]" {
		// A pseudo-name is not a backing path, so it never names a module.
		return ClassSource
	}
	if strings.HasPrefix(name, "/memfd:") {
		return ClassNeither
	}
	if !filepath.IsAbs(name) || strings.HasPrefix(name, "/dev") {
		return ClassNeither
	}
	if !hasMagic(open, name, elfMagic) {
		return ClassNeither
	}
	return classifyModule(r, ClassSource)
}
