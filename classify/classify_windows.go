//go:build windows

package classify

import (
	"strings"

	"ptrscan/memory"
)

var peMagic = []byte{0x4d, 0x5a} // "MZ"

// Classify applies the Windows policy ported from
// original_source/ptrsx/src/mapping_filter.rs's target_os = "windows"
// variant: anything under \Windows\ is excluded, as is any non-absolute
// path; remaining file-backed regions must carry the PE "MZ" magic.
func Classify(r memory.Region, open Opener) Class {
	if r.Perm&memory.Read == 0 {
		return ClassNeither
	}

	name := r.Backing
	if isAnonymous(name) {
		return classifyModule(r, ClassSource)
	}

	if strings.Contains(name, `\Windows\`) {
		return ClassNeither
	}
	if !strings.HasPrefix(name, `\`) && !(len(name) > 1 && name[1] == ':') {
		return ClassNeither
	}
	if !hasMagic(open, name, peMagic) {
		return ClassNeither
	}
	return classifyModule(r, ClassSource)
}
