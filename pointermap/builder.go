// Package pointermap implements the streaming pointer-map builder
// (spec.md §4.B): scan a set of source regions word by word, keep every
// value that points back into the source set, and separately enumerate
// the writable, path-backed subset as named modules.
package pointermap

import (
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"ptrscan/errs"
	"ptrscan/memory"
	"ptrscan/ptrcodec"
)

// Options configures one build.
type Options struct {
	// Aligned restricts candidate word positions to multiples of
	// memory.WordSize. Unaligned mode probes every byte offset instead,
	// at memory.WordSize times the cost (spec.md §4.B).
	Aligned bool
	// BestEffort skips a region whose read fails instead of aborting the
	// whole build. Strict (the default, BestEffort=false) matches
	// original_source/ptrsx/src/lib.rs's create_pointer_map, which
	// propagates any region-read error (see DESIGN.md).
	BestEffort bool
	// ChunkSize overrides the platform default read chunk. Zero selects
	// defaultChunkSize for the current GOOS.
	ChunkSize int
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return defaultChunkSize
}

// Build scans source (every region eligible to contribute pointers —
// classify.ClassSource or classify.ClassModule) word by word, writing a
// (location, value) pair to pairs whenever the word's value falls inside
// some region of source. module additionally enumerates the
// classify.ClassModule subset as named, numbered base regions, written to
// modules.
//
// source and module must be regions of the SAME process as provider. The
// order of module determines the module file's line order, which in turn
// fixes Module[i] indices (spec.md §4.B).
func Build(source []memory.Region, module []memory.Region, provider memory.Provider, opts Options, pairs io.Writer, modules io.Writer) error {
	table := buildTable(source)
	if err := scanRegions(source, provider, opts, table, pairs); err != nil {
		return err
	}
	return writeModules(module, modules)
}

// interval is a (start, end) span in the membership table, sorted and
// assumed non-overlapping (spec.md §4.B invariant).
type interval struct {
	start memory.Address
	end   memory.Address
}

func buildTable(regions []memory.Region) []interval {
	t := make([]interval, len(regions))
	for i, r := range regions {
		t[i] = interval{start: r.Start, end: r.End}
	}
	sort.Slice(t, func(i, j int) bool { return t[i].start < t[j].start })
	return t
}

// inTable reports whether v falls in some [start, end) span of t. The
// end boundary is exclusive (spec.md §4.B: "v == s+n is NOT in range").
func inTable(t []interval, v memory.Address) bool {
	i := sort.Search(len(t), func(i int) bool { return t[i].end > v })
	return i < len(t) && t[i].start <= v
}

func scanRegions(regions []memory.Region, provider memory.Provider, opts Options, table []interval, pairs io.Writer) error {
	const wordSize = memory.WordSize
	chunkSize := opts.chunkSize()
	step := 1
	if opts.Aligned {
		step = wordSize
	}
	buf := make([]byte, chunkSize)

	for _, r := range regions {
		size := r.Size()
		var off int64
		for off < size {
			want := chunkSize
			if remaining := size - off; int64(want) > remaining {
				want = int(remaining)
			}
			n, err := provider.ReadAt(r.Start.Add(off), buf[:want])
			if err != nil {
				if opts.BestEffort {
					off += int64(chunkSize)
					continue
				}
				return fmt.Errorf("%w: reading region %s at +%#x: %v", errs.ErrProvider, r.Backing, off, err)
			}

			chunk := buf[:n]
			for k := 0; k+wordSize <= len(chunk); k += step {
				v := memory.Address(binary.LittleEndian.Uint64(chunk[k : k+wordSize]))
				if !inTable(table, v) {
					continue
				}
				loc := r.Start.Add(off + int64(k))
				if err := ptrcodec.WritePair(pairs, ptrcodec.Pair{Location: loc, Value: v}); err != nil {
					return fmt.Errorf("%w: writing pair: %v", errs.ErrIO, err)
				}
			}
			// A short read does not retry from the truncation point; the
			// scan resumes at the next full chunk boundary regardless of
			// how many bytes n actually held (spec.md §4.B).
			off += int64(chunkSize)
		}
	}
	return nil
}

// moduleGroup is one coalesced run of same-backing-path regions, before
// its display name is assigned.
type moduleGroup struct {
	start memory.Address
	end   memory.Address
	base  string
}

// coalesce merges adjacent regions sharing an identical backing path
// into a single span, matching original_source/ptrsx/src/lib.rs's
// create_pointer_map module-writing loop ("last.name == cur.name ->
// extend end"). Regions are assumed already in ascending address order,
// as classify.Classify's callers naturally produce from a process's
// region list.
func coalesce(regions []memory.Region) []moduleGroup {
	var groups []moduleGroup
	var lastPath string
	for _, r := range regions {
		if n := len(groups); n > 0 && lastPath == r.Backing && groups[n-1].end == r.Start {
			groups[n-1].end = r.End
			continue
		}
		lastPath = r.Backing
		groups = append(groups, moduleGroup{start: r.Start, end: r.End, base: filepath.Base(r.Backing)})
	}
	return groups
}

// writeModules assigns each coalesced group a 0-origin occurrence suffix
// per its base filename and writes the module lines in group order
// (spec.md §4.B; DESIGN.md's open-question (a) resolution).
func writeModules(regions []memory.Region, w io.Writer) error {
	groups := coalesce(regions)
	counts := make(map[string]int)
	for _, g := range groups {
		n := counts[g.base]
		counts[g.base] = n + 1
		name := fmt.Sprintf("%s[%d]", g.base, n)
		if err := ptrcodec.WriteModuleLine(w, ptrcodec.ModuleLine{Start: g.start, End: g.end, Name: name}); err != nil {
			return fmt.Errorf("%w: writing module line: %v", errs.ErrIO, err)
		}
	}
	return nil
}
