package ptrcodec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ptrscan/errs"
	"ptrscan/memory"
)

// A ModuleLine is one parsed line of the module file: a named, numbered
// base region (spec.md §3).
type ModuleLine struct {
	Start memory.Address
	End   memory.Address
	Name  string
}

// WriteModuleLine appends one "HEXSTART-HEXEND NAME\n" line to w, per
// spec.md §4.C. Name is already suffixed with its occurrence counter.
func WriteModuleLine(w io.Writer, m ModuleLine) error {
	_, err := fmt.Fprintf(w, "%s-%s %s\n", m.Start, m.End, m.Name)
	if err != nil {
		return fmt.Errorf("write module line: %w: %v", errs.ErrIO, err)
	}
	return nil
}

// ReadModules parses the module text file, calling fn for each
// successfully-parsed line. Lines that don't parse are skipped silently
// (spec.md §4.D, §9 open question (c): "a practical concession: avoids
// coupling to platform-specific naming oddities").
func ReadModules(r io.Reader, fn func(ModuleLine)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if m, ok := parseModuleLine(line); ok {
			fn(m)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read modules: %w: %v", errs.ErrIO, err)
	}
	return nil
}

func parseModuleLine(line string) (ModuleLine, bool) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) != 2 {
		return ModuleLine{}, false
	}
	rng, name := parts[0], parts[1]
	dash := strings.IndexByte(rng, '-')
	if dash < 0 {
		return ModuleLine{}, false
	}
	start, err := strconv.ParseUint(rng[:dash], 16, 64)
	if err != nil {
		return ModuleLine{}, false
	}
	end, err := strconv.ParseUint(rng[dash+1:], 16, 64)
	if err != nil {
		return ModuleLine{}, false
	}
	if name == "" {
		return ModuleLine{}, false
	}
	return ModuleLine{Start: memory.Address(start), End: memory.Address(end), Name: name}, true
}
