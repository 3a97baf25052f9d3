package ptrcodec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ptrscan/errs"
)

// A Chain is one emitted scan result: either module-relative
// (Name != "") or absolute. Offsets are outermost-link-first, the order
// they print in (spec.md §4.E: "Offsets in the emitted chain are printed
// in reverse order of S — outermost link first").
type Chain struct {
	Name    string // "" for absolute mode
	Base    uint64 // base offset (module-relative) or the absolute address
	Offsets []int64
}

// WriteChain appends one result line to w:
//
//	NAME+B@O1@O2…@Ok    (module-relative)
//	ADDR@O1@O2…@Ok      (absolute)
//
// per spec.md §4.C.
func WriteChain(w io.Writer, c Chain) error {
	var b strings.Builder
	if c.Name != "" {
		fmt.Fprintf(&b, "%s+%d", c.Name, c.Base)
	} else {
		fmt.Fprintf(&b, "%d", c.Base)
	}
	for _, o := range c.Offsets {
		fmt.Fprintf(&b, "@%d", o)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write chain: %w: %v", errs.ErrIO, err)
	}
	return nil
}

// ParseChain parses one result line back into a Chain. It accepts both
// the module-relative and absolute forms.
func ParseChain(line string) (Chain, error) {
	parts := strings.Split(line, "@")
	if len(parts) == 0 {
		return Chain{}, fmt.Errorf("%w: empty chain line", errs.ErrFormat)
	}
	head := parts[0]
	offsets := make([]int64, 0, len(parts)-1)
	for _, p := range parts[1:] {
		o, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return Chain{}, fmt.Errorf("%w: bad offset %q: %v", errs.ErrFormat, p, err)
		}
		offsets = append(offsets, o)
	}

	if plus := strings.LastIndexByte(head, '+'); plus >= 0 {
		base, err := strconv.ParseUint(head[plus+1:], 10, 64)
		if err != nil {
			return Chain{}, fmt.Errorf("%w: bad base %q: %v", errs.ErrFormat, head[plus+1:], err)
		}
		return Chain{Name: head[:plus], Base: base, Offsets: offsets}, nil
	}

	base, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return Chain{}, fmt.Errorf("%w: bad address %q: %v", errs.ErrFormat, head, err)
	}
	return Chain{Base: base, Offsets: offsets}, nil
}
