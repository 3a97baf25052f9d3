package memory

// A Region is one contiguous, permission-uniform slice of the target's
// mapped address space, as enumerated by a Provider. Regions never
// overlap and are expected in ascending Start order (spec.md §3).
type Region struct {
	Start Address
	End   Address // End > Start
	Perm  Perm
	// Backing is the mapping's full backing path (e.g. "/usr/lib/x.so",
	// or a bracketed pseudo-name like "[heap]"), or "" for anonymous
	// mappings. classify.Classify inspects the full path; pointermap
	// reduces it to a filename only when naming a module.
	Backing string
}

// Size returns the number of bytes covered by the region.
func (r Region) Size() int64 {
	return r.End.Sub(r.Start)
}

// Contains reports whether a falls within [r.Start, r.End).
func (r Region) Contains(a Address) bool {
	return a >= r.Start && a < r.End
}

// Provider is the external collaborator contract spec.md §6 names: a
// process whose mapped regions can be enumerated and whose address space
// can be read at arbitrary offsets. Implementations may return fewer
// bytes than len(buf) without it being an error (a short read); they
// report a genuine failure to read through err.
type Provider interface {
	EnumerateRegions() ([]Region, error)
	ReadAt(addr Address, buf []byte) (n int, err error)
}
