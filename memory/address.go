// Package memory defines the data model a virtual-memory provider is
// expected to produce: addresses, permissions, mapped regions, and the
// Provider contract the rest of ptrscan consumes. Nothing in this package
// knows how to open a process; see cmd/ptrscan for a concrete Linux
// implementation.
package memory

import "fmt"

// WordSize is the size in bytes of a pointer in the target process.
// ptrscan supports little-endian, 64-bit address spaces only (spec
// Non-goals).
const WordSize = 8

// An Address is a location in the target process's address space.
type Address uint64

// Add returns a+n, wrapping per standard unsigned-integer arithmetic.
func (a Address) Add(n int64) Address {
	return Address(int64(a) + n)
}

// Sub returns the signed distance from b to a, i.e. int64(a)-int64(b).
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

// String renders the address as lowercase hex with no leading "0x",
// matching the on-disk module-file format (spec.md §4.C).
func (a Address) String() string {
	return fmt.Sprintf("%x", uint64(a))
}

// A Perm represents the permissions observed on a mapped Region.
type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Exec
)

func (p Perm) String() string {
	var b []byte
	if p&Read != 0 {
		b = append(b, 'r')
	} else {
		b = append(b, '-')
	}
	if p&Write != 0 {
		b = append(b, 'w')
	} else {
		b = append(b, '-')
	}
	if p&Exec != 0 {
		b = append(b, 'x')
	} else {
		b = append(b, '-')
	}
	return string(b)
}
