// Package ptrcodec implements the on-disk layouts spec.md §4.C defines:
// the binary pair file, the text module-list file, and the text result
// file the chain scanner emits.
package ptrcodec

import (
	"encoding/binary"
	"fmt"
	"io"

	"ptrscan/errs"
	"ptrscan/memory"
)

// recordSize is the width in bytes of one on-disk (location, value) pair:
// two little-endian machine words.
const recordSize = 2 * memory.WordSize

// A Pair is one (location, value) record as emitted by the pointer-map
// builder: the word stored at Location equals Value.
type Pair struct {
	Location memory.Address
	Value    memory.Address
}

// WritePair appends one pair record to w in the on-disk format: a raw
// concatenation of little-endian location||value, no header, no
// padding (spec.md §4.C).
func WritePair(w io.Writer, p Pair) error {
	var buf [recordSize]byte
	binary.LittleEndian.PutUint64(buf[:memory.WordSize], uint64(p.Location))
	binary.LittleEndian.PutUint64(buf[memory.WordSize:], uint64(p.Value))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write pair: %w: %v", errs.ErrIO, err)
	}
	return nil
}

// ReadPairs reads whole recordSize-byte records from r, calling fn for
// each one, until EOF. A final partial record is a format error (spec.md
// §4.C: "File length must be a multiple of 2 × word_size; any remainder
// at EOF is a fatal format error").
//
// bufSize controls the read buffer; callers pass ptrscan's documented
// 16*65536-byte default (spec.md §4.D) via ReadPairsBuffered.
func ReadPairs(r io.Reader, bufSize int, fn func(Pair) error) error {
	if bufSize < recordSize {
		bufSize = recordSize
	}
	buf := make([]byte, bufSize)
	var carry []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			whole := len(chunk) - len(chunk)%recordSize
			for off := 0; off < whole; off += recordSize {
				p := Pair{
					Location: memory.Address(binary.LittleEndian.Uint64(chunk[off:])),
					Value:    memory.Address(binary.LittleEndian.Uint64(chunk[off+memory.WordSize:])),
				}
				if ferr := fn(p); ferr != nil {
					return ferr
				}
			}
			carry = append(carry[:0], chunk[whole:]...)
		}
		if err == io.EOF {
			if len(carry) != 0 {
				return fmt.Errorf("%w: trailing %d-byte partial pair record", errs.ErrFormat, len(carry))
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read pairs: %w: %v", errs.ErrIO, err)
		}
	}
}

// DefaultReadBufferSize is the suggested buffer size from spec.md §4.D:
// 16 * 65536 bytes.
const DefaultReadBufferSize = 16 * 65536

// ReadPairsBuffered is ReadPairs with ptrscan's documented default
// buffer size.
func ReadPairsBuffered(r io.Reader, fn func(Pair) error) error {
	return ReadPairs(r, DefaultReadBufferSize, fn)
}
