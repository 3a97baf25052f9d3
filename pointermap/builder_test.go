package pointermap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"ptrscan/memory"
	"ptrscan/ptrcodec"
)

// fakeProvider serves ReadAt from an in-memory image keyed by region
// start, simulating a process address space for the builder.
type fakeProvider struct {
	images map[memory.Address][]byte
	fail   map[memory.Address]bool // regions whose ReadAt always errors
}

func (f *fakeProvider) EnumerateRegions() ([]memory.Region, error) { return nil, nil }

func (f *fakeProvider) ReadAt(addr memory.Address, buf []byte) (int, error) {
	for start, img := range f.images {
		end := start.Add(int64(len(img)))
		if addr < start || addr >= end {
			continue
		}
		if f.fail[start] {
			return 0, errors.New("simulated read failure")
		}
		off := addr.Sub(start)
		n := copy(buf, img[off:])
		return n, nil
	}
	return 0, errors.New("unmapped address")
}

func le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// TestBuildFindsSingleSelfPointingWord is spec.md §8's scenario S3: one
// 4KiB region at 0x1000 with a single word at offset 16 equal to its own
// address (0x1010) — aligned mode must emit exactly that one pair.
func TestBuildFindsSingleSelfPointingWord(t *testing.T) {
	img := make([]byte, 4096)
	copy(img[16:24], le(0x1010))

	regions := []memory.Region{{Start: 0x1000, End: 0x1000 + 4096, Perm: memory.Read | memory.Write}}
	provider := &fakeProvider{images: map[memory.Address][]byte{0x1000: img}}

	var pairs bytes.Buffer
	var modules bytes.Buffer
	err := Build(regions, nil, provider, Options{Aligned: true}, &pairs, &modules)
	if err != nil {
		t.Fatal(err)
	}

	var got []ptrcodec.Pair
	if err := ptrcodec.ReadPairsBuffered(&pairs, func(p ptrcodec.Pair) error {
		got = append(got, p)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d pairs, want 1: %+v", len(got), got)
	}
	if got[0].Location != 0x1010 || got[0].Value != 0x1010 {
		t.Fatalf("pair = %+v, want (0x1010,0x1010)", got[0])
	}
}

func TestBuildUnalignedFindsMisalignedPointer(t *testing.T) {
	img := make([]byte, 64)
	copy(img[3:11], le(0x2003)) // value equals its own misaligned location

	regions := []memory.Region{{Start: 0x2000, End: 0x2000 + 64, Perm: memory.Read}}
	provider := &fakeProvider{images: map[memory.Address][]byte{0x2000: img}}

	var pairs bytes.Buffer
	if err := Build(regions, nil, provider, Options{Aligned: false}, &pairs, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	var got []ptrcodec.Pair
	ptrcodec.ReadPairsBuffered(&pairs, func(p ptrcodec.Pair) error { got = append(got, p); return nil })
	if len(got) != 1 || got[0].Location != 0x2003 {
		t.Fatalf("got %+v, want one pair at 0x2003", got)
	}

	// Aligned mode must miss it: 3 is not a multiple of word size.
	var pairsAligned bytes.Buffer
	if err := Build(regions, nil, provider, Options{Aligned: true}, &pairsAligned, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	var gotAligned []ptrcodec.Pair
	ptrcodec.ReadPairsBuffered(&pairsAligned, func(p ptrcodec.Pair) error { gotAligned = append(gotAligned, p); return nil })
	if len(gotAligned) != 0 {
		t.Fatalf("aligned scan should miss a misaligned pointer, got %+v", gotAligned)
	}
}

func TestBuildValueOutsideSourceIsIgnored(t *testing.T) {
	img := make([]byte, 32)
	copy(img[0:8], le(0xdeadbeef)) // points nowhere in source

	regions := []memory.Region{{Start: 0x3000, End: 0x3000 + 32, Perm: memory.Read}}
	provider := &fakeProvider{images: map[memory.Address][]byte{0x3000: img}}

	var pairs bytes.Buffer
	if err := Build(regions, nil, provider, Options{Aligned: true}, &pairs, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if pairs.Len() != 0 {
		t.Fatalf("expected no pairs, got %d bytes", pairs.Len())
	}
}

func TestBuildEndBoundaryIsExclusive(t *testing.T) {
	// Region [0x4000,0x4020) ends at 0x4020; a value exactly equal to
	// the end boundary must not be treated as in-range.
	img := make([]byte, 32)
	copy(img[0:8], le(0x4020))

	regions := []memory.Region{{Start: 0x4000, End: 0x4000 + 32, Perm: memory.Read}}
	provider := &fakeProvider{images: map[memory.Address][]byte{0x4000: img}}

	var pairs bytes.Buffer
	if err := Build(regions, nil, provider, Options{Aligned: true}, &pairs, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if pairs.Len() != 0 {
		t.Fatalf("end-boundary value must be excluded, got %d bytes", pairs.Len())
	}
}

func TestBuildStrictModeFailsOnReadError(t *testing.T) {
	regions := []memory.Region{{Start: 0x5000, End: 0x5000 + 32, Perm: memory.Read}}
	provider := &fakeProvider{
		images: map[memory.Address][]byte{0x5000: make([]byte, 32)},
		fail:   map[memory.Address]bool{0x5000: true},
	}
	err := Build(regions, nil, provider, Options{}, &bytes.Buffer{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected a fatal error in strict mode")
	}
}

func TestBuildBestEffortSkipsFailingRegion(t *testing.T) {
	goodImg := make([]byte, 32)
	copy(goodImg[0:8], le(0x6000))
	regions := []memory.Region{
		{Start: 0x5000, End: 0x5000 + 32, Perm: memory.Read},
		{Start: 0x6000, End: 0x6000 + 32, Perm: memory.Read},
	}
	provider := &fakeProvider{
		images: map[memory.Address][]byte{0x5000: make([]byte, 32), 0x6000: goodImg},
		fail:   map[memory.Address]bool{0x5000: true},
	}
	var pairs bytes.Buffer
	err := Build(regions, nil, provider, Options{Aligned: true, BestEffort: true}, &pairs, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("best-effort build should not fail: %v", err)
	}
	var got []ptrcodec.Pair
	ptrcodec.ReadPairsBuffered(&pairs, func(p ptrcodec.Pair) error { got = append(got, p); return nil })
	if len(got) != 1 || got[0].Location != 0x6000 {
		t.Fatalf("got %+v, want the second region's self-pointer only", got)
	}
}

func TestWriteModulesCoalescesAdjacentSamePathRegions(t *testing.T) {
	regions := []memory.Region{
		{Start: 0x1000, End: 0x2000, Perm: memory.Read, Backing: "/lib/libc.so"},
		{Start: 0x2000, End: 0x3000, Perm: memory.Read | memory.Write, Backing: "/lib/libc.so"},
		{Start: 0x4000, End: 0x5000, Perm: memory.Read | memory.Write, Backing: "/lib/libc.so"},
	}
	var modules bytes.Buffer
	if err := writeModules(regions, &modules); err != nil {
		t.Fatal(err)
	}
	want := "1000-3000 libc.so[0]\n4000-5000 libc.so[1]\n"
	if modules.String() != want {
		t.Fatalf("modules = %q, want %q", modules.String(), want)
	}
}

func TestWriteModulesDistinctPathsGetOwnCounters(t *testing.T) {
	regions := []memory.Region{
		{Start: 0x1000, End: 0x2000, Perm: memory.Read, Backing: "/bin/app"},
		{Start: 0x3000, End: 0x4000, Perm: memory.Read, Backing: "/lib/libc.so"},
	}
	var modules bytes.Buffer
	if err := writeModules(regions, &modules); err != nil {
		t.Fatal(err)
	}
	want := "1000-2000 app[0]\n3000-4000 libc.so[0]\n"
	if modules.String() != want {
		t.Fatalf("modules = %q, want %q", modules.String(), want)
	}
}
