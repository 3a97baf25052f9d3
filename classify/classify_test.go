//go:build linux

package classify

import (
	"bytes"
	"errors"
	"io"

	"testing"

	"ptrscan/memory"
)

func opener(files map[string][]byte) Opener {
	return func(path string) (io.ReadCloser, error) {
		b, ok := files[path]
		if !ok {
			return nil, errors.New("not found")
		}
		return io.NopCloser(bytes.NewReader(b)), nil
	}
}

func TestClassifyAnonymousHeapIsSource(t *testing.T) {
	r := memory.Region{Start: 0x1000, End: 0x2000, Perm: memory.Read | memory.Write, Backing: "[heap]"}
	if got := Classify(r, nil); got != ClassSource {
		t.Fatalf("got %v, want ClassSource", got)
	}
}

func TestClassifyElfBackedWritableIsModule(t *testing.T) {
	open := opener(map[string][]byte{
		"/usr/bin/app": append([]byte{0x7f, 'E', 'L', 'F'}, make([]byte, 60)...),
	})
	r := memory.Region{Start: 0x400000, End: 0x401000, Perm: memory.Read | memory.Write, Backing: "/usr/bin/app"}
	if got := Classify(r, open); got != ClassModule {
		t.Fatalf("got %v, want ClassModule", got)
	}
}

func TestClassifyElfBackedReadOnlyIsSourceNotModule(t *testing.T) {
	open := opener(map[string][]byte{
		"/usr/bin/app": append([]byte{0x7f, 'E', 'L', 'F'}, make([]byte, 60)...),
	})
	r := memory.Region{Start: 0x400000, End: 0x401000, Perm: memory.Read, Backing: "/usr/bin/app"}
	if got := Classify(r, open); got != ClassSource {
		t.Fatalf("got %v, want ClassSource", got)
	}
}

func TestClassifyBadMagicIsNeither(t *testing.T) {
	open := opener(map[string][]byte{
		"/usr/bin/app": append([]byte{0x00, 0x00, 0x00, 0x00}, make([]byte, 60)...),
	})
	r := memory.Region{Start: 0x400000, End: 0x401000, Perm: memory.Read, Backing: "/usr/bin/app"}
	if got := Classify(r, open); got != ClassNeither {
		t.Fatalf("got %v, want ClassNeither", got)
	}
}

func TestClassifyMemfdIsNeither(t *testing.T) {
	r := memory.Region{Start: 0x1000, End: 0x2000, Perm: memory.Read, Backing: "/memfd:hidden (deleted)"}
	if got := Classify(r, nil); got != ClassNeither {
		t.Fatalf("got %v, want ClassNeither", got)
	}
}

func TestClassifyUnreadableIsNeither(t *testing.T) {
	r := memory.Region{Start: 0x1000, End: 0x2000, Perm: memory.Write, Backing: "[heap]"}
	if got := Classify(r, nil); got != ClassNeither {
		t.Fatalf("got %v, want ClassNeither", got)
	}
}

func TestClassifyIOErrorDemotesToNeither(t *testing.T) {
	open := opener(map[string][]byte{}) // file missing -> open error
	r := memory.Region{Start: 0x400000, End: 0x401000, Perm: memory.Read, Backing: "/usr/bin/missing"}
	if got := Classify(r, open); got != ClassNeither {
		t.Fatalf("got %v, want ClassNeither", got)
	}
}
