//go:build windows

package pointermap

// defaultChunkSize is the platform-default read chunk (spec.md §4.B:
// "smaller on Windows").
const defaultChunkSize = 16 * 1024
