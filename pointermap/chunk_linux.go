//go:build linux

package pointermap

// defaultChunkSize is the platform-default read chunk (spec.md §4.B:
// "4 KiB-256 KiB; ... larger on Linux").
const defaultChunkSize = 64 * 1024
