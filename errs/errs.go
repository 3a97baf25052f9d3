// Package errs defines the sentinel error taxonomy used throughout
// ptrscan. Call sites wrap one of these with fmt.Errorf and %w so callers
// can test the category with errors.Is while still getting a useful
// message.
package errs

import "errors"

var (
	// ErrProvider reports a failure to open, read, or enumerate the
	// regions of a target process.
	ErrProvider = errors.New("provider error")

	// ErrIO reports a filesystem failure reading or writing a map, info,
	// or result file.
	ErrIO = errors.New("io error")

	// ErrFormat reports malformed on-disk data: a pair file whose length
	// isn't a multiple of a record size, or an unparseable result line.
	// Malformed module lines are always skipped, never reported.
	ErrFormat = errors.New("format error")

	// ErrParams reports invalid scan parameters: depth out of range,
	// node_min >= depth, or an unparseable target address. The offset
	// window is not checked, and output files are created with os.Create,
	// which replaces an existing file rather than reporting it.
	ErrParams = errors.New("invalid parameters")

	// ErrOverflow reports address arithmetic that would wrap during
	// chain resolution (not during scanning, which always saturates).
	ErrOverflow = errors.New("address overflow")
)
