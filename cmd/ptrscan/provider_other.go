//go:build !linux

package main

import (
	"fmt"
	"runtime"

	"ptrscan/errs"
	"ptrscan/memory"
)

func newPlatformProvider(pid int) (memory.Provider, func() error, error) {
	return nil, nil, fmt.Errorf("%w: live process attach is not implemented on %s", errs.ErrProvider, runtime.GOOS)
}
