//go:build linux

package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"ptrscan/errs"
	"ptrscan/memory"
)

// linuxProvider attaches to a live process with ptrace and serves its
// mapped regions from /proc/<pid>/maps and its bytes from
// /proc/<pid>/mem. All ptrace calls run on one dedicated, locked OS
// thread: ptrace's tracer/tracee relationship is per-thread, so every
// syscall against the tracee must come from the thread that attached to
// it (grounded on program/server/ptrace.go's fc/ec pattern).
type linuxProvider struct {
	pid int
	mem *os.File

	fc chan func() error
	ec chan error
}

func newPlatformProvider(pid int) (memory.Provider, func() error, error) {
	p := &linuxProvider{
		pid: pid,
		fc:  make(chan func() error),
		ec:  make(chan error),
	}
	go p.run()

	if err := p.ptraceAttach(); err != nil {
		close(p.fc)
		return nil, nil, fmt.Errorf("%w: attaching to pid %d: %v", errs.ErrProvider, pid, err)
	}

	mem, err := os.OpenFile(fmt.Sprintf("/proc/%d/mem", pid), os.O_RDONLY, 0)
	if err != nil {
		p.ptraceDetach()
		close(p.fc)
		return nil, nil, fmt.Errorf("%w: opening /proc/%d/mem: %v", errs.ErrProvider, pid, err)
	}
	p.mem = mem

	return p, p.close, nil
}

func (p *linuxProvider) run() {
	runtime.LockOSThread()
	for f := range p.fc {
		p.ec <- f()
	}
}

func (p *linuxProvider) ptraceAttach() error {
	p.fc <- func() error {
		if err := unix.PtraceAttach(p.pid); err != nil {
			return err
		}
		var status unix.WaitStatus
		_, err := unix.Wait4(p.pid, &status, 0, nil)
		return err
	}
	return <-p.ec
}

func (p *linuxProvider) ptraceDetach() error {
	p.fc <- func() error {
		return unix.PtraceDetach(p.pid)
	}
	return <-p.ec
}

func (p *linuxProvider) close() error {
	detachErr := p.ptraceDetach()
	close(p.fc)
	if p.mem != nil {
		p.mem.Close()
	}
	return detachErr
}

// EnumerateRegions parses /proc/<pid>/maps into ascending, non-overlapping
// Regions (spec.md §3). A mapping line without read permission is still
// enumerated (permissions are recorded, not filtered here); filtering by
// permission and backing is classify's job.
func (p *linuxProvider) EnumerateRegions() ([]memory.Region, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return nil, fmt.Errorf("%w: opening /proc/%d/maps: %v", errs.ErrProvider, p.pid, err)
	}
	defer f.Close()

	var regions []memory.Region
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		r, ok, err := parseMapsLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: parsing /proc/%d/maps: %v", errs.ErrProvider, p.pid, err)
		}
		if ok {
			regions = append(regions, r)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading /proc/%d/maps: %v", errs.ErrProvider, p.pid, err)
	}
	return regions, nil
}

// parseMapsLine parses one /proc/pid/maps line, e.g.:
//
//	00400000-00452000 r-xp 00000000 08:02 173521  /usr/bin/dbus-daemon
//
// ok is false for a line this reader chooses not to surface as a region:
// one whose end address is not above its start.
func parseMapsLine(line string) (r memory.Region, ok bool, err error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return memory.Region{}, false, fmt.Errorf("malformed line %q", line)
	}
	bounds := strings.SplitN(fields[0], "-", 2)
	if len(bounds) != 2 {
		return memory.Region{}, false, fmt.Errorf("malformed address range %q", fields[0])
	}
	start, err := strconv.ParseUint(bounds[0], 16, 64)
	if err != nil {
		return memory.Region{}, false, fmt.Errorf("malformed start address %q: %v", bounds[0], err)
	}
	end, err := strconv.ParseUint(bounds[1], 16, 64)
	if err != nil {
		return memory.Region{}, false, fmt.Errorf("malformed end address %q: %v", bounds[1], err)
	}
	if end <= start {
		return memory.Region{}, false, nil
	}

	permStr := fields[1]
	var perm memory.Perm
	if strings.Contains(permStr, "r") {
		perm |= memory.Read
	}
	if strings.Contains(permStr, "w") {
		perm |= memory.Write
	}
	if strings.Contains(permStr, "x") {
		perm |= memory.Exec
	}

	backing := ""
	if len(fields) >= 6 {
		backing = strings.Join(fields[5:], " ")
	}

	return memory.Region{
		Start:   memory.Address(start),
		End:     memory.Address(end),
		Perm:    perm,
		Backing: backing,
	}, true, nil
}

// ReadAt reads from the tracee's address space via /proc/<pid>/mem, which
// tolerates short reads at mapping boundaries the way pread(2) does;
// pointermap's chunked scan already expects and handles that.
func (p *linuxProvider) ReadAt(addr memory.Address, buf []byte) (int, error) {
	n, err := p.mem.ReadAt(buf, int64(addr))
	if n > 0 {
		return n, nil
	}
	return n, err
}
