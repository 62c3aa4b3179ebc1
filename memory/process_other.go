//go:build !linux

package memory

import (
	"github.com/wippyai/clrmem/errors"
)

// Process reads the memory of a live process. Only Linux is supported.
type Process struct {
	pid int
}

// Open always fails on this platform.
func Open(pid int) (*Process, error) {
	return nil, errors.Unsupported(errors.PhaseAttach, "live process reads require linux")
}

// Pid returns the target process id.
func (p *Process) Pid() int {
	return p.pid
}

// ReadMemory always fails on this platform.
func (p *Process) ReadMemory(buf []byte, addr uint64) (int, error) {
	return 0, errors.Unsupported(errors.PhaseRead, "live process reads require linux")
}
