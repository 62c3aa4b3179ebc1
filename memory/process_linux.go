//go:build linux

package memory

import (
	stderrors "errors"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/clrmem/errors"
)

// Process reads the memory of a live process with process_vm_readv.
type Process struct {
	pid int
}

// Open attaches to pid for reading. It fails if the process does not exist
// or the caller may not signal it.
func Open(pid int) (*Process, error) {
	if pid <= 0 {
		return nil, errors.InvalidInput(errors.PhaseAttach, "pid must be positive")
	}
	if err := unix.Kill(pid, 0); err != nil {
		if stderrors.Is(err, unix.ESRCH) {
			return nil, errors.NotFound(errors.PhaseAttach, "process", strconv.Itoa(pid))
		}
		return nil, errors.Attach("signal pid "+strconv.Itoa(pid), err)
	}
	Logger().Debug("attached to process", zap.Int("pid", pid))
	return &Process{pid: pid}, nil
}

// Pid returns the target process id.
func (p *Process) Pid() int {
	return p.pid
}

// ReadMemory implements the clrmem.Reader shape.
func (p *Process) ReadMemory(buf []byte, addr uint64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(len(buf))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(buf)}}

	n, err := unix.ProcessVMReadv(p.pid, local, remote, 0)
	if err != nil {
		switch {
		case stderrors.Is(err, unix.EFAULT):
			return 0, errors.OutOfBounds(addr, len(buf))
		case stderrors.Is(err, unix.EPERM):
			return 0, errors.Attach("read pid "+strconv.Itoa(p.pid), err)
		default:
			return 0, errors.New(errors.PhaseRead, errors.KindInvalidData).
				Address(addr).
				Cause(err).
				Build()
		}
	}
	if n < len(buf) {
		return n, errors.ShortRead(addr, n, len(buf))
	}
	return n, nil
}
