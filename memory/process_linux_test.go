//go:build linux

package memory

import (
	"os"
	"testing"
	"unsafe"
)

func TestProcess_ReadSelf(t *testing.T) {
	p, err := Open(os.Getpid())
	if err != nil {
		t.Skipf("cannot attach to self: %v", err)
	}

	value := [4]byte{1, 2, 3, 4}
	buf := make([]byte, 4)
	n, err := p.ReadMemory(buf, uint64(uintptr(unsafe.Pointer(&value[0]))))
	if err != nil {
		t.Skipf("process_vm_readv unavailable: %v", err)
	}
	if n != 4 || buf[3] != 4 {
		t.Errorf("ReadMemory = %d, %v", n, buf)
	}

	if _, err := p.ReadMemory(buf, 0); err == nil {
		t.Error("expected error reading address 0")
	}
}

func TestOpen_InvalidPid(t *testing.T) {
	if _, err := Open(0); err == nil {
		t.Error("expected error for pid 0")
	}
	if _, err := Open(1 << 30); err == nil {
		t.Error("expected error for missing pid")
	}
}
