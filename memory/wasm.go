package memory

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/clrmem/errors"
)

// WrapMemory wraps a wazero api.Memory. Target address a maps to linear
// memory offset a.
func WrapMemory(mem api.Memory) *Wasm {
	return WrapMemoryAt(mem, 0)
}

// WrapMemoryAt wraps a wazero api.Memory so that target address base maps
// to linear memory offset 0.
func WrapMemoryAt(mem api.Memory, base uint64) *Wasm {
	if mem == nil {
		return nil
	}
	return &Wasm{Mem: mem, Base: base}
}

// Wasm adapts wazero api.Memory to the clrmem.Reader shape.
type Wasm struct {
	Mem  api.Memory
	Base uint64
}

// ReadMemory copies len(buf) bytes of linear memory into buf.
func (m *Wasm) ReadMemory(buf []byte, addr uint64) (int, error) {
	if addr < m.Base {
		return 0, errors.OutOfBounds(addr, len(buf))
	}
	offset := addr - m.Base
	if offset > math.MaxUint32 || uint64(len(buf)) > math.MaxUint32 {
		return 0, errors.OutOfBounds(addr, len(buf))
	}
	data, ok := m.Mem.Read(uint32(offset), uint32(len(buf)))
	if !ok {
		return 0, errors.OutOfBounds(addr, len(buf))
	}
	return copy(buf, data), nil
}

// Size returns the current size of linear memory in bytes.
func (m *Wasm) Size() uint32 {
	return m.Mem.Size()
}
