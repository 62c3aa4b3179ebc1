// Package memory provides Reader back ends for clrmem.
//
// Every type here implements the clrmem.Reader shape:
//
//	ReadMemory(buf []byte, addr uint64) (n int, err error)
//
// # Snapshot
//
// An in-process set of byte regions at absolute addresses. Used for test
// fixtures and for decoding dumps taken earlier:
//
//	snap := memory.NewSnapshot()
//	memory.Put(snap, 0x1018, uint32(3))
//	// snap implements clrmem.Reader
//
// # Wasm
//
// Wraps a wazero api.Memory so a WebAssembly guest's linear memory can be
// the target:
//
//	mem := memory.WrapMemory(module.Memory())
//
// # Process
//
// Reads a live process on Linux through process_vm_readv. The caller needs
// ptrace permission over the target. Other platforms return an unsupported
// error from Open.
//
//	proc, err := memory.Open(pid)
//
// None of the back ends write to the target.
package memory
