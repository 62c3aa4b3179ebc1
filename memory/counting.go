package memory

import "sync/atomic"

// MemoryReader is the read shape shared by every back end.
type MemoryReader interface {
	ReadMemory(buf []byte, addr uint64) (n int, err error)
}

// Counting wraps a reader and counts calls and bytes requested.
type Counting struct {
	R     MemoryReader
	calls atomic.Int64
	bytes atomic.Int64
}

// NewCounting wraps r.
func NewCounting(r MemoryReader) *Counting {
	return &Counting{R: r}
}

// ReadMemory forwards to the wrapped reader.
func (c *Counting) ReadMemory(buf []byte, addr uint64) (int, error) {
	c.calls.Add(1)
	c.bytes.Add(int64(len(buf)))
	return c.R.ReadMemory(buf, addr)
}

// Calls returns the number of reads forwarded so far.
func (c *Counting) Calls() int64 {
	return c.calls.Load()
}

// Bytes returns the number of bytes requested so far.
func (c *Counting) Bytes() int64 {
	return c.bytes.Load()
}

// Reset zeroes the counters.
func (c *Counting) Reset() {
	c.calls.Store(0)
	c.bytes.Store(0)
}
