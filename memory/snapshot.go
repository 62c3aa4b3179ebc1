package memory

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/clrmem/errors"
)

// snapshotMagic starts every serialized snapshot.
var snapshotMagic = [8]byte{'C', 'L', 'R', 'S', 'N', 'A', 'P', 1}

// maxRegionSize bounds a single region read back from a file.
const maxRegionSize = 1 << 30

type region struct {
	addr uint64
	data []byte
}

func (r region) end() uint64 {
	return r.addr + uint64(len(r.data))
}

// Snapshot is a sparse copy of a target address space. Reads succeed only
// when the whole span lies inside one mapped region; overlapping and
// adjacent regions are merged when mapped. Safe for concurrent use.
type Snapshot struct {
	mu      sync.RWMutex
	regions []region // sorted by addr, disjoint, non-adjacent
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Map copies data into the snapshot at addr, overwriting bytes already
// mapped there.
func (s *Snapshot) Map(addr uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	end := addr + uint64(len(data))
	if end < addr {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First region whose end reaches addr.
	lo := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].end() >= addr
	})
	hi := lo
	for hi < len(s.regions) && s.regions[hi].addr <= end {
		hi++
	}

	start, stop := addr, end
	if lo < hi {
		start = min(start, s.regions[lo].addr)
		stop = max(stop, s.regions[hi-1].end())
	}

	merged := region{addr: start, data: make([]byte, stop-start)}
	for _, old := range s.regions[lo:hi] {
		copy(merged.data[old.addr-start:], old.data)
	}
	copy(merged.data[addr-start:], data)

	s.regions = append(s.regions[:lo], append([]region{merged}, s.regions[hi:]...)...)
}

// Alloc maps size zero bytes at addr.
func (s *Snapshot) Alloc(addr uint64, size int) {
	s.Map(addr, make([]byte, size))
}

// ReadMemory implements the clrmem.Reader shape.
func (s *Snapshot) ReadMemory(buf []byte, addr uint64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := addr + uint64(len(buf))
	if end < addr {
		return 0, errors.OutOfBounds(addr, len(buf))
	}
	i := sort.Search(len(s.regions), func(i int) bool {
		return s.regions[i].end() > addr
	})
	if i == len(s.regions) || s.regions[i].addr > addr || s.regions[i].end() < end {
		return 0, errors.OutOfBounds(addr, len(buf))
	}
	r := s.regions[i]
	return copy(buf, r.data[addr-r.addr:]), nil
}

// Regions returns the number of disjoint mapped regions.
func (s *Snapshot) Regions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// Put writes the in-memory bytes of a fixed-shape v at addr, in native
// byte order.
func Put[T any](s *Snapshot, addr uint64, v T) {
	size := unsafe.Sizeof(v)
	if size == 0 {
		return
	}
	s.Map(addr, unsafe.Slice((*byte)(unsafe.Pointer(&v)), size))
}

// PutSlice writes consecutive fixed-shape values starting at addr.
func PutSlice[T any](s *Snapshot, addr uint64, vs []T) {
	if len(vs) == 0 {
		return
	}
	size := int(unsafe.Sizeof(vs[0])) * len(vs)
	s.Map(addr, unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), size))
}

// WriteTo serializes the snapshot: a magic header followed by
// (address u64, length u64, bytes) records in little-endian order.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bw := bufio.NewWriter(w)
	var n int64
	write := func(p []byte) error {
		m, err := bw.Write(p)
		n += int64(m)
		return err
	}

	if err := write(snapshotMagic[:]); err != nil {
		return n, err
	}
	var hdr [16]byte
	for _, r := range s.regions {
		binary.LittleEndian.PutUint64(hdr[0:], r.addr)
		binary.LittleEndian.PutUint64(hdr[8:], uint64(len(r.data)))
		if err := write(hdr[:]); err != nil {
			return n, err
		}
		if err := write(r.data); err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// LoadSnapshot reads a snapshot written by WriteTo.
func LoadSnapshot(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errors.Load("read snapshot header", err)
	}
	if magic != snapshotMagic {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Detail("not a snapshot file").
			Build()
	}

	s := NewSnapshot()
	var hdr [16]byte
	for {
		if _, err := io.ReadFull(br, hdr[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Load("read region header", err)
		}
		addr := binary.LittleEndian.Uint64(hdr[0:])
		size := binary.LittleEndian.Uint64(hdr[8:])
		if size > maxRegionSize {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Address(addr).
				Detail("region of %d bytes exceeds limit", size).
				Build()
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, errors.Load("read region data", err)
		}
		s.Map(addr, data)
	}

	Logger().Debug("snapshot loaded", zap.Int("regions", len(s.regions)))
	return s, nil
}
