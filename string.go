package clrmem

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// CSString is a resolved runtime string: the header address and the UTF-16
// code unit count read from it at resolution time.
type CSString struct {
	addr uint64
	size uint32
}

// ResolveString reads the string header at addr.
func ResolveString(r Reader, addr uint64) (CSString, bool) {
	size, ok := Read[uint32](r, addr+StringSizeOffset)
	if !ok {
		return CSString{}, false
	}
	return CSString{addr: addr, size: size}, true
}

// ResolveAt implements Resolvable.
func (CSString) ResolveAt(r Reader, addr uint64) (CSString, bool) {
	return ResolveString(r, addr)
}

// Address returns the header address.
func (s CSString) Address() uint64 {
	return s.addr
}

// Size returns the length in UTF-16 code units.
func (s CSString) Size() uint32 {
	return s.size
}

func (s CSString) units(r Reader) *ArrayIter[uint16] {
	start := s.addr + StringDataOffset
	return &ArrayIter[uint16]{
		r:      r,
		pos:    start,
		end:    start + 2*uint64(s.size),
		stride: 2,
	}
}

// Chars decodes the string lazily. Unpaired surrogates decode to
// utf8.RuneError; the sequence ends early if a code unit cannot be read.
func (s CSString) Chars(r Reader) iter.Seq[rune] {
	return func(yield func(rune) bool) {
		units := s.units(r)
		var (
			pending    uint16
			hasPending bool
		)
		for {
			u := pending
			if hasPending {
				hasPending = false
			} else {
				var ok bool
				if u, ok = units.Next(); !ok {
					return
				}
			}

			var c rune
			switch {
			case !utf16.IsSurrogate(rune(u)):
				c = rune(u)
			case u >= 0xDC00:
				c = utf8.RuneError
			default:
				low, ok := units.Next()
				switch {
				case !ok:
					c = utf8.RuneError
				case low >= 0xDC00 && low <= 0xDFFF:
					c = utf16.DecodeRune(rune(u), rune(low))
				default:
					c = utf8.RuneError
					pending, hasPending = low, true
				}
			}
			if !yield(c) {
				return
			}
		}
	}
}

// maxGrowHint caps buffer preallocation; the length comes from the target
// and may be garbage.
const maxGrowHint = 4096

// DecodeN decodes at most capBytes bytes of UTF-8. Characters that do not
// fit are dropped silently.
func (s CSString) DecodeN(r Reader, capBytes int) string {
	if capBytes <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(min(capBytes, int(min(s.size, maxGrowHint))*utf8.UTFMax, maxGrowHint))
	for c := range s.Chars(r) {
		if b.Len()+utf8.RuneLen(c) > capBytes {
			break
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Decode decodes the whole string.
func (s CSString) Decode(r Reader) string {
	var b strings.Builder
	b.Grow(int(min(s.size, maxGrowHint)))
	for c := range s.Chars(r) {
		b.WriteRune(c)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (s CSString) String() string {
	return fmt.Sprintf("CSString{addr: 0x%x, size: %d}", s.addr, s.size)
}
