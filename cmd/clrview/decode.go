package main

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/wippyai/clrmem"
	"github.com/wippyai/clrmem/symtab"
)

// query selects what to decode at an address.
type query struct {
	addr  uint64
	kind  string // string, value, ptr, array, list, map, set
	elem  string // element or map key type
	value string // map value type
	limit int    // max elements shown, or UTF-8 bytes for strings
	deref bool   // addr holds a reference to the object
}

var kinds = []string{"string", "value", "ptr", "array", "list", "map", "set"}

var elems = []string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f32", "f64", "bool", "ptr", "string"}

func validate(q query) error {
	if !contains(kinds, q.kind) {
		return fmt.Errorf("unknown kind %q (want one of %s)", q.kind, strings.Join(kinds, ", "))
	}
	if q.kind != "string" && !contains(elems, q.elem) {
		return fmt.Errorf("unknown element type %q (want one of %s)", q.elem, strings.Join(elems, ", "))
	}
	if q.kind == "map" && !contains(elems, q.value) {
		return fmt.Errorf("unknown value type %q (want one of %s)", q.value, strings.Join(elems, ", "))
	}
	if q.limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseAddress accepts a number in any base strconv understands, or
// Class.field naming a static field in table.
func parseAddress(s string, table *symtab.Table) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("address is required")
	}
	if n, err := strconv.ParseUint(s, 0, 64); err == nil {
		return n, nil
	}

	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	if table == nil {
		return 0, fmt.Errorf("symbolic address %q needs -symtab", s)
	}
	class, field := s[:i], s[i+1:]
	c, ok := table.Lookup(class)
	if !ok {
		return 0, fmt.Errorf("class %q not in symbol table", class)
	}
	addr, ok := c.StaticField(nil, field)
	if !ok {
		return 0, fmt.Errorf("static field %s.%s not in symbol table", class, field)
	}
	return addr, nil
}

// decode reads the object described by q and renders it line by line.
func decode(r clrmem.Reader, q query) ([]string, error) {
	addr := q.addr
	if q.deref {
		target, ok := clrmem.NewPointer[byte](addr).Deref(r)
		if !ok {
			return nil, fmt.Errorf("cannot read reference at 0x%x", addr)
		}
		if target == 0 {
			return nil, fmt.Errorf("reference at 0x%x is null", addr)
		}
		addr = target
	}

	if q.kind == "string" {
		s, ok := clrmem.ResolveString(r, addr)
		if !ok {
			return nil, fmt.Errorf("no string at 0x%x", addr)
		}
		var text string
		if q.limit > 0 {
			text = s.DecodeN(r, q.limit)
		} else {
			text = s.Decode(r)
		}
		return []string{fmt.Sprintf("string @0x%x length=%d", addr, s.Size()), strconv.Quote(text)}, nil
	}

	switch q.elem {
	case "u8":
		return dump(r, addr, q, formatValue[uint8])
	case "u16":
		return dump(r, addr, q, formatValue[uint16])
	case "u32":
		return dump(r, addr, q, formatValue[uint32])
	case "u64":
		return dump(r, addr, q, formatValue[uint64])
	case "i8":
		return dump(r, addr, q, formatValue[int8])
	case "i16":
		return dump(r, addr, q, formatValue[int16])
	case "i32":
		return dump(r, addr, q, formatValue[int32])
	case "i64":
		return dump(r, addr, q, formatValue[int64])
	case "f32":
		return dump(r, addr, q, formatValue[float32])
	case "f64":
		return dump(r, addr, q, formatValue[float64])
	case "bool":
		return dump(r, addr, q, formatBool)
	case "ptr":
		return dump(r, addr, q, formatPointer)
	case "string":
		return dump(r, addr, q, formatString)
	default:
		return nil, fmt.Errorf("unknown element type %q", q.elem)
	}
}

func formatValue[T any](_ clrmem.Reader, v T) string {
	return fmt.Sprint(v)
}

// formatBool reads a managed bool as a byte; any non-zero byte is true.
func formatBool(_ clrmem.Reader, v uint8) string {
	return strconv.FormatBool(v != 0)
}

func formatPointer(_ clrmem.Reader, p clrmem.Pointer[byte]) string {
	if p.IsNull() {
		return "null"
	}
	return fmt.Sprintf("0x%x", p.Address())
}

// formatString renders a string reference held inline in a collection.
func formatString(r clrmem.Reader, p clrmem.Pointer[clrmem.CSString]) string {
	if p.IsNull() {
		return "null"
	}
	s, ok := clrmem.Resolve(p, r)
	if !ok {
		return fmt.Sprintf("<unreadable string @0x%x>", p.Address())
	}
	return strconv.Quote(s.Decode(r))
}

func dump[T any](r clrmem.Reader, addr uint64, q query, format func(clrmem.Reader, T) string) ([]string, error) {
	switch q.kind {
	case "value":
		v, ok := clrmem.Read[T](r, addr)
		if !ok {
			return nil, fmt.Errorf("no %s at 0x%x", q.elem, addr)
		}
		return []string{format(r, v)}, nil

	case "ptr":
		p, ok := clrmem.Read[clrmem.Pointer[T]](r, addr)
		if !ok {
			return nil, fmt.Errorf("cannot read reference at 0x%x", addr)
		}
		if p.IsNull() {
			return []string{"null"}, nil
		}
		v, ok := p.Read(r)
		if !ok {
			return nil, fmt.Errorf("no %s at 0x%x", q.elem, p.Address())
		}
		return []string{fmt.Sprintf("-> 0x%x", p.Address()), format(r, v)}, nil

	case "array":
		a, ok := clrmem.ResolveArray[T](r, addr)
		if !ok {
			return nil, fmt.Errorf("no array at 0x%x", addr)
		}
		lines := []string{fmt.Sprintf("array<%s> @0x%x size=%d", q.elem, addr, a.Size())}
		return appendItems(lines, r, q.limit, int(a.Size()), a.All(r), format), nil

	case "list":
		l, ok := clrmem.ResolveList[T](r, addr)
		if !ok {
			return nil, fmt.Errorf("no list at 0x%x", addr)
		}
		lines := []string{fmt.Sprintf("list<%s> @0x%x size=%d capacity=%d", q.elem, addr, l.Size(), l.Capacity())}
		return appendItems(lines, r, q.limit, int(l.Size()), l.All(r), format), nil

	case "set":
		s, ok := clrmem.ResolveSet[T](r, addr)
		if !ok {
			return nil, fmt.Errorf("no set at 0x%x", addr)
		}
		lines := []string{fmt.Sprintf("set<%s> @0x%x size=%d", q.elem, addr, s.Size())}
		return appendItems(lines, r, q.limit, int(s.Size()), s.All(r), format), nil

	case "map":
		return dumpMapKey(r, addr, q, format)

	default:
		return nil, fmt.Errorf("unknown kind %q", q.kind)
	}
}

func dumpMapKey[K any](r clrmem.Reader, addr uint64, q query, key func(clrmem.Reader, K) string) ([]string, error) {
	switch q.value {
	case "u8":
		return dumpMap(r, addr, q, key, formatValue[uint8])
	case "u16":
		return dumpMap(r, addr, q, key, formatValue[uint16])
	case "u32":
		return dumpMap(r, addr, q, key, formatValue[uint32])
	case "u64":
		return dumpMap(r, addr, q, key, formatValue[uint64])
	case "i8":
		return dumpMap(r, addr, q, key, formatValue[int8])
	case "i16":
		return dumpMap(r, addr, q, key, formatValue[int16])
	case "i32":
		return dumpMap(r, addr, q, key, formatValue[int32])
	case "i64":
		return dumpMap(r, addr, q, key, formatValue[int64])
	case "f32":
		return dumpMap(r, addr, q, key, formatValue[float32])
	case "f64":
		return dumpMap(r, addr, q, key, formatValue[float64])
	case "bool":
		return dumpMap(r, addr, q, key, formatBool)
	case "ptr":
		return dumpMap(r, addr, q, key, formatPointer)
	case "string":
		return dumpMap(r, addr, q, key, formatString)
	default:
		return nil, fmt.Errorf("unknown value type %q", q.value)
	}
}

func dumpMap[K, V any](r clrmem.Reader, addr uint64, q query, key func(clrmem.Reader, K) string, value func(clrmem.Reader, V) string) ([]string, error) {
	m, ok := clrmem.ResolveMap[K, V](r, addr)
	if !ok {
		return nil, fmt.Errorf("no map at 0x%x", addr)
	}
	lines := []string{fmt.Sprintf("map<%s, %s> @0x%x size=%d", q.elem, q.value, addr, m.Size())}
	n := 0
	for k, v := range m.All(r) {
		if q.limit > 0 && n == q.limit {
			lines = append(lines, fmt.Sprintf("  ... %d more", int(m.Size())-n))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", key(r, k), value(r, v)))
		n++
	}
	return lines, nil
}

func appendItems[T any](lines []string, r clrmem.Reader, limit, size int, items iter.Seq[T], format func(clrmem.Reader, T) string) []string {
	i := 0
	for v := range items {
		if limit > 0 && i == limit {
			lines = append(lines, fmt.Sprintf("  ... %d more", size-i))
			break
		}
		lines = append(lines, fmt.Sprintf("  [%d] %s", i, format(r, v)))
		i++
	}
	return lines
}
