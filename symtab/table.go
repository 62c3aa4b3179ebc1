package symtab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/tailscale/hujson"
	"go.uber.org/zap"

	"github.com/wippyai/clrmem"
	"github.com/wippyai/clrmem/bind"
	"github.com/wippyai/clrmem/errors"
)

// Value is an address or offset. In a table file it is either a JSON
// number or a string in any base strconv accepts with base 0, such as
// "0x7ff01020".
type Value uint64

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	s := string(b)
	base := 10
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		base = 0
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return fmt.Errorf("invalid address or offset %s", b)
	}
	*v = Value(n)
	return nil
}

// MarshalJSON writes v as a hex string.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + strconv.FormatUint(uint64(v), 16))
}

type tableFile struct {
	Classes map[string]classFile `json:"classes"`
}

type classFile struct {
	Static map[string]Value `json:"static,omitempty"`
	Fields map[string]Value `json:"fields,omitempty"`
}

// Class holds the static field addresses and instance field offsets of one
// managed class. It implements bind.Class without reading target memory.
type Class struct {
	name   string
	static map[string]uint64
	fields map[string]uint32
}

// Name returns the managed class name.
func (c *Class) Name() string {
	return c.name
}

// StaticField implements bind.Class.
func (c *Class) StaticField(_ clrmem.Reader, name string) (uint64, bool) {
	addr, ok := c.static[name]
	return addr, ok
}

// FieldOffset implements bind.Class.
func (c *Class) FieldOffset(_ clrmem.Reader, name string) (uint32, bool) {
	off, ok := c.fields[name]
	return off, ok
}

// Table is an offline reflection table, typically dumped once from a
// running target and reused across attaches. It implements bind.Image.
//
// A Table is safe for concurrent lookups once it is no longer modified.
type Table struct {
	classes map[string]*Class
}

var _ bind.Image = (*Table)(nil)

// New returns an empty table.
func New() *Table {
	return &Table{classes: make(map[string]*Class)}
}

func (t *Table) class(name string) *Class {
	c, ok := t.classes[name]
	if !ok {
		c = &Class{
			name:   name,
			static: make(map[string]uint64),
			fields: make(map[string]uint32),
		}
		t.classes[name] = c
	}
	return c
}

// SetStatic records the storage address of a static field.
func (t *Table) SetStatic(class, field string, addr uint64) {
	t.class(class).static[field] = addr
}

// SetField records the offset of an instance field.
func (t *Table) SetField(class, field string, offset uint32) {
	t.class(class).fields[field] = offset
}

// Class implements bind.Image.
func (t *Table) Class(_ clrmem.Reader, name string) (bind.Class, bool) {
	c, ok := t.classes[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Lookup returns the class entry for name.
func (t *Table) Lookup(name string) (*Class, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// Classes returns the class names in sorted order.
func (t *Table) Classes() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load parses a table from HuJSON (JSON with comments and trailing commas):
//
//	{
//	    "classes": {
//	        // GameManager is a singleton
//	        "GameManager": {
//	            "static": {"_instance": "0x7ff0a8c01020"},
//	            "fields": {"currentLevel": 16, "timer": "0x18"},
//	        },
//	    },
//	}
//
// Zero addresses and zero or out-of-range offsets are rejected.
func Load(raw []byte) (*Table, error) {
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, errors.Load("parsing table as HuJSON/JSON", err)
	}

	var f tableFile
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Load("decoding table", err)
	}

	t := New()
	for name, cf := range f.Classes {
		if name == "" {
			return nil, errors.Load("empty class name", nil)
		}
		c := t.class(name)
		for field, v := range cf.Static {
			if v == 0 {
				return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
					Class(name).
					Path(field).
					Detail("static field address is zero").
					Build()
			}
			c.static[field] = uint64(v)
		}
		for field, v := range cf.Fields {
			if v == 0 || v > math.MaxUint32 {
				return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
					Class(name).
					Path(field).
					Value(uint64(v)).
					Detail("field offset %d out of range", uint64(v)).
					Build()
			}
			c.fields[field] = uint32(v)
		}
	}

	Logger().Debug("symbol table loaded", zap.Int("classes", len(t.classes)))
	return t, nil
}

// LoadFile reads and parses the table at path.
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("reading "+path, err)
	}
	return Load(raw)
}

// WriteTo writes t as indented JSON that Load accepts.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	f := tableFile{Classes: make(map[string]classFile, len(t.classes))}
	for name, c := range t.classes {
		cf := classFile{}
		if len(c.static) > 0 {
			cf.Static = make(map[string]Value, len(c.static))
			for k, v := range c.static {
				cf.Static[k] = Value(v)
			}
		}
		if len(c.fields) > 0 {
			cf.Fields = make(map[string]Value, len(c.fields))
			for k, v := range c.fields {
				cf.Fields[k] = Value(v)
			}
		}
		f.Classes[name] = cf
	}

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return 0, err
	}
	b = append(b, '\n')
	n, err := w.Write(b)
	return int64(n), err
}
