package bind

import (
	"github.com/wippyai/clrmem"
)

// fakeImage is an in-memory Image that counts lookups.
type fakeImage struct {
	classes    map[string]*fakeClass
	classCalls int
}

func newFakeImage() *fakeImage {
	return &fakeImage{classes: make(map[string]*fakeClass)}
}

func (i *fakeImage) add(name string) *fakeClass {
	c := &fakeClass{
		statics: make(map[string]uint64),
		offsets: make(map[string]uint32),
		calls:   make(map[string]int),
	}
	i.classes[name] = c
	return c
}

func (i *fakeImage) Class(_ clrmem.Reader, name string) (Class, bool) {
	i.classCalls++
	c, ok := i.classes[name]
	if !ok {
		return nil, false
	}
	return c, true
}

type fakeClass struct {
	statics     map[string]uint64
	offsets     map[string]uint32
	calls       map[string]int
	staticCalls int
	offsetCalls int
}

func (c *fakeClass) StaticField(_ clrmem.Reader, name string) (uint64, bool) {
	c.staticCalls++
	c.calls[name]++
	addr, ok := c.statics[name]
	return addr, ok
}

func (c *fakeClass) FieldOffset(_ clrmem.Reader, name string) (uint32, bool) {
	c.offsetCalls++
	c.calls[name]++
	off, ok := c.offsets[name]
	return off, ok
}
