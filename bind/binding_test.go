package bind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/clrmem"
	"github.com/wippyai/clrmem/memory"
)

type gameManager struct {
	Instance clrmem.Pointer[gameManager] `clr:"_instance,singleton"`
	Level    int32                       `clr:"currentLevel"`
}

type timer struct {
	LevelTime float32 `clr:"currentLevelTime"`
	Ticks     uint32  `clr:"ticks"`
}

type timerStatic struct {
	Paused uint8  `clr:"paused,static"`
	Count  uint64 `clr:"count,static"`
}

func (timerStatic) ClassName() string { return "Timer" }

func TestBinding_SingletonResolvesOnce(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x5000, uint64(0x9000)) // static storage of _instance
	memory.Put(s, 0x9010, int32(7))

	img := newFakeImage()
	cls := img.add("gameManager")
	cls.statics["_instance"] = 0x5000
	cls.offsets["currentLevel"] = 0x10

	layout, err := Generate[gameManager]()
	require.NoError(t, err)
	require.Equal(t, ShapeSingleton, layout.Shape())

	b := layout.Bind()
	g := Game{Reader: s, Image: img}

	first, ok := b.Read(g)
	require.True(t, ok)
	second, ok := b.Read(g)
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(7), first.Level)
	assert.Equal(t, uint64(0x9000), first.Instance.Address())

	assert.Equal(t, 1, img.classCalls)
	assert.Equal(t, 1, cls.staticCalls)
	assert.Equal(t, 1, cls.offsetCalls)
}

func TestBinding_DataReadEveryCall(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x5000, uint64(0x9000))
	memory.Put(s, 0x9010, int32(1))

	img := newFakeImage()
	cls := img.add("gameManager")
	cls.statics["_instance"] = 0x5000
	cls.offsets["currentLevel"] = 0x10

	b := MustGenerate[gameManager]().Bind()
	g := Game{Reader: s, Image: img}

	v, ok := b.Read(g)
	require.True(t, ok)
	require.Equal(t, int32(1), v.Level)

	memory.Put(s, 0x9010, int32(2))
	v, ok = b.Read(g)
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Level)

	// The singleton now points at a different instance.
	memory.Put(s, 0x5000, uint64(0xA000))
	memory.Put(s, 0xA010, int32(3))
	v, ok = b.Read(g)
	require.True(t, ok)
	assert.Equal(t, int32(3), v.Level)
}

func TestBinding_NullSingletonIsAbsent(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x5000, uint64(0))

	img := newFakeImage()
	cls := img.add("gameManager")
	cls.statics["_instance"] = 0x5000
	cls.offsets["currentLevel"] = 0x10

	_, ok := MustGenerate[gameManager]().Bind().Read(Game{Reader: s, Image: img})
	assert.False(t, ok)
}

func TestBinding_StaticFields(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x7000, uint8(1))
	memory.Put(s, 0x7008, uint64(42))

	img := newFakeImage()
	cls := img.add("Timer")
	cls.statics["paused"] = 0x7000
	cls.statics["count"] = 0x7008

	layout := MustGenerate[timerStatic]()
	require.Equal(t, ShapeStatic, layout.Shape())
	require.Equal(t, "Timer", layout.ClassName())

	v, ok := layout.Bind().Read(Game{Reader: s, Image: img})
	require.True(t, ok)
	assert.Equal(t, timerStatic{Paused: 1, Count: 42}, v)
	assert.Zero(t, cls.offsetCalls)
}

func TestBinding_InstanceForms(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x8010, float32(1.5))
	memory.Put(s, 0x8014, uint32(99))

	img := newFakeImage()
	cls := img.add("timer")
	cls.offsets["currentLevelTime"] = 0x10
	cls.offsets["ticks"] = 0x14

	b := MustGenerate[timer]().Bind()
	g := Game{Reader: s, Image: img}
	want := timer{LevelTime: 1.5, Ticks: 99}

	v, ok := b.ReadAt(g, 0x8000)
	require.True(t, ok)
	assert.Equal(t, want, v)

	v, ok = b.ReadPointer(g, clrmem.NewPointer[timer](0x8000))
	require.True(t, ok)
	assert.Equal(t, want, v)

	v, ok = clrmem.NewPointer[timer](0x8000).ResolveWith(b.With(g))
	require.True(t, ok)
	assert.Equal(t, want, v)

	assert.Equal(t, 1, img.classCalls)
	assert.Equal(t, 2, cls.offsetCalls)
}

func TestBinding_NullInstanceDoesNoLookups(t *testing.T) {
	img := newFakeImage()
	img.add("timer")
	b := MustGenerate[timer]().Bind()
	g := Game{Reader: memory.NewSnapshot(), Image: img}

	_, ok := b.ReadAt(g, 0)
	assert.False(t, ok)
	_, ok = clrmem.NewPointer[timer](0).ResolveWith(b.With(g))
	assert.False(t, ok)
	assert.Zero(t, img.classCalls)
}

func TestBinding_RetriesOnlyMissingLookups(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x8010, float32(2.5))
	memory.Put(s, 0x8014, uint32(5))

	img := newFakeImage()
	cls := img.add("timer")
	cls.offsets["currentLevelTime"] = 0x10

	b := MustGenerate[timer]().Bind()
	g := Game{Reader: s, Image: img}

	_, ok := b.ReadAt(g, 0x8000)
	require.False(t, ok, "ticks is not resolvable yet")

	cls.offsets["ticks"] = 0x14
	v, ok := b.ReadAt(g, 0x8000)
	require.True(t, ok)
	assert.Equal(t, timer{LevelTime: 2.5, Ticks: 5}, v)

	assert.Equal(t, 1, img.classCalls)
	assert.Equal(t, 1, cls.calls["currentLevelTime"])
	assert.Equal(t, 2, cls.calls["ticks"])
}

func TestBinding_RetriesClassLookup(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x7000, uint8(1))
	memory.Put(s, 0x7008, uint64(1))

	img := newFakeImage()
	b := MustGenerate[timerStatic]().Bind()
	g := Game{Reader: s, Image: img}

	_, ok := b.Class(g)
	require.False(t, ok)
	_, ok = b.Read(g)
	require.False(t, ok)

	cls := img.add("Timer")
	cls.statics["paused"] = 0x7000
	cls.statics["count"] = 0x7008

	c, ok := b.Class(g)
	require.True(t, ok)
	assert.Same(t, cls, c)

	_, ok = b.Read(g)
	require.True(t, ok)
	assert.Equal(t, 3, img.classCalls)
}

func TestBinding_AllOrNothing(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x8010, float32(2.5)) // ticks at 0x8014 is unmapped

	img := newFakeImage()
	cls := img.add("timer")
	cls.offsets["currentLevelTime"] = 0x10
	cls.offsets["ticks"] = 0x14

	v, ok := MustGenerate[timer]().Bind().ReadAt(Game{Reader: s, Image: img}, 0x8000)
	assert.False(t, ok)
	assert.Equal(t, timer{}, v)
}

func TestBinding_ZeroOffsetPanics(t *testing.T) {
	img := newFakeImage()
	cls := img.add("timer")
	cls.offsets["currentLevelTime"] = 0
	cls.offsets["ticks"] = 0x14

	b := MustGenerate[timer]().Bind()
	assert.Panics(t, func() {
		b.ReadAt(Game{Reader: memory.NewSnapshot(), Image: img}, 0x8000)
	})
}

func TestBinding_WrongReadFormPanics(t *testing.T) {
	g := Game{Reader: memory.NewSnapshot(), Image: newFakeImage()}

	assert.Panics(t, func() { MustGenerate[timer]().Bind().Read(g) })
	assert.Panics(t, func() { MustGenerate[timerStatic]().Bind().ReadAt(g, 0x10) })
	assert.Panics(t, func() { MustGenerate[gameManager]().Bind().ReadAt(g, 0x10) })
}

func TestBinding_NoFields(t *testing.T) {
	type empty struct{}
	img := newFakeImage()
	img.add("Empty")

	layout, err := Compile[empty](Description{Class: "Empty"})
	require.NoError(t, err)

	b := layout.Bind()
	g := Game{Reader: memory.NewSnapshot(), Image: img}
	_, ok := b.Class(g)
	assert.True(t, ok)
	assert.Panics(t, func() { b.Read(g) })
}

func TestBinding_Reset(t *testing.T) {
	s := memory.NewSnapshot()
	memory.Put(s, 0x7000, uint8(1))
	memory.Put(s, 0x7008, uint64(1))

	img := newFakeImage()
	cls := img.add("Timer")
	cls.statics["paused"] = 0x7000
	cls.statics["count"] = 0x7008

	b := MustGenerate[timerStatic]().Bind()
	g := Game{Reader: s, Image: img}
	_, ok := b.Read(g)
	require.True(t, ok)

	b.Reset()
	_, ok = b.Read(g)
	require.True(t, ok)
	assert.Equal(t, 2, img.classCalls)
	assert.Equal(t, 4, cls.staticCalls)
}

func TestBinding_NilImage(t *testing.T) {
	_, ok := MustGenerate[timerStatic]().Bind().Read(Game{Reader: memory.NewSnapshot()})
	assert.False(t, ok)
}
