// Package bind generates lazy decoders for managed classes.
//
// A Go struct describes the fields to read; struct tags name the managed
// fields and mark static or singleton fields:
//
//	type Timer struct {
//	    LevelTime float32 `clr:"currentLevelTime"`
//	    Paused    bool    `clr:"isPaused"`
//	}
//
//	type GameManager struct {
//	    Instance clrmem.Pointer[GameManager] `clr:"instance,singleton"`
//	    Level    int32                       `clr:"currentLevel"`
//	}
//
// Generation validates the description once:
//
//	timers := bind.MustGenerate[Timer]()
//
// Binding allocates the caches and never fails:
//
//	b := timers.Bind()
//	t, ok := b.ReadAt(game, timerAddr)
//
// # Resolution
//
// The first read looks up the class in the image, then each field: static
// and singleton fields resolve to an absolute address, instance fields to an
// offset. Each lookup is cached as soon as it succeeds and retried on the
// next read while it fails, so a class that is not loaded yet simply reads
// as absent until it is.
//
// Instance fields are read at instance+offset. The instance is the address
// passed to ReadAt or, when the class has a singleton field, the address
// stored in that field.
//
// # Read Forms
//
//	Shape           Method
//	──────────────────────────────────────────
//	ShapeInstance   ReadAt, ReadPointer, With
//	ShapeStatic     Read
//	ShapeSingleton  Read
//
// Calling the wrong form panics, as does reading a binding without fields.
//
// # Invariants
//
// A read either fills every field or returns false. An instance field
// resolving to offset 0 indicates a runtime mismatch and panics rather than
// decoding the object header as data.
//
// A Binding mutates its caches while reading and must not be shared
// between goroutines without synchronization. A Layout may be shared.
package bind
