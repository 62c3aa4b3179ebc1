package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/clrmem/bind"
	"github.com/wippyai/clrmem/memory"
	"github.com/wippyai/clrmem/symtab"
)

func main() {
	var (
		pid         = flag.Int("pid", 0, "Target process id")
		name        = flag.String("name", "", "Target process name (must be unique)")
		snapshot    = flag.String("snapshot", "", "Read from a snapshot file instead of a process")
		wasmFile    = flag.String("wasm", "", "Read the exported memory of a wasm module")
		symFile     = flag.String("symtab", "", "HuJSON symbol table for Class.field addresses")
		addr        = flag.String("addr", "", "Object address (0x..., decimal, or Class.field with -symtab)")
		kind        = flag.String("kind", "string", "Object kind: string, value, ptr, array, list, map, set")
		elem        = flag.String("elem", "u32", "Element or map key type: u8..u64, i8..i64, f32, f64, bool, ptr, string")
		value       = flag.String("value", "u32", "Map value type")
		limit       = flag.Int("limit", 64, "Max elements shown, or UTF-8 bytes for strings (0 = all)")
		deref       = flag.Bool("deref", false, "Address holds a reference to the object")
		interactive = flag.Bool("i", false, "Interactive watch mode with TUI")
		interval    = flag.Duration("interval", 500*time.Millisecond, "Refresh interval in interactive mode")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	t := target{pid: *pid, name: *name, snapshot: *snapshot, wasm: *wasmFile}
	if err := t.validate(); err != nil || *addr == "" {
		fmt.Fprintln(os.Stderr, "Usage: clrview -pid <pid> -addr <addr> [-kind list -elem i32] [-limit n]")
		fmt.Fprintln(os.Stderr, "       clrview -name <process> -symtab <file> -addr Class.field -deref -kind map -elem string -value f32")
		fmt.Fprintln(os.Stderr, "       clrview -snapshot <file> -addr <addr> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       clrview -wasm <module.wasm> -addr <addr> -kind array -elem u8")
		os.Exit(1)
	}

	log, err := newLogger(*verbose, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	memory.SetLogger(log.Named("memory"))
	bind.SetLogger(log.Named("bind"))
	symtab.SetLogger(log.Named("symtab"))

	q := query{
		kind:  *kind,
		elem:  *elem,
		value: *value,
		limit: *limit,
		deref: *deref,
	}

	if err := run(t, *symFile, *addr, q, *interactive, *interval); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose, interactive bool) (*zap.Logger, error) {
	switch {
	case verbose:
		return zap.NewDevelopment()
	case interactive:
		// stderr output would corrupt the TUI
		return zap.NewNop(), nil
	default:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		return cfg.Build()
	}
}

func run(t target, symFile, addr string, q query, interactive bool, interval time.Duration) error {
	var table *symtab.Table
	if symFile != "" {
		var err error
		if table, err = symtab.LoadFile(symFile); err != nil {
			return err
		}
	}

	var err error
	if q.addr, err = parseAddress(addr, table); err != nil {
		return err
	}
	if err := validate(q); err != nil {
		return err
	}

	r, release, err := t.open(context.Background())
	if err != nil {
		return err
	}
	defer release()

	if interactive {
		return runInteractive(r, t.String(), q, table, interval)
	}

	lines, err := decode(r, q)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
