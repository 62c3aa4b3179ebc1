package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/process"
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/clrmem"
	"github.com/wippyai/clrmem/memory"
)

// target names the address space to read. Exactly one field is set.
type target struct {
	pid      int
	name     string
	snapshot string
	wasm     string
}

func (t target) String() string {
	switch {
	case t.snapshot != "":
		return "snapshot " + t.snapshot
	case t.wasm != "":
		return "wasm " + t.wasm
	case t.name != "":
		return "process " + t.name
	default:
		return fmt.Sprintf("pid %d", t.pid)
	}
}

func (t target) validate() error {
	n := 0
	if t.pid != 0 {
		n++
	}
	if t.name != "" {
		n++
	}
	if t.snapshot != "" {
		n++
	}
	if t.wasm != "" {
		n++
	}
	if n != 1 {
		return fmt.Errorf("exactly one of -pid, -name, -snapshot or -wasm is required")
	}
	return nil
}

// open returns a reader for the target and a function releasing it.
func (t target) open(ctx context.Context) (clrmem.Reader, func(), error) {
	switch {
	case t.snapshot != "":
		f, err := os.Open(t.snapshot)
		if err != nil {
			return nil, nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		s, err := memory.LoadSnapshot(f)
		if err != nil {
			return nil, nil, fmt.Errorf("load snapshot: %w", err)
		}
		return s, func() {}, nil

	case t.wasm != "":
		return openWasm(ctx, t.wasm)
	}

	pid := t.pid
	if t.name != "" {
		var err error
		if pid, err = findPid(t.name); err != nil {
			return nil, nil, err
		}
	}
	p, err := memory.Open(pid)
	if err != nil {
		return nil, nil, fmt.Errorf("attach: %w", err)
	}
	return p, func() {}, nil
}

// openWasm instantiates a module without running its start function and
// reads its exported memory. The module must not have imports.
func openWasm(ctx context.Context, path string) (clrmem.Reader, func(), error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	rt := wazero.NewRuntime(ctx)
	closeRuntime := func() { rt.Close(ctx) }

	mod, err := rt.InstantiateWithConfig(ctx, data, wazero.NewModuleConfig().WithStartFunctions())
	if err != nil {
		closeRuntime()
		return nil, nil, fmt.Errorf("instantiate: %w", err)
	}
	mem := mod.Memory()
	if mem == nil {
		closeRuntime()
		return nil, nil, fmt.Errorf("%s exports no memory", path)
	}
	return memory.WrapMemory(mem), closeRuntime, nil
}

// findPid returns the pid of the only running process called name.
func findPid(name string) (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	var matches []int32
	for _, p := range procs {
		n, err := p.Name()
		if err != nil {
			continue
		}
		if strings.EqualFold(n, name) || strings.EqualFold(strings.TrimSuffix(n, ".exe"), name) {
			matches = append(matches, p.Pid)
		}
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no process named %q", name)
	case 1:
		return int(matches[0]), nil
	default:
		return 0, fmt.Errorf("%d processes named %q, use -pid", len(matches), name)
	}
}
