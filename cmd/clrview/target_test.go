package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/clrmem/memory"
)

// arrayModule exports one page of memory holding a three-byte array at 0x100.
var arrayModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: min 1 page
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export memory 0
	0x0b, 0x12, 0x01, // data section, one segment
	0x00, 0x41, 0x98, 0x02, 0x0b, // active, i32.const 0x118
	0x0b, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03,
}

func TestTarget_OpenWasm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "array.wasm")
	if err := os.WriteFile(path, arrayModule, 0o600); err != nil {
		t.Fatal(err)
	}

	r, release, err := target{wasm: path}.open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer release()

	got, err := decode(r, query{addr: 0x100, kind: "array", elem: "u8"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"array<u8> @0x100 size=3", "  [0] 1", "  [1] 2", "  [2] 3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTarget_OpenSnapshot(t *testing.T) {
	s := memory.NewSnapshot()
	putASCII(s, 0x2000, "hi")

	path := filepath.Join(t.TempDir(), "dump.snap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.WriteTo(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	r, release, err := target{snapshot: path}.open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer release()

	got, err := decode(r, query{addr: 0x2000, kind: "string"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff([]string{"string @0x2000 length=2", `"hi"`}, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTarget_OpenMissingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, tt := range []target{
		{snapshot: filepath.Join(dir, "absent.snap")},
		{wasm: filepath.Join(dir, "absent.wasm")},
	} {
		if _, _, err := tt.open(context.Background()); err == nil {
			t.Errorf("%s: expected error", tt)
		}
	}
}
