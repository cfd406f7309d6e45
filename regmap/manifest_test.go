// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package regmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = `
device: sample
registers:
  - name: input_port_0
    address: 0x00
    size_bits: 8
    access: ro
    repeat: {prefix: i_0_, count: 8}
  - name: drive_0
    address: 0x40
    size_bits: 16
    repeat: {prefix: ods_0_, count: 8, width: 2}
  - name: config
    address: 0x4f
    size_bits: 8
    fields:
      - {name: oden_0, start: 0}
      - {name: mode, start: 4, width: 3}
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if m.Device != "sample" || len(m.Registers) != 3 {
		t.Fatalf("unexpected manifest %#v", m)
	}

	in := m.MustRegister("input_port_0")
	if in.Access != ReadOnly || in.Address != 0 || in.Size() != 1 {
		t.Fatalf("unexpected %#v", in)
	}
	if f, ok := in.Field("i_0_7"); !ok || f.Start != 7 || f.Width != 1 {
		t.Fatalf("i_0_7 = %#v", f)
	}

	want := &Register{
		Name:     "drive_0",
		Address:  0x40,
		SizeBits: 16,
		Fields: []Field{
			{"ods_0_0", 0, 2}, {"ods_0_1", 2, 2}, {"ods_0_2", 4, 2}, {"ods_0_3", 6, 2},
			{"ods_0_4", 8, 2}, {"ods_0_5", 10, 2}, {"ods_0_6", 12, 2}, {"ods_0_7", 14, 2},
		},
	}
	if diff := cmp.Diff(want, m.Register("drive_0")); diff != "" {
		t.Errorf("drive_0 (-want +got):\n%s", diff)
	}

	want = &Register{
		Name:     "config",
		Address:  0x4f,
		SizeBits: 8,
		Fields:   []Field{{"oden_0", 0, 1}, {"mode", 4, 3}},
	}
	if diff := cmp.Diff(want, m.Register("config")); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}

	if m.Register("missing") != nil {
		t.Error("unknown register must be nil")
	}
}

func TestParseManifest_errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  string
	}{
		{"yaml", "registers: [", "parsing manifest"},
		{"access", "registers:\n  - {name: r, address: 1, size_bits: 8, access: rx}", "unknown access"},
		{"size", "registers:\n  - {name: r, address: 1, size_bits: 4}", "size_bits"},
		{"address overflow", "registers:\n  - {name: r, address: 0x100, size_bits: 8}", "parsing manifest"},
		{"dup name", "registers:\n  - {name: r, address: 1, size_bits: 8}\n  - {name: r, address: 2, size_bits: 8}", "duplicate register"},
		{"dup address", "registers:\n  - {name: r, address: 1, size_bits: 8}\n  - {name: s, address: 1, size_bits: 8}", "share address"},
		{"repeat too wide", "registers:\n  - {name: r, address: 1, size_bits: 8, repeat: {prefix: x, count: 5, width: 2}}", "exceeds"},
		{"repeat huge count", "registers:\n  - {name: r, address: 1, size_bits: 8, repeat: {prefix: x, count: 4294967295}}", "exceeds"},
		{"repeat huge width", "registers:\n  - {name: r, address: 1, size_bits: 8, repeat: {prefix: x, count: 1, width: 18446744073709551615}}", "exceeds"},
		{"repeat on huge register", "registers:\n  - {name: r, address: 1, size_bits: 4294967288, repeat: {prefix: x, count: 4294967288}}", "exceeds"},
		{"size too big", "registers:\n  - {name: r, address: 1, size_bits: 4294967288}", "exceeds 64"},
		{"field past end", "registers:\n  - {name: r, address: 1, size_bits: 8, fields: [{name: f, start: 7, width: 2}]}", "goes past"},
		{"field start wraps", "registers:\n  - {name: r, address: 1, size_bits: 8, fields: [{name: f, start: 18446744073709551615}]}", "goes past"},
		{"field start at end", "registers:\n  - {name: r, address: 1, size_bits: 16, fields: [{name: f, start: 16}]}", "goes past"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tc.doc))
			if err == nil || !strings.Contains(err.Error(), tc.err) {
				t.Fatalf("ParseManifest() = %v; want error containing %q", err, tc.err)
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Registers) != 3 {
		t.Fatalf("got %d registers", len(m.Registers))
	}
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewManifest(t *testing.T) {
	m, err := NewManifest("hand", port, mixed)
	if err != nil {
		t.Fatal(err)
	}
	if m.MustRegister("mixed") != mixed {
		t.Fatal("MustRegister must return the registered pointer")
	}
	if _, err := NewManifest("hand", port, port); err == nil {
		t.Fatal("expected duplicate error")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	m.MustRegister("missing")
}
