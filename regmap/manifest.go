// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package regmap

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Manifest is the register map of a device.
type Manifest struct {
	Device    string
	Registers []*Register
}

// NewManifest validates registers and returns them as a Manifest.
func NewManifest(device string, registers ...*Register) (*Manifest, error) {
	m := &Manifest{Device: device, Registers: registers}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Register returns the register called name, or nil.
func (m *Manifest) Register(name string) *Register {
	for _, r := range m.Registers {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// MustRegister is like Register but panics when name is unknown.
func (m *Manifest) MustRegister(name string) *Register {
	r := m.Register(name)
	if r == nil {
		panic(fmt.Sprintf("regmap: %s has no register %q", m.Device, name))
	}
	return r
}

// Validate verifies every register and that names and addresses are unique.
func (m *Manifest) Validate() error {
	names := map[string]struct{}{}
	addrs := map[uint8]string{}
	for _, r := range m.Registers {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := names[r.Name]; ok {
			return fmt.Errorf("regmap: %s: duplicate register %s", m.Device, r.Name)
		}
		names[r.Name] = struct{}{}
		if other, ok := addrs[r.Address]; ok {
			return fmt.Errorf("regmap: %s: registers %s and %s share address 0x%02x", m.Device, other, r.Name, r.Address)
		}
		addrs[r.Address] = r.Name
	}
	return nil
}

// rawManifest is the YAML form of a Manifest.
type rawManifest struct {
	Device    string        `yaml:"device"`
	Registers []rawRegister `yaml:"registers"`
}

type rawRegister struct {
	Name     string     `yaml:"name"`
	Address  uint8      `yaml:"address"`
	SizeBits uint32     `yaml:"size_bits"`
	Access   string     `yaml:"access"`
	Fields   []rawField `yaml:"fields"`
	Repeat   *rawRepeat `yaml:"repeat"`
}

type rawField struct {
	Name  string `yaml:"name"`
	Start uint   `yaml:"start"`
	Width uint   `yaml:"width"`
}

// rawRepeat declares Count fields of Width bits named Prefix0, Prefix1, ...
// starting at bit 0.
type rawRepeat struct {
	Prefix string `yaml:"prefix"`
	Count  uint   `yaml:"count"`
	Width  uint   `yaml:"width"`
}

// ParseManifest parses a register manifest from YAML bytes:
//
//	device: PCAL6416A
//	registers:
//	  - name: output_port_0
//	    address: 0x02
//	    size_bits: 8
//	    repeat: {prefix: o_0_, count: 8}
//	  - name: output_port_config
//	    address: 0x4f
//	    size_bits: 8
//	    fields:
//	      - {name: oden_0, start: 0}
//	      - {name: oden_1, start: 1}
//
// access is one of rw (default), ro or wo. A field's width defaults to 1.
func ParseManifest(data []byte) (*Manifest, error) {
	var raw rawManifest
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("regmap: parsing manifest: %w", err)
	}
	m := &Manifest{Device: raw.Device}
	for _, rr := range raw.Registers {
		r, err := rr.register()
		if err != nil {
			return nil, err
		}
		m.Registers = append(m.Registers, r)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadManifest loads and parses a register manifest from a file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regmap: reading %s: %w", path, err)
	}
	return ParseManifest(data)
}

func (rr *rawRegister) register() (*Register, error) {
	r := &Register{Name: rr.Name, Address: rr.Address, SizeBits: rr.SizeBits}
	switch rr.Access {
	case "", "rw":
		r.Access = ReadWrite
	case "ro":
		r.Access = ReadOnly
	case "wo":
		r.Access = WriteOnly
	default:
		return nil, fmt.Errorf("regmap: register %s: unknown access %q", rr.Name, rr.Access)
	}
	if rr.Repeat != nil {
		w := rr.Repeat.Width
		if w == 0 {
			w = 1
		}
		size := min(uint(rr.SizeBits), MaxSizeBits)
		if w > size || rr.Repeat.Count > size/w {
			return nil, fmt.Errorf("regmap: register %s: repeat of %d fields of %d bits exceeds %d bits", rr.Name, rr.Repeat.Count, w, rr.SizeBits)
		}
		for i := uint(0); i < rr.Repeat.Count; i++ {
			r.Fields = append(r.Fields, Field{Name: rr.Repeat.Prefix + strconv.Itoa(int(i)), Start: i * w, Width: w})
		}
	}
	for _, f := range rr.Fields {
		if f.Width == 0 {
			f.Width = 1
		}
		r.Fields = append(r.Fields, Field{Name: f.Name, Start: f.Start, Width: f.Width})
	}
	return r, nil
}
