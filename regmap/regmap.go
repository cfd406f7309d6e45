// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package regmap maps the raw byte buffers of device registers onto named bit
// fields and back.
//
// A Register describes one addressed location of a device: its address, its
// width in bits and its fields. A Value is a decoded view of one buffer read
// from or destined to that register.
//
// # Bit order
//
// Bit n of a register lives in byte n/8 of its buffer, at position n%8 of
// that byte. Byte 0 is the first byte on the wire, which for auto-incrementing
// devices is the lowest register address. A field covering bits 6 and 7 of an
// 8 bit register is thus {Start: 6, Width: 2}.
//
// Decoding then encoding a buffer without touching any field returns the
// buffer unchanged.
package regmap

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Access is the access mode of a register.
type Access uint8

const (
	ReadWrite Access = iota
	ReadOnly
	WriteOnly
)

func (a Access) String() string {
	switch a {
	case ReadWrite:
		return "rw"
	case ReadOnly:
		return "ro"
	case WriteOnly:
		return "wo"
	default:
		return "Access(" + strconv.Itoa(int(a)) + ")"
	}
}

// Readable reports whether the register can be read from the device.
func (a Access) Readable() bool {
	return a != WriteOnly
}

// Writable reports whether the register can be written to the device.
func (a Access) Writable() bool {
	return a != ReadOnly
}

// MaxSizeBits is the widest register supported.
const MaxSizeBits = 64

// Field is a named group of contiguous bits inside a register.
type Field struct {
	Name  string
	Start uint // Least significant bit of the field.
	Width uint // Number of bits, 1 for a boolean field.
}

func (f *Field) mask() uint64 {
	if f.Width >= 64 {
		return ^uint64(0)
	}
	return 1<<f.Width - 1
}

// Register describes one register of a device.
type Register struct {
	Name     string
	Address  uint8
	SizeBits uint32 // Declared width; only informational for the bus.
	Access   Access
	Fields   []Field
}

// Size returns the width of the register in bytes.
func (r *Register) Size() int {
	return int(r.SizeBits+7) / 8
}

// Field returns the field called name.
func (r *Register) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate verifies that the register is self consistent: its width is a
// whole number of bytes and its fields are named uniquely, fit in the
// register and don't overlap.
func (r *Register) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("regmap: register at 0x%02x has no name", r.Address)
	}
	if r.SizeBits == 0 || r.SizeBits%8 != 0 {
		return fmt.Errorf("regmap: register %s: size_bits %d is not a positive multiple of 8", r.Name, r.SizeBits)
	}
	if r.SizeBits > MaxSizeBits {
		return fmt.Errorf("regmap: register %s: size_bits %d exceeds %d", r.Name, r.SizeBits, MaxSizeBits)
	}
	if r.Access > WriteOnly {
		return fmt.Errorf("regmap: register %s: invalid %s", r.Name, r.Access)
	}
	used := make([]string, r.SizeBits)
	names := map[string]struct{}{}
	for _, f := range r.Fields {
		if f.Name == "" {
			return fmt.Errorf("regmap: register %s: field at bit %d has no name", r.Name, f.Start)
		}
		if _, ok := names[f.Name]; ok {
			return fmt.Errorf("regmap: register %s: duplicate field %s", r.Name, f.Name)
		}
		names[f.Name] = struct{}{}
		if f.Width == 0 || f.Width > 64 {
			return fmt.Errorf("regmap: register %s: field %s has invalid width %d", r.Name, f.Name, f.Width)
		}
		if f.Start >= uint(r.SizeBits) || f.Width > uint(r.SizeBits)-f.Start {
			return fmt.Errorf("regmap: register %s: field %s at bit %d width %d goes past the register's %d bits", r.Name, f.Name, f.Start, f.Width, r.SizeBits)
		}
		for b := f.Start; b < f.Start+f.Width; b++ {
			if used[b] != "" {
				return fmt.Errorf("regmap: register %s: field %s overlaps %s at bit %d", r.Name, f.Name, used[b], b)
			}
			used[b] = f.Name
		}
	}
	return nil
}

// Decode returns a view over a copy of buf.
//
// It panics if buf isn't exactly as wide as the register, as this means the
// caller and the register description disagree.
func (r *Register) Decode(buf []byte) Value {
	r.checkLen(buf)
	return Value{reg: r, buf: bytes.Clone(buf)}
}

// Mutate applies fn to a view of base and returns the encoded result.
//
// A nil base starts from an all zero register. base itself is not modified.
func (r *Register) Mutate(base []byte, fn func(v *Value)) []byte {
	var v Value
	if base == nil {
		v = Value{reg: r, buf: make([]byte, r.Size())}
	} else {
		v = r.Decode(base)
	}
	if fn != nil {
		fn(&v)
	}
	return v.buf
}

func (r *Register) checkLen(buf []byte) {
	if len(buf) != r.Size() {
		panic(fmt.Sprintf("regmap: register %s is %d bytes wide, got %d", r.Name, r.Size(), len(buf)))
	}
}

func (r *Register) mustField(name string) Field {
	f, ok := r.Field(name)
	if !ok {
		panic(fmt.Sprintf("regmap: register %s has no field %q", r.Name, name))
	}
	return f
}

// Value is a decoded register buffer.
//
// The zero value is not usable; get one from Register.Decode, Register.Mutate
// or a RO/RW accessor.
type Value struct {
	reg *Register
	buf []byte
}

// Register returns the register this value belongs to.
func (v Value) Register() *Register {
	return v.reg
}

// Bytes returns a copy of the encoded buffer.
func (v Value) Bytes() []byte {
	return bytes.Clone(v.buf)
}

// Clone returns a value that doesn't share its buffer with v.
func (v Value) Clone() Value {
	return Value{reg: v.reg, buf: bytes.Clone(v.buf)}
}

// Equal reports whether both values encode to the same bytes of the same
// register.
func (v Value) Equal(o Value) bool {
	return v.reg == o.reg && bytes.Equal(v.buf, o.buf)
}

// Bit returns bit n of the register.
func (v Value) Bit(n int) bool {
	return v.buf[n/8]&(1<<(n%8)) != 0
}

// SetBit sets bit n of the register.
func (v *Value) SetBit(n int, b bool) {
	if b {
		v.buf[n/8] |= 1 << (n % 8)
	} else {
		v.buf[n/8] &^= 1 << (n % 8)
	}
}

// Field returns the value of the named field.
func (v Value) Field(name string) uint64 {
	f := v.reg.mustField(name)
	var x uint64
	for i := uint(0); i < f.Width; i++ {
		if v.Bit(int(f.Start + i)) {
			x |= 1 << i
		}
	}
	return x
}

// SetField stores x in the named field.
//
// It panics if x doesn't fit in the field.
func (v *Value) SetField(name string, x uint64) {
	f := v.reg.mustField(name)
	if x&^f.mask() != 0 {
		panic(fmt.Sprintf("regmap: value %d overflows %d bit field %s.%s", x, f.Width, v.reg.Name, name))
	}
	for i := uint(0); i < f.Width; i++ {
		v.SetBit(int(f.Start+i), x&(1<<i) != 0)
	}
}

// Bool returns true if any bit of the named field is set.
func (v Value) Bool(name string) bool {
	return v.Field(name) != 0
}

// SetBool sets the named field to 1 or 0.
func (v *Value) SetBool(name string, b bool) {
	var x uint64
	if b {
		x = 1
	}
	v.SetField(name, x)
}

func (v Value) String() string {
	if v.reg == nil {
		return "regmap.Value{}"
	}
	var sb strings.Builder
	sb.WriteString(v.reg.Name)
	sb.WriteByte('{')
	// Highest bit first, matching datasheet tables.
	fields := slices.Clone(v.reg.Fields)
	slices.SortFunc(fields, func(a, b Field) int { return int(b.Start) - int(a.Start) })
	for i, f := range fields {
		if i != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Name)
		sb.WriteByte(':')
		if f.Width == 1 {
			sb.WriteString(strconv.FormatBool(v.Bool(f.Name)))
		} else {
			sb.WriteString(strconv.FormatUint(v.Field(f.Name), 10))
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
