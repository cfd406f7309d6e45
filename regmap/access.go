// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package regmap

import (
	"context"
	"fmt"
)

// Interface moves raw register buffers to and from a device, blocking the
// caller until the transfer completes.
//
// sizeBits is the declared width of the register. The authoritative length
// is len(data).
type Interface interface {
	ReadRegister(addr uint8, sizeBits uint32, data []byte) error
	WriteRegister(addr uint8, sizeBits uint32, data []byte) error
}

// ContextInterface is the context aware counterpart of Interface.
//
// Implementations must frame transfers exactly like their Interface methods.
type ContextInterface interface {
	ReadRegisterContext(ctx context.Context, addr uint8, sizeBits uint32, data []byte) error
	WriteRegisterContext(ctx context.Context, addr uint8, sizeBits uint32, data []byte) error
}

// Bridge is a device reachable through both calling conventions.
type Bridge interface {
	Interface
	ContextInterface
}

// RO reads a register through a Bridge.
type RO struct {
	b   Bridge
	reg *Register
}

// NewRO returns a read accessor for reg.
func NewRO(b Bridge, reg *Register) RO {
	if !reg.Access.Readable() {
		panic(fmt.Sprintf("regmap: register %s is %s", reg.Name, reg.Access))
	}
	return RO{b: b, reg: reg}
}

// Register returns the register accessed.
func (a RO) Register() *Register {
	return a.reg
}

// Read reads the register and decodes it.
func (a RO) Read() (Value, error) {
	buf := make([]byte, a.reg.Size())
	if err := a.b.ReadRegister(a.reg.Address, a.reg.SizeBits, buf); err != nil {
		return Value{}, err
	}
	return Value{reg: a.reg, buf: buf}, nil
}

// ReadContext is like Read, honoring ctx at the bus transfer.
func (a RO) ReadContext(ctx context.Context) (Value, error) {
	buf := make([]byte, a.reg.Size())
	if err := a.b.ReadRegisterContext(ctx, a.reg.Address, a.reg.SizeBits, buf); err != nil {
		return Value{}, err
	}
	return Value{reg: a.reg, buf: buf}, nil
}

// RW reads and writes a register through a Bridge.
type RW struct {
	RO
}

// NewRW returns a read-write accessor for reg.
func NewRW(b Bridge, reg *Register) RW {
	if reg.Access != ReadWrite {
		panic(fmt.Sprintf("regmap: register %s is %s", reg.Name, reg.Access))
	}
	return RW{RO{b: b, reg: reg}}
}

// Write encodes the fields set by fn over an all zero register and writes
// the result.
func (a RW) Write(fn func(v *Value)) error {
	return a.write(a.reg.Mutate(nil, fn))
}

// WriteContext is like Write, honoring ctx at the bus transfer.
func (a RW) WriteContext(ctx context.Context, fn func(v *Value)) error {
	return a.writeContext(ctx, a.reg.Mutate(nil, fn))
}

// WriteValue writes v as is.
func (a RW) WriteValue(v Value) error {
	return a.write(a.check(v))
}

// WriteValueContext is like WriteValue, honoring ctx at the bus transfer.
func (a RW) WriteValueContext(ctx context.Context, v Value) error {
	return a.writeContext(ctx, a.check(v))
}

// Modify reads the register, applies fn and writes it back.
//
// The two transfers are not atomic; callers sharing the device must
// serialize.
func (a RW) Modify(fn func(v *Value)) error {
	v, err := a.Read()
	if err != nil {
		return err
	}
	return a.write(a.reg.Mutate(v.buf, fn))
}

// ModifyContext is like Modify, honoring ctx at both bus transfers.
func (a RW) ModifyContext(ctx context.Context, fn func(v *Value)) error {
	v, err := a.ReadContext(ctx)
	if err != nil {
		return err
	}
	return a.writeContext(ctx, a.reg.Mutate(v.buf, fn))
}

func (a RW) write(buf []byte) error {
	return a.b.WriteRegister(a.reg.Address, a.reg.SizeBits, buf)
}

func (a RW) writeContext(ctx context.Context, buf []byte) error {
	return a.b.WriteRegisterContext(ctx, a.reg.Address, a.reg.SizeBits, buf)
}

func (a RW) check(v Value) []byte {
	if v.reg != a.reg {
		panic(fmt.Sprintf("regmap: value %s written to register %s", v, a.reg.Name))
	}
	return v.buf
}
