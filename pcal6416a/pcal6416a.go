// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcal6416a provides a driver for the NXP PCAL6416A 16-bit I²C IO
// expander.
//
// The chip exposes two 8 pin ports. On top of the TCA6416 compatible
// registers (input, output, polarity inversion, configuration) it adds the
// "Agile I/O" registers: output drive strength, input latch, pull-up/down
// resistors, interrupt mask and status, and open-drain output.
//
// Every register is available through a typed accessor built from the
// register manifest, see Dev.OutputPort and friends. Both gpio.PinIO and
// conn.Conn interfaces are supported as well.
//
// # Addressing
//
// The ADDR pin selects between 0x20 (Low) and 0x21 (High). Use New with the
// matching AddrPin. Parts or boards wired to a single address use NewFixed.
//
// # Datasheet
//
// https://www.nxp.com/docs/en/data-sheet/PCAL6416A.pdf
package pcal6416a

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
)

const (
	// AddrLow is the I²C address with the ADDR pin tied to ground.
	AddrLow uint16 = 0x20
	// AddrHigh is the I²C address with the ADDR pin tied to VDD.
	AddrHigh uint16 = 0x21
	// DefaultAddress is the address used by NewFixed.
	DefaultAddress = AddrLow

	// LargestRegisterSize is the width in bytes of the widest register.
	LargestRegisterSize = 2
)

// AddrPin is the level of the ADDR pin, which selects the I²C address.
type AddrPin uint8

const (
	Low AddrPin = iota
	High
)

// Address returns the I²C address selected by the pin level.
func (a AddrPin) Address() uint16 {
	if a == High {
		return AddrHigh
	}
	return AddrLow
}

func (a AddrPin) String() string {
	if a == High {
		return "High"
	}
	return "Low"
}

// addresser resolves the target address of a transfer.
type addresser interface {
	Address() uint16
}

type fixedAddr uint16

func (f fixedAddr) Address() uint16 {
	return uint16(f)
}

// ContextBus is an i2c.Bus whose transfers can be abandoned through a
// context.
//
// When the bus given to New implements it, the *Context methods of Dev use
// TxContext. Otherwise they check the context before the transfer and then
// block like their plain counterparts.
type ContextBus interface {
	i2c.Bus
	TxContext(ctx context.Context, addr uint16, w, r []byte) error
}

// BusError is returned when the I²C bus fails a register transfer. Err is the
// bus error, unmodified.
type BusError struct {
	Err error
}

func (e *BusError) Error() string {
	return "pcal6416a: i2c: " + e.Err.Error()
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Dev is a handle to a PCAL6416A.
//
// The handle owns the bus for register transfers: a register read is a
// single write-then-read transfer, and nothing else may touch the device's
// register pointer in between. Callers sharing a Dev between goroutines must
// serialize register accesses; the gpio layer serializes its own.
type Dev struct {
	Pins  [][]Pin     // Pins is a double array structured as: [port][pin].
	Conns []conn.Conn // Conns uses the same [port] array structure.

	bus        i2c.Bus
	addr       addresser
	name       string
	mu         sync.Mutex
	ports      []*port
	registered []string // pin names registered in gpioreg by this handle
}

// New returns a handle to a PCAL6416A whose ADDR pin is at level pin.
func New(bus i2c.Bus, pin AddrPin) (*Dev, error) {
	return newDev(bus, pin)
}

// NewFixed returns a handle to a PCAL6416A answering at DefaultAddress.
func NewFixed(bus i2c.Bus) (*Dev, error) {
	return newDev(bus, fixedAddr(DefaultAddress))
}

func newDev(bus i2c.Bus, addr addresser) (*Dev, error) {
	if bus == nil {
		return nil, errors.New("pcal6416a: bus is nil")
	}
	d := &Dev{
		bus:  bus,
		addr: addr,
		name: "PCAL6416A_" + strconv.FormatInt(int64(addr.Address()), 16),
	}
	for i := 0; i < NumPorts; i++ {
		p := newPort(d, i)
		d.ports = append(d.ports, p)
		pins := p.pins()
		for _, pin := range pins {
			// A handle with the same name may own the registration already.
			if gpioreg.Register(pin) == nil {
				d.registered = append(d.registered, pin.Name())
			}
		}
		d.Pins = append(d.Pins, pins)
		d.Conns = append(d.Conns, p)
	}
	return d, nil
}

// Addr returns the I²C address targeted by the handle.
func (d *Dev) Addr() uint16 {
	return d.addr.Address()
}

func (d *Dev) String() string {
	return d.name
}

// Halt turns every pin into a floating input.
func (d *Dev) Halt() error {
	for _, port := range d.Pins {
		for _, pin := range port {
			if err := pin.Halt(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close removes the pin registrations made by this handle. The bus is left
// open.
func (d *Dev) Close() error {
	for len(d.registered) > 0 {
		if err := gpioreg.Unregister(d.registered[0]); err != nil {
			return err
		}
		d.registered = d.registered[1:]
	}
	return nil
}

// WriteRegister writes data to the register at addr in a single transfer of
// exactly 1+len(data) bytes.
//
// The device auto-increments its register pointer, so any extra byte would
// land in the next register. data longer than LargestRegisterSize means the
// caller's register description is wrong and WriteRegister panics.
func (d *Dev) WriteRegister(addr uint8, sizeBits uint32, data []byte) error {
	return d.tx(d.writeFrame(addr, data))
}

// ReadRegister fills data from the register at addr with one combined
// write-then-read transfer.
func (d *Dev) ReadRegister(addr uint8, sizeBits uint32, data []byte) error {
	return d.tx(d.readFrame(addr, data))
}

// WriteRegisterContext is the context aware form of WriteRegister. The frame
// sent is identical.
func (d *Dev) WriteRegisterContext(ctx context.Context, addr uint8, sizeBits uint32, data []byte) error {
	return d.txContext(ctx, d.writeFrame(addr, data))
}

// ReadRegisterContext is the context aware form of ReadRegister. The frame
// sent is identical.
func (d *Dev) ReadRegisterContext(ctx context.Context, addr uint8, sizeBits uint32, data []byte) error {
	return d.txContext(ctx, d.readFrame(addr, data))
}

// frame is one I²C transfer: w is written to target, then len(r) bytes are
// read back without releasing the bus.
type frame struct {
	target uint16
	w      []byte
	r      []byte
}

func (d *Dev) writeFrame(reg uint8, data []byte) frame {
	if len(data) > LargestRegisterSize {
		panic(fmt.Sprintf("pcal6416a: register size too big: %d bytes written to 0x%02x", len(data), reg))
	}
	w := make([]byte, 1+len(data))
	w[0] = reg
	copy(w[1:], data)
	return frame{target: d.addr.Address(), w: w}
}

func (d *Dev) readFrame(reg uint8, data []byte) frame {
	return frame{target: d.addr.Address(), w: []byte{reg}, r: data}
}

func (d *Dev) tx(f frame) error {
	c := i2c.Dev{Bus: d.bus, Addr: f.target}
	if err := c.Tx(f.w, f.r); err != nil {
		return &BusError{Err: err}
	}
	return nil
}

func (d *Dev) txContext(ctx context.Context, f frame) error {
	var err error
	if b, ok := d.bus.(ContextBus); ok {
		err = b.TxContext(ctx, f.target, f.w, f.r)
	} else if err = ctx.Err(); err == nil {
		err = d.bus.Tx(f.target, f.w, f.r)
	}
	if err != nil {
		return &BusError{Err: err}
	}
	return nil
}
