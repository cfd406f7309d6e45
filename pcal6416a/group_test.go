// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcal6416a

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestGroup_readWrite(t *testing.T) {
	const address uint16 = 0x20
	scenario := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// pins 0..2 become outputs
			{Addr: address, W: []byte{0x06}, R: []byte{0xFF}},
			{Addr: address, W: []byte{0x06, 0xF8}},
			{Addr: address, W: []byte{0x02}, R: []byte{0x00}},
			{Addr: address, W: []byte{0x02, 0x05}},
			// masked write of pin 1 only, direction unchanged
			{Addr: address, W: []byte{0x02, 0x07}},
			// pins 0..2 become inputs again
			{Addr: address, W: []byte{0x06, 0xFF}},
			{Addr: address, W: []byte{0x00}, R: []byte{0b00000110}},
		},
		DontPanic: true,
	}
	dev := newTestDev(t, scenario, Low)
	g, err := dev.Group(0, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Out(0b101, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.Out(0b010, 0b010); err != nil {
		t.Fatal(err)
	}
	got, err := g.Read(0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0b110 {
		t.Fatalf("Read() = %#b", got)
	}
	checkDone(t, scenario)
}

func TestGroup_pinOrder(t *testing.T) {
	const address uint16 = 0x21
	scenario := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: address, W: []byte{0x07}, R: []byte{0xFF}},
			{Addr: address, W: []byte{0x01}, R: []byte{0b10000000}},
		},
		DontPanic: true,
	}
	dev := newTestDev(t, scenario, High)
	g, err := dev.Group(1, []int{7, 3})
	if err != nil {
		t.Fatal(err)
	}
	got, err := g.Read(0b01)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0b01 {
		t.Fatalf("Read() = %#b", got)
	}
	checkDone(t, scenario)
}

func TestGroup_lookup(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev := newTestDev(t, bus, Low)
	g, err := dev.Group(1, []int{4, 6})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Pins()) != 2 {
		t.Fatalf("Pins() = %v", g.Pins())
	}
	if p := g.ByOffset(1); p == nil || p.Number() != 6 {
		t.Fatalf("ByOffset(1) = %v", p)
	}
	if p := g.ByOffset(2); p != nil {
		t.Fatalf("ByOffset(2) = %v", p)
	}
	if p := g.ByName("PCAL6416A_20_P1_4"); p == nil || p.Number() != 4 {
		t.Fatalf("ByName() = %v", p)
	}
	if p := g.ByNumber(5); p != nil {
		t.Fatalf("ByNumber(5) = %v", p)
	}
	if s := g.String(); s != "PCAL6416A_20_P1 - [ 4 6 ]" {
		t.Fatalf("String() = %q", s)
	}
	if _, _, err := g.WaitForEdge(time.Millisecond); !errors.Is(err, gpio.ErrGroupFeatureNotImplemented) {
		t.Fatalf("WaitForEdge() = %v", err)
	}
	if err := g.Halt(); err != nil {
		t.Fatal(err)
	}
	checkDone(t, bus)
}

func TestGroup_invalid(t *testing.T) {
	dev := newTestDev(t, &i2ctest.Playback{DontPanic: true}, Low)
	for _, tc := range []struct {
		port int
		pins []int
	}{
		{2, []int{0}},
		{-1, []int{0}},
		{0, nil},
		{0, []int{8}},
		{0, []int{1, 1}},
	} {
		if _, err := dev.Group(tc.port, tc.pins); err == nil {
			t.Fatalf("Group(%d, %v) expected error", tc.port, tc.pins)
		}
	}
}
