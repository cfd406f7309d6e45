// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcal6416a

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/GermanBionicSystems/ioexpander/regmap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

type pinGroup struct {
	port        *port
	pins        []*portpin
	defaultMask gpio.GPIOValue
}

// Group returns a gpio.Group made of the given pin numbers of port. Bit 0 of
// the group values maps to pins[0], bit 1 to pins[1] and so on.
func (d *Dev) Group(port int, pins []int) (gpio.Group, error) {
	if port < 0 || port >= NumPorts {
		return nil, fmt.Errorf("pcal6416a: invalid port %d", port)
	}
	if len(pins) == 0 {
		return nil, errors.New("pcal6416a: empty group")
	}
	var seen uint8
	grouppins := make([]*portpin, len(pins))
	for ix, number := range pins {
		if number < 0 || number > 7 {
			return nil, fmt.Errorf("pcal6416a: invalid pin %d", number)
		}
		if seen&(1<<number) != 0 {
			return nil, fmt.Errorf("pcal6416a: pin %d listed twice", number)
		}
		seen |= 1 << number
		grouppins[ix] = d.Pins[port][number].(*portpin)
	}
	return &pinGroup{
		port:        d.ports[port],
		pins:        grouppins,
		defaultMask: gpio.GPIOValue(1<<len(pins)) - 1,
	}, nil
}

func (pg *pinGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(pg.pins))
	for ix, p := range pg.pins {
		pins[ix] = p
	}
	return pins
}

func (pg *pinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(pg.pins) {
		return nil
	}
	return pg.pins[offset]
}

func (pg *pinGroup) ByName(name string) pin.Pin {
	for _, p := range pg.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func (pg *pinGroup) ByNumber(number int) pin.Pin {
	for _, p := range pg.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

func (pg *pinGroup) mask(m gpio.GPIOValue) gpio.GPIOValue {
	if m == 0 {
		return pg.defaultMask
	}
	return m & pg.defaultMask
}

// Out drives the pins selected by mask to value. Pins that are not outputs
// yet are switched to output first. A zero mask selects the whole group.
func (pg *pinGroup) Out(value, mask gpio.GPIOValue) error {
	mask = pg.mask(mask)
	err := pg.port.config.modify(func(v *regmap.Value) {
		for ix, p := range pg.pins {
			if mask&(1<<ix) != 0 {
				v.SetBool(pg.port.field(ConfigField, p.pinbit), false)
			}
		}
	}, true)
	if err != nil {
		return err
	}
	return pg.port.output.modify(func(v *regmap.Value) {
		for ix, p := range pg.pins {
			if mask&(1<<ix) != 0 {
				v.SetBool(pg.port.field(OutputField, p.pinbit), value&(1<<ix) != 0)
			}
		}
	}, true)
}

// Read returns the level of the pins selected by mask. Pins that are not
// inputs yet are switched to input first. A zero mask selects the whole group.
func (pg *pinGroup) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	mask = pg.mask(mask)
	err := pg.port.config.modify(func(v *regmap.Value) {
		for ix, p := range pg.pins {
			if mask&(1<<ix) != 0 {
				v.SetBool(pg.port.field(ConfigField, p.pinbit), true)
			}
		}
	}, true)
	if err != nil {
		return 0, err
	}
	in, err := pg.port.input.Read()
	if err != nil {
		return 0, err
	}
	var result gpio.GPIOValue
	for ix, p := range pg.pins {
		if in.Bit(p.pinbit) {
			result |= 1 << ix
		}
	}
	return result & mask, nil
}

// WaitForEdge is not implemented; interrupts are reported on the INT line.
func (pg *pinGroup) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

func (pg *pinGroup) Halt() error {
	return nil
}

// String returns the port name and the pin numbers of the group.
func (pg *pinGroup) String() string {
	nums := make([]string, len(pg.pins))
	for ix, p := range pg.pins {
		nums[ix] = strconv.Itoa(p.pinbit)
	}
	return pg.port.name + " - [ " + strings.Join(nums, " ") + " ]"
}

var _ gpio.Group = &pinGroup{}
