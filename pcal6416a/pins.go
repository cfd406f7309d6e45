// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcal6416a

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GermanBionicSystems/ioexpander/regmap"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin extends gpio.PinIO interface with features supported by the PCAL6416A.
type Pin interface {
	gpio.PinIO
	pin.PinFunc
	// SetPolarityInverted if set to true, the input register bit reflects the
	// inverted logic state of the pin.
	SetPolarityInverted(p bool) error
	// IsPolarityInverted returns true if the value of the input pin reflects
	// inverted logic state.
	IsPolarityInverted() (bool, error)
	// SetDriveStrength sets the current drive capability of the output.
	SetDriveStrength(s DriveStrength) error
	// DriveStrength returns the current drive capability of the output.
	DriveStrength() (DriveStrength, error)
	// SetInputLatch if set to true, a change on the input is held in the input
	// register until it is read.
	SetInputLatch(l bool) error
}

type port struct {
	dev  *Dev
	num  int
	name string

	input      regmap.RO     // input at the pin
	output     registerCache // output control, or flipflop state if read
	config     registerCache // direction
	polarity   registerCache // polarity setting
	drive      registerCache // output drive strength, 2 bits per pin
	latch      registerCache // input latch
	pullEnable registerCache // pull resistor enable
	pullSelect registerCache // pull-up when set, pull-down otherwise
}

func newPort(d *Dev, num int) *port {
	return &port{
		dev:        d,
		num:        num,
		name:       d.name + "_P" + strconv.Itoa(num),
		input:      d.InputPort(num),
		output:     newRegisterCache(&d.mu, d.OutputPort(num)),
		config:     newRegisterCache(&d.mu, d.Configuration(num)),
		polarity:   newRegisterCache(&d.mu, d.PolarityInversion(num)),
		drive:      newRegisterCache(&d.mu, d.OutputDriveStrength(num)),
		latch:      newRegisterCache(&d.mu, d.InputLatch(num)),
		pullEnable: newRegisterCache(&d.mu, d.PullEnable(num)),
		pullSelect: newRegisterCache(&d.mu, d.PullSelection(num)),
	}
}

func (p *port) pins() []Pin {
	result := make([]Pin, 8)
	for i := range result {
		result[i] = &portpin{port: p, pinbit: i}
	}
	return result
}

func (p *port) field(prefix string, bit int) string {
	return FieldName(prefix, p.num, bit)
}

// Tx takes bytes to either read or write. Only half duplex is supported so it
// is an error to pass 2 buffers at once. The bytes are written to the output
// register or read from the input register sequentially.
func (p *port) Tx(w, r []byte) error {
	send := len(w)
	get := len(r)
	switch {
	case send > 0 && get > 0:
		return errors.New("pcal6416a: only conn.Half duplex is supported")
	case send > 0:
		for i := 0; i < send; i++ {
			if err := p.output.store(w[i], false); err != nil {
				return err
			}
		}
	case get > 0:
		for i := 0; i < get; i++ {
			v, err := p.input.Read()
			if err != nil {
				return err
			}
			r[i] = v.Bytes()[0]
		}
	}
	return nil
}

// Duplex returns that this is a half duplex connection.
func (p *port) Duplex() conn.Duplex {
	return conn.Half
}

// String provides the name of this connection.
func (p *port) String() string {
	return p.name
}

// SetOpenDrain selects open-drain (true) or push-pull (false) outputs for all
// the pins of port.
func (d *Dev) SetOpenDrain(port int, od bool) error {
	if port < 0 || port >= NumPorts {
		return fmt.Errorf("pcal6416a: invalid port %d", port)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.OutputPortConfig().Modify(func(v *regmap.Value) {
		v.SetBool("oden_"+strconv.Itoa(port), od)
	})
}

type portpin struct {
	port   *port
	pinbit int
}

func (p *portpin) String() string {
	return p.Name()
}

func (p *portpin) Halt() error {
	// To halt all drive, set to high-impedance input
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *portpin) Name() string {
	return p.port.name + "_" + strconv.Itoa(p.pinbit)
}

func (p *portpin) Number() int {
	return p.pinbit
}

func (p *portpin) Function() string {
	return string(p.Func())
}

func (p *portpin) In(pull gpio.Pull, edge gpio.Edge) error {
	// Interrupt servicing is left to the caller, through the INT line.
	if edge != gpio.NoEdge {
		return errors.New("pcal6416a: edge detection not supported")
	}

	switch pull {
	case gpio.PullDown, gpio.PullUp:
		// Select first so that enabling never briefly applies the wrong pull.
		if err := p.port.pullSelect.setBool(p.port.field(PullSelectionField, p.pinbit), pull == gpio.PullUp, true); err != nil {
			return err
		}
		if err := p.port.pullEnable.setBool(p.port.field(PullEnableField, p.pinbit), true, true); err != nil {
			return err
		}
	case gpio.Float:
		if err := p.port.pullEnable.setBool(p.port.field(PullEnableField, p.pinbit), false, true); err != nil {
			return err
		}
	case gpio.PullNoChange:
	}

	// Set pin to input
	return p.port.config.setBool(p.port.field(ConfigField, p.pinbit), true, true)
}

func (p *portpin) Read() gpio.Level {
	v, err := p.port.input.Read()
	if err != nil {
		return gpio.Low
	}
	return gpio.Level(v.Bit(p.pinbit))
}

func (p *portpin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *portpin) Pull() gpio.Pull {
	enabled, err := p.port.pullEnable.bool(p.port.field(PullEnableField, p.pinbit), true)
	if err != nil {
		return gpio.PullNoChange
	}
	if !enabled {
		return gpio.Float
	}
	up, err := p.port.pullSelect.bool(p.port.field(PullSelectionField, p.pinbit), true)
	if err != nil {
		return gpio.PullNoChange
	}
	if up {
		return gpio.PullUp
	}
	return gpio.PullDown
}

func (p *portpin) DefaultPull() gpio.Pull {
	return gpio.Float
}

func (p *portpin) Out(l gpio.Level) error {
	if err := p.port.config.setBool(p.port.field(ConfigField, p.pinbit), false, true); err != nil {
		return err
	}
	return p.port.output.setBool(p.port.field(OutputField, p.pinbit), bool(l), true)
}

func (p *portpin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("pcal6416a: PWM is not supported")
}

func (p *portpin) Func() pin.Func {
	in, err := p.port.config.bool(p.port.field(ConfigField, p.pinbit), true)
	if err != nil {
		return pin.FuncNone
	}
	if in {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *portpin) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *portpin) SetFunc(f pin.Func) error {
	var v bool
	switch f {
	case gpio.IN:
		v = true
	case gpio.OUT:
		v = false
	default:
		return errors.New("pcal6416a: Function not supported: " + string(f))
	}
	return p.port.config.setBool(p.port.field(ConfigField, p.pinbit), v, true)
}

func (p *portpin) SetPolarityInverted(pol bool) error {
	return p.port.polarity.setBool(p.port.field(PolarityInversionField, p.pinbit), pol, true)
}

func (p *portpin) IsPolarityInverted() (bool, error) {
	return p.port.polarity.bool(p.port.field(PolarityInversionField, p.pinbit), true)
}

func (p *portpin) SetDriveStrength(s DriveStrength) error {
	if s > Drive100 {
		return fmt.Errorf("pcal6416a: invalid drive strength %s", s)
	}
	return p.port.drive.setField(p.port.field(DriveStrengthField, p.pinbit), uint64(s), true)
}

func (p *portpin) DriveStrength() (DriveStrength, error) {
	x, err := p.port.drive.field(p.port.field(DriveStrengthField, p.pinbit), true)
	return DriveStrength(x), err
}

func (p *portpin) SetInputLatch(l bool) error {
	return p.port.latch.setBool(p.port.field(InputLatchField, p.pinbit), l, true)
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}
