// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcal6416a

import (
	_ "embed"
	"fmt"
	"strconv"

	"github.com/GermanBionicSystems/ioexpander/regmap"
)

// NumPorts is the number of 8 pin ports of the chip.
const NumPorts = 2

//go:embed pcal6416a.yaml
var manifestYAML []byte

// Manifest is the register map of the PCAL6416A.
//
// Port registers are named <kind>_<port>, e.g. output_port_1, and their
// fields <prefix>_<port>_<pin>, e.g. o_1_7. Field n of a port register is bit
// n, so regmap.Value.Bit can be used instead of field names.
var Manifest = mustParseManifest()

func mustParseManifest() *regmap.Manifest {
	m, err := regmap.ParseManifest(manifestYAML)
	if err != nil {
		panic(err)
	}
	return m
}

// Prefixes of the per pin fields of the port registers.
const (
	InputField             = "i"
	OutputField            = "o"
	PolarityInversionField = "pi"
	ConfigField            = "c"
	DriveStrengthField     = "ods"
	InputLatchField        = "l"
	PullEnableField        = "pe"
	PullSelectionField     = "ps"
	InterruptMaskField     = "im"
	InterruptStatusField   = "is"
)

// FieldName returns the name of the field for pin of port in a port register
// whose fields start with prefix.
func FieldName(prefix string, port, pin int) string {
	return prefix + "_" + strconv.Itoa(port) + "_" + strconv.Itoa(pin)
}

// DriveStrength is the current drive capability of an output, relative to
// the full strength.
type DriveStrength uint8

const (
	Drive025 DriveStrength = iota // 0.25x
	Drive050                      // 0.5x
	Drive075                      // 0.75x
	Drive100                      // 1x, the power-on default
)

func (d DriveStrength) String() string {
	switch d {
	case Drive025:
		return "0.25x"
	case Drive050:
		return "0.5x"
	case Drive075:
		return "0.75x"
	case Drive100:
		return "1x"
	default:
		return "DriveStrength(" + strconv.Itoa(int(d)) + ")"
	}
}

// Register returns a read-write accessor for the register called name.
//
// It panics if the register doesn't exist or is read-only.
func (d *Dev) Register(name string) regmap.RW {
	return regmap.NewRW(d, Manifest.MustRegister(name))
}

// InputPort returns the input port register of port, reflecting the level of
// its pins.
func (d *Dev) InputPort(port int) regmap.RO {
	return regmap.NewRO(d, portRegister("input_port", port))
}

// OutputPort returns the output port register of port.
func (d *Dev) OutputPort(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("output_port", port))
}

// PolarityInversion returns the polarity inversion register of port. A set
// bit inverts the corresponding input port bit.
func (d *Dev) PolarityInversion(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("polarity_inversion", port))
}

// Configuration returns the configuration register of port. A set bit makes
// the pin an input.
func (d *Dev) Configuration(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("config_port", port))
}

// OutputDriveStrength returns the 16 bit output drive strength register of
// port, holding one DriveStrength per pin.
func (d *Dev) OutputDriveStrength(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("output_drive_strength", port))
}

// InputLatch returns the input latch register of port.
func (d *Dev) InputLatch(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("input_latch", port))
}

// PullEnable returns the pull-up/pull-down enable register of port.
func (d *Dev) PullEnable(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("pull_enable", port))
}

// PullSelection returns the pull-up/pull-down selection register of port. A
// set bit selects the pull-up.
func (d *Dev) PullSelection(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("pull_selection", port))
}

// InterruptMask returns the interrupt mask register of port.
func (d *Dev) InterruptMask(port int) regmap.RW {
	return regmap.NewRW(d, portRegister("interrupt_mask", port))
}

// InterruptStatus returns the interrupt status register of port.
func (d *Dev) InterruptStatus(port int) regmap.RO {
	return regmap.NewRO(d, portRegister("interrupt_status", port))
}

// OutputPortConfig returns the output port configuration register, whose
// oden_<port> fields select open-drain outputs.
func (d *Dev) OutputPortConfig() regmap.RW {
	return regmap.NewRW(d, Manifest.MustRegister("output_port_config"))
}

func portRegister(kind string, port int) *regmap.Register {
	if port < 0 || port >= NumPorts {
		panic(fmt.Sprintf("pcal6416a: invalid port %d", port))
	}
	return Manifest.MustRegister(kind + "_" + strconv.Itoa(port))
}

var _ regmap.Bridge = &Dev{}
