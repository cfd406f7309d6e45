// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ioexpander is a container for I/O expander drivers.
//
// Package regmap describes registers as named bit fields and encodes them to
// and from raw buffers. Package pcal6416a is the bridge between those
// registers and an NXP PCAL6416A on an I²C bus.
package ioexpander
