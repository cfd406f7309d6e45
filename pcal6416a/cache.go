// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcal6416a

import (
	"sync"

	"github.com/GermanBionicSystems/ioexpander/regmap"
)

// registerCache keeps the last value read from or written to a register so
// that pin operations only touch the bus when something changes.
type registerCache struct {
	mu    *sync.Mutex
	reg   regmap.RW
	got   bool
	cache regmap.Value
}

func newRegisterCache(mu *sync.Mutex, reg regmap.RW) registerCache {
	return registerCache{mu: mu, reg: reg}
}

func (r *registerCache) readValue(cached bool) (regmap.Value, error) {
	if cached && r.got {
		return r.cache.Clone(), nil
	}
	v, err := r.reg.Read()
	if err != nil {
		return regmap.Value{}, err
	}
	r.got = true
	r.cache = v
	return v.Clone(), nil
}

func (r *registerCache) writeValue(v regmap.Value, cached bool) error {
	if cached && r.got && v.Equal(r.cache) {
		return nil
	}
	if err := r.reg.WriteValue(v); err != nil {
		return err
	}
	r.got = true
	r.cache = v.Clone()
	return nil
}

// modify applies fn with a read-modify-write cycle.
func (r *registerCache) modify(fn func(v *regmap.Value), cached bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.readValue(cached)
	if err != nil {
		return err
	}
	fn(&v)
	return r.writeValue(v, cached)
}

func (r *registerCache) setField(name string, x uint64, cached bool) error {
	return r.modify(func(v *regmap.Value) { v.SetField(name, x) }, cached)
}

func (r *registerCache) setBool(name string, b bool, cached bool) error {
	var x uint64
	if b {
		x = 1
	}
	return r.setField(name, x, cached)
}

func (r *registerCache) field(name string, cached bool) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, err := r.readValue(cached)
	if err != nil {
		return 0, err
	}
	return v.Field(name), nil
}

func (r *registerCache) bool(name string, cached bool) (bool, error) {
	x, err := r.field(name, cached)
	return x != 0, err
}

// store writes a raw port byte.
func (r *registerCache) store(b byte, cached bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeValue(r.reg.Register().Decode([]byte{b}), cached)
}
