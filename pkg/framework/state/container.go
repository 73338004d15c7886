// Package state holds per-instance parameter values, their binary
// serialization and a change bus for observers.
package state

import (
	"sync/atomic"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/param"
)

// Container stores one plain value per global parameter index.
//
// Every value lives in its own atomic word: reads and writes of a single
// parameter never block or allocate and are safe between one writer and any
// number of readers. Nothing spans parameters; a reader may observe two
// parameters written at different times.
type Container struct {
	desc   *desc.PluginDesc
	values []atomic.Uint64
}

// New creates a container with every parameter at its declared default.
func New(d *desc.PluginDesc) *Container {
	c := &Container{desc: d, values: make([]atomic.Uint64, d.ParamCount)}
	c.Reset()
	return c
}

// Desc returns the descriptor the container is addressed by.
func (c *Container) Desc() *desc.PluginDesc {
	return c.desc
}

// Len returns the number of parameter values.
func (c *Container) Len() int {
	return len(c.values)
}

func (c *Container) domain(index int) *param.Domain {
	return &c.desc.Params[index].Param.Domain
}

// Plain returns the value at a global parameter index.
func (c *Container) Plain(index int) param.PlainValue {
	return param.FromBits(c.domain(index).Type.Kind(), c.values[index].Load())
}

// SetPlain stores v at a global parameter index, clamped into the
// parameter's domain, and returns the stored value.
func (c *Container) SetPlain(index int, v param.PlainValue) param.PlainValue {
	v = c.domain(index).Clamp(v)
	c.values[index].Store(v.Bits())
	return v
}

// Normalized returns the value at a global parameter index in [0, 1].
func (c *Container) Normalized(index int) float64 {
	return c.domain(index).Normalize(c.Plain(index))
}

// SetNormalized stores a normalized value and returns the plain value stored.
func (c *Container) SetNormalized(index int, n float64) param.PlainValue {
	v := c.domain(index).Denormalize(n)
	c.values[index].Store(v.Bits())
	return v
}

// At reads a value by (module topology index, module slot, param topology
// index, param slot).
func (c *Container) At(module, mslot, p, pslot int) param.PlainValue {
	return c.Plain(c.mustIndex(module, mslot, p, pslot))
}

// SetAt writes a value by topology address.
func (c *Container) SetAt(module, mslot, p, pslot int, v param.PlainValue) param.PlainValue {
	return c.SetPlain(c.mustIndex(module, mslot, p, pslot), v)
}

func (c *Container) mustIndex(module, mslot, p, pslot int) int {
	i, ok := c.desc.ParamIndex(module, mslot, p, pslot)
	debug.Assert(ok, "state: no parameter at module %d/%d param %d/%d", module, mslot, p, pslot)
	return i
}

// Default returns the declared default of a global parameter index.
func (c *Container) Default(index int) param.PlainValue {
	return c.domain(index).DefaultValue()
}

// Reset restores every parameter to its default.
func (c *Container) Reset() {
	for i := range c.values {
		c.values[i].Store(c.Default(i).Bits())
	}
}

// ResetParam restores one parameter to its default.
func (c *Container) ResetParam(index int) param.PlainValue {
	v := c.Default(index)
	c.values[index].Store(v.Bits())
	return v
}

// ResetModule restores every parameter of a module instance, addressed by
// global module index, and returns the global indices touched.
func (c *Container) ResetModule(module int) []int {
	md := &c.desc.Modules[module]
	touched := make([]int, 0, len(md.Params))
	for i := range md.Params {
		g := md.Params[i].Global
		c.ResetParam(g)
		touched = append(touched, g)
	}
	return touched
}

// CopyModule copies the values of one module instance onto another instance
// of the same module type and returns the global indices written.
func (c *Container) CopyModule(src, dst int) []int {
	s, d := &c.desc.Modules[src], &c.desc.Modules[dst]
	debug.Assert(s.Topo == d.Topo, "state: copy between module types %s and %s", s.ID, d.ID)
	touched := make([]int, 0, len(d.Params))
	for i := range s.Params {
		g := d.Params[i].Global
		c.values[g].Store(c.values[s.Params[i].Global].Load())
		touched = append(touched, g)
	}
	return touched
}

// SwapModules exchanges the values of two instances of the same module type
// and returns the global indices written.
func (c *Container) SwapModules(a, b int) []int {
	ma, mb := &c.desc.Modules[a], &c.desc.Modules[b]
	debug.Assert(ma.Topo == mb.Topo, "state: swap between module types %s and %s", ma.ID, mb.ID)
	touched := make([]int, 0, 2*len(ma.Params))
	for i := range ma.Params {
		ga, gb := ma.Params[i].Global, mb.Params[i].Global
		va := c.values[ga].Load()
		c.values[ga].Store(c.values[gb].Load())
		c.values[gb].Store(va)
		touched = append(touched, ga, gb)
	}
	return touched
}

// Clone returns an independent copy addressed by the same descriptor.
func (c *Container) Clone() *Container {
	out := &Container{desc: c.desc, values: make([]atomic.Uint64, len(c.values))}
	out.CopyFrom(c)
	return out
}

// CopyFrom overwrites every value with those of o, which must share the
// descriptor layout.
func (c *Container) CopyFrom(o *Container) {
	debug.Assert(len(o.values) == len(c.values), "state: copy from %d values into %d", len(o.values), len(c.values))
	for i := range c.values {
		c.values[i].Store(o.values[i].Load())
	}
}

// Snapshot returns every value in global index order.
func (c *Container) Snapshot() []param.PlainValue {
	out := make([]param.PlainValue, len(c.values))
	for i := range out {
		out[i] = c.Plain(i)
	}
	return out
}

// Getter returns a lookup of the first slot of each parameter in a module
// instance by topology index, the shape binding evaluation expects.
func (c *Container) Getter(module int) func(index int) param.PlainValue {
	md := &c.desc.Modules[module]
	return func(index int) param.PlainValue {
		return c.Plain(md.ParamStart + c.desc.LocalIndex(md.Topo, index))
	}
}
