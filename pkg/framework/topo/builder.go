package topo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/param"
)

// Builder provides a fluent API for declaring parameters.
type Builder struct {
	p ParamTopo
}

func newBuilder(id, name string, d param.Domain) *Builder {
	return &Builder{p: ParamTopo{ID: id, Name: name, Slots: 1, Domain: d}}
}

// Toggle declares an on/off parameter.
func Toggle(id, name string, def bool) *Builder {
	d := param.Domain{Type: param.TypeToggle}
	if def {
		d.Default = 1
	}
	return newBuilder(id, name, d)
}

// Stepped declares an integer parameter in [min, max].
func Stepped(id, name string, min, max, def int) *Builder {
	return newBuilder(id, name, param.Domain{
		Type:    param.TypeStep,
		Min:     float64(min),
		Max:     float64(max),
		Default: float64(def),
	})
}

// List declares a parameter selecting one of items; def is an item index.
func List(id, name string, items []param.Item, def int) *Builder {
	return newBuilder(id, name, param.Domain{
		Type:    param.TypeList,
		Items:   items,
		Default: float64(def),
	})
}

// Linear declares a continuous parameter in [min, max].
func Linear(id, name string, min, max, def float64) *Builder {
	return newBuilder(id, name, param.Domain{
		Type:      param.TypeReal,
		Min:       min,
		Max:       max,
		Default:   def,
		Precision: 2,
	})
}

// Percent declares a continuous 0-100% parameter.
func Percent(id, name string, def float64) *Builder {
	return Linear(id, name, 0, 100, def).Unit("%").Precision(0)
}

// Section assigns the parameter to a section of its module.
func (b *Builder) Section(index int) *Builder {
	b.p.Section = index
	return b
}

// At sets the grid cell inside the section.
func (b *Builder) At(row, col int) *Builder {
	b.p.Pos = Position{Row: row, Col: col}
	return b
}

// Slots declares that the parameter has n parallel instances per module slot.
func (b *Builder) Slots(n int) *Builder {
	b.p.Slots = n
	return b
}

// Output marks the parameter as reporting state to the host.
func (b *Builder) Output() *Builder {
	b.p.Dir = Output
	return b
}

// Accurate requests sample accurate updates.
func (b *Builder) Accurate() *Builder {
	b.p.Rate = RateAccurate
	return b
}

// Unit sets the display unit.
func (b *Builder) Unit(unit string) *Builder {
	b.p.Domain.Unit = unit
	return b
}

// Precision sets the number of displayed decimals.
func (b *Builder) Precision(n int) *Builder {
	b.p.Domain.Precision = n
	return b
}

// Formatter sets custom value formatting and parsing.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.p.Domain.Format = format
	b.p.Domain.Parse = parse
	return b
}

// Hidden hides the parameter from host parameter lists.
func (b *Builder) Hidden() *Builder {
	b.p.Flags |= FlagHidden
	return b
}

// NoAutomation removes the parameter from host automation.
func (b *Builder) NoAutomation() *Builder {
	b.p.Flags |= FlagNoAutomation
	return b
}

// Bypass marks this as the plugin bypass parameter.
func (b *Builder) Bypass() *Builder {
	b.p.Flags |= FlagBypass
	return b
}

// VisibleWhen binds visibility to other parameters of the module.
func (b *Builder) VisibleWhen(binding *Binding) *Builder {
	b.p.Visible = binding
	return b
}

// EnabledWhen binds the enabled state to other parameters of the module.
func (b *Builder) EnabledWhen(binding *Binding) *Builder {
	b.p.Enabled = binding
	return b
}

// Errors reported by BuildErr.
var (
	ErrEmptyParamID = errors.New("topo: empty parameter id")
	ErrBadSlots     = errors.New("topo: slot count must be positive")
)

// BuildErr returns the parameter or the local constraint it violates.
func (b *Builder) BuildErr() (ParamTopo, error) {
	p := b.p
	if strings.TrimSpace(p.ID) == "" {
		return ParamTopo{}, fmt.Errorf("%w (name %q)", ErrEmptyParamID, p.Name)
	}
	if p.Slots <= 0 {
		return ParamTopo{}, fmt.Errorf("%w: parameter %s has %d", ErrBadSlots, p.ID, p.Slots)
	}
	if err := p.Domain.Validate(); err != nil {
		return ParamTopo{}, fmt.Errorf("parameter %s: %w", p.ID, err)
	}
	return p, nil
}

// Build returns the configured parameter and aborts on author errors.
func (b *Builder) Build() ParamTopo {
	p, err := b.BuildErr()
	if err != nil {
		debug.Fatal("topo: %v", err)
	}
	return p
}
