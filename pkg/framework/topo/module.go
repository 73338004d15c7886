package topo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
)

// ErrEmptyModuleID is returned for a module declared without an id.
var ErrEmptyModuleID = errors.New("topo: empty module id")

// NewGroup declares a module group.
func NewGroup(id, name string, scope Scope, output OutputKind) ModuleGroupTopo {
	return ModuleGroupTopo{ID: id, Name: name, Scope: scope, Output: output}
}

// NewSection declares a section with a rows x cols layout grid.
func NewSection(id, name string, rows, cols int) SectionTopo {
	return SectionTopo{ID: id, Name: name, Grid: Grid{Rows: rows, Cols: cols}}
}

// At places the section in the module's section layout.
func (s SectionTopo) At(row, col int) SectionTopo {
	s.Pos = Position{Row: row, Col: col}
	return s
}

// VisibleWhen binds the section's visibility.
func (s SectionTopo) VisibleWhen(b *Binding) SectionTopo {
	s.Visible = b
	return s
}

// EnabledWhen binds the section's enabled state.
func (s SectionTopo) EnabledWhen(b *Binding) SectionTopo {
	s.Enabled = b
	return s
}

// ModuleBuilder declares a module type.
type ModuleBuilder struct {
	m ModuleTopo
}

// NewModule starts a module declaration with the given number of slots.
func NewModule(id, name string, slots int) *ModuleBuilder {
	return &ModuleBuilder{m: ModuleTopo{ID: id, Name: name, Slots: slots}}
}

// Group assigns the module to a module group by index.
func (b *ModuleBuilder) Group(index int) *ModuleBuilder {
	b.m.Group = index
	return b
}

// Sections appends sections; their indices follow declaration order.
func (b *ModuleBuilder) Sections(sections ...SectionTopo) *ModuleBuilder {
	b.m.Sections = append(b.m.Sections, sections...)
	return b
}

// Params appends parameters; their topology indices follow declaration order.
func (b *ModuleBuilder) Params(params ...ParamTopo) *ModuleBuilder {
	b.m.Params = append(b.m.Params, params...)
	return b
}

// Midi appends MIDI source declarations.
func (b *ModuleBuilder) Midi(sources ...MidiSource) *ModuleBuilder {
	b.m.MidiSources = append(b.m.MidiSources, sources...)
	return b
}

// Outputs appends output source declarations.
func (b *ModuleBuilder) Outputs(outputs ...OutputSource) *ModuleBuilder {
	b.m.Outputs = append(b.m.Outputs, outputs...)
	return b
}

// BuildErr returns the module or the local constraint it violates.
func (b *ModuleBuilder) BuildErr() (ModuleTopo, error) {
	m := b.m
	if strings.TrimSpace(m.ID) == "" {
		return ModuleTopo{}, fmt.Errorf("%w (name %q)", ErrEmptyModuleID, m.Name)
	}
	if m.Slots <= 0 {
		return ModuleTopo{}, fmt.Errorf("%w: module %s has %d", ErrBadSlots, m.ID, m.Slots)
	}
	m.Sections = append([]SectionTopo(nil), m.Sections...)
	for i := range m.Sections {
		m.Sections[i].Index = i
	}
	m.Params = append([]ParamTopo(nil), m.Params...)
	for i := range m.Params {
		m.Params[i].Index = i
	}
	return m, nil
}

// Build returns the module and aborts on author errors.
func (b *ModuleBuilder) Build() ModuleTopo {
	m, err := b.BuildErr()
	if err != nil {
		debug.Fatal("topo: %v", err)
	}
	return m
}
