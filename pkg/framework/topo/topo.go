// Package topo is the static, author-declared plugin topology: module groups,
// modules, sections and parameters.
//
// A topology is built once when the plugin class loads and is never mutated
// afterwards. Builders only check local constraints; cross references are
// checked by package validate after compilation.
package topo

import (
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
)

// Scope says whether a module group runs once per plugin or once per voice.
type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopeVoice
)

// String returns the scope name.
func (s Scope) String() string {
	if s == ScopeVoice {
		return "voice"
	}
	return "global"
}

// OutputKind says what a module group produces.
type OutputKind uint8

const (
	OutputAudio OutputKind = iota
	OutputControl
)

// String returns the output kind name.
func (k OutputKind) String() string {
	if k == OutputControl {
		return "control"
	}
	return "audio"
}

// Direction says whether a parameter is set by the host (input) or reports
// processing state (output).
type Direction uint8

const (
	Input Direction = iota
	Output
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Rate is how often processing code picks up parameter changes.
type Rate uint8

const (
	// RateBlock is read once per processing block.
	RateBlock Rate = iota
	// RateAccurate is read sample accurately.
	RateAccurate
)

// Flags are host-facing parameter flags.
type Flags uint32

const (
	FlagHidden Flags = 1 << iota
	FlagNoAutomation
	FlagBypass
)

// Position is a cell in a section grid.
type Position struct {
	Row int
	Col int
}

// Grid is the layout geometry of a section.
type Grid struct {
	Rows int
	Cols int
}

// Contains reports whether p lies inside the grid.
func (g Grid) Contains(p Position) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < g.Rows && p.Col < g.Cols
}

// Cells returns the number of cells.
func (g Grid) Cells() int {
	return g.Rows * g.Cols
}

// ModuleGroupTopo groups module types that share a scope and output kind.
type ModuleGroupTopo struct {
	Index  int
	ID     string
	Name   string
	Scope  Scope
	Output OutputKind
}

// SectionTopo is a GUI grouping of parameters inside a module.
type SectionTopo struct {
	Index   int
	ID      string
	Name    string
	Pos     Position
	Grid    Grid
	Visible *Binding
	Enabled *Binding
}

// ParamTopo is a single parameter definition.
type ParamTopo struct {
	Index   int
	ID      string
	Name    string
	Section int
	Pos     Position
	Slots   int
	Dir     Direction
	Rate    Rate
	Flags   Flags
	Domain  param.Domain
	Visible *Binding
	Enabled *Binding
}

// Automatable reports whether hosts may automate this parameter.
func (p *ParamTopo) Automatable() bool {
	return p.Dir == Input && p.Flags&FlagNoAutomation == 0
}

// MidiKind is the kind of MIDI message a module listens to.
type MidiKind uint8

const (
	MidiCC MidiKind = iota
	MidiPitchBend
	MidiChannelPressure
)

// MidiSource declares a MIDI input a module consumes as a modulation source.
type MidiSource struct {
	ID     string
	Name   string
	Kind   MidiKind
	Number int // controller number for MidiCC
}

// OutputSource declares a signal a module emits.
type OutputSource struct {
	ID       string
	Name     string
	Kind     OutputKind
	Channels int
}

// ModuleTopo is one module type.
type ModuleTopo struct {
	Index       int
	ID          string
	Name        string
	Group       int
	Slots       int
	Sections    []SectionTopo
	Params      []ParamTopo
	MidiSources []MidiSource
	Outputs     []OutputSource
}

// ParamIndex returns the topology index of the parameter with the given id.
func (m *ModuleTopo) ParamIndex(id string) (int, bool) {
	for i := range m.Params {
		if m.Params[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// ParamInstances returns the number of parameter instances of one slot.
func (m *ModuleTopo) ParamInstances() int {
	n := 0
	for i := range m.Params {
		n += m.Params[i].Slots
	}
	return n
}

// PluginTopo is the whole plugin topology.
type PluginTopo struct {
	Info    plugin.Info
	Groups  []ModuleGroupTopo
	Modules []ModuleTopo
}

// NewPlugin assembles a topology and assigns group and module indices in
// declaration order.
func NewPlugin(info plugin.Info, groups []ModuleGroupTopo, modules ...ModuleTopo) *PluginTopo {
	t := &PluginTopo{Info: info, Groups: groups, Modules: modules}
	for i := range t.Groups {
		t.Groups[i].Index = i
	}
	for i := range t.Modules {
		t.Modules[i].Index = i
	}
	return t
}

// ModuleIndex returns the topology index of the module with the given id.
func (t *PluginTopo) ModuleIndex(id string) (int, bool) {
	for i := range t.Modules {
		if t.Modules[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// DefaultSlots returns the declared slot count of every module.
func (t *PluginTopo) DefaultSlots() []int {
	out := make([]int, len(t.Modules))
	for i := range t.Modules {
		out[i] = t.Modules[i].Slots
	}
	return out
}
