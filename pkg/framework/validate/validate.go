// Package validate checks a compiled PluginDesc against its topology.
//
// Every violation is a plugin-author defect: nothing an end user does can
// fix it. Validate reports them; MustValidate aborts.
package validate

import (
	"fmt"
	"strings"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

// Check names one structural rule.
type Check string

const (
	CheckModuleIndex   Check = "module-index"
	CheckParamIndex    Check = "param-index"
	CheckBinding       Check = "binding"
	CheckSection       Check = "section"
	CheckLayout        Check = "layout"
	CheckUniqueID      Check = "unique-id"
	CheckIDSyntax      Check = "id-syntax"
	CheckHostTag       Check = "host-tag"
	CheckGroup         Check = "group"
	CheckTopologyIndex Check = "topology-index"
)

// Violation is one failed check.
type Violation struct {
	Check   Check
	Module  string
	Item    string
	Message string
}

func (v Violation) String() string {
	loc := v.Module
	if v.Item != "" {
		loc += "/" + v.Item
	}
	return fmt.Sprintf("[%s] %s: %s", v.Check, loc, v.Message)
}

// Error aggregates violations.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("invalid topology (%d violations):\n  %s", len(e.Violations), strings.Join(lines, "\n  "))
}

type validator struct {
	out []Violation
}

func (v *validator) add(check Check, module, item, format string, args ...interface{}) {
	v.out = append(v.out, Violation{Check: check, Module: module, Item: item, Message: fmt.Sprintf(format, args...)})
}

// Validate runs every check and returns all violations found.
func Validate(t *topo.PluginTopo, d *desc.PluginDesc) []Violation {
	v := &validator{}
	v.topology(t)
	v.addressing(d)
	v.identifiers(t, d)
	for mi := range t.Modules {
		m := &t.Modules[mi]
		v.sections(m)
		v.bindings(m)
		v.layout(m)
	}
	return v.out
}

// CheckAll runs Validate and returns the violations as an *Error, or nil.
func CheckAll(t *topo.PluginTopo, d *desc.PluginDesc) error {
	if vs := Validate(t, d); len(vs) > 0 {
		return &Error{Violations: vs}
	}
	return nil
}

// MustValidate aborts through debug.Fatal when any check fails.
func MustValidate(t *topo.PluginTopo, d *desc.PluginDesc) {
	if err := CheckAll(t, d); err != nil {
		debug.Fatal("%v", err)
	}
}

func (v *validator) topology(t *topo.PluginTopo) {
	for gi, g := range t.Groups {
		if g.Index != gi {
			v.add(CheckTopologyIndex, g.ID, "", "group index %d at position %d", g.Index, gi)
		}
	}
	for mi := range t.Modules {
		m := &t.Modules[mi]
		if m.Index != mi {
			v.add(CheckTopologyIndex, m.ID, "", "module index %d at position %d", m.Index, mi)
		}
		if len(t.Groups) > 0 && (m.Group < 0 || m.Group >= len(t.Groups)) {
			v.add(CheckGroup, m.ID, "", "group %d does not exist", m.Group)
		}
		for pi := range m.Params {
			if m.Params[pi].Index != pi {
				v.add(CheckTopologyIndex, m.ID, m.Params[pi].ID, "param index %d at position %d", m.Params[pi].Index, pi)
			}
		}
		for si := range m.Sections {
			if m.Sections[si].Index != si {
				v.add(CheckTopologyIndex, m.ID, m.Sections[si].ID, "section index %d at position %d", m.Sections[si].Index, si)
			}
		}
	}
}

func (v *validator) addressing(d *desc.PluginDesc) {
	if d.ModuleCount != len(d.Modules) {
		v.add(CheckModuleIndex, "", "", "module count %d, %d descriptors", d.ModuleCount, len(d.Modules))
	}
	if d.ParamCount != len(d.Params) {
		v.add(CheckParamIndex, "", "", "param count %d, %d descriptors", d.ParamCount, len(d.Params))
	}
	for i := range d.Modules {
		m := &d.Modules[i]
		if m.Global != i {
			v.add(CheckModuleIndex, m.ID, "", "global index %d at position %d", m.Global, i)
		}
		for j := range m.Params {
			p := &m.Params[j]
			if p.Local != j {
				v.add(CheckParamIndex, m.ID, p.ID, "local index %d at position %d", p.Local, j)
			}
			if p.ModuleGlobal != m.Global {
				v.add(CheckParamIndex, m.ID, p.ID, "belongs to module %d", p.ModuleGlobal)
			}
		}
	}
	for i := range d.Params {
		p := &d.Params[i]
		if p.Global != i {
			v.add(CheckParamIndex, p.Module.ID, p.ID, "global index %d at position %d", p.Global, i)
		}
	}
}

// identifiers checks the ids that instance ids are joined from, then the
// instance ids and host tags themselves. desc.IDSeparator may not appear in
// module or param ids, otherwise "a" + "0-b" and "a-0" + "b" both expand
// to a-0-0-b-0.
func (v *validator) identifiers(t *topo.PluginTopo, d *desc.PluginDesc) {
	before := len(v.out)
	modules := map[string]bool{}
	for mi := range t.Modules {
		m := &t.Modules[mi]
		if modules[m.ID] {
			v.add(CheckUniqueID, m.ID, "", "duplicate module id")
		}
		modules[m.ID] = true
		if strings.Contains(m.ID, desc.IDSeparator) {
			v.add(CheckIDSyntax, m.ID, "", "module id contains %q", desc.IDSeparator)
		}
		params := map[string]bool{}
		for pi := range m.Params {
			id := m.Params[pi].ID
			if params[id] {
				v.add(CheckUniqueID, m.ID, id, "duplicate param id")
			}
			params[id] = true
			if strings.Contains(id, desc.IDSeparator) {
				v.add(CheckIDSyntax, m.ID, id, "param id contains %q", desc.IDSeparator)
			}
		}
	}
	// Instance collisions always follow from the violations above; only
	// report them on their own.
	if len(v.out) == before {
		ids := make(map[string]int, len(d.Params))
		for i := range d.Params {
			p := &d.Params[i]
			if other, ok := ids[p.ID]; ok {
				v.add(CheckUniqueID, p.Module.ID, p.ID, "instance id shared by params %d and %d", other, i)
				continue
			}
			ids[p.ID] = i
		}
	}
	tags := make(map[uint32]string, len(d.Params))
	for i := range d.Params {
		p := &d.Params[i]
		if other, ok := tags[p.Tag]; ok && other != p.ID {
			v.add(CheckHostTag, p.Module.ID, p.ID, "host tag %d collides with %s", p.Tag, other)
		}
		tags[p.Tag] = p.ID
	}
}

func (v *validator) sections(m *topo.ModuleTopo) {
	for pi := range m.Params {
		p := &m.Params[pi]
		if p.Section < 0 || p.Section >= len(m.Sections) {
			v.add(CheckSection, m.ID, p.ID, "section %d does not exist (%d sections)", p.Section, len(m.Sections))
		}
	}
}

func (v *validator) bindings(m *topo.ModuleTopo) {
	check := func(item, what string, b *topo.Binding, self int) {
		if b == nil {
			return
		}
		if len(b.Selectors) == 0 {
			v.add(CheckBinding, m.ID, item, "%s binding has no selectors", what)
		}
		for _, s := range b.Selectors {
			if s.Param < 0 || s.Param >= len(m.Params) {
				v.add(CheckBinding, m.ID, item, "%s binding selects missing param %d", what, s.Param)
				continue
			}
			if s.Param == self {
				v.add(CheckBinding, m.ID, item, "%s binding selects itself", what)
			}
			if len(s.Values) == 0 {
				v.add(CheckBinding, m.ID, item, "%s binding on %s has no values", what, m.Params[s.Param].ID)
			}
		}
	}
	for si := range m.Sections {
		s := &m.Sections[si]
		check(s.ID, "visible", s.Visible, -1)
		check(s.ID, "enabled", s.Enabled, -1)
	}
	for pi := range m.Params {
		p := &m.Params[pi]
		check(p.ID, "visible", p.Visible, pi)
		check(p.ID, "enabled", p.Enabled, pi)
	}
}

// layout checks that each section grid holds its parameters. Parameters with
// a visibility binding may share a cell with others, so only unconditionally
// visible parameters claim a cell exclusively.
func (v *validator) layout(m *topo.ModuleTopo) {
	for si := range m.Sections {
		s := &m.Sections[si]
		if s.Grid.Rows <= 0 || s.Grid.Cols <= 0 {
			v.add(CheckLayout, m.ID, s.ID, "empty grid %dx%d", s.Grid.Rows, s.Grid.Cols)
			continue
		}
		claimed := map[topo.Position]string{}
		for pi := range m.Params {
			p := &m.Params[pi]
			if p.Section != si {
				continue
			}
			if !s.Grid.Contains(p.Pos) {
				v.add(CheckLayout, m.ID, p.ID, "position %d,%d outside %dx%d grid of section %s",
					p.Pos.Row, p.Pos.Col, s.Grid.Rows, s.Grid.Cols, s.ID)
				continue
			}
			if p.Visible != nil || p.Flags&topo.FlagHidden != 0 {
				continue
			}
			if other, ok := claimed[p.Pos]; ok {
				v.add(CheckLayout, m.ID, p.ID, "shares cell %d,%d with %s", p.Pos.Row, p.Pos.Col, other)
			}
			claimed[p.Pos] = p.ID
		}
	}
}
