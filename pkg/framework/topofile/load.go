// Package topofile declares plugin topologies in HCL.
//
//	plugin "com.example.synth" {
//	  name    = "Synth"
//	  vendor  = "Example"
//	  version = "1.0.0"
//
//	  group "voice" { scope = "voice" }
//
//	  module "osc" {
//	    group = "voice"
//	    slots = 2
//	    section "main" {
//	      rows = 1
//	      cols = 3
//	    }
//	    param "on" {
//	      type    = "toggle"
//	      default = true
//	    }
//	    param "wave" {
//	      type    = "list"
//	      at      = [0, 1]
//	      default = "saw"
//	      item "sine" {}
//	      item "saw" {}
//	      visible_when {
//	        param  = "on"
//	        values = [true]
//	      }
//	    }
//	  }
//	}
//
// Sections and bindings refer to parameters by id; the loader resolves them
// to topology indices. Structural checks that need the compiled descriptor
// are left to package validate.
package topofile

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

// Load reads and decodes a topology file.
func Load(path string) (*topo.PluginTopo, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topofile: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes a topology from HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*topo.PluginTopo, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse topology %s: %w", filename, diags)
	}
	var out file
	if diags := gohcl.DecodeBody(f.Body, nil, &out); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode topology %s: %w", filename, diags)
	}
	t, err := build(&out.Plugin)
	if err != nil {
		return nil, fmt.Errorf("topology %s: %w", filename, err)
	}
	debug.Debug("topofile: loaded %s from %s (%d modules)", t.Info.ID, filename, len(t.Modules))
	return t, nil
}

func build(pb *pluginBlock) (*topo.PluginTopo, error) {
	info := plugin.Info{ID: pb.ID, Name: pb.Name, Vendor: pb.Vendor, Category: pb.Category}
	if err := info.ValidateUID(); err != nil {
		return nil, err
	}
	if pb.Version != "" {
		v, err := plugin.ParseVersion(pb.Version)
		if err != nil {
			return nil, err
		}
		info.Version = v
	}

	groups := make([]topo.ModuleGroupTopo, 0, len(pb.Groups))
	groupIndex := map[string]int{}
	for _, gb := range pb.Groups {
		scope, err := parseScope(gb.Scope)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", gb.ID, err)
		}
		output, err := parseOutputKind(gb.Output)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", gb.ID, err)
		}
		if _, dup := groupIndex[gb.ID]; dup {
			return nil, fmt.Errorf("duplicate group %s", gb.ID)
		}
		groupIndex[gb.ID] = len(groups)
		groups = append(groups, topo.NewGroup(gb.ID, nameOr(gb.Name, gb.ID), scope, output))
	}

	modules := make([]topo.ModuleTopo, 0, len(pb.Modules))
	for _, mb := range pb.Modules {
		m, err := buildModule(mb, groupIndex)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", mb.ID, err)
		}
		modules = append(modules, m)
	}
	return topo.NewPlugin(info, groups, modules...), nil
}

func buildModule(mb *moduleBlock, groups map[string]int) (topo.ModuleTopo, error) {
	slots := 1
	if mb.Slots != nil {
		slots = *mb.Slots
	}
	b := topo.NewModule(mb.ID, nameOr(mb.Name, mb.ID), slots)
	if mb.Group != "" {
		g, ok := groups[mb.Group]
		if !ok {
			return topo.ModuleTopo{}, fmt.Errorf("unknown group %s", mb.Group)
		}
		b.Group(g)
	}

	sectionIndex := map[string]int{}
	for i, sb := range mb.Sections {
		sectionIndex[sb.ID] = i
	}
	// Bindings name parameters by id, so every id must be known first.
	paramIndex := map[string]int{}
	paramDomain := make([]param.Domain, len(mb.Params))
	for i, pb := range mb.Params {
		paramIndex[pb.ID] = i
	}

	params := make([]topo.ParamTopo, 0, len(mb.Params))
	for i, pb := range mb.Params {
		p, err := buildParam(pb, sectionIndex)
		if err != nil {
			return topo.ModuleTopo{}, err
		}
		paramDomain[i] = p.Domain
		params = append(params, p)
	}

	r := resolver{index: paramIndex, domains: paramDomain}
	for i, pb := range mb.Params {
		var err error
		if params[i].Visible, err = r.binding(pb.Visible); err != nil {
			return topo.ModuleTopo{}, fmt.Errorf("param %s visible_when: %w", pb.ID, err)
		}
		if params[i].Enabled, err = r.binding(pb.Enabled); err != nil {
			return topo.ModuleTopo{}, fmt.Errorf("param %s enabled_when: %w", pb.ID, err)
		}
	}

	sections := make([]topo.SectionTopo, 0, len(mb.Sections))
	for _, sb := range mb.Sections {
		s := topo.NewSection(sb.ID, nameOr(sb.Name, sb.ID), sb.Rows, sb.Cols)
		if len(sb.At) > 0 {
			row, col, err := cell(sb.At)
			if err != nil {
				return topo.ModuleTopo{}, fmt.Errorf("section %s: %w", sb.ID, err)
			}
			s = s.At(row, col)
		}
		visible, err := r.binding(sb.Visible)
		if err != nil {
			return topo.ModuleTopo{}, fmt.Errorf("section %s visible_when: %w", sb.ID, err)
		}
		enabled, err := r.binding(sb.Enabled)
		if err != nil {
			return topo.ModuleTopo{}, fmt.Errorf("section %s enabled_when: %w", sb.ID, err)
		}
		sections = append(sections, s.VisibleWhen(visible).EnabledWhen(enabled))
	}

	for _, md := range mb.Midi {
		kind, err := parseMidiKind(md.Kind)
		if err != nil {
			return topo.ModuleTopo{}, fmt.Errorf("midi %s: %w", md.ID, err)
		}
		b.Midi(topo.MidiSource{ID: md.ID, Name: nameOr(md.Name, md.ID), Kind: kind, Number: md.Number})
	}
	for _, ob := range mb.Outputs {
		kind, err := parseOutputKind(ob.Kind)
		if err != nil {
			return topo.ModuleTopo{}, fmt.Errorf("output %s: %w", ob.ID, err)
		}
		channels := ob.Channels
		if channels == 0 && kind == topo.OutputAudio {
			channels = 2
		}
		b.Outputs(topo.OutputSource{ID: ob.ID, Name: nameOr(ob.Name, ob.ID), Kind: kind, Channels: channels})
	}

	return b.Sections(sections...).Params(params...).BuildErr()
}

func buildParam(pb *paramBlock, sections map[string]int) (topo.ParamTopo, error) {
	b, err := paramBuilder(pb)
	if err != nil {
		return topo.ParamTopo{}, fmt.Errorf("param %s: %w", pb.ID, err)
	}
	if pb.Section != "" {
		s, ok := sections[pb.Section]
		if !ok {
			return topo.ParamTopo{}, fmt.Errorf("param %s: unknown section %s", pb.ID, pb.Section)
		}
		b.Section(s)
	}
	if len(pb.At) > 0 {
		row, col, err := cell(pb.At)
		if err != nil {
			return topo.ParamTopo{}, fmt.Errorf("param %s: %w", pb.ID, err)
		}
		b.At(row, col)
	}
	if pb.Slots != nil {
		b.Slots(*pb.Slots)
	}
	if pb.Unit != "" {
		b.Unit(pb.Unit)
	}
	if pb.Precision != nil {
		b.Precision(*pb.Precision)
	}
	if pb.Format != "" {
		format, parse, ok := formatter(pb.Format)
		if !ok {
			return topo.ParamTopo{}, fmt.Errorf("param %s: unknown format %q", pb.ID, pb.Format)
		}
		b.Formatter(format, parse)
	}
	switch strings.ToLower(pb.Direction) {
	case "", "input":
	case "output":
		b.Output()
	default:
		return topo.ParamTopo{}, fmt.Errorf("param %s: unknown direction %q", pb.ID, pb.Direction)
	}
	switch strings.ToLower(pb.Rate) {
	case "", "block":
	case "accurate":
		b.Accurate()
	default:
		return topo.ParamTopo{}, fmt.Errorf("param %s: unknown rate %q", pb.ID, pb.Rate)
	}
	if pb.Hidden {
		b.Hidden()
	}
	if pb.Automate != nil && !*pb.Automate {
		b.NoAutomation()
	}
	if pb.Bypass {
		b.Bypass()
	}
	return b.BuildErr()
}

func paramBuilder(pb *paramBlock) (*topo.Builder, error) {
	name := nameOr(pb.Name, pb.ID)
	kind := strings.ToLower(pb.Type)
	switch kind {
	case "toggle":
		def, err := boolDefault(pb.Default)
		if err != nil {
			return nil, err
		}
		return topo.Toggle(pb.ID, name, def), nil
	case "step":
		if pb.Min == nil || pb.Max == nil {
			return nil, fmt.Errorf("step needs min and max")
		}
		def := *pb.Min
		if pb.Default != nil {
			f, err := number(*pb.Default)
			if err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			def = f
		}
		return topo.Stepped(pb.ID, name, int(*pb.Min), int(*pb.Max), int(def)), nil
	case "list":
		items := make([]param.Item, 0, len(pb.Items))
		for _, it := range pb.Items {
			items = append(items, param.Item{ID: it.ID, Name: nameOr(it.Name, titleCase(it.ID))})
		}
		def := 0
		if pb.Default != nil {
			i, err := itemIndex(items, *pb.Default)
			if err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			def = i
		}
		return topo.List(pb.ID, name, items, def), nil
	case "real", "percent":
		lo, hi := 0.0, 1.0
		if kind == "percent" {
			hi = 100
		}
		if pb.Min != nil {
			lo = *pb.Min
		}
		if pb.Max != nil {
			hi = *pb.Max
		}
		def := lo
		if pb.Default != nil {
			f, err := number(*pb.Default)
			if err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
			def = f
		}
		if kind == "percent" {
			return topo.Linear(pb.ID, name, lo, hi, def).Unit("%").Precision(0), nil
		}
		return topo.Linear(pb.ID, name, lo, hi, def), nil
	default:
		return nil, fmt.Errorf("unknown type %q", pb.Type)
	}
}

type resolver struct {
	index   map[string]int
	domains []param.Domain
}

// binding turns condition blocks into a conjunction of selectors.
func (r resolver) binding(conds []*condBlock) (*topo.Binding, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	out := &topo.Binding{}
	for _, c := range conds {
		p, ok := r.index[c.Param]
		if !ok {
			return nil, fmt.Errorf("unknown param %s", c.Param)
		}
		op := topo.OpIn
		if c.Op != "" {
			if op, ok = topo.ParseOp(c.Op); !ok {
				return nil, fmt.Errorf("unknown op %q", c.Op)
			}
		}
		values, err := r.values(p, c.Values)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", c.Param, err)
		}
		out.Selectors = append(out.Selectors, topo.Selector{Param: p, Op: op, Values: values})
	}
	return out, nil
}

// values converts condition values to plain numbers. Bools become 0/1 and
// strings name list items.
func (r resolver) values(p int, v cty.Value) ([]float64, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("values must not be null")
	}
	var elems []cty.Value
	if v.CanIterateElements() {
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			elems = append(elems, e)
		}
	} else {
		elems = []cty.Value{v}
	}
	out := make([]float64, 0, len(elems))
	for _, e := range elems {
		if e.Type() == cty.String {
			i, err := itemIndex(r.domains[p].Items, e)
			if err != nil {
				return nil, err
			}
			out = append(out, float64(i))
			continue
		}
		f, err := number(e)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func number(v cty.Value) (float64, error) {
	if v.IsNull() || !v.IsKnown() {
		return 0, fmt.Errorf("expected a value")
	}
	switch v.Type() {
	case cty.Bool:
		if v.True() {
			return 1, nil
		}
		return 0, nil
	case cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", v.Type().FriendlyName())
	}
}

func boolDefault(v *cty.Value) (bool, error) {
	if v == nil {
		return false, nil
	}
	f, err := number(*v)
	if err != nil {
		return false, fmt.Errorf("default: %w", err)
	}
	return f != 0, nil
}

func itemIndex(items []param.Item, v cty.Value) (int, error) {
	if v.Type() == cty.String {
		id := v.AsString()
		for i, it := range items {
			if it.ID == id {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no item %q", id)
	}
	f, err := number(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func cell(at []int) (int, int, error) {
	if len(at) != 2 {
		return 0, 0, fmt.Errorf("at must be [row, col], got %d values", len(at))
	}
	return at[0], at[1], nil
}

func formatter(name string) (func(float64) string, func(string) (float64, error), bool) {
	switch strings.ToLower(name) {
	case "frequency", "hz":
		return param.FrequencyFormatter, param.FrequencyParser, true
	case "decibel", "db":
		return param.DecibelFormatter, param.DecibelParser, true
	case "percent":
		return param.PercentFormatter, param.PercentParser, true
	case "time", "ms":
		return param.TimeFormatter, param.TimeParser, true
	case "pan":
		return param.PanFormatter, param.PanParser, true
	case "note":
		return param.NoteFormatter, param.NoteParser, true
	case "onoff":
		return param.OnOffFormatter, param.OnOffParser, true
	default:
		return nil, nil, false
	}
}

func parseScope(s string) (topo.Scope, error) {
	switch strings.ToLower(s) {
	case "", "global":
		return topo.ScopeGlobal, nil
	case "voice":
		return topo.ScopeVoice, nil
	default:
		return 0, fmt.Errorf("unknown scope %q", s)
	}
}

func parseOutputKind(s string) (topo.OutputKind, error) {
	switch strings.ToLower(s) {
	case "", "audio":
		return topo.OutputAudio, nil
	case "control", "cv":
		return topo.OutputControl, nil
	default:
		return 0, fmt.Errorf("unknown output kind %q", s)
	}
}

func parseMidiKind(s string) (topo.MidiKind, error) {
	switch strings.ToLower(s) {
	case "cc":
		return topo.MidiCC, nil
	case "pitch_bend", "pitchbend":
		return topo.MidiPitchBend, nil
	case "channel_pressure", "aftertouch":
		return topo.MidiChannelPressure, nil
	default:
		return 0, fmt.Errorf("unknown midi kind %q", s)
	}
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return titleCase(fallback)
}

func titleCase(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
