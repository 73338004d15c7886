package topofile

import (
	"github.com/zclconf/go-cty/cty"
)

type file struct {
	Plugin pluginBlock `hcl:"plugin,block"`
}

type pluginBlock struct {
	ID       string         `hcl:"id,label"`
	Name     string         `hcl:"name"`
	Vendor   string         `hcl:"vendor,optional"`
	Version  string         `hcl:"version,optional"`
	Category string         `hcl:"category,optional"`
	Groups   []*groupBlock  `hcl:"group,block"`
	Modules  []*moduleBlock `hcl:"module,block"`
}

type groupBlock struct {
	ID     string `hcl:"id,label"`
	Name   string `hcl:"name,optional"`
	Scope  string `hcl:"scope,optional"`
	Output string `hcl:"output,optional"`
}

type moduleBlock struct {
	ID       string          `hcl:"id,label"`
	Name     string          `hcl:"name,optional"`
	Group    string          `hcl:"group,optional"`
	Slots    *int            `hcl:"slots,optional"`
	Sections []*sectionBlock `hcl:"section,block"`
	Params   []*paramBlock   `hcl:"param,block"`
	Midi     []*midiBlock    `hcl:"midi,block"`
	Outputs  []*outputBlock  `hcl:"output,block"`
}

type sectionBlock struct {
	ID      string       `hcl:"id,label"`
	Name    string       `hcl:"name,optional"`
	Rows    int          `hcl:"rows"`
	Cols    int          `hcl:"cols"`
	At      []int        `hcl:"at,optional"`
	Visible []*condBlock `hcl:"visible_when,block"`
	Enabled []*condBlock `hcl:"enabled_when,block"`
}

type paramBlock struct {
	ID        string       `hcl:"id,label"`
	Type      string       `hcl:"type"`
	Name      string       `hcl:"name,optional"`
	Section   string       `hcl:"section,optional"`
	At        []int        `hcl:"at,optional"`
	Slots     *int         `hcl:"slots,optional"`
	Min       *float64     `hcl:"min,optional"`
	Max       *float64     `hcl:"max,optional"`
	Default   *cty.Value   `hcl:"default,optional"`
	Unit      string       `hcl:"unit,optional"`
	Precision *int         `hcl:"precision,optional"`
	Format    string       `hcl:"format,optional"`
	Direction string       `hcl:"direction,optional"`
	Rate      string       `hcl:"rate,optional"`
	Hidden    bool         `hcl:"hidden,optional"`
	Automate  *bool        `hcl:"automate,optional"`
	Bypass    bool         `hcl:"bypass,optional"`
	Items     []*itemBlock `hcl:"item,block"`
	Visible   []*condBlock `hcl:"visible_when,block"`
	Enabled   []*condBlock `hcl:"enabled_when,block"`
}

type itemBlock struct {
	ID   string `hcl:"id,label"`
	Name string `hcl:"name,optional"`
}

type condBlock struct {
	Param  string    `hcl:"param"`
	Op     string    `hcl:"op,optional"`
	Values cty.Value `hcl:"values"`
}

type midiBlock struct {
	ID     string `hcl:"id,label"`
	Name   string `hcl:"name,optional"`
	Kind   string `hcl:"kind"`
	Number int    `hcl:"number,optional"`
}

type outputBlock struct {
	ID       string `hcl:"id,label"`
	Name     string `hcl:"name,optional"`
	Kind     string `hcl:"kind,optional"`
	Channels int    `hcl:"channels,optional"`
}
