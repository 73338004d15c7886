package topofile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
	"github.com/justyntemme/plugcore/pkg/framework/validate"
)

func TestLoadSynth(t *testing.T) {
	tp, err := Load("testdata/synth.hcl")
	require.NoError(t, err)

	assert.Equal(t, "com.example.hclsynth", tp.Info.ID)
	assert.Equal(t, plugin.Version{Major: 1, Minor: 2, Patch: 3}, tp.Info.Version)
	require.Len(t, tp.Groups, 2)
	assert.Equal(t, topo.ScopeVoice, tp.Groups[0].Scope)
	assert.Equal(t, "Voice", tp.Groups[0].Name)
	assert.Equal(t, topo.OutputControl, tp.Groups[1].Output)

	require.Len(t, tp.Modules, 2)
	osc := tp.Modules[0]
	assert.Equal(t, 2, osc.Slots)
	assert.Equal(t, 0, osc.Group)
	require.Len(t, osc.Params, 4)

	wave := osc.Params[1]
	assert.Equal(t, param.TypeList, wave.Domain.Type)
	assert.Equal(t, 1.0, wave.Domain.Default)
	assert.Equal(t, "Pulse", wave.Domain.Items[2].Name)
	assert.Equal(t, "Sine", wave.Domain.Items[0].Name)

	coarse := osc.Params[2]
	assert.Equal(t, param.TypeStep, coarse.Domain.Type)
	assert.Equal(t, -24.0, coarse.Domain.Min)
	assert.Equal(t, topo.When(0, 1), coarse.Enabled)

	assert.Equal(t, topo.When(1, 2), osc.Sections[1].Visible)
	assert.Equal(t, 1, osc.Params[3].Section)
	assert.Equal(t, "%", osc.Params[3].Domain.Unit)
	assert.Equal(t, 2, osc.Outputs[0].Channels)

	lfo := tp.Modules[1]
	assert.Equal(t, 1, lfo.Slots)
	assert.Equal(t, 1, lfo.Group)
	assert.Equal(t, topo.RateAccurate, lfo.Params[0].Rate)
	assert.Equal(t, "2.0 Hz", lfo.Params[0].Domain.Text(param.Real(2)))
	assert.Equal(t, topo.Output, lfo.Params[1].Dir)
	assert.False(t, lfo.Params[1].Automatable())
	assert.Equal(t, topo.MidiSource{ID: "mod", Name: "Mod", Kind: topo.MidiCC, Number: 1}, lfo.MidiSources[0])

	d := desc.Compile(tp, nil)
	assert.Equal(t, 10, d.ParamCount)
	assert.Empty(t, validate.Validate(tp, d))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `plugin "x" {`, "failed to parse"},
		{"no plugin", `thing "x" {}`, "failed to decode"},
		{"unknown type", `plugin "x" {
  name = "X"
  module "m" {
    param "p" { type = "knob" }
  }
}`, `unknown type "knob"`},
		{"unknown group", `plugin "x" {
  name = "X"
  module "m" { group = "nope" }
}`, "unknown group nope"},
		{"unknown section", `plugin "x" {
  name = "X"
  module "m" {
    param "p" {
      type    = "toggle"
      section = "gone"
    }
  }
}`, "unknown section gone"},
		{"dangling binding", `plugin "x" {
  name = "X"
  module "m" {
    param "p" {
      type = "toggle"
      visible_when {
        param  = "q"
        values = [1]
      }
    }
  }
}`, "unknown param q"},
		{"bad item", `plugin "x" {
  name = "X"
  module "m" {
    param "p" {
      type    = "list"
      default = "c"
      item "a" {}
    }
  }
}`, `no item "c"`},
		{"empty range", `plugin "x" {
  name = "X"
  module "m" {
    param "p" {
      type = "step"
      min  = 3
      max  = 3
    }
  }
}`, "min must be less than max"},
		{"bad slots", `plugin "x" {
  name = "X"
  module "m" { slots = 0 }
}`, "slot count must be positive"},
		{"bad version", `plugin "x" {
  name    = "X"
  version = "one"
}`, "invalid version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.name+".hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/missing.hcl")
	assert.Error(t, err)
}
