package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

var gainInfo = plugin.Info{ID: "com.example.gain", Name: "Gain", Vendor: "Example", Version: plugin.Version{Major: 1}}

func gainDesc() *desc.PluginDesc {
	t := topo.NewPlugin(gainInfo, nil,
		topo.NewModule("amp", "Amp", 2).
			Sections(topo.NewSection("main", "Main", 1, 2)).
			Params(
				topo.Toggle("on", "On", false).Build(),
				topo.Percent("level", "Level", 50).At(0, 1).Build(),
			).
			Build(),
	)
	return desc.Compile(t, nil)
}

func TestContainerDefaults(t *testing.T) {
	c := New(gainDesc())
	require.Equal(t, 4, c.Len())
	assert.Equal(t, []param.PlainValue{param.Bool(false), param.Real(50), param.Bool(false), param.Real(50)}, c.Snapshot())
}

func TestContainerAddressing(t *testing.T) {
	c := New(gainDesc())
	c.SetAt(0, 1, 1, 0, param.Real(75))
	assert.Equal(t, param.Real(75), c.Plain(3))
	assert.Equal(t, param.Real(75), c.At(0, 1, 1, 0))
	assert.Equal(t, param.Real(50), c.At(0, 0, 1, 0))

	assert.Panics(t, func() { c.At(0, 2, 0, 0) })
}

func TestContainerClampsAndNormalizes(t *testing.T) {
	c := New(gainDesc())
	assert.Equal(t, param.Real(100), c.SetPlain(1, param.Real(180)))
	assert.Equal(t, 1.0, c.Normalized(1))

	assert.Equal(t, param.Real(25), c.SetNormalized(1, 0.25))
	assert.Equal(t, param.Bool(true), c.SetNormalized(0, 0.9))
	assert.True(t, c.Plain(0).Bool())
	assert.Equal(t, 1.0, c.Normalized(0))
}

func TestModuleOperations(t *testing.T) {
	c := New(gainDesc())
	c.SetPlain(0, param.Bool(true))
	c.SetPlain(1, param.Real(10))

	touched := c.CopyModule(0, 1)
	assert.Equal(t, []int{2, 3}, touched)
	assert.Equal(t, param.Real(10), c.Plain(3))

	c.SetPlain(3, param.Real(90))
	c.SwapModules(0, 1)
	assert.Equal(t, param.Real(90), c.Plain(1))
	assert.Equal(t, param.Real(10), c.Plain(3))

	assert.Equal(t, []int{0, 1}, c.ResetModule(0))
	assert.Equal(t, param.Real(50), c.Plain(1))
	assert.Equal(t, param.Bool(false), c.Plain(0))
	assert.True(t, c.Plain(2).Bool())

	assert.Equal(t, param.Bool(false), c.ResetParam(2))
}

func TestCloneIsIndependent(t *testing.T) {
	c := New(gainDesc())
	clone := c.Clone()
	c.SetPlain(1, param.Real(1))
	assert.Equal(t, param.Real(50), clone.Plain(1))

	clone.CopyFrom(c)
	assert.Equal(t, param.Real(1), clone.Plain(1))
}

func TestGetterReadsModuleInstance(t *testing.T) {
	c := New(gainDesc())
	c.SetPlain(2, param.Bool(true))
	get := c.Getter(1)
	assert.True(t, get(0).Bool())
	assert.False(t, c.Getter(0)(0).Bool())

	b := topo.When(0, 1)
	assert.True(t, b.Eval(get))
}

func TestConcurrentReadWrite(t *testing.T) {
	c := New(gainDesc())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.SetPlain(1, param.Real(float64(i%100)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := c.Plain(1).Real()
			if v < 0 || v > 100 {
				t.Errorf("torn value %g", v)
				return
			}
		}
	}()
	wg.Wait()
}

func BenchmarkPlain(b *testing.B) {
	c := New(gainDesc())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Plain(i & 3)
	}
}
