package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
	"github.com/justyntemme/plugcore/pkg/framework/prefs"
	"github.com/justyntemme/plugcore/pkg/framework/state"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

var testInfo = plugin.Info{ID: "com.example.delay", Name: "Delay", Vendor: "Example", Version: plugin.Version{Major: 1}}

// delayTopo: tap module x3 (on, mode list, time [hidden unless mode=free],
// sync [visible when mode=sync]) and an output meter module.
func delayTopo() *topo.PluginTopo {
	return topo.NewPlugin(testInfo, nil,
		topo.NewModule("tap", "Tap", 3).
			Sections(
				topo.NewSection("main", "Main", 1, 3),
				topo.NewSection("fx", "Effects", 1, 1).At(0, 1).EnabledWhen(topo.When(0, 1)),
			).
			Params(
				topo.On("on", false).Build(),
				topo.List("mode", "Mode", topo.Items("free", "Free", "sync", "Sync"), 0).At(0, 1).Build(),
				topo.Time("time", "Time", 1, 2000, 250).At(0, 2).VisibleWhen(topo.When(1, 0)).Build(),
				topo.Stepped("sync", "Sync", 1, 16, 4).At(0, 2).VisibleWhen(topo.When(1, 1)).Build(),
				topo.Percent("feedback", "Feedback", 30).Section(1).Build(),
			).
			Build(),
		topo.NewModule("out", "Output", 1).
			Sections(topo.NewSection("main", "Main", 1, 2)).
			Params(
				topo.Gain("gain", "Gain").Build(),
				topo.Percent("meter", "Meter", 0).At(0, 1).Output().Build(),
				topo.Toggle("bypass", "Bypass", false).Hidden().Bypass().At(0, 1).NoAutomation().Build(),
			).
			Build(),
	)
}

func newController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	return New(delayTopo(), plugin.VST3Format("/plugins/Delay.vst3/Contents/x86_64-linux/Delay.so"), opts...)
}

func TestParamListing(t *testing.T) {
	c := newController(t)
	require.Equal(t, 18, c.ParamCount())

	info, err := c.ParamInfo(2)
	require.NoError(t, err)
	assert.Equal(t, "tap-0-time-0", info.ID)
	assert.Equal(t, "Tap 1 Time", info.Title)
	assert.Equal(t, "ms", info.Units)
	assert.Equal(t, 0, info.Steps)
	assert.InDelta(t, (250.0-1)/1999, info.Default, 1e-12)

	mode, _ := c.ParamInfo(1)
	assert.True(t, mode.List)
	assert.Equal(t, 1, mode.Steps)

	meter, _ := c.ParamInfo(16)
	assert.True(t, meter.Output)
	assert.False(t, meter.Automatable)

	bypass, _ := c.ParamInfo(17)
	assert.True(t, bypass.Hidden)
	assert.True(t, bypass.Bypass)

	idx, err := c.IndexOfTag(info.Tag)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = c.IndexOfTag(0)
	assert.ErrorIs(t, err, ErrUnknownParam)
	_, err = c.ParamInfo(18)
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestValuePushesNotifySubscribers(t *testing.T) {
	c := newController(t)
	var got []param.PlainValue
	cancel := c.Subscribe(func(_ int, v param.PlainValue) { got = append(got, v) }, 4)
	defer cancel()

	require.NoError(t, c.SetNormalized(4, 0.5))
	require.NoError(t, c.SetNormalized(9, 0.5))
	require.NoError(t, c.SetPlain(4, param.Real(200)))
	assert.Equal(t, []param.PlainValue{param.Real(50), param.Real(100)}, got)

	n, err := c.Normalized(4)
	require.NoError(t, err)
	assert.Equal(t, 1.0, n)
	assert.ErrorIs(t, c.SetNormalized(-1, 0), ErrUnknownParam)
}

func TestTextConversion(t *testing.T) {
	c := newController(t)
	s, err := c.Text(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sync", s)

	n, err := c.Parse(1, "free")
	require.NoError(t, err)
	assert.Equal(t, 0.0, n)

	s, err = c.Text(15, 1)
	require.NoError(t, err)
	assert.Equal(t, "12.0 dB", s)

	n, err = c.Parse(2, "2 s")
	require.NoError(t, err)
	v, err := c.NormalizedToPlain(2, n)
	require.NoError(t, err)
	assert.InDelta(t, 2000, v.Real(), 1e-9)

	back, err := c.PlainToNormalized(2, v)
	require.NoError(t, err)
	assert.InDelta(t, n, back, 1e-12)

	_, err = c.Parse(1, "reverse")
	assert.ErrorContains(t, err, "tap-0-mode-0")
}

func TestBindings(t *testing.T) {
	c := newController(t)
	visible := func(i int) bool {
		t.Helper()
		ok, err := c.ParamVisible(i)
		require.NoError(t, err)
		return ok
	}
	enabled := func(i int) bool {
		t.Helper()
		ok, err := c.ParamEnabled(i)
		require.NoError(t, err)
		return ok
	}
	assert.True(t, visible(2))
	assert.False(t, visible(3))
	assert.False(t, enabled(4))
	assert.True(t, enabled(2))

	require.NoError(t, c.SetPlain(1, param.Step(1)))
	require.NoError(t, c.SetPlain(0, param.Bool(true)))
	assert.False(t, visible(2))
	assert.True(t, visible(3))
	assert.True(t, enabled(4))

	assert.Equal(t, []int{5, 6}, c.Watches(1))
}

func TestBindingsUnknownParam(t *testing.T) {
	c := newController(t)
	for _, index := range []int{-1, c.ParamCount()} {
		_, err := c.ParamVisible(index)
		assert.ErrorIs(t, err, ErrUnknownParam)
		_, err = c.ParamEnabled(index)
		assert.ErrorIs(t, err, ErrUnknownParam)
	}
}

func TestSnapshotRestore(t *testing.T) {
	c := newController(t)
	require.NoError(t, c.SetPlain(7, param.Real(40)))
	blob := c.Save()

	other := newController(t)
	var commits []int
	other.Subscribe(func(i int, _ param.PlainValue) { commits = append(commits, i) }, 7)
	diags, err := other.Load(blob)
	require.NoError(t, err)
	assert.Empty(t, diags)
	v, _ := other.Plain(7)
	assert.Equal(t, param.Real(40), v)
	assert.Equal(t, []int{7}, commits)

	before := other.State().Snapshot()
	_, err = other.Load(blob[:len(blob)/2])
	assert.ErrorIs(t, err, state.ErrTruncated)
	assert.Equal(t, before, other.State().Snapshot())

	other.Reset()
	v, _ = other.Plain(7)
	assert.Equal(t, param.Real(250), v)
}

func TestLoadWhileProcessingSwapsAtBlockBoundary(t *testing.T) {
	c := newController(t)
	c.SetActive(true)
	block := c.BeginBlock()

	src := newController(t)
	require.NoError(t, src.SetPlain(4, param.Real(77)))
	_, err := c.Load(src.Save())
	require.NoError(t, err)

	assert.Equal(t, param.Real(30), block.Plain(4), "in-flight block keeps its container")
	v, _ := c.Plain(4)
	assert.Equal(t, param.Real(77), v, "host sees the loaded state")

	require.NoError(t, c.SetPlain(6, param.Step(1)))
	next := c.BeginBlock()
	assert.NotSame(t, block, next)
	assert.Equal(t, param.Real(77), next.Plain(4))
	assert.Equal(t, param.Step(1), next.Plain(6))
	assert.Same(t, next, c.BeginBlock())
}

func TestDeactivateInstallsPending(t *testing.T) {
	c := newController(t)
	c.SetActive(true)
	c.Reset()
	pending := c.State()
	c.SetActive(false)
	assert.False(t, c.Active())
	assert.Same(t, pending, c.BeginBlock())
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	c := newController(t)
	require.NoError(t, c.SetPlain(0, param.Bool(true)))
	path := filepath.Join(dir, "a.state")
	require.NoError(t, c.SaveFile(path))

	other := newController(t)
	_, err := other.LoadFile(path)
	require.NoError(t, err)
	v, _ := other.Plain(0)
	assert.True(t, v.Bool())

	_, err = other.LoadFile(filepath.Join(dir, "none.state"))
	var ferr *state.FileError
	assert.ErrorAs(t, err, &ferr)
}

func TestFactoryPresets(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "Delay.vst3", "Contents", "x86_64-linux", "Delay.so")
	c := New(delayTopo(), plugin.VST3Format(bin))
	presets := c.Format().PresetFolder()
	require.NoError(t, os.MkdirAll(presets, 0o755))
	require.NoError(t, c.SaveFile(filepath.Join(presets, "b.state")))
	require.NoError(t, c.SaveFile(filepath.Join(presets, "a.state")))
	require.NoError(t, os.WriteFile(filepath.Join(presets, "readme.txt"), nil, 0o644))

	got, err := c.FactoryPresets()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(presets, "a.state"), filepath.Join(presets, "b.state")}, got)
}

func TestSlotsAndPrefs(t *testing.T) {
	store, err := prefs.Open("")
	require.NoError(t, err)
	c := newController(t, WithSlots([]int{1, 1}), WithPrefs(store))
	assert.Equal(t, 8, c.ParamCount())
	assert.Same(t, store, c.Prefs())

	key := c.PrefKey("gui", "zoom")
	assert.Equal(t, prefs.Key{Vendor: "Example", Plugin: "com.example.delay", Scope: "gui", Name: "zoom"}, key)
	require.NoError(t, c.Prefs().Set(key, 1.25))
	assert.Equal(t, 1.25, store.Float(key, 1))
}

func TestInvalidTopologyAborts(t *testing.T) {
	bad := delayTopo()
	bad.Modules[0].Params[4].Section = 9
	assert.Panics(t, func() { New(bad, plugin.CLAPFormat("/plugins/Delay.clap")) })
}
