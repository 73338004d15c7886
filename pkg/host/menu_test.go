package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
)

func TestModuleMenu(t *testing.T) {
	c := newController(t)
	menu := c.ModuleMenu(0, 1)
	assert.Equal(t, "Tap 2", menu.Name)

	item, ok := menu.Find("Copy To", "Tap 3")
	require.True(t, ok)
	assert.Equal(t, plugin.Action{Kind: plugin.ActionCopyModule, Module: 0, Slot: 1, Target: 2}, item.Action)

	_, ok = menu.Find("Swap With", "Tap 2")
	assert.False(t, ok)

	assert.Len(t, menu.Actions(), 5)

	single := c.ModuleMenu(1, 0)
	assert.Len(t, single.Children, 1)
	assert.Empty(t, c.ModuleMenu(1, 1).Name)
}

func TestModuleMenuHiddenWithoutSupport(t *testing.T) {
	c := New(delayTopo(), plugin.Format{Kind: plugin.FormatCLAP})
	assert.Empty(t, c.ModuleMenu(0, 0).Children)
}

func TestParamMenu(t *testing.T) {
	host := plugin.Item("Automate", plugin.Action{Kind: plugin.ActionHost, HostTag: 3})

	vst := newController(t)
	menu, err := vst.ParamMenu(4, host)
	require.NoError(t, err)
	assert.Equal(t, "Tap 1 Feedback", menu.Name)
	assert.Len(t, menu.Children, 3)

	acts := menu.Actions()
	require.Len(t, acts, 2)
	assert.ErrorIs(t, vst.Perform(acts[1]), ErrHostAction)

	clap := New(delayTopo(), plugin.CLAPFormat("/plugins/Delay.clap"))
	menu, err = clap.ParamMenu(4, host)
	require.NoError(t, err)
	assert.Len(t, menu.Children, 1)

	meter, err := vst.ParamMenu(16)
	require.NoError(t, err)
	assert.Empty(t, meter.Actions())

	_, err = vst.ParamMenu(99)
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestPerform(t *testing.T) {
	c := newController(t)
	var commits []int
	c.Subscribe(func(i int, _ param.PlainValue) { commits = append(commits, i) }, 4, 9, 14)

	require.NoError(t, c.SetPlain(4, param.Real(90)))
	commits = nil

	require.NoError(t, c.Perform(plugin.Action{Kind: plugin.ActionCopyModule, Module: 0, Slot: 0, Target: 2}))
	v, _ := c.Plain(14)
	assert.Equal(t, param.Real(90), v)
	assert.Equal(t, []int{14}, commits)

	require.NoError(t, c.SetPlain(9, param.Real(10)))
	require.NoError(t, c.Perform(plugin.Action{Kind: plugin.ActionSwapModule, Module: 0, Slot: 1, Target: 2}))
	v, _ = c.Plain(9)
	assert.Equal(t, param.Real(90), v)
	v, _ = c.Plain(14)
	assert.Equal(t, param.Real(10), v)

	require.NoError(t, c.Perform(plugin.Action{Kind: plugin.ActionClearModule, Module: 0, Slot: 0}))
	v, _ = c.Plain(4)
	assert.Equal(t, param.Real(30), v)

	require.NoError(t, c.Perform(plugin.Action{Kind: plugin.ActionResetParam, Param: 9}))
	v, _ = c.Plain(9)
	assert.Equal(t, param.Real(30), v)

	assert.NoError(t, c.Perform(plugin.Action{}))
	assert.Error(t, c.Perform(plugin.Action{Kind: plugin.ActionCopyModule, Module: 0, Slot: 0, Target: 0}))
	assert.Error(t, c.Perform(plugin.Action{Kind: plugin.ActionClearModule, Module: 5}))
	assert.Error(t, c.Perform(plugin.Action{Kind: plugin.ActionResetParam, Param: 100}))
}
