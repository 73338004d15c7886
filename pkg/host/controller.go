// Package host is the surface a host adapter (VST3, CLAP) drives: the
// parameter list, normalized value pushes, text conversion, state
// snapshot/restore and context menu actions.
package host

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
	"github.com/justyntemme/plugcore/pkg/framework/prefs"
	"github.com/justyntemme/plugcore/pkg/framework/state"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
	"github.com/justyntemme/plugcore/pkg/framework/validate"
)

// ErrUnknownParam is returned for an index or tag outside the plugin.
var ErrUnknownParam = errors.New("host: unknown parameter")

// ErrHostAction is returned by Perform for actions the host must handle.
var ErrHostAction = errors.New("host: action belongs to the host menu")

// ParamInfo is what a host needs to list one parameter.
type ParamInfo struct {
	Index       int
	Tag         uint32
	ID          string
	Title       string
	Module      string
	Units       string
	Steps       int
	Default     float64 // normalized
	Output      bool
	Automatable bool
	Hidden      bool
	Bypass      bool
	List        bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithPrefs hands the controller a preference store. The controller does
// not close it.
func WithPrefs(s *prefs.Store) Option {
	return func(c *Controller) { c.prefs = s }
}

// WithBus shares an existing change bus.
func WithBus(b *state.Bus) Option {
	return func(c *Controller) { c.bus = b }
}

// WithSlots overrides the declared module slot counts.
func WithSlots(slots []int) Option {
	return func(c *Controller) { c.slots = slots }
}

// Controller is one plugin instance as seen by the host adapter.
//
// Host and GUI threads call the setters; the processing thread calls
// BeginBlock once per block and reads the returned container. A loaded
// state replaces the container as a whole and is handed to the processing
// thread at the next block boundary.
type Controller struct {
	desc   *desc.PluginDesc
	format plugin.Format
	codec  *state.Manager
	bus    *state.Bus
	prefs  *prefs.Store
	slots  []int
	log    *debug.Logger

	live    atomic.Pointer[state.Container]
	pending atomic.Pointer[state.Container]
	active  atomic.Bool

	mu     sync.Mutex // serializes whole-state operations
	params []ParamInfo
}

// New compiles and validates t and creates an instance at default values.
// An invalid topology aborts through debug.Fatal.
func New(t *topo.PluginTopo, format plugin.Format, opts ...Option) *Controller {
	c := &Controller{format: format, log: debug.Default().With("host")}
	for _, opt := range opts {
		opt(c)
	}
	c.desc = desc.Compile(t, c.slots)
	validate.MustValidate(t, c.desc)
	if c.bus == nil {
		c.bus = state.NewBus()
	}
	c.codec = state.NewManager(c.desc)
	c.live.Store(state.New(c.desc))
	c.params = paramInfos(c.desc)
	c.log.Info("%s: %d modules, %d params (%s)", t.Info.ID, c.desc.ModuleCount, c.desc.ParamCount, format.Kind)
	return c
}

func paramInfos(d *desc.PluginDesc) []ParamInfo {
	out := make([]ParamInfo, len(d.Params))
	for i := range d.Params {
		pd := &d.Params[i]
		dom := &pd.Param.Domain
		out[i] = ParamInfo{
			Index:       i,
			Tag:         pd.Tag,
			ID:          pd.ID,
			Title:       pd.Name,
			Module:      d.Modules[pd.ModuleGlobal].Name,
			Units:       dom.Unit,
			Steps:       dom.Steps(),
			Default:     dom.Normalize(dom.DefaultValue()),
			Output:      pd.Param.Dir == topo.Output,
			Automatable: pd.Param.Automatable(),
			Hidden:      pd.Param.Flags&topo.FlagHidden != 0,
			Bypass:      pd.Param.Flags&topo.FlagBypass != 0,
			List:        dom.Type == param.TypeList,
		}
	}
	return out
}

// Desc returns the compiled descriptor.
func (c *Controller) Desc() *desc.PluginDesc { return c.desc }

// Format returns the host format record.
func (c *Controller) Format() plugin.Format { return c.format }

// Bus returns the change bus.
func (c *Controller) Bus() *state.Bus { return c.bus }

// Prefs returns the preference store, or nil.
func (c *Controller) Prefs() *prefs.Store { return c.prefs }

// PrefKey addresses a preference of this plugin.
func (c *Controller) PrefKey(scope, name string) prefs.Key {
	info := c.desc.Topo.Info
	return prefs.Key{Vendor: info.Vendor, Plugin: info.ID, Scope: scope, Name: name}
}

// ParamCount returns the number of parameters.
func (c *Controller) ParamCount() int { return len(c.params) }

// ParamInfo returns the host listing of a parameter.
func (c *Controller) ParamInfo(index int) (ParamInfo, error) {
	if index < 0 || index >= len(c.params) {
		return ParamInfo{}, fmt.Errorf("%w: index %d", ErrUnknownParam, index)
	}
	return c.params[index], nil
}

// Params returns every host listing in index order.
func (c *Controller) Params() []ParamInfo {
	return append([]ParamInfo(nil), c.params...)
}

// IndexOfTag maps a host parameter id to a global index.
func (c *Controller) IndexOfTag(tag uint32) (int, error) {
	i, ok := c.desc.ByTag(tag)
	if !ok {
		return 0, fmt.Errorf("%w: tag %d", ErrUnknownParam, tag)
	}
	return i, nil
}

// current is the container non-realtime readers and writers use: a loaded
// state waiting for the processing thread, or the live one.
func (c *Controller) current() *state.Container {
	if p := c.pending.Load(); p != nil {
		return p
	}
	return c.live.Load()
}

// State returns the container host and GUI code read from.
func (c *Controller) State() *state.Container { return c.current() }

func (c *Controller) check(index int) error {
	if index < 0 || index >= len(c.params) {
		return fmt.Errorf("%w: index %d", ErrUnknownParam, index)
	}
	return nil
}

// Normalized returns a parameter's normalized value.
func (c *Controller) Normalized(index int) (float64, error) {
	if err := c.check(index); err != nil {
		return 0, err
	}
	return c.current().Normalized(index), nil
}

// SetNormalized applies a host push and notifies subscribers.
func (c *Controller) SetNormalized(index int, n float64) error {
	if err := c.check(index); err != nil {
		return err
	}
	v := c.current().SetNormalized(index, n)
	c.bus.Publish(index, v)
	return nil
}

// Plain returns a parameter's plain value.
func (c *Controller) Plain(index int) (param.PlainValue, error) {
	if err := c.check(index); err != nil {
		return param.PlainValue{}, err
	}
	return c.current().Plain(index), nil
}

// SetPlain applies a plain value and notifies subscribers.
func (c *Controller) SetPlain(index int, v param.PlainValue) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.bus.Publish(index, c.current().SetPlain(index, v))
	return nil
}

func (c *Controller) domain(index int) *param.Domain {
	return &c.desc.Params[index].Param.Domain
}

// NormalizedToPlain converts without touching state.
func (c *Controller) NormalizedToPlain(index int, n float64) (param.PlainValue, error) {
	if err := c.check(index); err != nil {
		return param.PlainValue{}, err
	}
	return c.domain(index).Denormalize(n), nil
}

// PlainToNormalized converts without touching state.
func (c *Controller) PlainToNormalized(index int, v param.PlainValue) (float64, error) {
	if err := c.check(index); err != nil {
		return 0, err
	}
	return c.domain(index).Normalize(v), nil
}

// Text formats a normalized value of a parameter for display.
func (c *Controller) Text(index int, n float64) (string, error) {
	if err := c.check(index); err != nil {
		return "", err
	}
	d := c.domain(index)
	return d.Text(d.Denormalize(n)), nil
}

// Parse converts display text into a normalized value.
func (c *Controller) Parse(index int, text string) (float64, error) {
	if err := c.check(index); err != nil {
		return 0, err
	}
	d := c.domain(index)
	v, err := d.ParseText(text)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.params[index].ID, err)
	}
	return d.Normalize(v), nil
}

// Subscribe registers fn for changes of the given indices.
func (c *Controller) Subscribe(fn state.Listener, indices ...int) func() {
	return c.bus.Subscribe(fn, indices...)
}

// ParamVisible evaluates the visibility binding of a parameter and of the
// section holding it.
func (c *Controller) ParamVisible(index int) (bool, error) {
	if err := c.check(index); err != nil {
		return false, err
	}
	pd := &c.desc.Params[index]
	get := c.current().Getter(pd.ModuleGlobal)
	return pd.Param.Visible.Eval(get) && pd.Module.Sections[pd.Param.Section].Visible.Eval(get), nil
}

// ParamEnabled evaluates the enabled binding of a parameter and its section.
func (c *Controller) ParamEnabled(index int) (bool, error) {
	if err := c.check(index); err != nil {
		return false, err
	}
	pd := &c.desc.Params[index]
	get := c.current().Getter(pd.ModuleGlobal)
	return pd.Param.Enabled.Eval(get) && pd.Module.Sections[pd.Param.Section].Enabled.Eval(get), nil
}

// Watches returns the global indices whose changes can flip the bindings
// of module instance module.
func (c *Controller) Watches(module int) []int {
	md := &c.desc.Modules[module]
	seen := map[int]bool{}
	add := func(b *topo.Binding) {
		for _, p := range b.Params() {
			seen[md.ParamStart+c.desc.LocalIndex(md.Topo, p)] = true
		}
	}
	for i := range md.Module.Sections {
		add(md.Module.Sections[i].Visible)
		add(md.Module.Sections[i].Enabled)
	}
	for i := range md.Module.Params {
		add(md.Module.Params[i].Visible)
		add(md.Module.Params[i].Enabled)
	}
	out := make([]int, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

// Save snapshots the current state.
func (c *Controller) Save() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codec.Save(c.current())
}

// Load decodes data and installs it. On error the instance is unchanged.
func (c *Controller) Load(data []byte) (state.Diagnostics, error) {
	loaded, diags, err := c.codec.Load(data)
	if err != nil {
		c.log.Warn("load rejected: %v", err)
		return nil, err
	}
	c.install(loaded)
	return diags, nil
}

// SaveFile writes the current state to path.
func (c *Controller) SaveFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codec.SaveFile(path, c.current())
}

// LoadFile reads a state file and installs it.
func (c *Controller) LoadFile(path string) (state.Diagnostics, error) {
	loaded, diags, err := c.codec.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.install(loaded)
	return diags, nil
}

// Reset installs a fresh default state.
func (c *Controller) Reset() {
	c.install(state.New(c.desc))
}

func (c *Controller) install(next *state.Container) {
	c.mu.Lock()
	if c.active.Load() {
		c.pending.Store(next)
	} else {
		c.live.Store(next)
	}
	c.mu.Unlock()
	c.bus.CommitAll(next)
}

// FactoryPresets lists the state files shipped in the format's preset folder.
func (c *Controller) FactoryPresets() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.format.PresetFolder(), "*.state"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
