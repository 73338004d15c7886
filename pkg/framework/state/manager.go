package state

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/desc"
	"github.com/justyntemme/plugcore/pkg/framework/param"
	"github.com/justyntemme/plugcore/pkg/framework/plugin"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

// Header identifies the plugin a blob was saved by.
type Header struct {
	FormatVersion uint32
	Vendor        string
	PluginID      string
	Name          string
	Version       plugin.Version
	Entries       int
}

// Manager serializes containers of one compiled plugin.
//
// Entries are keyed by (module id, module slot, param id, param slot), so a
// blob survives parameters being added, removed or reordered. Output
// parameters are not saved.
type Manager struct {
	desc *desc.PluginDesc
	info plugin.Info
	log  *debug.Logger
}

// NewManager creates a codec bound to d.
func NewManager(d *desc.PluginDesc) *Manager {
	return &Manager{desc: d, info: d.Topo.Info, log: debug.Default().With("state")}
}

// Save encodes c. It does not fail.
func (m *Manager) Save(c *Container) []byte {
	w := &writer{buf: make([]byte, 0, 64+32*c.Len())}
	w.buf = append(w.buf, magic[:]...)
	w.u32(formatVersion)
	w.str(m.info.Vendor)
	w.str(m.info.ID)
	w.str(m.info.Name)
	w.u16(m.info.Version.Major)
	w.u16(m.info.Version.Minor)
	w.u16(m.info.Version.Patch)

	count := 0
	for i := range m.desc.Params {
		if m.desc.Params[i].Param.Dir == topo.Input {
			count++
		}
	}
	w.u32(uint32(count))

	for i := range m.desc.Params {
		pd := &m.desc.Params[i]
		if pd.Param.Dir != topo.Input {
			continue
		}
		w.str(pd.Module.ID)
		w.u32(uint32(pd.ModuleSlot))
		w.str(pd.Param.ID)
		w.u32(uint32(pd.ParamSlot))
		tag, payload := encodeValue(&pd.Param.Domain, c.Plain(i))
		w.field(tag, payload)
	}
	return w.buf
}

func encodeValue(d *param.Domain, v param.PlainValue) (uint8, []byte) {
	switch d.Type {
	case param.TypeToggle:
		if v.Bool() {
			return tagBool, []byte{1}
		}
		return tagBool, []byte{0}
	case param.TypeList:
		return tagList, []byte(d.Items[v.Step()].ID)
	case param.TypeStep:
		return tagStep, binary.LittleEndian.AppendUint64(nil, uint64(int64(v.Step())))
	default:
		return tagReal, binary.LittleEndian.AppendUint64(nil, math.Float64bits(v.Real()))
	}
}

func expectedTag(t param.Type) uint8 {
	switch t {
	case param.TypeToggle:
		return tagBool
	case param.TypeStep:
		return tagStep
	case param.TypeList:
		return tagList
	default:
		return tagReal
	}
}

// ReadHeader decodes only the blob header.
func ReadHeader(data []byte) (Header, error) {
	r := &reader{data: data}
	return readHeader(r)
}

func readHeader(r *reader) (Header, error) {
	if !bytes.HasPrefix(r.data, magic[:]) {
		return Header{}, ErrBadMagic
	}
	r.off = len(magic)
	h := Header{FormatVersion: r.u32("format version")}
	if r.err == nil && (h.FormatVersion == 0 || h.FormatVersion > formatVersion) {
		return Header{}, fmt.Errorf("%w: %d (supported %d)", ErrFormatVersion, h.FormatVersion, formatVersion)
	}
	h.Vendor = r.str("vendor")
	h.PluginID = r.str("plugin id")
	h.Name = r.str("plugin name")
	h.Version.Major = r.u16("version")
	h.Version.Minor = r.u16("version")
	h.Version.Patch = r.u16("version")
	h.Entries = int(r.u32("entry count"))
	if r.err != nil {
		return Header{}, r.err
	}
	return h, nil
}

// Load decodes data into a new container. On error no container is
// returned; warnings never make Load fail.
func (m *Manager) Load(data []byte) (*Container, Diagnostics, error) {
	r := &reader{data: data}
	h, err := readHeader(r)
	if err != nil {
		return nil, nil, err
	}
	if h.PluginID != m.info.ID {
		return nil, nil, fmt.Errorf("%w: %q, expected %q", ErrPluginMismatch, h.PluginID, m.info.ID)
	}

	var diags Diagnostics
	if h.Version.Major > m.info.Version.Major {
		diags = append(diags, Warning{
			Kind:    WarnNewerVersion,
			Message: fmt.Sprintf("saved by version %s, running %s", h.Version, m.info.Version),
		})
	}

	c := New(m.desc)
	applied, skipped := 0, 0
	for n := 0; n < h.Entries; n++ {
		moduleID := r.str("module id")
		mslot := int(r.u32("module slot"))
		paramID := r.str("param id")
		pslot := int(r.u32("param slot"))
		tag := r.u8("value tag")
		payload := r.take(int(r.u32("value length")), "value")
		if r.err != nil {
			return nil, nil, fmt.Errorf("entry %d: %w", n, r.err)
		}

		index, ok := m.resolve(moduleID, mslot, paramID, pslot)
		if !ok {
			skipped++
			continue
		}
		w, err := m.apply(c, index, tag, payload)
		if err != nil {
			return nil, nil, fmt.Errorf("entry %d (%s): %w", n, m.desc.Params[index].ID, err)
		}
		if w != nil {
			diags = append(diags, *w)
			continue
		}
		applied++
	}
	if r.remaining() > 0 {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, r.remaining())
	}

	m.log.Debug("loaded %s %s: %d applied, %d skipped, %d warnings",
		h.PluginID, h.Version, applied, skipped, len(diags))
	for _, w := range diags {
		m.log.Warn("%s", w)
	}
	return c, diags, nil
}

// Restore loads data into c. On error c is left untouched.
func (m *Manager) Restore(c *Container, data []byte) (Diagnostics, error) {
	loaded, diags, err := m.Load(data)
	if err != nil {
		return nil, err
	}
	c.CopyFrom(loaded)
	return diags, nil
}

// resolve maps a persisted key to a global index of an input parameter.
func (m *Manager) resolve(moduleID string, mslot int, paramID string, pslot int) (int, bool) {
	mi, ok := m.desc.Topo.ModuleIndex(moduleID)
	if !ok {
		return 0, false
	}
	pi, ok := m.desc.Topo.Modules[mi].ParamIndex(paramID)
	if !ok {
		return 0, false
	}
	g, ok := m.desc.ParamIndex(mi, mslot, pi, pslot)
	if !ok || m.desc.Params[g].Param.Dir != topo.Input {
		return 0, false
	}
	return g, true
}

// apply writes one decoded entry. A returned warning means the default was
// kept; an error means the payload is malformed.
func (m *Manager) apply(c *Container, index int, tag uint8, payload []byte) (*Warning, error) {
	pd := &m.desc.Params[index]
	d := &pd.Param.Domain
	if want := expectedTag(d.Type); tag != want {
		return &Warning{
			Kind:    WarnTypeMismatch,
			ID:      pd.ID,
			Message: fmt.Sprintf("stored %s, expected %s", tagName(tag), tagName(want)),
		}, nil
	}

	switch tag {
	case tagBool:
		if len(payload) != 1 {
			return nil, fmt.Errorf("%w: bool payload of %d bytes", ErrCorruptEntry, len(payload))
		}
		c.SetPlain(index, param.Bool(payload[0] != 0))
	case tagStep:
		if len(payload) != 8 {
			return nil, fmt.Errorf("%w: step payload of %d bytes", ErrCorruptEntry, len(payload))
		}
		c.SetPlain(index, d.FromFloat(float64(int64(binary.LittleEndian.Uint64(payload)))))
	case tagReal:
		if len(payload) != 8 {
			return nil, fmt.Errorf("%w: real payload of %d bytes", ErrCorruptEntry, len(payload))
		}
		c.SetPlain(index, d.FromFloat(math.Float64frombits(binary.LittleEndian.Uint64(payload))))
	case tagList:
		item, ok := d.ItemIndex(string(payload))
		if !ok {
			return &Warning{
				Kind:    WarnUnknownItem,
				ID:      pd.ID,
				Message: fmt.Sprintf("no item %q", string(payload)),
			}, nil
		}
		c.SetPlain(index, param.Step(item))
	}
	return nil, nil
}
