// Package desc compiles a topology into flat, globally addressed module and
// parameter descriptors.
//
// Global module index = sum of slot counts of all preceding module types +
// slot. Global parameter index = sum of parameter instance counts of all
// preceding module instances + local index. Both spaces are dense and
// zero-based. A PluginDesc is immutable once compiled and may be shared by
// any number of goroutines.
package desc

import (
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
)

// ParamDesc is one (module instance, parameter instance) pair.
type ParamDesc struct {
	Module *topo.ModuleTopo
	Param  *topo.ParamTopo

	ModuleTopo   int // module topology index
	ModuleSlot   int
	ModuleGlobal int
	ParamTopo    int // parameter topology index within the module
	ParamSlot    int
	Local        int // position within the module instance
	Global       int

	ID   string // stable "module-mslot-param-pslot" identifier
	Name string
	Tag  uint32 // stable host parameter id derived from ID
}

// ModuleDesc is one (module type, slot) pair.
type ModuleDesc struct {
	Module *topo.ModuleTopo

	Topo   int
	Slot   int
	Global int
	ID     string
	Name   string

	// ParamStart is the global index of the first parameter of this module.
	ParamStart int
	// Params is a view into PluginDesc.Params.
	Params []ParamDesc
}

// PluginDesc is the compiled topology: the single source of truth for
// addressing.
type PluginDesc struct {
	Topo    *topo.PluginTopo
	Modules []ModuleDesc
	Params  []ParamDesc

	ModuleCount int
	ParamCount  int

	slots       []int
	moduleStart []int   // first global module index per module topology index
	paramIndex  [][]int // [module topo][param topo] -> local index of param slot 0
	byID        map[string]int
	byTag       map[uint32]int
}

// Compile expands t with the given per-module slot counts. A nil slots slice
// uses the topology's declared counts. Zero is a valid count. Compile aborts
// when slots does not match the topology; that is an author defect.
func Compile(t *topo.PluginTopo, slots []int) *PluginDesc {
	if slots == nil {
		slots = t.DefaultSlots()
	}
	debug.Assert(len(slots) == len(t.Modules),
		"desc: %d slot counts for %d modules", len(slots), len(t.Modules))

	d := &PluginDesc{
		Topo:        t,
		slots:       append([]int(nil), slots...),
		moduleStart: make([]int, len(t.Modules)),
		paramIndex:  make([][]int, len(t.Modules)),
	}

	moduleCount, paramCount := 0, 0
	for mi := range t.Modules {
		m := &t.Modules[mi]
		debug.Assert(slots[mi] >= 0, "desc: module %s has negative slot count %d", m.ID, slots[mi])
		d.moduleStart[mi] = moduleCount
		d.paramIndex[mi] = localOffsets(m)
		moduleCount += slots[mi]
		paramCount += slots[mi] * m.ParamInstances()
	}

	d.Modules = make([]ModuleDesc, 0, moduleCount)
	d.Params = make([]ParamDesc, 0, paramCount)
	d.byID = make(map[string]int, paramCount)
	d.byTag = make(map[uint32]int, paramCount)

	for mi := range t.Modules {
		m := &t.Modules[mi]
		for slot := 0; slot < slots[mi]; slot++ {
			md := ModuleDesc{
				Module:     m,
				Topo:       mi,
				Slot:       slot,
				Global:     len(d.Modules),
				ID:         ModuleID(m, slot),
				Name:       moduleName(m, slot),
				ParamStart: len(d.Params),
			}
			local := 0
			for pi := range m.Params {
				p := &m.Params[pi]
				for ps := 0; ps < p.Slots; ps++ {
					pd := ParamDesc{
						Module:       m,
						Param:        p,
						ModuleTopo:   mi,
						ModuleSlot:   slot,
						ModuleGlobal: md.Global,
						ParamTopo:    pi,
						ParamSlot:    ps,
						Local:        local,
						Global:       len(d.Params),
						ID:           ParamID(m, slot, p, ps),
						Name:         paramName(m, slot, p, ps),
					}
					pd.Tag = Tag(pd.ID)
					d.byID[pd.ID] = pd.Global
					d.byTag[pd.Tag] = pd.Global
					d.Params = append(d.Params, pd)
					local++
				}
			}
			d.Modules = append(d.Modules, md)
		}
	}

	// Module param views are taken after Params stops growing.
	for i := range d.Modules {
		md := &d.Modules[i]
		n := md.Module.ParamInstances()
		md.Params = d.Params[md.ParamStart : md.ParamStart+n : md.ParamStart+n]
	}

	d.ModuleCount = len(d.Modules)
	d.ParamCount = len(d.Params)
	debug.Debug("desc: compiled %s: %d modules, %d params", t.Info.ID, d.ModuleCount, d.ParamCount)
	return d
}

func localOffsets(m *topo.ModuleTopo) []int {
	out := make([]int, len(m.Params))
	local := 0
	for pi := range m.Params {
		out[pi] = local
		local += m.Params[pi].Slots
	}
	return out
}

// IDSeparator joins the parts of instance ids. Module and param ids must
// not contain it.
const IDSeparator = "-"

// ModuleID returns the stable identifier of a module instance.
func ModuleID(m *topo.ModuleTopo, slot int) string {
	return m.ID + IDSeparator + strconv.Itoa(slot)
}

// ParamID returns the stable identifier of a parameter instance.
func ParamID(m *topo.ModuleTopo, mslot int, p *topo.ParamTopo, pslot int) string {
	return ModuleID(m, mslot) + IDSeparator + p.ID + IDSeparator + strconv.Itoa(pslot)
}

// Tag hashes a parameter identifier into a host parameter id. The top bit is
// cleared because some hosts reserve negative ids.
func Tag(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32() & 0x7fffffff
}

func moduleName(m *topo.ModuleTopo, slot int) string {
	if m.Slots <= 1 {
		return m.Name
	}
	return fmt.Sprintf("%s %d", m.Name, slot+1)
}

func paramName(m *topo.ModuleTopo, mslot int, p *topo.ParamTopo, pslot int) string {
	name := moduleName(m, mslot) + " " + p.Name
	if p.Slots > 1 {
		name = fmt.Sprintf("%s %d", name, pslot+1)
	}
	return name
}

// Slots returns the slot count the module was compiled with.
func (d *PluginDesc) Slots(module int) int {
	return d.slots[module]
}

// ModuleIndex returns the global index of (module topology index, slot).
func (d *PluginDesc) ModuleIndex(module, slot int) (int, bool) {
	if module < 0 || module >= len(d.slots) || slot < 0 || slot >= d.slots[module] {
		return 0, false
	}
	return d.moduleStart[module] + slot, true
}

// ParamIndex returns the global index of a parameter instance addressed via
// topology indices.
func (d *PluginDesc) ParamIndex(module, mslot, param, pslot int) (int, bool) {
	gm, ok := d.ModuleIndex(module, mslot)
	if !ok {
		return 0, false
	}
	m := &d.Topo.Modules[module]
	if param < 0 || param >= len(m.Params) || pslot < 0 || pslot >= m.Params[param].Slots {
		return 0, false
	}
	return d.Modules[gm].ParamStart + d.paramIndex[module][param] + pslot, true
}

// LocalIndex returns the local index of slot 0 of a parameter within any
// instance of the module.
func (d *PluginDesc) LocalIndex(module, param int) int {
	return d.paramIndex[module][param]
}

// ByID returns the global index of the parameter with the given identifier.
func (d *PluginDesc) ByID(id string) (int, bool) {
	g, ok := d.byID[id]
	return g, ok
}

// ByTag returns the global index of the parameter with the given host tag.
func (d *PluginDesc) ByTag(tag uint32) (int, bool) {
	g, ok := d.byTag[tag]
	return g, ok
}

// Module returns the descriptor of (module topology index, slot).
func (d *PluginDesc) Module(module, slot int) (*ModuleDesc, bool) {
	g, ok := d.ModuleIndex(module, slot)
	if !ok {
		return nil, false
	}
	return &d.Modules[g], true
}
