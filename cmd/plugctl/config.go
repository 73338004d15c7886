package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/justyntemme/plugcore/examples/gain"
	"github.com/justyntemme/plugcore/examples/multisynth"
	"github.com/justyntemme/plugcore/pkg/framework/debug"
	"github.com/justyntemme/plugcore/pkg/framework/topo"
	"github.com/justyntemme/plugcore/pkg/framework/topofile"
)

// builtins are the topologies plugctl knows by name.
var builtins = map[string]func() *topo.PluginTopo{
	"gain":       gain.Topology,
	"multisynth": multisynth.Topology,
}

// config is the effective plugctl configuration.
type config struct {
	Topology string
	Slots    map[string]int
	DB       string
	LogLevel debug.LogLevel
}

type fileConfig struct {
	Topology string         `toml:"topology"`
	Slots    map[string]int `toml:"slots"`
	DB       string         `toml:"db"`
	LogLevel string         `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		Topology: "multisynth",
		Slots:    map[string]int{},
		DB:       filepath.Join(".plugcore", "presets.db"),
		LogLevel: debug.LogLevelWarn,
	}
}

// loadConfig layers the file at path onto the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %s", undecoded[0])
	}

	if meta.IsDefined("topology") {
		if t := strings.TrimSpace(raw.Topology); t != "" {
			cfg.Topology = resolveRelative(path, t)
		}
	}
	if meta.IsDefined("slots") {
		for id, n := range raw.Slots {
			cfg.Slots[id] = n
		}
	}
	if meta.IsDefined("db") {
		cfg.DB = resolveRelative(path, strings.TrimSpace(raw.DB))
	}
	if meta.IsDefined("log_level") {
		lvl, ok := debug.ParseLevel(raw.LogLevel)
		if !ok {
			return config{}, fmt.Errorf("load config: unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// resolveRelative makes file references in a config relative to the
// config file. Builtin topology names are left alone.
func resolveRelative(configPath, ref string) string {
	if _, ok := builtins[ref]; ok || ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(configPath), ref)
}

// parseSlots parses "osc=2,filter=1".
func parseSlots(raw string) (map[string]int, error) {
	out := map[string]int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, n, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("slot override %q: expected module=count", part)
		}
		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, fmt.Errorf("slot override %q: %w", part, err)
		}
		out[strings.TrimSpace(id)] = count
	}
	return out, nil
}

// loadTopology resolves a builtin name or an HCL file.
func loadTopology(ref string) (*topo.PluginTopo, error) {
	if build, ok := builtins[ref]; ok {
		return build(), nil
	}
	if _, err := os.Stat(ref); err != nil {
		names := make([]string, 0, len(builtins))
		for name := range builtins {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("topology %q is neither a builtin (%s) nor a readable file: %w",
			ref, strings.Join(names, ", "), err)
	}
	return topofile.Load(ref)
}

// slotCounts applies overrides by module id to the declared slot counts.
func slotCounts(t *topo.PluginTopo, overrides map[string]int) ([]int, error) {
	slots := t.DefaultSlots()
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m, ok := t.ModuleIndex(id)
		if !ok {
			return nil, fmt.Errorf("slot override: unknown module %q", id)
		}
		if overrides[id] <= 0 {
			return nil, fmt.Errorf("slot override: module %q needs at least one slot", id)
		}
		slots[m] = overrides[id]
	}
	return slots, nil
}
