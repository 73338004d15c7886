package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigLayering(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugctl.toml", `
topology = "gain"
db = "bank/presets.db"
log_level = "debug"

[slots]
amp = 1
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gain", cfg.Topology)
	assert.Equal(t, filepath.Join(dir, "bank", "presets.db"), cfg.DB)
	assert.Equal(t, debug.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, map[string]int{"amp": 1}, cfg.Slots)
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plugctl.toml", `topology = "synth.hcl"`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "synth.hcl"), cfg.Topology)
	assert.Equal(t, defaultConfig().DB, cfg.DB)
	assert.Equal(t, debug.LogLevelWarn, cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", `topolgy = "gain"`, "unknown key topolgy"},
		{"bad level", `log_level = "loud"`, "unknown log_level"},
		{"bad toml", `topology = `, "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeFile(t, dir, tt.name+".toml", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSlots(t *testing.T) {
	got, err := parseSlots("osc=1, filter = 2,")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"osc": 1, "filter": 2}, got)

	_, err = parseSlots("osc")
	assert.Error(t, err)
	_, err = parseSlots("osc=two")
	assert.Error(t, err)
}

func TestSlotOverrides(t *testing.T) {
	out, err := run(t, "describe", "--modules", "--slots", "osc=1,matrix=2")
	require.NoError(t, err)
	assert.Contains(t, out, "10 modules")
	assert.Contains(t, out, "matrix-1")
	assert.NotContains(t, out, "osc-1")

	_, err = run(t, "describe", "--slots", "nope=2")
	assert.ErrorContains(t, err, `unknown module "nope"`)
	_, err = run(t, "describe", "--slots", "osc=0")
	assert.ErrorContains(t, err, "at least one slot")
}

func TestDescribeGain(t *testing.T) {
	out, err := run(t, "describe", "--topology", "gain")
	require.NoError(t, err)
	assert.Contains(t, out, "2 modules, 4 parameters")
	assert.Contains(t, out, "amp-1-level-0")
	assert.Contains(t, out, "Amp 2 Level")
}

func TestDescribeFlags(t *testing.T) {
	out, err := run(t, "describe")
	require.NoError(t, err)
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "master-0-meter-0") {
			assert.Contains(t, line, "output")
		}
		if strings.Contains(line, "master-0-bypass-0") {
			assert.Contains(t, line, "hidden,bypass")
		}
	}
}

func TestValidateTopologies(t *testing.T) {
	for _, ref := range []string{"gain", "multisynth", "../../pkg/framework/topofile/testdata/synth.hcl"} {
		out, err := run(t, "validate", "--topology", ref)
		require.NoError(t, err, ref)
		assert.Contains(t, out, "ok: ")
	}

	_, err := run(t, "validate", "--topology", "no-such-thing")
	assert.ErrorContains(t, err, "neither a builtin")
}

func TestStateFileCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.state")

	out, err := run(t, "--topology", "gain", "init-preset", path)
	require.NoError(t, err)
	assert.Contains(t, out, "4 parameters")

	out, err = run(t, "--topology", "gain", "set", path, "amp-0-level-0", "75%")
	require.NoError(t, err)
	assert.Equal(t, "amp-0-level-0 = 75%\n", out)

	out, err = run(t, "--topology", "gain", "set", path, "amp-1-on-0", "on")
	require.NoError(t, err)
	assert.Equal(t, "amp-1-on-0 = On\n", out)

	out, err = run(t, "--topology", "gain", "inspect", "--changed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "plugin com.plugcore.examples.gain 2.0.0")
	assert.Contains(t, out, "amp-0-level-0")
	assert.Contains(t, out, "amp-1-on-0")
	assert.NotContains(t, out, "amp-1-level-0")

	_, err = run(t, "--topology", "gain", "set", path, "amp-9-level-0", "1")
	assert.ErrorContains(t, err, "unknown parameter")

	_, err = run(t, "--topology", "gain", "set", path, "amp-0-level-0", "loud")
	assert.ErrorContains(t, err, "amp-0-level-0")

	// A gain state is not a multisynth state.
	_, err = run(t, "inspect", path)
	assert.ErrorContains(t, err, "another plugin")
}

func TestSetNegativeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.state")
	_, err := run(t, "--topology", "gain", "init-preset", path)
	require.NoError(t, err)

	// Clamped into the 0-100% range.
	out, err := run(t, "--topology", "gain", "set", path, "amp-0-level-0", "-6")
	require.NoError(t, err)
	assert.Equal(t, "amp-0-level-0 = 0%\n", out)

	synth := filepath.Join(t.TempDir(), "synth.state")
	_, err = run(t, "init-preset", synth)
	require.NoError(t, err)
	out, err = run(t, "set", synth, "master-0-gain-0", "-6 dB")
	require.NoError(t, err)
	assert.Equal(t, "master-0-gain-0 = -6.0 dB\n", out)
	out, err = run(t, "set", synth, "osc-0-coarse-0", "-12")
	require.NoError(t, err)
	assert.Equal(t, "osc-0-coarse-0 = -12 st\n", out)
}

func TestSetRejectsOutputParam(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synth.state")
	_, err := run(t, "init-preset", path)
	require.NoError(t, err)

	_, err = run(t, "set", path, "master-0-meter-0", "-6")
	assert.ErrorContains(t, err, "output")
}

func TestInspectReportsWarnings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synth.state")
	_, err := run(t, "init-preset", path)
	require.NoError(t, err)

	// Fewer oscillators: entries of the dropped slots are skipped silently.
	out, err := run(t, "inspect", "--slots", "osc=1", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "warning:")
	assert.NotContains(t, out, "osc-2-")
}

func TestPresetBank(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "bank", "presets.db")
	state := filepath.Join(dir, "pad.state")

	_, err := run(t, "init-preset", state)
	require.NoError(t, err)
	_, err = run(t, "set", state, "filter-0-cutoff-0", "2 kHz")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "preset", "save", "Pad", state)
	require.NoError(t, err)
	assert.Contains(t, out, `saved "Pad" (1.3.0`)

	out, err = run(t, "--db", db, "preset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pad")

	restored := filepath.Join(dir, "restored.state")
	_, err = run(t, "--db", db, "preset", "load", "Pad", restored)
	require.NoError(t, err)
	out, err = run(t, "inspect", "--changed", restored)
	require.NoError(t, err)
	assert.Contains(t, out, "filter-0-cutoff-0")
	assert.Contains(t, out, "2.00 kHz")

	// The gain bank is separate.
	out, err = run(t, "--db", db, "--topology", "gain", "preset", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Pad")

	_, err = run(t, "--db", db, "--topology", "gain", "preset", "save", "Pad", state)
	assert.ErrorContains(t, err, "another plugin")

	_, err = run(t, "--db", db, "preset", "delete", "Pad")
	require.NoError(t, err)
	_, err = run(t, "--db", db, "preset", "delete", "Pad")
	assert.ErrorContains(t, err, `no preset named "Pad"`)
}

func TestBench(t *testing.T) {
	out, err := run(t, "--topology", "gain", "bench", "--rounds", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "3 rounds")
	assert.Contains(t, out, "load")
	assert.Contains(t, out, "save")

	_, err = run(t, "bench", "--rounds", "0")
	assert.Error(t, err)
}
