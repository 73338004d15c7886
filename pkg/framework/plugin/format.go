package plugin

import (
	"path/filepath"
	"strings"
)

// FormatKind identifies the host plugin format an adapter implements.
type FormatKind uint8

const (
	FormatVST3 FormatKind = iota + 1
	FormatCLAP
)

// String returns the conventional format name.
func (k FormatKind) String() string {
	switch k {
	case FormatVST3:
		return "VST3"
	case FormatCLAP:
		return "CLAP"
	default:
		return "unknown"
	}
}

// Format is the capability record a host adapter selects at startup and hands
// to the core. The core reads it and never asks which format is active.
type Format struct {
	Kind FormatKind
	// ResourcesFolder is where bundled presets and assets live.
	ResourcesFolder string
	// HostParamMenus is set when the host can merge its own entries into a
	// parameter context menu.
	HostParamMenus bool
	// ModuleMenus is set when module context menus (clear/copy/swap) may be shown.
	ModuleMenus bool
}

// VST3Format builds the record for a VST3 bundle. binaryPath points to the
// shared library inside <name>.vst3/Contents/<arch>/.
func VST3Format(binaryPath string) Format {
	contents := filepath.Dir(filepath.Dir(binaryPath))
	return Format{
		Kind:            FormatVST3,
		ResourcesFolder: filepath.Join(contents, "Resources"),
		HostParamMenus:  true,
		ModuleMenus:     true,
	}
}

// CLAPFormat builds the record for a CLAP plugin. Resources sit next to the
// binary in a folder named after it.
func CLAPFormat(binaryPath string) Format {
	dir, file := filepath.Split(binaryPath)
	name := strings.TrimSuffix(file, filepath.Ext(file))
	return Format{
		Kind:            FormatCLAP,
		ResourcesFolder: filepath.Join(dir, name+".resources"),
		HostParamMenus:  false,
		ModuleMenus:     true,
	}
}

// PresetFolder is the subfolder of ResourcesFolder holding factory presets.
func (f Format) PresetFolder() string {
	return filepath.Join(f.ResourcesFolder, "presets")
}
