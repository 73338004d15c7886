// Package plugin holds plugin identity and the host-facing records the core
// exchanges with a host adapter: format capabilities and context menu trees.
package plugin

import (
	"crypto/md5"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic plugin version.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// ParseVersion parses "1", "1.2" or "1.2.3".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version: %q", s)
	}
	var out [3]uint16
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version: %q", s)
		}
		out[i] = uint16(n)
	}
	return Version{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Vendor   string // Company/developer name
	Version  Version
	Category string // Plugin category (e.g., "Fx", "Instrument")
}

// ErrEmptyID is returned by ValidateUID for an Info without an ID.
var ErrEmptyID = errors.New("plugin: empty plugin id")

// UID derives the 16-byte class id hosts use to identify the plugin. It only
// depends on ID, so it is stable across versions.
func (i Info) UID() [16]byte {
	return md5.Sum([]byte(i.ID))
}

// ValidateUID checks that the plugin can produce a usable UID.
func (i Info) ValidateUID() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrEmptyID
	}
	if i.UID() == ([16]byte{}) {
		return fmt.Errorf("plugin: zero uid for %q", i.ID)
	}
	return nil
}

// String returns "Vendor Name version".
func (i Info) String() string {
	return fmt.Sprintf("%s %s %s", i.Vendor, i.Name, i.Version)
}
