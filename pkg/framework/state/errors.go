package state

import (
	"errors"
	"fmt"
)

// Hard load failures. Each is wrapped with detail; match with errors.Is.
var (
	ErrBadMagic       = errors.New("state: not a plugin state blob")
	ErrTruncated      = errors.New("state: truncated data")
	ErrTrailingData   = errors.New("state: trailing data after last entry")
	ErrPluginMismatch = errors.New("state: blob belongs to another plugin")
	ErrFormatVersion  = errors.New("state: unsupported format version")
	ErrCorruptEntry   = errors.New("state: corrupt entry")
)

// WarnKind classifies a recoverable load condition.
type WarnKind uint8

const (
	// WarnTypeMismatch: the stored value has a different type than the
	// current parameter; the default was used.
	WarnTypeMismatch WarnKind = iota + 1
	// WarnUnknownItem: a list parameter names an item that no longer exists;
	// the default was used.
	WarnUnknownItem
	// WarnNewerVersion: the blob was written by a newer major plugin version.
	WarnNewerVersion
)

// String returns the warning kind name.
func (k WarnKind) String() string {
	switch k {
	case WarnTypeMismatch:
		return "type-mismatch"
	case WarnUnknownItem:
		return "unknown-item"
	case WarnNewerVersion:
		return "newer-version"
	default:
		return fmt.Sprintf("warn(%d)", uint8(k))
	}
}

// Warning is one non-fatal load diagnostic. ID names the parameter instance
// and is empty for blob-level warnings.
type Warning struct {
	Kind    WarnKind
	ID      string
	Message string
}

func (w Warning) String() string {
	if w.ID == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.ID, w.Message)
}

// Diagnostics collects the warnings of one load.
type Diagnostics []Warning

// IDs returns the parameter ids named by warnings, in order.
func (d Diagnostics) IDs() []string {
	var out []string
	for _, w := range d {
		if w.ID != "" {
			out = append(out, w.ID)
		}
	}
	return out
}

// Has reports whether any warning is of kind k.
func (d Diagnostics) Has(k WarnKind) bool {
	for _, w := range d {
		if w.Kind == k {
			return true
		}
	}
	return false
}

// Strings renders every warning.
func (d Diagnostics) Strings() []string {
	out := make([]string, len(d))
	for i, w := range d {
		out[i] = w.String()
	}
	return out
}
