// Package prefs is a per-user preference store, unrelated to parameter
// state. Values are addressed by (vendor, plugin, scope, key).
//
// A Store is opened by the host adapter, handed to whatever needs it and
// closed on teardown. Close writes pending changes.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/justyntemme/plugcore/pkg/framework/debug"
)

var (
	ErrClosed     = errors.New("prefs: store is closed")
	ErrInvalidKey = errors.New("prefs: key parts must not be empty")
	ErrValueType  = errors.New("prefs: unsupported value type")
)

// Key addresses one preference.
type Key struct {
	Vendor string
	Plugin string
	Scope  string
	Name   string
}

func (k Key) String() string {
	return strings.Join([]string{k.Vendor, k.Plugin, k.Scope, k.Name}, "/")
}

func (k Key) valid() bool {
	for _, p := range []string{k.Vendor, k.Plugin, k.Scope, k.Name} {
		if strings.TrimSpace(p) == "" {
			return false
		}
	}
	return true
}

// tree is vendor -> plugin -> scope -> name -> value, the TOML file layout.
type tree map[string]map[string]map[string]map[string]interface{}

// Store holds preferences in memory and persists them as TOML.
type Store struct {
	mu     sync.Mutex
	path   string
	data   tree
	dirty  bool
	closed bool
}

// Open loads the store at path. A missing file yields an empty store. An
// empty path gives a store that is never written.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: tree{}}
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s.data); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("prefs: load %s: %w", path, err)
	}
	if s.data == nil {
		s.data = tree{}
	}
	for _, plugins := range s.data {
		for _, scopes := range plugins {
			for _, values := range scopes {
				for name, v := range values {
					values[name] = normalize(v)
				}
			}
		}
	}
	debug.Debug("prefs: opened %s", path)
	return s, nil
}

// normalize maps decoded TOML arrays to []string.
func normalize(v interface{}) interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return v
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, fmt.Sprint(e))
	}
	return out
}

func coerce(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string, bool, int64, float64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case []string:
		return append([]string(nil), x...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrValueType, v)
	}
}

func (s *Store) lookup(k Key) (interface{}, bool) {
	v, ok := s.data[k.Vendor][k.Plugin][k.Scope][k.Name]
	return v, ok
}

// Get returns the raw value at k: string, bool, int64, float64 or []string.
func (s *Store) Get(k Key) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.lookup(k)
	if list, isList := v.([]string); isList {
		v = append([]string(nil), list...)
	}
	return v, ok
}

// String returns the string at k or def.
func (s *Store) String(k Key, def string) string {
	if v, ok := s.Get(k); ok {
		if x, ok := v.(string); ok {
			return x
		}
	}
	return def
}

// Bool returns the bool at k or def.
func (s *Store) Bool(k Key, def bool) bool {
	if v, ok := s.Get(k); ok {
		if x, ok := v.(bool); ok {
			return x
		}
	}
	return def
}

// Int returns the integer at k or def.
func (s *Store) Int(k Key, def int64) int64 {
	if v, ok := s.Get(k); ok {
		if x, ok := v.(int64); ok {
			return x
		}
	}
	return def
}

// Float returns the number at k or def. Integers are widened.
func (s *Store) Float(k Key, def float64) float64 {
	if v, ok := s.Get(k); ok {
		switch x := v.(type) {
		case float64:
			return x
		case int64:
			return float64(x)
		}
	}
	return def
}

// Strings returns the list at k or nil.
func (s *Store) Strings(k Key) []string {
	if v, ok := s.Get(k); ok {
		if x, ok := v.([]string); ok {
			return x
		}
	}
	return nil
}

// Set stores v at k.
func (s *Store) Set(k Key, v interface{}) error {
	if !k.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidKey, k)
	}
	v, err := coerce(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	plugins := s.data[k.Vendor]
	if plugins == nil {
		plugins = map[string]map[string]map[string]interface{}{}
		s.data[k.Vendor] = plugins
	}
	scopes := plugins[k.Plugin]
	if scopes == nil {
		scopes = map[string]map[string]interface{}{}
		plugins[k.Plugin] = scopes
	}
	values := scopes[k.Scope]
	if values == nil {
		values = map[string]interface{}{}
		scopes[k.Scope] = values
	}
	values[k.Name] = v
	s.dirty = true
	return nil
}

// Delete removes k. Removing a missing key is not an error.
func (s *Store) Delete(k Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.lookup(k); ok {
		delete(s.data[k.Vendor][k.Plugin][k.Scope], k.Name)
		s.dirty = true
	}
	return nil
}

// Names returns the sorted names stored under one scope.
func (s *Store) Names(vendor, plugin, scope string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.data[vendor][plugin][scope]
	out := make([]string, 0, len(values))
	for name := range values {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Flush writes pending changes.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.dirty || s.path == "" {
		return nil
	}
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(s.data); err != nil {
		return fmt.Errorf("prefs: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("prefs: %w", err)
	}
	s.dirty = false
	return nil
}

// Close flushes and releases the store. Later calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	err := s.flushLocked()
	s.closed = true
	return err
}
