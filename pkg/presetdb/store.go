// Package presetdb is a SQLite bank of named state blobs.
package presetdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/justyntemme/plugcore/pkg/framework/state"
)

// ErrNotFound is returned when no preset has the requested name.
var ErrNotFound = errors.New("presetdb: preset not found")

// Preset is one stored blob. PluginID and Version come from the blob header.
type Preset struct {
	ID       int64
	PluginID string
	Name     string
	Version  string
	Data     []byte
	Created  time.Time
	Updated  time.Time
}

// Store is the SQLite data access layer for presets.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database at dbPath with WAL mode enabled.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS presets (
  id         INTEGER PRIMARY KEY,
  plugin_id  TEXT NOT NULL,
  name       TEXT NOT NULL,
  version    TEXT NOT NULL,
  data       BLOB NOT NULL,
  created_at TIMESTAMP NOT NULL,
  updated_at TIMESTAMP NOT NULL,
  UNIQUE (plugin_id, name)
);

CREATE INDEX IF NOT EXISTS idx_presets_plugin ON presets(plugin_id);
`

// Put stores blob under name, replacing a preset of the same plugin and
// name. The blob header must decode.
func (s *Store) Put(name string, blob []byte) (*Preset, error) {
	h, err := state.ReadHeader(blob)
	if err != nil {
		return nil, fmt.Errorf("put preset %q: %w", name, err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	_, err = s.db.Exec(`
INSERT INTO presets (plugin_id, name, version, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (plugin_id, name) DO UPDATE SET
  version = excluded.version,
  data = excluded.data,
  updated_at = excluded.updated_at`,
		h.PluginID, name, h.Version.String(), blob, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("put preset %q: %w", name, err)
	}
	return s.Get(h.PluginID, name)
}

func scanPreset(scanner interface{ Scan(...any) error }) (*Preset, error) {
	p := &Preset{}
	if err := scanner.Scan(&p.ID, &p.PluginID, &p.Name, &p.Version, &p.Data, &p.Created, &p.Updated); err != nil {
		return nil, err
	}
	return p, nil
}

const presetColumns = "id, plugin_id, name, version, data, created_at, updated_at"

// Get returns the preset of pluginID called name.
func (s *Store) Get(pluginID, name string) (*Preset, error) {
	p, err := scanPreset(s.db.QueryRow(
		"SELECT "+presetColumns+" FROM presets WHERE plugin_id = ? AND name = ?", pluginID, name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, pluginID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	return p, nil
}

// List returns the presets of pluginID ordered by name.
func (s *Store) List(pluginID string) ([]*Preset, error) {
	rows, err := s.db.Query(
		"SELECT "+presetColumns+" FROM presets WHERE plugin_id = ? ORDER BY name", pluginID,
	)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()
	var out []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a preset. Deleting a missing preset returns ErrNotFound.
func (s *Store) Delete(pluginID, name string) error {
	res, err := s.db.Exec("DELETE FROM presets WHERE plugin_id = ? AND name = ?", pluginID, name)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, pluginID, name)
	}
	return nil
}
