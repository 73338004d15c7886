package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileError reports a filesystem failure, as opposed to a decode failure.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("state: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// SaveFile writes the encoded state of c to path, replacing it atomically.
func (m *Manager) SaveFile(path string, c *Container) error {
	data := m.Save(c)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &FileError{Op: "mkdir", Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return &FileError{Op: "create", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &FileError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// LoadFile reads and decodes the state stored at path.
func (m *Manager) LoadFile(path string) (*Container, Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &FileError{Op: "read", Path: path, Err: err}
	}
	c, diags, err := m.Load(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, diags, nil
}
