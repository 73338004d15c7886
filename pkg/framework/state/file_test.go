package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/plugcore/pkg/framework/param"
)

func TestFileRoundTrip(t *testing.T) {
	d := gainDesc()
	m := NewManager(d)
	c := New(d)
	c.SetPlain(2, param.Bool(true))

	path := filepath.Join(t.TempDir(), "presets", "init.state")
	require.NoError(t, m.SaveFile(path, c))

	loaded, diags, err := m.LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, c.Snapshot(), loaded.Snapshot())
}

func TestFileErrorsAreDistinct(t *testing.T) {
	m := NewManager(gainDesc())
	dir := t.TempDir()

	_, _, err := m.LoadFile(filepath.Join(dir, "missing.state"))
	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "read", ferr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.state")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))
	_, _, err = m.LoadFile(bad)
	assert.ErrorIs(t, err, ErrBadMagic)
	assert.False(t, errors.As(err, &ferr))
}
