package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettings struct {
	base, open string
	saveErr    error
	saves      int
}

func (m *memSettings) BaseDir() string       { return m.base }
func (m *memSettings) SetBaseDir(dir string) { m.base = dir }
func (m *memSettings) OpenDir() string       { return m.open }
func (m *memSettings) SetOpenDir(dir string) { m.open = dir }
func (m *memSettings) Save() error {
	m.saves++
	return m.saveErr
}

type fakeReloader struct {
	err       error
	prepared  Paths
	committed bool
}

func (f *fakeReloader) PrepareReload(p Paths) (func(), error) {
	f.prepared = p
	if f.err != nil {
		return nil, f.err
	}
	return func() { f.committed = true }, nil
}

func TestNewCreatesImageDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "fresh")
	s, err := New(&memSettings{base: base}, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "key_map.json"), s.KeyMapPath())
	assert.Equal(t, filepath.Join(base, "switch_info.json"), s.CatalogPath())
	assert.Equal(t, filepath.Join(base, "images"), s.ImageDir())
	assert.DirExists(t, s.ImageDir())
}

func TestNewReportsImageDirFailure(t *testing.T) {
	base := t.TempDir()
	// A regular file where the image directory should go
	require.NoError(t, os.WriteFile(filepath.Join(base, "images"), []byte("x"), 0644))

	_, err := New(&memSettings{base: base}, nil)
	assert.Error(t, err)
}

func TestChangeBaseDirRejectsInvalid(t *testing.T) {
	settings := &memSettings{base: t.TempDir()}
	s, err := New(settings, nil)
	require.NoError(t, err)
	before := s.Paths()

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	for _, target := range []string{filepath.Join(t.TempDir(), "missing"), file} {
		err := s.ChangeBaseDir(target)
		assert.True(t, errors.Is(err, ErrInvalidDirectory), "target %s: %v", target, err)
	}
	assert.Equal(t, before, s.Paths())
	assert.Zero(t, settings.saves)
}

func TestChangeBaseDirReloadsAll(t *testing.T) {
	settings := &memSettings{base: t.TempDir()}
	s, err := New(settings, nil)
	require.NoError(t, err)

	km, cat := &fakeReloader{}, &fakeReloader{}
	s.Attach(km, cat)

	target := t.TempDir()
	require.NoError(t, s.ChangeBaseDir(target))

	assert.True(t, km.committed)
	assert.True(t, cat.committed)
	assert.Equal(t, PathsFor(target), km.prepared)
	assert.Equal(t, target, s.BaseDir())
	assert.Equal(t, target, settings.base)
	assert.DirExists(t, filepath.Join(target, "images"))
}

func TestChangeBaseDirAllOrNothing(t *testing.T) {
	original := t.TempDir()
	settings := &memSettings{base: original}
	s, err := New(settings, nil)
	require.NoError(t, err)

	km := &fakeReloader{}
	cat := &fakeReloader{err: errors.New("corrupt catalog")}
	s.Attach(km, cat)

	err = s.ChangeBaseDir(t.TempDir())
	require.Error(t, err)
	assert.False(t, km.committed, "no repository may switch when another fails")
	assert.Equal(t, original, s.BaseDir())
	assert.Equal(t, original, settings.base)
}

func TestReload(t *testing.T) {
	base := t.TempDir()
	settings := &memSettings{base: base}
	s, err := New(settings, nil)
	require.NoError(t, err)

	km := &fakeReloader{}
	s.Attach(km)
	require.NoError(t, s.Reload())
	assert.True(t, km.committed)
	assert.Equal(t, PathsFor(base), km.prepared)
	assert.Zero(t, settings.saves, "reload must not touch settings")
}

func TestReloadAllOrNothing(t *testing.T) {
	s, err := New(&memSettings{base: t.TempDir()}, nil)
	require.NoError(t, err)

	km := &fakeReloader{}
	cat := &fakeReloader{err: errors.New("corrupt catalog")}
	s.Attach(km, cat)

	require.Error(t, s.Reload())
	assert.False(t, km.committed, "key map must not switch when the catalog fails")
}

func TestChangeBaseDirSettingsSaveFailure(t *testing.T) {
	original := t.TempDir()
	settings := &memSettings{base: original, saveErr: errors.New("disk full")}
	s, err := New(settings, nil)
	require.NoError(t, err)
	km := &fakeReloader{}
	s.Attach(km)

	require.Error(t, s.ChangeBaseDir(t.TempDir()))
	assert.False(t, km.committed)
	assert.Equal(t, original, settings.base)
	assert.Equal(t, original, s.BaseDir())
}

func TestOpenDir(t *testing.T) {
	settings := &memSettings{base: t.TempDir(), open: "/home/u/Downloads"}
	s, err := New(settings, nil)
	require.NoError(t, err)

	assert.Equal(t, "/home/u/Downloads", s.OpenDir())
	require.NoError(t, s.SetOpenDir("/home/u/Pictures"))
	assert.Equal(t, "/home/u/Pictures", s.OpenDir())
	assert.Equal(t, 1, settings.saves)

	settings.saveErr = errors.New("read-only")
	assert.Error(t, s.SetOpenDir("/tmp"))
	assert.Equal(t, "/home/u/Pictures", s.OpenDir())
}
