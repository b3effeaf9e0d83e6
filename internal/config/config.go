// Package config resolves where keytester keeps its data: the key map,
// the switch catalog and the managed image directory, all beneath one
// user-selected base directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	KeyMapFile   = "key_map.json"
	CatalogFile  = "switch_info.json"
	ImageDirName = "images"
)

// ErrInvalidDirectory is returned when a base directory does not exist or is not a directory
var ErrInvalidDirectory = errors.New("invalid directory")

// Settings is the persisted preference store the Store reads and updates.
type Settings interface {
	BaseDir() string
	SetBaseDir(dir string)
	OpenDir() string
	SetOpenDir(dir string)
	Save() error
}

// Paths are the locations derived from a base directory.
type Paths struct {
	BaseDir  string
	KeyMap   string
	Catalog  string
	ImageDir string
}

// PathsFor derives all data paths from baseDir.
func PathsFor(baseDir string) Paths {
	return Paths{
		BaseDir:  baseDir,
		KeyMap:   filepath.Join(baseDir, KeyMapFile),
		Catalog:  filepath.Join(baseDir, CatalogFile),
		ImageDir: filepath.Join(baseDir, ImageDirName),
	}
}

// Reloader is a repository that can switch to documents under a new base directory.
// PrepareReload must not change visible state; the returned commit does.
type Reloader interface {
	PrepareReload(paths Paths) (commit func(), err error)
}

// Store resolves data paths and coordinates base directory changes.
type Store struct {
	settings  Settings
	paths     Paths
	reloaders []Reloader
	logger    *slog.Logger
}

// New builds a Store from settings and ensures the image directory exists.
func New(s Settings, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths := PathsFor(s.BaseDir())
	if err := ensureDir(paths.ImageDir); err != nil {
		return nil, err
	}
	return &Store{settings: s, paths: paths, logger: logger}, nil
}

// Attach registers repositories to reload when the base directory changes.
func (s *Store) Attach(r ...Reloader) {
	s.reloaders = append(s.reloaders, r...)
}

// Paths returns the current data paths.
func (s *Store) Paths() Paths { return s.paths }

// BaseDir returns the current base directory.
func (s *Store) BaseDir() string { return s.paths.BaseDir }

// KeyMapPath returns the key map document path.
func (s *Store) KeyMapPath() string { return s.paths.KeyMap }

// CatalogPath returns the switch catalog document path.
func (s *Store) CatalogPath() string { return s.paths.Catalog }

// ImageDir returns the managed image directory.
func (s *Store) ImageDir() string { return s.paths.ImageDir }

// OpenDir returns the last directory a file was selected from.
func (s *Store) OpenDir() string { return s.settings.OpenDir() }

// SetOpenDir remembers dir as the starting point for the next file selection.
func (s *Store) SetOpenDir(dir string) error {
	prev := s.settings.OpenDir()
	s.settings.SetOpenDir(dir)
	if err := s.settings.Save(); err != nil {
		s.settings.SetOpenDir(prev)
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ChangeBaseDir moves all data to be read from and written to newPath.
// Every attached repository reloads from the new location. If any step
// fails, paths, settings and repositories keep their previous state.
func (s *Store) ChangeBaseDir(newPath string) error {
	abs, err := filepath.Abs(newPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, newPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, newPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDirectory, newPath)
	}

	paths := PathsFor(abs)
	if err := ensureDir(paths.ImageDir); err != nil {
		return err
	}

	commits, err := s.prepare(paths)
	if err != nil {
		return err
	}

	prev := s.paths.BaseDir
	s.settings.SetBaseDir(abs)
	if err := s.settings.Save(); err != nil {
		s.settings.SetBaseDir(prev)
		return fmt.Errorf("save settings: %w", err)
	}

	for _, commit := range commits {
		commit()
	}
	s.paths = paths
	s.logger.Info("base directory changed", "from", prev, "to", abs)
	return nil
}

// Reload re-reads every attached repository from the current base directory.
// All documents are parsed before any repository changes.
func (s *Store) Reload() error {
	commits, err := s.prepare(s.paths)
	if err != nil {
		return err
	}
	for _, commit := range commits {
		commit()
	}
	s.logger.Debug("reloaded data files", "base_dir", s.paths.BaseDir)
	return nil
}

// prepare parses every attached repository's documents under paths
func (s *Store) prepare(paths Paths) ([]func(), error) {
	commits := make([]func(), 0, len(s.reloaders))
	for _, r := range s.reloaders {
		commit, err := r.PrepareReload(paths)
		if err != nil {
			return nil, fmt.Errorf("reload from %s: %w", paths.BaseDir, err)
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create image dir %s: %w", dir, err)
	}
	return nil
}
