// Package settings holds the process-wide preferences that outlive a
// session: where the data files live and the last directory a file was
// picked from.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/marcus/keytester/internal/jsonstore"
)

const (
	appDirName   = "keytester"
	settingsFile = "settings.json"

	// EnvBaseDir overrides the stored base directory without persisting it
	EnvBaseDir = "KEYTESTER_BASE_DIR"
)

// Settings is the persisted settings document.
type Settings struct {
	BaseDirValue string `json:"base_dir,omitempty"`
	OpenDirValue string `json:"open_dir,omitempty"`

	// KeyBindings maps "context:key" to a tester command,
	// e.g. {"main:ctrl+s": "edit-switch"}
	KeyBindings map[string]string `json:"key_bindings,omitempty"`

	path string
}

// ConfigDir returns the platform-specific settings directory.
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appDirName), nil
		}
		return "", errors.New("AppData not set")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appDirName), nil
}

// DefaultPath returns the default settings file path.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// DefaultBaseDir returns ~/Documents/KeyTester.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "KeyTester"
	}
	return filepath.Join(home, "Documents", "KeyTester")
}

// DefaultOpenDir returns ~/Downloads.
func DefaultOpenDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads settings from path. A missing file yields defaults.
func LoadFile(path string) (*Settings, error) {
	s := &Settings{path: path}
	if _, err := jsonstore.Load(path, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes settings back to the file they were loaded from.
func (s *Settings) Save() error {
	if s.path == "" {
		return errors.New("settings: no file path")
	}
	return jsonstore.Save(s.path, s)
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

// BaseDir returns the effective base directory: the environment override,
// then the stored value, then the default.
func (s *Settings) BaseDir() string {
	if v := os.Getenv(EnvBaseDir); v != "" {
		return v
	}
	if s.BaseDirValue != "" {
		return s.BaseDirValue
	}
	return DefaultBaseDir()
}

// SetBaseDir stores a new base directory. Call Save to persist.
func (s *Settings) SetBaseDir(dir string) {
	s.BaseDirValue = dir
}

// OpenDir returns the last directory a file was chosen from.
func (s *Settings) OpenDir() string {
	if s.OpenDirValue != "" {
		return s.OpenDirValue
	}
	return DefaultOpenDir()
}

// SetOpenDir stores the last directory used for file selection.
func (s *Settings) SetOpenDir(dir string) {
	s.OpenDirValue = dir
}
