package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Installation describes one game installation managed by modlaunch.
// Root is the installation directory; Executable is the path of the primary
// game binary relative to Root. The struct is supplied by the caller (config
// file or API request) and never mutated by the launcher.
type Installation struct {
	Name       string   `json:"name" toml:"name" mapstructure:"name"`
	Root       string   `json:"root" toml:"root" mapstructure:"root"`
	Executable string   `json:"executable" toml:"executable" mapstructure:"executable"`
	Env        []string `json:"env,omitempty" toml:"env" mapstructure:"env"`
}

// Key returns the canonical identity of this installation: the cleaned
// absolute root path. All registry bookkeeping is keyed by it, so two
// descriptors pointing at the same directory resolve to the same entry.
func (i Installation) Key() string {
	abs, err := filepath.Abs(i.Root)
	if err != nil {
		return filepath.Clean(i.Root)
	}
	return filepath.Clean(abs)
}

// ExecutablePath resolves the primary executable under the install root.
func (i Installation) ExecutablePath() string {
	return filepath.Join(i.Root, filepath.FromSlash(i.Executable))
}

// DisplayName returns the configured name, falling back to the root's base
// directory for ad-hoc descriptors.
func (i Installation) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return filepath.Base(i.Key())
}

// Validate checks the descriptor shape without touching the filesystem.
// Existence of the executable is checked at launch time, not here.
func (i Installation) Validate() error {
	if strings.TrimSpace(i.Root) == "" {
		return errors.New("installation root is required")
	}
	if strings.TrimSpace(i.Executable) == "" {
		return errors.New("installation executable is required")
	}
	if filepath.IsAbs(i.Executable) {
		return fmt.Errorf("executable must be relative to the install root, got %q", i.Executable)
	}
	rel := filepath.Clean(filepath.FromSlash(i.Executable))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("executable escapes the install root: %q", i.Executable)
	}
	return nil
}

// RootExists reports whether the install root is present on disk.
func (i Installation) RootExists() bool {
	fi, err := os.Stat(i.Root)
	return err == nil && fi.IsDir()
}
