package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/averyn/modlaunch/internal/game"
)

// Fixed locations under an install root. These must match the layout the
// BepInEx installer produces; the launcher treats them as conventions, not
// configuration.
const (
	// ScriptName is the bundled shell launch script used for modded
	// launches on non-Windows hosts. The script injects the doorstop
	// preloader and execs the real game binary itself.
	ScriptName = "run_bepinex.sh"

	// pluginDirRel is where BepInEx scans for plugins at game startup.
	pluginDirRel = "BepInEx/plugins"

	// coreDirRel holds the loader runtime assemblies.
	coreDirRel = "BepInEx/core"

	// proxyName is the doorstop entry-point proxy dropped next to the game
	// executable on Windows installs.
	proxyName = "winhttp.dll"
)

// BepInEx answers questions about the loader's presence and layout for a
// given installation. The zero value is ready to use.
type BepInEx struct{}

// Installed reports whether the BepInEx runtime is present under the install
// root. Either the core assembly directory or the doorstop proxy counts; a
// plugins directory alone does not (it may be a leftover).
func (BepInEx) Installed(inst game.Installation) bool {
	core := filepath.Join(inst.Root, filepath.FromSlash(coreDirRel))
	if fi, err := os.Stat(core); err == nil && fi.IsDir() {
		return true
	}
	proxy := filepath.Join(inst.Root, proxyName)
	if fi, err := os.Stat(proxy); err == nil && !fi.IsDir() {
		return true
	}
	return false
}

// PluginDir returns the absolute plugin directory path for the installation.
func (BepInEx) PluginDir(inst game.Installation) string {
	return filepath.Join(inst.Root, filepath.FromSlash(pluginDirRel))
}

// ScriptPath returns the absolute path of the bundled launch script.
func (BepInEx) ScriptPath(inst game.Installation) string {
	return filepath.Join(inst.Root, ScriptName)
}

// EnsurePluginDir creates the plugin directory if it is missing so that a
// first launch always sees a consistent layout. Idempotent.
func (b BepInEx) EnsurePluginDir(inst game.Installation) error {
	dir := b.PluginDir(inst)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure plugin dir %s: %w", dir, err)
	}
	return nil
}
