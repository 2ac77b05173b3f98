package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/averyn/modlaunch/internal/game"
)

func TestInstalledDetection(t *testing.T) {
	var b BepInEx

	empty := game.Installation{Root: t.TempDir()}
	if b.Installed(empty) {
		t.Fatalf("empty root should not count as installed")
	}

	withCore := game.Installation{Root: t.TempDir()}
	if err := os.MkdirAll(filepath.Join(withCore.Root, "BepInEx", "core"), 0o750); err != nil {
		t.Fatal(err)
	}
	if !b.Installed(withCore) {
		t.Fatalf("core dir should count as installed")
	}

	withProxy := game.Installation{Root: t.TempDir()}
	if err := os.WriteFile(filepath.Join(withProxy.Root, "winhttp.dll"), []byte{0}, 0o640); err != nil {
		t.Fatal(err)
	}
	if !b.Installed(withProxy) {
		t.Fatalf("doorstop proxy should count as installed")
	}

	// A stray plugins dir alone is not an install.
	leftover := game.Installation{Root: t.TempDir()}
	if err := os.MkdirAll(filepath.Join(leftover.Root, "BepInEx", "plugins"), 0o750); err != nil {
		t.Fatal(err)
	}
	if b.Installed(leftover) {
		t.Fatalf("plugins dir alone should not count as installed")
	}
}

func TestEnsurePluginDirIdempotent(t *testing.T) {
	var b BepInEx
	inst := game.Installation{Root: t.TempDir()}
	for i := 0; i < 2; i++ {
		if err := b.EnsurePluginDir(inst); err != nil {
			t.Fatalf("EnsurePluginDir attempt %d: %v", i, err)
		}
	}
	fi, err := os.Stat(b.PluginDir(inst))
	if err != nil || !fi.IsDir() {
		t.Fatalf("plugin dir not created: %v", err)
	}
}

func TestPaths(t *testing.T) {
	var b BepInEx
	inst := game.Installation{Root: "/games/valheim"}
	if got, want := b.ScriptPath(inst), filepath.Join("/games/valheim", "run_bepinex.sh"); got != want {
		t.Fatalf("ScriptPath = %q, want %q", got, want)
	}
	if got, want := b.PluginDir(inst), filepath.Join("/games/valheim", "BepInEx", "plugins"); got != want {
		t.Fatalf("PluginDir = %q, want %q", got, want)
	}
}
