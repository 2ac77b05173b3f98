package launcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLog() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writePlugin(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o640); err != nil {
		t.Fatal(err)
	}
}

func TestHideNoOpWhenPluginDirMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "BepInEx", "plugins")
	s, err := hidePluginDir(dir)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if s.active {
		t.Fatalf("expected inactive swap state for missing dir")
	}
	// restore of a no-op state must do nothing and never error
	s.restore(discardLog())
}

func TestHideRestoreRoundTripPreservesContents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plugins")
	writePlugin(t, dir, "QoLTweaks.dll", "plugin-bytes")

	s, err := hidePluginDir(dir)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if !s.active {
		t.Fatalf("expected active swap state")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("plugin dir should be hidden, stat err = %v", err)
	}

	s.restore(discardLog())
	b, err := os.ReadFile(filepath.Join(dir, "QoLTweaks.dll"))
	if err != nil || string(b) != "plugin-bytes" {
		t.Fatalf("contents changed after round trip: %v %q", err, b)
	}
	if _, err := os.Stat(s.hidden); !os.IsNotExist(err) {
		t.Fatalf("hidden path should be gone after restore")
	}
}

func TestHideDeletesStaleHiddenDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plugins")
	writePlugin(t, dir, "current.dll", "new")
	writePlugin(t, dir+hiddenSuffix, "stale.dll", "old")

	s, err := hidePluginDir(dir)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	// last-hidden-wins: the stale content must be gone, not merged
	if _, err := os.Stat(filepath.Join(s.hidden, "stale.dll")); !os.IsNotExist(err) {
		t.Fatalf("stale plugin survived hide")
	}
	if _, err := os.Stat(filepath.Join(s.hidden, "current.dll")); err != nil {
		t.Fatalf("current plugin missing from hidden dir: %v", err)
	}
}

func TestRestoreNeverOverwritesReappearedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plugins")
	writePlugin(t, dir, "a.dll", "a")
	s, err := hidePluginDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	// Simulate the directory reappearing through some other means.
	writePlugin(t, dir, "b.dll", "b")

	s.restore(discardLog())
	if _, err := os.Stat(filepath.Join(dir, "b.dll")); err != nil {
		t.Fatalf("reappeared dir was clobbered: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.hidden, "a.dll")); err != nil {
		t.Fatalf("hidden copy should remain untouched: %v", err)
	}
}

func TestRestoreSilentWhenBothMissing(t *testing.T) {
	s := swapState{original: "/nonexistent/a", hidden: "/nonexistent/b", active: true}
	// must not panic or error
	s.restore(discardLog())
}
