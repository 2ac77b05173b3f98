package game

import (
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		inst    Installation
		wantErr bool
	}{
		{"ok", Installation{Root: "/games/valheim", Executable: "valheim.exe"}, false},
		{"ok nested", Installation{Root: "/games/valheim", Executable: "bin/game.x86_64"}, false},
		{"missing root", Installation{Executable: "game.exe"}, true},
		{"missing exe", Installation{Root: "/games/valheim"}, true},
		{"absolute exe", Installation{Root: "/games/valheim", Executable: "/usr/bin/true"}, true},
		{"escaping exe", Installation{Root: "/games/valheim", Executable: "../other/game"}, true},
	}
	for _, c := range cases {
		err := c.inst.Validate()
		if (err != nil) != c.wantErr {
			t.Fatalf("%s: Validate() = %v, wantErr=%v", c.name, err, c.wantErr)
		}
	}
}

func TestKeyIsCleanAndStable(t *testing.T) {
	a := Installation{Root: "/games/valheim"}
	b := Installation{Root: "/games//valheim/."}
	if a.Key() != b.Key() {
		t.Fatalf("expected same key, got %q vs %q", a.Key(), b.Key())
	}
	if !filepath.IsAbs(a.Key()) {
		t.Fatalf("key should be absolute, got %q", a.Key())
	}
}

func TestExecutablePath(t *testing.T) {
	inst := Installation{Root: "/games/valheim", Executable: "bin/game"}
	want := filepath.Join("/games/valheim", "bin", "game")
	if got := inst.ExecutablePath(); got != want {
		t.Fatalf("ExecutablePath() = %q, want %q", got, want)
	}
}

func TestDisplayName(t *testing.T) {
	named := Installation{Name: "valheim", Root: "/games/v"}
	if named.DisplayName() != "valheim" {
		t.Fatalf("expected configured name, got %q", named.DisplayName())
	}
	anon := Installation{Root: "/games/valheim"}
	if anon.DisplayName() != "valheim" {
		t.Fatalf("expected base dir fallback, got %q", anon.DisplayName())
	}
}
