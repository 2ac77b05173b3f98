package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveInstallationFromRoot(t *testing.T) {
	inst, err := resolveInstallation("", "", "/games/valheim", "valheim.exe")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inst.Root != "/games/valheim" || inst.Executable != "valheim.exe" || inst.Name != "valheim" {
		t.Fatalf("unexpected installation: %+v", inst)
	}
}

func TestResolveInstallationRejectsAmbiguousFlags(t *testing.T) {
	if _, err := resolveInstallation("", "valheim", "/games/valheim", "v.exe"); err == nil {
		t.Fatalf("name and root together must be rejected")
	}
	if _, err := resolveInstallation("", "", "", ""); err == nil {
		t.Fatalf("missing selector must be rejected")
	}
	if _, err := resolveInstallation("", "valheim", "", ""); err == nil {
		t.Fatalf("name without config must be rejected")
	}
}

func TestResolveInstallationFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modlaunch.toml")
	body := `
[[installations]]
name = "valheim"
root = "/games/valheim"
executable = "valheim.exe"
`
	if err := os.WriteFile(path, []byte(body), 0o640); err != nil {
		t.Fatal(err)
	}
	inst, err := resolveInstallation(path, "valheim", "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if inst.Root != "/games/valheim" {
		t.Fatalf("unexpected installation: %+v", inst)
	}
	if _, err := resolveInstallation(path, "ghost", "", ""); err == nil {
		t.Fatalf("unknown name must be rejected")
	}
}
