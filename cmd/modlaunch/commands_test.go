//go:build !windows

package main

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averyn/modlaunch/internal/config"
	"github.com/averyn/modlaunch/internal/game"
	"github.com/averyn/modlaunch/internal/launcher"
	"github.com/averyn/modlaunch/internal/loader"
	"github.com/averyn/modlaunch/internal/server"
)

func newTestInstall(t *testing.T, name string) game.Installation {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "game.sh"), []byte("#!/bin/sh\nsleep 30\n"), 0o750); err != nil {
		t.Fatal(err)
	}
	return game.Installation{Name: name, Root: root, Executable: "game.sh"}
}

// newTestDaemon runs the control API in-process and returns its URL.
func newTestDaemon(t *testing.T, cfg *config.Config) (string, *launcher.Launcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := launcher.New(loader.BepInEx{})
	l.SetLogger(slog.New(slog.DiscardHandler))
	l.SetStopWait(300 * time.Millisecond)
	srv := httptest.NewServer(server.NewRouter(l, cfg, "/api").Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api", l
}

func TestLaunchAndStopViaAPI(t *testing.T) {
	inst := newTestInstall(t, "valheim")
	cfg := &config.Config{Installations: []game.Installation{inst}}
	apiURL, l := newTestDaemon(t, cfg)
	cli := command{}
	t.Cleanup(func() { _ = l.Stop(inst) })

	err := cli.Launch(LaunchFlags{Name: "valheim", Mode: "vanilla", APIUrl: apiURL})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if !l.IsRunning(inst) {
		t.Fatalf("daemon should track the launch")
	}
	if err := cli.Status(StatusFlags{Name: "valheim", APIUrl: apiURL}); err != nil {
		t.Fatalf("status: %v", err)
	}
	if err := cli.Stop(StopFlags{Name: "valheim", APIUrl: apiURL}); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := cli.Stop(StopFlags{Name: "valheim", APIUrl: apiURL}); err == nil {
		t.Fatalf("second stop must report failure")
	}
}

func TestLaunchViaAPIWithInlineRoot(t *testing.T) {
	inst := newTestInstall(t, "inline")
	apiURL, l := newTestDaemon(t, nil)
	cli := command{}
	t.Cleanup(func() { _ = l.Stop(inst) })

	err := cli.Launch(LaunchFlags{Root: inst.Root, Executable: "game.sh", Mode: "vanilla", APIUrl: apiURL})
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if err := cli.Stop(StopFlags{Root: inst.Root, APIUrl: apiURL}); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestLaunchRejectsBadMode(t *testing.T) {
	cli := command{}
	if err := cli.Launch(LaunchFlags{Root: "/tmp", Mode: "turbo"}); err == nil {
		t.Fatalf("bad mode must error before any work happens")
	}
}

func TestStopRequiresSelector(t *testing.T) {
	apiURL, _ := newTestDaemon(t, nil)
	cli := command{}
	if err := cli.Stop(StopFlags{APIUrl: apiURL}); err == nil {
		t.Fatalf("stop without selector must error")
	}
	if err := cli.Stop(StopFlags{Name: "a", Root: "/b", APIUrl: apiURL}); err == nil {
		t.Fatalf("stop with both selectors must error")
	}
}

func TestProfileCommandsViaAPI(t *testing.T) {
	a := newTestInstall(t, "a")
	b := newTestInstall(t, "b")
	cfg := &config.Config{
		Installations: []game.Installation{a, b},
		Profiles:      []config.Profile{{Name: "all", Mode: "vanilla", Members: []string{"a", "b"}}},
	}
	apiURL, l := newTestDaemon(t, cfg)
	cli := command{}
	t.Cleanup(func() { _ = l.Stop(a); _ = l.Stop(b) })

	if err := cli.ProfileLaunch(ProfileFlags{Name: "all", APIUrl: apiURL}); err != nil {
		t.Fatalf("profile launch: %v", err)
	}
	if !l.IsRunning(a) || !l.IsRunning(b) {
		t.Fatalf("profile members should be tracked")
	}
	if err := cli.ProfileStop(ProfileFlags{Name: "all", APIUrl: apiURL}); err != nil {
		t.Fatalf("profile stop: %v", err)
	}
	if err := cli.ProfileLaunch(ProfileFlags{APIUrl: apiURL}); err == nil {
		t.Fatalf("profile launch without name must error")
	}
}

func TestBuildRootWiresCommands(t *testing.T) {
	root := buildRoot()
	want := map[string]bool{
		"launch": false, "stop": false, "status": false,
		"installations": false, "profile": false, "serve": false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("missing subcommand %s", name)
		}
	}
}
