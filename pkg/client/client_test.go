//go:build !windows

package client

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/averyn/modlaunch"
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

func newTestDaemon(t *testing.T, cfg *config.Config) (*Client, *launcher.Launcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := launcher.New(loader.BepInEx{})
	l.SetLogger(slog.New(slog.DiscardHandler))
	l.SetStopWait(300 * time.Millisecond)
	srv := httptest.NewServer(server.NewRouter(l, cfg, "/api").Handler())
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api", Logger: slog.New(slog.DiscardHandler)}), l
}

func TestClientLaunchStatusStop(t *testing.T) {
	inst := newTestInstall(t, "valheim")
	cfg := &config.Config{Installations: []game.Installation{inst}}
	c, l := newTestDaemon(t, cfg)
	ctx := context.Background()
	t.Cleanup(func() { _ = l.Stop(inst) })

	if !c.IsReachable(ctx) {
		t.Fatalf("daemon should be reachable")
	}
	out, err := c.Launch(ctx, "valheim", modlaunch.ModeVanilla)
	if err != nil || !out.Success {
		t.Fatalf("launch: %v %+v", err, out)
	}
	st, err := c.Status(ctx, "valheim")
	if err != nil || !st.Alive || st.Mode != modlaunch.ModeVanilla {
		t.Fatalf("status: %v %+v", err, st)
	}
	sts, err := c.Statuses(ctx)
	if err != nil || len(sts) != 1 {
		t.Fatalf("statuses: %v %+v", err, sts)
	}
	out, err = c.Stop(ctx, "valheim")
	if err != nil || !out.Success {
		t.Fatalf("stop: %v %+v", err, out)
	}
	out, err = c.Stop(ctx, "valheim")
	if err != nil || out.Success || out.Category != "not_running" {
		t.Fatalf("second stop should report not_running, got %v %+v", err, out)
	}
}

func TestClientInlineLaunchAndRootStop(t *testing.T) {
	c, l := newTestDaemon(t, nil)
	inst := newTestInstall(t, "inline")
	ctx := context.Background()
	t.Cleanup(func() { _ = l.Stop(inst) })

	out, err := c.LaunchInstallation(ctx, inst, modlaunch.ModeVanilla)
	if err != nil || !out.Success {
		t.Fatalf("inline launch: %v %+v", err, out)
	}
	out, err = c.StopRoot(ctx, inst.Root)
	if err != nil || !out.Success {
		t.Fatalf("stop by root: %v %+v", err, out)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	c, _ := newTestDaemon(t, nil)
	ctx := context.Background()

	if _, err := c.Launch(ctx, "ghost", modlaunch.ModeVanilla); err == nil {
		t.Fatalf("launch of unknown name must error")
	}
	if _, err := c.Status(ctx, "ghost"); err == nil {
		t.Fatalf("status of unknown name must error")
	}
	if _, err := c.LaunchProfile(ctx, "ghost"); err == nil {
		t.Fatalf("launch of unknown profile must error")
	}
}

func TestClientInstallationsList(t *testing.T) {
	inst := newTestInstall(t, "valheim")
	cfg := &config.Config{Installations: []game.Installation{inst}}
	c, _ := newTestDaemon(t, cfg)

	insts, err := c.Installations(context.Background())
	if err != nil || len(insts) != 1 || insts[0].Name != "valheim" {
		t.Fatalf("installations: %v %+v", err, insts)
	}
}
