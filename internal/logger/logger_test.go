package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWritersDefaultPaths(t *testing.T) {
	dir := t.TempDir()
	c := Config{Dir: dir}
	out, errw, err := c.Writers("valheim")
	if err != nil {
		t.Fatal(err)
	}
	if out == nil || errw == nil {
		t.Fatalf("expected both writers when Dir is set")
	}
	if _, err := out.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write stdout: %v", err)
	}
	_ = out.Close()
	_ = errw.Close()
	b, err := os.ReadFile(filepath.Join(dir, "valheim.stdout.log"))
	if err != nil || !strings.Contains(string(b), "hello") {
		t.Fatalf("stdout log missing content: %v %q", err, b)
	}
}

func TestWritersDisabled(t *testing.T) {
	var c Config
	if c.Enabled() {
		t.Fatalf("empty config should be disabled")
	}
	out, errw, err := c.Writers("x")
	if err != nil {
		t.Fatal(err)
	}
	if out != nil || errw != nil {
		t.Fatalf("expected nil writers for empty config")
	}
}

func TestColorHandlerTagsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewDaemonLogger(&buf, slog.LevelDebug, true)
	log.Warn("plugin directory left hidden")
	s := buf.String()
	if !strings.Contains(s, "\033[33m") || !strings.Contains(s, "plugin directory left hidden") {
		t.Fatalf("unexpected output: %q", s)
	}
}
