package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for captured game output.
const (
	DefaultMaxSizeMB  = 20 // a chatty Unity game fills logs quickly
	DefaultMaxBackups = 3
	DefaultMaxAgeDays = 14
)

// Config describes where a launched game's stdout/stderr are captured.
// If Dir is set and the explicit paths are empty, files are
// Dir/<name>.stdout.log and Dir/<name>.stderr.log. Rotation parameters
// follow lumberjack semantics. An entirely empty Config discards output.
type Config struct {
	Dir        string `json:"dir" toml:"dir" mapstructure:"dir"`
	StdoutPath string `json:"stdout_path" toml:"stdout_path" mapstructure:"stdout_path"`
	StderrPath string `json:"stderr_path" toml:"stderr_path" mapstructure:"stderr_path"`
	MaxSizeMB  int    `json:"max_size_mb" toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" toml:"compress" mapstructure:"compress"`
}

// Enabled reports whether any capture destination is configured.
func (c Config) Enabled() bool {
	return c.Dir != "" || c.StdoutPath != "" || c.StderrPath != ""
}

// Writers returns rotating write-closers for the named installation's
// stdout and stderr. Either writer may be nil when its destination is
// unset.
func (c Config) Writers(name string) (io.WriteCloser, io.WriteCloser, error) {
	stdout := c.StdoutPath
	stderr := c.StderrPath
	if stdout == "" && c.Dir != "" {
		stdout = filepath.Join(c.Dir, fmt.Sprintf("%s.stdout.log", name))
	}
	if stderr == "" && c.Dir != "" {
		stderr = filepath.Join(c.Dir, fmt.Sprintf("%s.stderr.log", name))
	}
	return c.rotating(stdout), c.rotating(stderr), nil
}

func (c Config) rotating(path string) io.WriteCloser {
	if path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// NewDaemonLogger builds the slog logger used by the modlaunch daemon and
// CLI. Colors are applied only when writing to a terminal-ish writer is
// requested by the caller.
func NewDaemonLogger(w io.Writer, level slog.Level, color bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if color {
		return slog.New(NewColorTextHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Default returns a plain text logger on stderr at info level.
func Default() *slog.Logger {
	return NewDaemonLogger(os.Stderr, slog.LevelInfo, false)
}
