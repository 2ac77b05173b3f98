package modlaunch

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/averyn/modlaunch/internal/config"
	"github.com/averyn/modlaunch/internal/game"
	"github.com/averyn/modlaunch/internal/history"
	"github.com/averyn/modlaunch/internal/launcher"
	"github.com/averyn/modlaunch/internal/loader"
	"github.com/averyn/modlaunch/internal/logger"
	"github.com/averyn/modlaunch/internal/metrics"
	"github.com/averyn/modlaunch/internal/profile"
	iapi "github.com/averyn/modlaunch/internal/server"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Installation = game.Installation

type Mode = launcher.Mode

const (
	ModeVanilla = launcher.ModeVanilla
	ModeModded  = launcher.ModeModded
)

type Outcome = launcher.Outcome

type Category = launcher.Category

type GroupStatus = launcher.GroupStatus

type LogConfig = logger.Config

type HistorySink = history.Sink

// Launcher is a thin facade over internal/launcher.Launcher backed by the
// BepInEx loader layout. It provides a stable public API for embedding.
type Launcher struct{ inner *launcher.Launcher }

func New() *Launcher { return &Launcher{inner: launcher.New(loader.BepInEx{})} }

func (l *Launcher) SetLogger(log *slog.Logger)        { l.inner.SetLogger(log) }
func (l *Launcher) SetStopWait(d time.Duration)       { l.inner.SetStopWait(d) }
func (l *Launcher) SetGlobalEnv(kvs []string)         { l.inner.SetGlobalEnv(kvs) }
func (l *Launcher) SetGameLog(c LogConfig)            { l.inner.SetGameLog(c) }
func (l *Launcher) SetHistorySinks(s ...HistorySink)  { l.inner.SetHistorySinks(s...) }
func (l *Launcher) LaunchVanilla(i Installation) Outcome {
	return l.inner.LaunchVanilla(i)
}
func (l *Launcher) LaunchModded(i Installation) Outcome {
	return l.inner.LaunchModded(i)
}
func (l *Launcher) Launch(i Installation, m Mode) Outcome { return l.inner.Launch(i, m) }
func (l *Launcher) Stop(i Installation) Outcome           { return l.inner.Stop(i) }
func (l *Launcher) IsRunning(i Installation) bool         { return l.inner.IsRunning(i) }
func (l *Launcher) Status(i Installation) (GroupStatus, bool) {
	return l.inner.Status(i)
}
func (l *Launcher) Statuses() []GroupStatus { return l.inner.Statuses() }

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) { return launcher.ParseMode(s) }

// DefaultLogger returns the plain stderr logger used when no daemon logger
// is configured.
func DefaultLogger() *slog.Logger { return logger.Default() }

// NewDaemonLogger builds the daemon's slog logger, optionally with ANSI
// colored levels.
func NewDaemonLogger(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return logger.NewDaemonLogger(w, level, color)
}

// Profile facade
type Profile struct{ inner *profile.Runner }

type ProfileSpec = profile.Spec

func NewProfile(l *Launcher) *Profile { return &Profile{inner: profile.New(l.inner)} }

func (p *Profile) Launch(s ProfileSpec) Outcome { return p.inner.Launch(s) }
func (p *Profile) Stop(s ProfileSpec) Outcome   { return p.inner.Stop(s) }
func (p *Profile) Statuses(s ProfileSpec) map[string]GroupStatus {
	return p.inner.Statuses(s)
}

func LoadConfig(path string) (*cfg.Config, error) {
	return cfg.Load(path)
}

// NewSQLHistorySink opens a launch journal on a sqlite or postgres DSN.
func NewSQLHistorySink(dsn string) (HistorySink, error) {
	return history.NewSQLSink(dsn)
}

// NewHTTPServer starts an HTTP server exposing the control API using the
// given launcher. conf may be nil for an API without configured names.
func NewHTTPServer(addr, basePath string, l *Launcher, conf *cfg.Config) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, l.inner, conf)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it runs
// the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
