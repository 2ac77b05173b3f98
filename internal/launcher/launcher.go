package launcher

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/averyn/modlaunch/internal/env"
	"github.com/averyn/modlaunch/internal/game"
	"github.com/averyn/modlaunch/internal/history"
	"github.com/averyn/modlaunch/internal/logger"
	"github.com/averyn/modlaunch/internal/metrics"
)

// Loader abstracts the mod-loader collaborator: an installed-or-not
// predicate plus the fixed locations the launcher needs. The production
// implementation is internal/loader.BepInEx.
type Loader interface {
	Installed(inst game.Installation) bool
	PluginDir(inst game.Installation) string
	ScriptPath(inst game.Installation) string
	EnsurePluginDir(inst game.Installation) error
}

// Launcher starts game installations vanilla or modded and supervises the
// resulting processes until stopped. All public methods are safe for
// concurrent use; launch/stop for different installations never block each
// other. Tracked state is in-memory only and is lost when the supervisor
// exits.
type Launcher struct {
	loader   Loader
	registry *Registry
	orch     Orchestrator
	env      *env.Env
	log      *slog.Logger

	// platform gates the launch-script spawn path; overridden in tests.
	platform string

	mu      sync.Mutex
	sinks   []history.Sink
	gameLog logger.Config
}

func New(l Loader) *Launcher {
	log := logger.Default()
	return &Launcher{
		loader:   l,
		registry: NewRegistry(),
		orch:     Orchestrator{Log: log},
		env:      env.New(),
		log:      log,
		platform: runtime.GOOS,
	}
}

// SetLogger replaces the daemon logger.
func (l *Launcher) SetLogger(log *slog.Logger) {
	l.log = log
	l.orch.Log = log
}

// SetStopWait bounds the graceful phase of Stop.
func (l *Launcher) SetStopWait(d time.Duration) { l.orch.GracefulWait = d }

// SetGlobalEnv applies "KEY=VALUE" overrides to every launch.
func (l *Launcher) SetGlobalEnv(kvs []string) { l.env.SetAll(kvs) }

// SetGameLog configures capture of launched games' stdout/stderr.
func (l *Launcher) SetGameLog(c logger.Config) {
	l.mu.Lock()
	l.gameLog = c
	l.mu.Unlock()
}

// SetHistorySinks configures the launch journal destinations. Passing none
// clears the list.
func (l *Launcher) SetHistorySinks(sinks ...history.Sink) {
	l.mu.Lock()
	l.sinks = append([]history.Sink(nil), sinks...)
	l.mu.Unlock()
}

// LaunchVanilla runs the installation with plugin loading suppressed. The
// swap-launch-restore sequence runs regardless of whether the loader is
// installed, so a vanilla launch is reproducible on a modded installation.
func (l *Launcher) LaunchVanilla(inst game.Installation) Outcome {
	return l.Launch(inst, ModeVanilla)
}

// LaunchModded runs the installation with the loader active.
func (l *Launcher) LaunchModded(inst game.Installation) Outcome {
	return l.Launch(inst, ModeModded)
}

// Launch resolves the spawn mode and starts the installation. The call
// returns as soon as the OS confirms process creation; it does not wait for
// the game to do anything. On success the resulting process group is
// tracked under the installation's root key, replacing any prior entry for
// that key.
func (l *Launcher) Launch(inst game.Installation, mode Mode) Outcome {
	if err := inst.Validate(); err != nil {
		return failure(SpawnFailed, "invalid installation: %v", err)
	}
	key := inst.Key()

	// One launch at a time per installation: the vanilla directory swap
	// must not race a concurrent launch for the same root.
	unlock := l.registry.LockKey(key)
	defer unlock()

	if mode == ModeModded && !l.loader.Installed(inst) {
		metrics.IncLaunchFailure(string(mode), string(PrerequisiteMissing))
		return failure(PrerequisiteMissing, "BepInEx is not installed in %s", inst.Root)
	}
	if err := l.loader.EnsurePluginDir(inst); err != nil {
		metrics.IncLaunchFailure(string(mode), string(SpawnFailed))
		return failure(SpawnFailed, "prepare plugin directory: %v", err)
	}

	var swap swapState
	if mode == ModeVanilla {
		s, err := hidePluginDir(l.loader.PluginDir(inst))
		if err != nil {
			metrics.IncLaunchFailure(string(mode), string(SpawnFailed))
			return failure(SpawnFailed, "%v", err)
		}
		swap = s
	}

	group, cat, spawnErr := l.spawn(inst, mode, key)

	// Restore immediately after the spawn call returns; deliberately not
	// after the game has read its plugin directory (see swap.go).
	swap.restore(l.log)

	if group != nil {
		if prev := l.registry.Put(key, group); prev != nil {
			l.log.Warn("replacing tracked process group; prior group is no longer supervised",
				"installation", inst.DisplayName(), "prior_pids", prev.PIDs())
		}
		metrics.SetRunningGroups(l.registry.Len())
		l.recordLaunch(group)
	}
	if spawnErr != nil {
		metrics.IncLaunchFailure(string(mode), string(cat))
		return failure(cat, "launch %s: %v", inst.DisplayName(), spawnErr)
	}

	metrics.IncLaunch(string(mode))
	l.log.Info("launched", "installation", inst.DisplayName(), "mode", mode, "pids", group.PIDs())
	return success("launched %s (%s), pid(s) %v", inst.DisplayName(), mode, group.PIDs())
}

// spawn starts the OS processes for one launch. It returns a non-nil group
// whenever at least one process started, even if the launch as a whole
// failed, so already-started siblings stay tracked.
func (l *Launcher) spawn(inst game.Installation, mode Mode, key string) (*Group, Category, error) {
	var cmds []*exec.Cmd

	// On hosts other than the game's primary platform a bundled launch
	// script drives modded startup: it injects the doorstop preloader and
	// execs the game itself, so the script process is the group's sole
	// member and we do not recurse into what it spawns.
	if l.platform != "windows" && mode == ModeModded {
		if script := l.loader.ScriptPath(inst); fileExists(script) {
			cmds = append(cmds, exec.Command("/bin/sh", script))
		}
	}
	if len(cmds) == 0 {
		exe := inst.ExecutablePath()
		if !fileExists(exe) {
			return nil, ExecutableNotFound, fmt.Errorf("executable %s does not exist", exe)
		}
		cmds = append(cmds, exec.Command(exe))
	}

	l.mu.Lock()
	gameLog := l.gameLog
	l.mu.Unlock()
	mergedEnv := l.env.Merge(inst.Env)

	group := &Group{
		ID:        uuid.New(),
		Key:       key,
		Name:      inst.DisplayName(),
		Mode:      mode,
		StartedAt: time.Now(),
	}
	for _, cmd := range cmds {
		cmd.Dir = inst.Root
		cmd.Env = mergedEnv
		configureSysProcAttr(cmd)
		outW, errW := l.outputWriters(gameLog, inst)
		cmd.Stdout = orDiscard(outW)
		cmd.Stderr = orDiscard(errW)
		if err := cmd.Start(); err != nil {
			closeAll(outW, errW)
			if len(group.members) > 0 {
				return group, SpawnFailed, err
			}
			return nil, SpawnFailed, err
		}
		group.members = append(group.members, newMember(cmd, outW, errW))
	}
	return group, "", nil
}

// Stop removes the installation's process group from the registry and hands
// it to the shutdown orchestrator. Removal happens before termination is
// attempted, so a concurrent second stop observes NotRunning instead of
// racing on the same handles.
func (l *Launcher) Stop(inst game.Installation) Outcome {
	group, ok := l.registry.Take(inst.Key())
	if !ok {
		return failure(NotRunning, "%s is not running", inst.DisplayName())
	}
	metrics.SetRunningGroups(l.registry.Len())

	begin := time.Now()
	out := l.orch.Stop(group)
	metrics.ObserveStopDuration(time.Since(begin).Seconds())
	if out.Success {
		metrics.IncStop()
		l.log.Info("stopped", "installation", inst.DisplayName(), "pids", group.PIDs())
	} else {
		metrics.IncStopFailure(string(out.Category))
		l.log.Error("stop failed", "installation", inst.DisplayName(), "message", out.Message)
	}
	l.recordStop(group, out)
	return out
}

// IsRunning reports whether a process group is tracked for the
// installation. It reflects supervision, not liveness: a game that exited
// on its own stays tracked until Stop is called.
func (l *Launcher) IsRunning(inst game.Installation) bool {
	return l.registry.Contains(inst.Key())
}

// GroupStatus is a point-in-time view of one tracked group.
type GroupStatus struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Mode      Mode      `json:"mode"`
	LaunchID  string    `json:"launch_id"`
	StartedAt time.Time `json:"started_at"`
	PIDs      []int     `json:"pids"`
	Alive     bool      `json:"alive"`
}

// Status returns the tracked group for the installation, if any.
func (l *Launcher) Status(inst game.Installation) (GroupStatus, bool) {
	g, ok := l.registry.Snapshot()[inst.Key()]
	if !ok {
		return GroupStatus{}, false
	}
	return groupStatus(g), true
}

// Statuses lists all tracked groups.
func (l *Launcher) Statuses() []GroupStatus {
	snap := l.registry.Snapshot()
	out := make([]GroupStatus, 0, len(snap))
	for _, g := range snap {
		out = append(out, groupStatus(g))
	}
	return out
}

func groupStatus(g *Group) GroupStatus {
	return GroupStatus{
		Key:       g.Key,
		Name:      g.Name,
		Mode:      g.Mode,
		LaunchID:  g.ID.String(),
		StartedAt: g.StartedAt,
		PIDs:      g.PIDs(),
		Alive:     g.Alive(),
	}
}

func (l *Launcher) recordLaunch(g *Group) {
	l.sendEvent(history.Event{
		Type:       history.EventLaunch,
		OccurredAt: time.Now().UTC(),
		Record:     baseRecord(g),
	})
}

func (l *Launcher) recordStop(g *Group, out Outcome) {
	rec := baseRecord(g)
	rec.StoppedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	if !out.Success {
		rec.ExitErr = sql.NullString{String: out.Message, Valid: true}
	} else if len(g.members) > 0 {
		if err := g.members[0].ExitErr(); err != nil {
			rec.ExitErr = sql.NullString{String: err.Error(), Valid: true}
		}
	}
	l.sendEvent(history.Event{
		Type:       history.EventStop,
		OccurredAt: time.Now().UTC(),
		Record:     rec,
	})
}

func baseRecord(g *Group) history.Record {
	rec := history.Record{
		LaunchID:  g.ID.String(),
		Name:      g.Name,
		Root:      g.Key,
		Mode:      string(g.Mode),
		StartedAt: g.StartedAt.UTC(),
	}
	if pids := g.PIDs(); len(pids) > 0 {
		rec.PID = pids[0]
	}
	return rec
}

func (l *Launcher) sendEvent(e history.Event) {
	l.mu.Lock()
	sinks := append([]history.Sink(nil), l.sinks...)
	l.mu.Unlock()
	for _, s := range sinks {
		if err := s.Send(context.Background(), e); err != nil {
			l.log.Warn("history sink write failed", "error", err)
		}
	}
}

func (l *Launcher) outputWriters(c logger.Config, inst game.Installation) (io.WriteCloser, io.WriteCloser) {
	if !c.Enabled() {
		return nil, nil
	}
	outW, errW, err := c.Writers(inst.DisplayName())
	if err != nil {
		l.log.Warn("game output capture unavailable", "error", err)
		return nil, nil
	}
	return outW, errW
}

func orDiscard(w io.WriteCloser) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

func closeAll(ws ...io.WriteCloser) {
	for _, w := range ws {
		if w != nil {
			_ = w.Close()
		}
	}
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
