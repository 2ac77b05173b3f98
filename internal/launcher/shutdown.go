package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Stop timing defaults. GracefulWait bounds the cooperative phase per
// process; ReapWait is the brief pause after a force-kill that lets the OS
// reap the process before we give up on confirming the exit.
const (
	DefaultGracefulWait = 5 * time.Second
	DefaultReapWait     = 200 * time.Millisecond
)

// Orchestrator terminates process groups in two phases: a cooperative close
// request bounded by GracefulWait, then a forced kill of the whole process
// tree. Per-process states run Running → graceful pending → exited, or
// straight to force-kill where no cooperative channel exists.
type Orchestrator struct {
	GracefulWait time.Duration
	ReapWait     time.Duration
	Log          *slog.Logger
}

// Stop attempts termination of every member even when earlier ones fail and
// returns a single aggregated outcome. A nil or empty group reports
// NotRunning, distinct from a termination failure.
func (o *Orchestrator) Stop(g *Group) Outcome {
	if g == nil || len(g.Members()) == 0 {
		return failure(NotRunning, "no processes tracked")
	}
	var errs []error
	for _, m := range g.Members() {
		if err := o.stopMember(m); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return failure(TerminationFailed, "stopping %s: %v", g.Name, errors.Join(errs...))
	}
	return success("stopped %s (%d process(es))", g.Name, len(g.Members()))
}

func (o *Orchestrator) stopMember(m *member) error {
	if m.Exited() {
		return nil
	}
	pid := m.PID()
	if pid <= 0 {
		return nil
	}
	if gracefulSupported {
		if err := requestClose(pid); err == nil {
			deadline := time.NewTimer(o.gracefulWait())
			select {
			case <-m.Done():
				deadline.Stop()
				return nil
			case <-deadline.C:
				// Close request ignored or too slow; escalate.
			}
		} else if o.Log != nil {
			o.Log.Debug("close request failed, escalating", "pid", pid, "error", err)
		}
	}
	if err := killTree(pid); err != nil {
		return fmt.Errorf("pid %d: force kill: %w", pid, err)
	}
	select {
	case <-m.Done():
		return nil
	case <-time.After(o.reapWait()):
		if processAlive(pid) {
			return fmt.Errorf("pid %d: still alive after force kill", pid)
		}
		return nil
	}
}

func (o *Orchestrator) gracefulWait() time.Duration {
	if o.GracefulWait > 0 {
		return o.GracefulWait
	}
	return DefaultGracefulWait
}

func (o *Orchestrator) reapWait() time.Duration {
	if o.ReapWait > 0 {
		return o.ReapWait
	}
	return DefaultReapWait
}
