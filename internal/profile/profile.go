package profile

import (
	"fmt"

	"github.com/averyn/modlaunch/internal/game"
	"github.com/averyn/modlaunch/internal/launcher"
)

// Spec defines a profile: a named set of installations launched and stopped
// together in one mode. Name is a diagnostic label only.
type Spec struct {
	Name    string
	Mode    launcher.Mode
	Members []game.Installation
}

// Runner executes profile operations against an underlying launcher.
type Runner struct {
	l *launcher.Launcher
}

func New(l *launcher.Launcher) *Runner { return &Runner{l: l} }

// Launch starts every member in order. If a member fails, members already
// launched by this call are stopped again (reverse order) and the failing
// member's outcome category is propagated.
func (r *Runner) Launch(s Spec) launcher.Outcome {
	launched := make([]game.Installation, 0, len(s.Members))
	for _, inst := range s.Members {
		out := r.l.Launch(inst, s.Mode)
		if !out.Success {
			for i := len(launched) - 1; i >= 0; i-- {
				_ = r.l.Stop(launched[i])
			}
			return launcher.Outcome{
				Success:  false,
				Message:  fmt.Sprintf("profile %s: %s", s.Name, out.Message),
				Category: out.Category,
			}
		}
		launched = append(launched, inst)
	}
	return launcher.Outcome{
		Success: true,
		Message: fmt.Sprintf("profile %s: launched %d installation(s) (%s)", s.Name, len(launched), s.Mode),
	}
}

// Stop stops every member, best-effort. Members that are not running are
// skipped silently; only termination failures fail the profile stop.
func (r *Runner) Stop(s Spec) launcher.Outcome {
	var failed []string
	for _, inst := range s.Members {
		out := r.l.Stop(inst)
		if !out.Success && out.Category != launcher.NotRunning {
			failed = append(failed, out.Message)
		}
	}
	if len(failed) > 0 {
		return launcher.Outcome{
			Success:  false,
			Message:  fmt.Sprintf("profile %s: %v", s.Name, failed),
			Category: launcher.TerminationFailed,
		}
	}
	return launcher.Outcome{
		Success: true,
		Message: fmt.Sprintf("profile %s: stopped", s.Name),
	}
}

// Statuses returns the tracked group per member name; absent entries mean
// the member is not running.
func (r *Runner) Statuses(s Spec) map[string]launcher.GroupStatus {
	out := make(map[string]launcher.GroupStatus, len(s.Members))
	for _, inst := range s.Members {
		if st, ok := r.l.Status(inst); ok {
			out[inst.DisplayName()] = st
		}
	}
	return out
}
