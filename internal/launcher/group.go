package launcher

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mode selects how an installation is launched.
type Mode string

const (
	// ModeVanilla runs the game with plugin loading suppressed, without
	// uninstalling the loader.
	ModeVanilla Mode = "vanilla"
	// ModeModded runs the game with the loader active and plugins loaded.
	ModeModded Mode = "modded"
)

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeVanilla, ModeModded:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown launch mode %q (want vanilla or modded)", s)
}

// Group is the ordered set of OS processes produced by one launch request
// for one installation, tracked as a unit. Members are appended during the
// launch call and never mutated afterwards; ownership passes from the
// Registry to the shutdown orchestrator via Take.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Mode      Mode      `json:"mode"`
	StartedAt time.Time `json:"started_at"`

	members []*member
}

// Members returns the group's processes in spawn order.
func (g *Group) Members() []*member { return g.members }

// PIDs returns the members' process IDs in spawn order.
func (g *Group) PIDs() []int {
	pids := make([]int, 0, len(g.members))
	for _, m := range g.members {
		pids = append(pids, m.PID())
	}
	return pids
}

// Alive reports whether any member has not been observed to exit.
func (g *Group) Alive() bool {
	for _, m := range g.members {
		if !m.Exited() {
			return true
		}
	}
	return false
}

// member wraps one spawned process. A monitor goroutine owns the only
// cmd.Wait call and closes done when the process is reaped; everyone else
// observes exit through the channel.
type member struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	exitErr error
}

// newMember records a started command and begins reaping it. closers are
// the captured-output writers to release once the process exits.
func newMember(cmd *exec.Cmd, closers ...io.Closer) *member {
	m := &member{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		m.mu.Lock()
		m.exitErr = err
		m.mu.Unlock()
		close(m.done)
		for _, c := range closers {
			if c != nil {
				_ = c.Close()
			}
		}
	}()
	return m
}

func (m *member) PID() int {
	if m.cmd.Process == nil {
		return 0
	}
	return m.cmd.Process.Pid
}

// Done is closed once the process has exited and been reaped.
func (m *member) Done() <-chan struct{} { return m.done }

func (m *member) Exited() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// ExitErr returns the result of cmd.Wait; meaningful only after Exited.
func (m *member) ExitErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitErr
}
