package history

import (
	"context"
	"database/sql"
	"time"
)

// EventType is the kind of lifecycle event being journaled.
type EventType string

const (
	EventLaunch EventType = "launch"
	EventStop   EventType = "stop"
)

// Record carries the launch-scoped facts attached to an event. LaunchID
// ties the launch and stop rows of one process group together.
type Record struct {
	LaunchID  string         `json:"launch_id"`
	Name      string         `json:"name"`
	Root      string         `json:"root"`
	Mode      string         `json:"mode"`
	PID       int            `json:"pid"`
	StartedAt time.Time      `json:"started_at"`
	StoppedAt sql.NullTime   `json:"stopped_at"`
	ExitErr   sql.NullString `json:"exit_err"`
}

// Event is one row of the append-only launch journal.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for journal events. Implementations must be safe
// for concurrent use; the launcher writes best-effort and never blocks a
// launch or stop on sink errors.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
