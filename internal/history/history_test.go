package history

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func TestSQLSinkAppendsLaunchAndStop(t *testing.T) {
	s, err := NewSQLSink(":memory:")
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer func() { _ = s.Close() }()

	started := time.Now().UTC()
	rec := Record{
		LaunchID:  "f9d2a7c0-0000-0000-0000-000000000001",
		Name:      "valheim",
		Root:      "/games/valheim",
		Mode:      "vanilla",
		PID:       4242,
		StartedAt: started,
	}
	if err := s.Send(context.Background(), Event{Type: EventLaunch, OccurredAt: started, Record: rec}); err != nil {
		t.Fatalf("send launch: %v", err)
	}
	rec.StoppedAt = sql.NullTime{Time: started.Add(time.Minute), Valid: true}
	rec.ExitErr = sql.NullString{String: "signal: killed", Valid: true}
	if err := s.Send(context.Background(), Event{Type: EventStop, OccurredAt: started.Add(time.Minute), Record: rec}); err != nil {
		t.Fatalf("send stop: %v", err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM launch_history WHERE launch_id = ?`, rec.LaunchID).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 journal rows, got %d", n)
	}
	var event string
	if err := s.db.QueryRow(`SELECT event FROM launch_history WHERE stopped_at IS NOT NULL`).Scan(&event); err != nil {
		t.Fatalf("query stop row: %v", err)
	}
	if event != string(EventStop) {
		t.Fatalf("stop row has event %q", event)
	}
}

func TestSQLSinkRejectsEmptyDSN(t *testing.T) {
	if _, err := NewSQLSink("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
