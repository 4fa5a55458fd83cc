package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionLifecycle(t *testing.T) {
	store := openTestStore(t)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	ctx := context.Background()

	if err := store.SessionStarted(ctx, "s1", "english"); err != nil {
		t.Fatalf("SessionStarted returned error: %v", err)
	}
	for _, step := range []struct{ final, full string }{
		{"Hello.", "Hello."},
		{"World.", "Hello. World."},
	} {
		if err := store.FinalRecorded(ctx, "s1", step.final, step.full); err != nil {
			t.Fatalf("FinalRecorded returned error: %v", err)
		}
	}

	sessions, err := store.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(sessions) != 1 || !sessions[0].Running() {
		t.Fatalf("expected one running session, got %+v", sessions)
	}
	if sessions[0].FinalCount != 2 || sessions[0].Transcript != "Hello. World." {
		t.Fatalf("unexpected session %+v", sessions[0])
	}

	if err := store.SessionEnded(ctx, "s1", "stopped", "Hello. World."); err != nil {
		t.Fatalf("SessionEnded returned error: %v", err)
	}
	sessions, _ = store.ListSessions(ctx, 10)
	if sessions[0].Running() || sessions[0].EndReason != "stopped" {
		t.Fatalf("expected ended session, got %+v", sessions[0])
	}
	if !sessions[0].EndedAt.After(sessions[0].StartedAt) {
		t.Fatalf("end %v should follow start %v", sessions[0].EndedAt, sessions[0].StartedAt)
	}

	finals, err := store.Finals(ctx, "s1")
	if err != nil {
		t.Fatalf("Finals returned error: %v", err)
	}
	if len(finals) != 2 || finals[0].Seq != 1 || finals[1].Text != "World." {
		t.Fatalf("unexpected finals %+v", finals)
	}
}

func TestListSessionsNewestFirstWithLimit(t *testing.T) {
	store := openTestStore(t)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.SessionStarted(ctx, id, "hindi"); err != nil {
			t.Fatalf("SessionStarted(%s) returned error: %v", id, err)
		}
	}
	sessions, err := store.ListSessions(ctx, 2)
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "c" || sessions[1].ID != "b" {
		t.Fatalf("unexpected order %+v", sessions)
	}
}

func TestUnknownSessionErrors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.FinalRecorded(ctx, "missing", "x", "x"); err == nil {
		t.Fatal("expected error for unknown session final")
	}
	if err := store.SessionEnded(ctx, "missing", "stopped", ""); err == nil {
		t.Fatal("expected error for unknown session end")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.SessionStarted(context.Background(), "keep", "english"); err != nil {
		t.Fatalf("SessionStarted returned error: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer store.Close()
	sessions, err := store.ListSessions(context.Background(), 0)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("expected persisted session, got %+v (err %v)", sessions, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := store.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestListSessionsOrdersWithinOneSecond(t *testing.T) {
	store := openTestStore(t)
	starts := []time.Time{
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 0, int(100*time.Millisecond), time.UTC),
	}
	next := 0
	store.now = func() time.Time {
		ts := starts[next]
		next++
		return ts
	}
	ctx := context.Background()
	for _, id := range []string{"whole", "fraction"} {
		if err := store.SessionStarted(ctx, id, "english"); err != nil {
			t.Fatalf("SessionStarted(%s) returned error: %v", id, err)
		}
	}

	sessions, err := store.ListSessions(ctx, 0)
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "fraction" || sessions[1].ID != "whole" {
		t.Fatalf("unexpected order %+v", sessions)
	}
	if !sessions[1].StartedAt.Equal(starts[0]) {
		t.Fatalf("started_at round trip: got %v want %v", sessions[1].StartedAt, starts[0])
	}
}
