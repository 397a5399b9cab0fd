package storage

import (
	"context"
	"path/filepath"
	"testing"

	"campaign-webhooks/internal/webhook"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "webhook_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_AppendAssignsIncreasingIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.Append(ctx, webhook.NewLogEntry{EventType: "contact_add", ContactEmail: "a@x.com", Payload: webhook.Payload{"type": "contact_add"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	id2, err := s.Append(ctx, webhook.NewLogEntry{EventType: "contact_update", ContactEmail: "b@x.com", Payload: webhook.Payload{"type": "contact_update"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("expected increasing log ids, got %d then %d", id1, id2)
	}
}

func TestSQLite_RecentLogsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"1@x.com", "2@x.com", "3@x.com"} {
		if _, err := s.Append(ctx, webhook.NewLogEntry{EventType: "contact_add", ContactEmail: email}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	logs, err := s.RecentLogs(ctx, 2)
	if err != nil {
		t.Fatalf("recent logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected limit respected, got %d entries", len(logs))
	}
	if logs[0].ContactEmail != "3@x.com" || logs[1].ContactEmail != "2@x.com" {
		t.Fatalf("expected newest first, got %q then %q", logs[0].ContactEmail, logs[1].ContactEmail)
	}
	if logs[0].ReceivedAt.IsZero() {
		t.Fatalf("expected received_at populated")
	}
}

func TestSQLite_StatsCountsByType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, kind := range []string{"contact_add", "contact_add", "subscriber_note"} {
		if _, err := s.Append(ctx, webhook.NewLogEntry{EventType: kind, ContactEmail: "a@x.com"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalLogs != 3 {
		t.Fatalf("expected 3 total, got %d", st.TotalLogs)
	}
	if st.EventTypes["contact_add"] != 2 || st.EventTypes["subscriber_note"] != 1 {
		t.Fatalf("unexpected type counts %v", st.EventTypes)
	}
	// Everything was just written.
	if st.Recent24h != 3 {
		t.Fatalf("expected 3 in 24h window, got %d", st.Recent24h)
	}
}

func TestSQLite_ContactUpdatesTableProvisioned(t *testing.T) {
	s := openTestStore(t)

	// The table is reserved for future field diffing; nothing writes
	// it, but it must exist from first boot.
	var n int64
	if err := s.db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM contact_updates`).Scan(&n); err != nil {
		t.Fatalf("contact_updates should exist: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty contact_updates, got %d rows", n)
	}
}

func TestSQLite_PingAndClose(t *testing.T) {
	s := openTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
