package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"campaign-webhooks/internal/webhook"
	"campaign-webhooks/pkg/utils"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the audit trail in a local SQLite file. Used
// when no DATABASE_URL is configured (free-tier deployments, local
// development). The driver is CGO-free.
type SQLiteStore struct {
	db *sql.DB
}

// Timestamps are stored as fixed-width UTC text so that lexicographic
// ordering matches chronological ordering and sqlite datetime()
// comparisons stay valid.
const sqliteTimeFormat = "2006-01-02 15:04:05.000"

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single connection: sqlite allows one writer, and the request
	// volume here does not justify a reader pool.
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if err := initSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS webhook_logs (
  log_id        INTEGER PRIMARY KEY AUTOINCREMENT,
  event_type    TEXT,
  contact_email TEXT,
  contact_id    TEXT,
  webhook_data  TEXT,
  received_at   TEXT NOT NULL,
  processed     BOOLEAN DEFAULT FALSE
);`,
		`CREATE TABLE IF NOT EXISTS contact_updates (
  update_id  INTEGER PRIMARY KEY AUTOINCREMENT,
  email      TEXT NOT NULL,
  contact_id TEXT,
  field_name TEXT,
  old_value  TEXT,
  new_value  TEXT,
  updated_at TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_logs_email ON webhook_logs(contact_email);`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_logs_received_at ON webhook_logs(received_at DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, e webhook.NewLogEntry) (int64, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return 0, fmt.Errorf("marshal webhook payload: %w", err)
	}

	const q = `
INSERT INTO webhook_logs (event_type, contact_email, contact_id, webhook_data, received_at)
VALUES (?, ?, ?, ?, ?)
`
	var logID int64
	err = utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			e.EventType,
			e.ContactEmail,
			e.ContactID,
			string(data),
			time.Now().UTC().Format(sqliteTimeFormat),
		)
		if err != nil {
			return err
		}
		logID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	return logID, nil
}

func (s *SQLiteStore) RecentLogs(ctx context.Context, limit int) ([]webhook.LogEntry, error) {
	const q = `
SELECT log_id, event_type, contact_email, contact_id, received_at
FROM webhook_logs
ORDER BY received_at DESC, log_id DESC
LIMIT ?
`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []webhook.LogEntry
	for rows.Next() {
		var e webhook.LogEntry
		var received string
		if err := rows.Scan(&e.LogID, &e.EventType, &e.ContactEmail, &e.ContactID, &received); err != nil {
			return nil, err
		}
		ts, err := time.ParseInLocation(sqliteTimeFormat, received, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse received_at %q: %w", received, err)
		}
		e.ReceivedAt = ts
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (webhook.Stats, error) {
	st := webhook.Stats{EventTypes: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_logs`).Scan(&st.TotalLogs); err != nil {
		return webhook.Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT event_type, COUNT(*)
FROM webhook_logs
GROUP BY event_type
ORDER BY COUNT(*) DESC
`)
	if err != nil {
		return webhook.Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return webhook.Stats{}, err
		}
		st.EventTypes[kind] = n
	}
	if err := rows.Err(); err != nil {
		return webhook.Stats{}, err
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour).Format(sqliteTimeFormat)
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM webhook_logs WHERE received_at > ?
`, cutoff).Scan(&st.Recent24h); err != nil {
		return webhook.Stats{}, err
	}

	return st, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, s.db, 5*time.Second)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
