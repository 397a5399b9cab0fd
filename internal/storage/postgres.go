package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"campaign-webhooks/internal/webhook"
	"campaign-webhooks/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore persists the audit trail in Postgres through a bounded
// database/sql pool (pgx stdlib driver). This is the backend used by
// the paid deployment; DATABASE_URL selects it.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := utils.OpenPostgres(ctx, "pgx", databaseURL, utils.PostgresPoolConfig{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := initPostgresSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// initPostgresSchema creates the audit tables and indexes if missing.
// contact_updates is provisioned for future field diffing; nothing
// writes it yet.
func initPostgresSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS webhook_logs (
  log_id        BIGSERIAL PRIMARY KEY,
  event_type    VARCHAR(100),
  contact_email VARCHAR(255),
  contact_id    VARCHAR(50),
  webhook_data  JSONB,
  received_at   TIMESTAMPTZ DEFAULT now(),
  processed     BOOLEAN DEFAULT FALSE
);`,
		`CREATE TABLE IF NOT EXISTS contact_updates (
  update_id  BIGSERIAL PRIMARY KEY,
  email      VARCHAR(255) NOT NULL,
  contact_id VARCHAR(50),
  field_name VARCHAR(100),
  old_value  TEXT,
  new_value  TEXT,
  updated_at TIMESTAMPTZ DEFAULT now()
);`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_logs_email ON webhook_logs(contact_email);`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_logs_received_at ON webhook_logs(received_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_contact_updates_email ON contact_updates(email);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, e webhook.NewLogEntry) (int64, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return 0, fmt.Errorf("marshal webhook payload: %w", err)
	}

	const q = `
INSERT INTO webhook_logs (event_type, contact_email, contact_id, webhook_data)
VALUES ($1, $2, $3, $4)
RETURNING log_id
`
	var logID int64
	err = utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, q,
			nullable(e.EventType),
			nullable(e.ContactEmail),
			nullable(e.ContactID),
			data,
		).Scan(&logID)
	})
	if err != nil {
		return 0, err
	}
	return logID, nil
}

func (s *PostgresStore) RecentLogs(ctx context.Context, limit int) ([]webhook.LogEntry, error) {
	const q = `
SELECT log_id, COALESCE(event_type, ''), COALESCE(contact_email, ''), COALESCE(contact_id, ''), received_at
FROM webhook_logs
ORDER BY received_at DESC, log_id DESC
LIMIT $1
`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []webhook.LogEntry
	for rows.Next() {
		var e webhook.LogEntry
		if err := rows.Scan(&e.LogID, &e.EventType, &e.ContactEmail, &e.ContactID, &e.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (webhook.Stats, error) {
	st := webhook.Stats{EventTypes: make(map[string]int64)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webhook_logs`).Scan(&st.TotalLogs); err != nil {
		return webhook.Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT COALESCE(event_type, ''), COUNT(*)
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

	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM webhook_logs WHERE received_at > now() - INTERVAL '24 hours'
`).Scan(&st.Recent24h); err != nil {
		return webhook.Stats{}, err
	}

	return st, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return utils.HealthCheck(ctx, s.db, 5*time.Second)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// nullable maps "" to NULL so absent principals stay NULL in the
// database rather than empty strings.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
