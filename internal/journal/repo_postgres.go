package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hotline-router/internal/events"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS call_events (
	id                TEXT PRIMARY KEY,
	type              TEXT NOT NULL,
	call_id           TEXT NOT NULL DEFAULT '',
	user_id           TEXT NOT NULL DEFAULT '',
	representative_id TEXT NOT NULL DEFAULT '',
	position          INT NOT NULL DEFAULT 0,
	from_queue        BOOLEAN NOT NULL DEFAULT FALSE,
	wait_seconds      INT NOT NULL DEFAULT 0,
	talk_seconds      INT NOT NULL DEFAULT 0,
	available         BOOLEAN NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS call_events_created_at_idx ON call_events (created_at);
`

const insertSQL = `
INSERT INTO call_events (id, type, call_id, user_id, representative_id, position, from_queue, wait_seconds, talk_seconds, available, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO NOTHING`

const listSQL = `
SELECT id, type, call_id, user_id, representative_id, position, from_queue, wait_seconds, talk_seconds, available, created_at
FROM call_events
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at, id`

// PostgresRepo stores journal entries in Postgres through database/sql
// (pgx stdlib driver). It is INSERT-only.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// EnsureSchema creates the call_events table if it does not exist.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("journal: create schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, insertSQL,
		e.ID, string(e.Type), e.CallID, e.UserID, e.RepresentativeID,
		e.Position, e.FromQueue, e.WaitSeconds, e.TalkSeconds, e.Available, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, listSQL, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.CallID, &e.UserID, &e.RepresentativeID,
			&e.Position, &e.FromQueue, &e.WaitSeconds, &e.TalkSeconds, &e.Available, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Type = events.Type(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
