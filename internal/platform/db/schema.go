package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the tables owned by the web front-end. Statements are
// idempotent so Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS peppol_action_log (
		id          BIGSERIAL PRIMARY KEY,
		actor_id    BIGINT NOT NULL DEFAULT 0,
		actor       TEXT NOT NULL DEFAULT '',
		view        TEXT NOT NULL,
		action      TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		meta        JSONB,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS peppol_action_log_occurred_at_idx ON peppol_action_log (occurred_at DESC)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key        TEXT PRIMARY KEY,
		scope      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// migrateLockID serialises Migrate across replicas starting together.
const migrateLockID = 0x7065_7070_6f6c

// Migrate creates the audit and idempotency tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return inTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(migrateLockID)); err != nil {
			return fmt.Errorf("platform/db: migrate lock: %w", err)
		}
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: migrate: %w", err)
			}
		}
		return nil
	})
}
