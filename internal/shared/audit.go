package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActionLog represents one triggered backend action stored in peppol_action_log.
type ActionLog struct {
	ActorID int64
	Actor   string
	View    string
	Action  string
	Outcome string
	Meta    map[string]any
	At      time.Time
}

// AuditLogger writes action records into peppol_action_log.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger. A nil pool yields a nil logger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	if pool == nil {
		return nil
	}
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log ActionLog) error {
	if l == nil || l.pool == nil {
		return errors.New("audit logger not initialised")
	}
	if log.View == "" || log.Action == "" || log.Outcome == "" {
		return errors.New("audit log requires view/action/outcome")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO peppol_action_log (actor_id, actor, view, action, outcome, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		log.ActorID, log.Actor, log.View, log.Action, log.Outcome, metaJSON, at)
	return err
}

// Recent returns the latest entries, newest first.
func (l *AuditLogger) Recent(ctx context.Context, limit int) ([]ActionLog, error) {
	if l == nil || l.pool == nil {
		return nil, errors.New("audit logger not initialised")
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx, `SELECT actor_id, actor, view, action, outcome, meta, occurred_at
		FROM peppol_action_log ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionLog
	for rows.Next() {
		var (
			entry ActionLog
			meta  []byte
		)
		if err := rows.Scan(&entry.ActorID, &entry.Actor, &entry.View, &entry.Action, &entry.Outcome, &meta, &entry.At); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &entry.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
