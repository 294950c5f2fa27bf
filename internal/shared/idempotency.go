package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyFormField carries the per-render submission key.
const IdempotencyFormField = "idempotency_key"

// ErrIdempotencyConflict is returned when a key has already been claimed.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

const uniqueViolation = "23505"

const (
	claimKeySQL   = `INSERT INTO idempotency_keys (key, scope) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`
	releaseKeySQL = `DELETE FROM idempotency_keys WHERE key = $1`
	expireKeysSQL = `DELETE FROM idempotency_keys WHERE created_at < $1`
)

// IdempotencyStore records which form submissions were already acted upon,
// so a double click or a browser resubmit does not call the backend twice.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore constructs the store. A nil pool yields a nil store.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	if pool == nil {
		return nil
	}
	return &IdempotencyStore{pool: pool}
}

// CheckAndInsert claims key for scope, returning ErrIdempotencyConflict when
// it was claimed before.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, scope string) error {
	if s == nil {
		return errors.New("idempotency: store not initialised")
	}
	if key == "" || scope == "" {
		return errors.New("idempotency: key and scope required")
	}
	tag, err := s.pool.Exec(ctx, claimKeySQL, key, scope)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrIdempotencyConflict
		}
		return fmt.Errorf("idempotency: claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete releases key so a failed submission can be retried.
func (s *IdempotencyStore) Delete(ctx context.Context, key string) error {
	if s == nil || key == "" {
		return nil
	}
	if _, err := s.pool.Exec(ctx, releaseKeySQL, key); err != nil {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}

// Cleanup removes keys claimed more than olderThan ago.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if s == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, expireKeysSQL, time.Now().Add(-olderThan))
	return err
}
