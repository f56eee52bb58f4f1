package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSnapshotStore persists draft snapshots in the draft_snapshots table:
//
//	CREATE TABLE draft_snapshots (
//	    cart_id    TEXT PRIMARY KEY,
//	    payload    JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// Semantics match the redis store: an empty draft is represented by row
// absence, and an environment without the table degrades to empty drafts
// rather than surfacing errors.
type PGSnapshotStore struct {
	pool *pgxpool.Pool
}

// NewPGSnapshotStore constructs a postgres-backed snapshot store.
func NewPGSnapshotStore(pool *pgxpool.Pool) *PGSnapshotStore {
	return &PGSnapshotStore{pool: pool}
}

const pgUndefinedTable = "42P01"

func tableMissing(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}

// Save upserts the snapshot row, or deletes it when the draft is empty.
func (s *PGSnapshotStore) Save(ctx context.Context, cartID string, items []LineItem) error {
	if len(items) == 0 {
		return s.Delete(ctx, cartID)
	}
	payload, err := EncodeSnapshot(items)
	if err != nil {
		return fmt.Errorf("draft: encode snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO draft_snapshots (cart_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cart_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`,
		cartID, payload)
	if err != nil {
		if tableMissing(err) {
			return nil
		}
		return fmt.Errorf("draft: save snapshot: %w", err)
	}
	return nil
}

// Load restores the items for cartID. Row or table absence yields an empty
// draft.
func (s *PGSnapshotStore) Load(ctx context.Context, cartID string) ([]LineItem, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM draft_snapshots WHERE cart_id = $1`, cartID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if tableMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("draft: load snapshot: %w", err)
	}
	return DecodeSnapshot(payload), nil
}

// Delete removes the snapshot row.
func (s *PGSnapshotStore) Delete(ctx context.Context, cartID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM draft_snapshots WHERE cart_id = $1`, cartID)
	if err != nil && !tableMissing(err) {
		return fmt.Errorf("draft: delete snapshot: %w", err)
	}
	return nil
}

// SweepStale deletes snapshots untouched for longer than maxIdle and
// reports how many rows were removed.
func (s *PGSnapshotStore) SweepStale(ctx context.Context, maxIdle time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM draft_snapshots WHERE updated_at < NOW() - $1::interval`,
		fmt.Sprintf("%d seconds", int64(maxIdle.Seconds())))
	if err != nil {
		if tableMissing(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("draft: sweep stale snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
