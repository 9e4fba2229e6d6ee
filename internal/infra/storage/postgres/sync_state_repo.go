package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
)

// SyncStateRepo implements storage.SyncStateRepository using PostgreSQL.
type SyncStateRepo struct {
	db *DB
}

// NewSyncStateRepo creates a new PostgreSQL sync state repository.
func NewSyncStateRepo(db *DB) *SyncStateRepo {
	return &SyncStateRepo{db: db}
}

type chainStateRow struct {
	Key       string    `db:"key"`
	Value     int64     `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// GetCursor retrieves the sync cursor row.
func (r *SyncStateRepo) GetCursor(ctx context.Context) (*domain.SyncCursor, error) {
	var row chainStateRow
	err := r.db.GetContext(ctx, &row,
		`SELECT key, value, updated_at FROM chain_state WHERE key = $1`,
		domain.SyncCursorKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync cursor: %w", err)
	}

	return &domain.SyncCursor{
		Key:       row.Key,
		Value:     uint64(row.Value),
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// UpsertCursor atomically creates or updates the sync cursor.
func (r *SyncStateRepo) UpsertCursor(ctx context.Context, value uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chain_state (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE
		 SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		domain.SyncCursorKey, int64(value),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sync cursor: %w", err)
	}
	return nil
}
