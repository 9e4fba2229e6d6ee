package storage

import (
	"context"
	"errors"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
)

var (
	// ErrNotFound is returned when a record doesn't exist
	ErrNotFound = errors.New("record not found")
)

// SyncStateRepository holds the single sync cursor row. Upsert must be
// atomic; it is the only mutation the pipeline performs on sync state.
type SyncStateRepository interface {
	// GetCursor retrieves the cursor, or ErrNotFound if never initialized
	GetCursor(ctx context.Context) (*domain.SyncCursor, error)

	// UpsertCursor creates or updates the cursor to the given block
	UpsertCursor(ctx context.Context, value uint64) error
}

// JobRepository handles job record storage
type JobRepository interface {
	// UpsertByKey merges the set fields of job into the record stored under
	// key, creating it if absent. Unset fields never clobber stored values.
	UpsertByKey(ctx context.Context, key string, job *domain.JobRecord) error

	// GetByKey retrieves a job record by identity key
	GetByKey(ctx context.Context, key string) (*domain.JobRecord, error)
}

// PayoutRepository handles payout record storage
type PayoutRepository interface {
	// UpsertByTxHash merges the set fields of payout into the record stored
	// under txHash, creating it if absent.
	UpsertByTxHash(ctx context.Context, txHash string, payout *domain.PayoutRecord) error

	// GetByTxHash retrieves a payout record by transaction hash
	GetByTxHash(ctx context.Context, txHash string) (*domain.PayoutRecord, error)
}

// NodeRepository is a read-only view of the node registry
type NodeRepository interface {
	// GetByWallet retrieves a node by its (lowercased) wallet address,
	// or ErrNotFound
	GetByWallet(ctx context.Context, wallet string) (*domain.NodeRef, error)
}
