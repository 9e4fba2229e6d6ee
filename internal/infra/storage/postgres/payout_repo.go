package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
)

// PayoutRepo implements storage.PayoutRepository using PostgreSQL.
type PayoutRepo struct {
	db *DB
}

// NewPayoutRepo creates a new PostgreSQL payout repository.
func NewPayoutRepo(db *DB) *PayoutRepo {
	return &PayoutRepo{db: db}
}

type payoutRow struct {
	TxHash      string         `db:"tx_hash"`
	PayoutID    sql.NullString `db:"payout_id"`
	Recipient   sql.NullString `db:"recipient"`
	Amount      sql.NullString `db:"amount"`
	BlockNumber sql.NullInt64  `db:"block_number"`
	Timestamp   sql.NullTime   `db:"ts"`
	Jobs        []byte         `db:"jobs"`
	ProcessedAt sql.NullTime   `db:"processed_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// UpsertByTxHash merges the set fields of payout into the row keyed by
// txHash, creating it if absent. A zero block number is treated as unset
// (processed ranges start at cursor+1, so block 0 never carries a log).
func (r *PayoutRepo) UpsertByTxHash(ctx context.Context, txHash string, payout *domain.PayoutRecord) error {
	var jobs any
	if payout.Jobs != nil {
		data, err := json.Marshal(payout.Jobs)
		if err != nil {
			return fmt.Errorf("failed to encode payout jobs: %w", err)
		}
		jobs = data
	}

	var processedAt any
	if !payout.ProcessedAt.IsZero() {
		processedAt = payout.ProcessedAt
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payouts (
			tx_hash, payout_id, recipient, amount, block_number, ts, jobs, processed_at, updated_at
		) VALUES ($1, NULLIF($2,''), NULLIF($3,''), NULLIF($4,''), NULLIF($5, 0), $6, $7, $8, now())
		ON CONFLICT (tx_hash) DO UPDATE SET
			payout_id    = COALESCE(EXCLUDED.payout_id, payouts.payout_id),
			recipient    = COALESCE(EXCLUDED.recipient, payouts.recipient),
			amount       = COALESCE(EXCLUDED.amount, payouts.amount),
			block_number = COALESCE(EXCLUDED.block_number, payouts.block_number),
			ts           = COALESCE(EXCLUDED.ts, payouts.ts),
			jobs         = COALESCE(EXCLUDED.jobs, payouts.jobs),
			processed_at = COALESCE(EXCLUDED.processed_at, payouts.processed_at),
			updated_at   = now()`,
		txHash, payout.PayoutID, payout.Recipient, payout.Amount,
		int64(payout.BlockNumber), payout.Timestamp, jobs, processedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert payout: %w", err)
	}
	return nil
}

// GetByTxHash retrieves a payout record by transaction hash.
func (r *PayoutRepo) GetByTxHash(ctx context.Context, txHash string) (*domain.PayoutRecord, error) {
	var row payoutRow
	err := r.db.GetContext(ctx, &row, `
		SELECT tx_hash, payout_id, recipient, amount, block_number, ts, jobs, processed_at, updated_at
		FROM payouts WHERE tx_hash = $1`, txHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}

	payout := &domain.PayoutRecord{
		TxHash:      row.TxHash,
		PayoutID:    row.PayoutID.String,
		Recipient:   row.Recipient.String,
		Amount:      row.Amount.String,
		BlockNumber: uint64(row.BlockNumber.Int64),
		UpdatedAt:   row.UpdatedAt,
	}
	if row.Timestamp.Valid {
		ts := row.Timestamp.Time
		payout.Timestamp = &ts
	}
	if row.ProcessedAt.Valid {
		payout.ProcessedAt = row.ProcessedAt.Time
	}
	if len(row.Jobs) > 0 {
		if err := json.Unmarshal(row.Jobs, &payout.Jobs); err != nil {
			return nil, fmt.Errorf("failed to decode payout jobs: %w", err)
		}
	}
	return payout, nil
}
