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

// JobRepo implements storage.JobRepository using PostgreSQL.
type JobRepo struct {
	db *DB
}

// NewJobRepo creates a new PostgreSQL job repository.
func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

type jobRow struct {
	RecordKey    string         `db:"record_key"`
	JobID        sql.NullString `db:"job_id"`
	JobType      sql.NullString `db:"job_type"`
	JobSpec      []byte         `db:"job_spec"`
	NodeWallet   sql.NullString `db:"node_wallet"`
	NodeID       sql.NullString `db:"node_id"`
	Status       string         `db:"status"`
	Contribution []byte         `db:"contribution"`
	RewardAmount sql.NullString `db:"reward_amount"`
	TxHash       sql.NullString `db:"tx_hash"`
	BlockNumber  sql.NullInt64  `db:"block_number"`
	Timestamp    sql.NullTime   `db:"ts"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// UpsertByKey merges the set fields of job into the row keyed by key.
// Empty strings and zero block numbers are treated as unset and never
// clobber stored values (processed ranges start at cursor+1, so block 0
// never carries a log).
func (r *JobRepo) UpsertByKey(ctx context.Context, key string, job *domain.JobRecord) error {
	jobSpec, err := nullableJSON(job.JobSpec)
	if err != nil {
		return fmt.Errorf("failed to encode job spec: %w", err)
	}
	contribution, err := nullableJSON(job.Contribution)
	if err != nil {
		return fmt.Errorf("failed to encode contribution: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO jobs (
			record_key, job_id, job_type, job_spec, node_wallet, node_id,
			status, contribution, reward_amount, tx_hash, block_number, ts, updated_at
		) VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, NULLIF($5,''), NULLIF($6,''),
			COALESCE(NULLIF($7,''), 'reported'), $8, NULLIF($9,''), NULLIF($10,''), NULLIF($11, 0), $12, now())
		ON CONFLICT (record_key) DO UPDATE SET
			job_id        = COALESCE(EXCLUDED.job_id, jobs.job_id),
			job_type      = COALESCE(EXCLUDED.job_type, jobs.job_type),
			job_spec      = COALESCE(EXCLUDED.job_spec, jobs.job_spec),
			node_wallet   = COALESCE(EXCLUDED.node_wallet, jobs.node_wallet),
			node_id       = COALESCE(EXCLUDED.node_id, jobs.node_id),
			status        = COALESCE(NULLIF($7,''), jobs.status),
			contribution  = COALESCE(EXCLUDED.contribution, jobs.contribution),
			reward_amount = COALESCE(EXCLUDED.reward_amount, jobs.reward_amount),
			tx_hash       = COALESCE(EXCLUDED.tx_hash, jobs.tx_hash),
			block_number  = COALESCE(EXCLUDED.block_number, jobs.block_number),
			ts            = COALESCE(EXCLUDED.ts, jobs.ts),
			updated_at    = now()`,
		key, job.JobID, job.JobType, jobSpec, job.NodeWallet, job.NodeID,
		string(job.Status), contribution, job.RewardAmount, job.TxHash,
		int64(job.BlockNumber), job.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert job: %w", err)
	}
	return nil
}

// GetByKey retrieves a job record by identity key.
func (r *JobRepo) GetByKey(ctx context.Context, key string) (*domain.JobRecord, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row, `
		SELECT record_key, job_id, job_type, job_spec, node_wallet, node_id,
		       status, contribution, reward_amount, tx_hash, block_number, ts, updated_at
		FROM jobs WHERE record_key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return rowToJob(&row)
}

func rowToJob(row *jobRow) (*domain.JobRecord, error) {
	job := &domain.JobRecord{
		JobID:        row.JobID.String,
		JobType:      row.JobType.String,
		NodeWallet:   row.NodeWallet.String,
		NodeID:       row.NodeID.String,
		Status:       domain.JobStatus(row.Status),
		RewardAmount: row.RewardAmount.String,
		TxHash:       row.TxHash.String,
		BlockNumber:  uint64(row.BlockNumber.Int64),
		UpdatedAt:    row.UpdatedAt,
	}
	if row.Timestamp.Valid {
		ts := row.Timestamp.Time
		job.Timestamp = &ts
	}
	if len(row.JobSpec) > 0 {
		if err := json.Unmarshal(row.JobSpec, &job.JobSpec); err != nil {
			return nil, fmt.Errorf("failed to decode job spec: %w", err)
		}
	}
	if len(row.Contribution) > 0 {
		if err := json.Unmarshal(row.Contribution, &job.Contribution); err != nil {
			return nil, fmt.Errorf("failed to decode contribution: %w", err)
		}
	}
	return job, nil
}

// nullableJSON marshals v for a jsonb column, mapping nil to SQL NULL so
// COALESCE merge semantics apply.
func nullableJSON(v map[string]any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}
