package domain

import "time"

// JobRecord is a durable projection of an on-chain job lifecycle event.
type JobRecord struct {
	JobID        string         `json:"job_id"`
	JobType      string         `json:"job_type"`
	JobSpec      map[string]any `json:"job_spec,omitempty"`
	NodeWallet   string         `json:"node_wallet"` // lowercased address
	NodeID       string         `json:"node_id,omitempty"`
	Status       JobStatus      `json:"status"`
	Contribution map[string]any `json:"contribution,omitempty"`
	RewardAmount string         `json:"reward_amount"` // canonical decimal string
	TxHash       string         `json:"tx_hash"`
	BlockNumber  uint64         `json:"block_number"`
	Timestamp    *time.Time     `json:"timestamp,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type JobStatus string

const (
	JobStatusReported JobStatus = "reported"
	JobStatusVerified JobStatus = "verified"
	JobStatusDisputed JobStatus = "disputed"
	JobStatusPaid     JobStatus = "paid"
)

// IdentityKey returns the upsert key: the transaction hash when present,
// otherwise the job ID.
func (j *JobRecord) IdentityKey() string {
	if j.TxHash != "" {
		return j.TxHash
	}
	return j.JobID
}
