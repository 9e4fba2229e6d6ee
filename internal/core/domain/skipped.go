package domain

import "time"

// SkippedRange records a block range whose log fetch exhausted all retry
// attempts. The range is permanently skipped by the sync loop; the record
// exists only so an operator can reconcile the gap out-of-band.
type SkippedRange struct {
	ID        string    `json:"id"`
	FromBlock uint64    `json:"from_block"`
	ToBlock   uint64    `json:"to_block"`
	Reason    string    `json:"reason"`
	SkippedAt time.Time `json:"skipped_at"`
}
