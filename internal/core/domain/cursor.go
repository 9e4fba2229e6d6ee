package domain

import "time"

// SyncCursorKey is the single row key under which sync progress is stored.
const SyncCursorKey = "lastProcessedBlock"

// SyncCursor records the last fully processed block. Its value is
// monotonically non-decreasing across successful ticks; absence means the
// pipeline has never run.
type SyncCursor struct {
	Key       string    `json:"key"`
	Value     uint64    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
