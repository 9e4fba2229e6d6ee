package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
)

const (
	skippedRangesKey = "nodepulse:skipped_ranges"

	// maxJournalEntries caps the journal so an endlessly flaky provider
	// cannot grow the list without bound.
	maxJournalEntries = 1000
)

// RecordSkippedRange appends a skipped block range to the journal.
func (c *Client) RecordSkippedRange(ctx context.Context, r domain.SkippedRange) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SkippedAt.IsZero() {
		r.SkippedAt = time.Now().UTC()
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal skipped range: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, skippedRangesKey, data)
	pipe.LTrim(ctx, skippedRangesKey, 0, maxJournalEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record skipped range: %w", err)
	}
	return nil
}

// ListSkippedRanges returns up to limit journal entries, newest first.
func (c *Client) ListSkippedRanges(ctx context.Context, limit int64) ([]domain.SkippedRange, error) {
	if limit <= 0 {
		limit = maxJournalEntries
	}

	items, err := c.rdb.LRange(ctx, skippedRangesKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list skipped ranges: %w", err)
	}

	ranges := make([]domain.SkippedRange, 0, len(items))
	for _, item := range items {
		var r domain.SkippedRange
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal skipped range: %w", err)
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
