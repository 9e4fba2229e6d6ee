// Package fetch retrieves event logs for a block range in provider-sized
// chunks. Many RPC providers cap the block span of a single log query, so
// the fetcher partitions the range, retries each chunk with exponential
// backoff, and skips chunks that exhaust their attempts rather than
// aborting the whole range.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/metrics"
	"github.com/Ojukwu12/Nodepulse/internal/infra/rpc"
)

// LogSource is the subset of the RPC client the fetcher depends on.
type LogSource interface {
	GetLogs(ctx context.Context, filter rpc.Filter) ([]domain.RawLog, error)
}

// FilterSpec is the block-range-independent part of a log filter.
type FilterSpec struct {
	Address string
	Topics  []string
}

// Range is an inclusive block range.
type Range struct {
	From uint64
	To   uint64
}

// Config defines chunking and retry behavior.
type Config struct {
	// ChunkSize is the provider's per-call block span cap.
	ChunkSize uint64
	// MaxAttempts per chunk before it is skipped.
	MaxAttempts int
	// InitialDelay is the base backoff; attempt n waits InitialDelay * 2^n.
	InitialDelay time.Duration
}

// DefaultConfig matches common free-tier provider limits.
var DefaultConfig = Config{
	ChunkSize:    10,
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
}

// Fetcher fetches logs chunk by chunk.
type Fetcher struct {
	source LogSource
	cfg    Config
	log    *slog.Logger
}

// New creates a fetcher. Zero config fields fall back to DefaultConfig.
func New(source LogSource, cfg Config, log *slog.Logger) *Fetcher {
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultConfig.ChunkSize
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if cfg.InitialDelay == 0 {
		cfg.InitialDelay = DefaultConfig.InitialDelay
	}
	return &Fetcher{source: source, cfg: cfg, log: log}
}

// Fetch returns all logs in [from, to] matching the filter, concatenated in
// ascending chunk order (provider order within a chunk), together with the
// sub-ranges that were permanently skipped after retry exhaustion. The only
// error it returns is context cancellation.
func (f *Fetcher) Fetch(ctx context.Context, from, to uint64, filter FilterSpec) ([]domain.RawLog, []Range, error) {
	var (
		logs    []domain.RawLog
		skipped []Range
	)

	for _, chunk := range Partition(from, to, f.cfg.ChunkSize) {
		part, err := f.fetchChunk(ctx, chunk, filter)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			f.log.Warn("Skipping chunk after exhausting retries",
				"from", chunk.From, "to", chunk.To, "error", err)
			metrics.ChunksSkipped.Inc()
			skipped = append(skipped, chunk)
			continue
		}
		logs = append(logs, part...)
	}

	metrics.LogsFetched.Add(float64(len(logs)))
	return logs, skipped, nil
}

// fetchChunk issues one getLogs call with bounded retry.
func (f *Fetcher) fetchChunk(ctx context.Context, chunk Range, filter FilterSpec) ([]domain.RawLog, error) {
	var lastErr error

	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := f.cfg.InitialDelay * (1 << attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		logs, err := f.source.GetLogs(ctx, rpc.Filter{
			Address:   filter.Address,
			FromBlock: chunk.From,
			ToBlock:   chunk.To,
			Topics:    filter.Topics,
		})
		if err == nil {
			return logs, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.log.Warn("Log fetch failed, retrying",
			"from", chunk.From, "to", chunk.To, "attempt", attempt+1, "error", err)
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", f.cfg.MaxAttempts, lastErr)
}

// Partition splits [from, to] into consecutive, non-overlapping chunks of
// at most size blocks. The last chunk may be shorter.
func Partition(from, to, size uint64) []Range {
	if to < from || size == 0 {
		return nil
	}

	ranges := make([]Range, 0, (to-from)/size+1)
	for start := from; start <= to; start += size {
		end := start + size - 1
		if end > to {
			end = to
		}
		ranges = append(ranges, Range{From: start, To: end})
	}
	return ranges
}
