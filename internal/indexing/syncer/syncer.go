// Package syncer drives the recurring chain sync tick: compute the
// confirmed frontier, fetch and decode the unprocessed range, project the
// events, and advance the persisted cursor.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/decode"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/fetch"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/metrics"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/project"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/schema"
	"github.com/Ojukwu12/Nodepulse/internal/infra/rpc"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
)

// Config holds scheduler parameters.
type Config struct {
	// Interval between ticks.
	Interval time.Duration
	// ConfirmationDepth excludes the most recent blocks from processing to
	// guard against chain reorganization.
	ConfirmationDepth uint64
	// BackfillWindow bounds the history replayed when no cursor exists yet.
	BackfillWindow uint64
	// SuperChunkSize is the coarse range unit after which the cursor is
	// checkpointed. Distinct from the fetcher's provider-limit chunking.
	SuperChunkSize uint64
	// Contract restricts the log filter to one address; empty matches all.
	Contract string
	// Topics restricts the log filter to these event signature hashes.
	Topics []string
}

// DefaultConfig mirrors the reference deployment.
var DefaultConfig = Config{
	Interval:          60 * time.Second,
	ConfirmationDepth: 12,
	BackfillWindow:    100,
	SuperChunkSize:    500,
}

// SkipJournal records permanently skipped ranges for out-of-band
// reconciliation. The syncer only writes; it never replays.
type SkipJournal interface {
	RecordSkippedRange(ctx context.Context, r domain.SkippedRange) error
}

// Status is a snapshot of the sync loop for health reporting.
type Status struct {
	Configured    bool       `json:"configured"`
	Running       bool       `json:"running"`
	ChainHead     uint64     `json:"chain_head"`
	ConfirmedHead uint64     `json:"confirmed_head"`
	Cursor        uint64     `json:"cursor"`
	LastTickAt    *time.Time `json:"last_tick_at,omitempty"`
	LastTickError string     `json:"last_tick_error,omitempty"`
}

// Syncer runs the recurring sync tick. Only one tick is ever in flight:
// the loop is sequential and ticker fires that land mid-tick are dropped.
type Syncer struct {
	cfg       Config
	client    rpc.Client // nil when no provider is configured
	schema    *schema.EventSchema
	fetcher   *fetch.Fetcher
	projector *project.Projector
	state     storage.SyncStateRepository
	journal   SkipJournal // optional
	log       *slog.Logger

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	status Status
}

// New creates a syncer. Zero config fields fall back to DefaultConfig.
func New(
	cfg Config,
	client rpc.Client,
	sch *schema.EventSchema,
	fetcher *fetch.Fetcher,
	projector *project.Projector,
	state storage.SyncStateRepository,
	journal SkipJournal,
	log *slog.Logger,
) *Syncer {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultConfig.Interval
	}
	if cfg.ConfirmationDepth == 0 {
		cfg.ConfirmationDepth = DefaultConfig.ConfirmationDepth
	}
	if cfg.BackfillWindow == 0 {
		cfg.BackfillWindow = DefaultConfig.BackfillWindow
	}
	if cfg.SuperChunkSize == 0 {
		cfg.SuperChunkSize = DefaultConfig.SuperChunkSize
	}
	return &Syncer{
		cfg:       cfg,
		client:    client,
		schema:    sch,
		fetcher:   fetcher,
		projector: projector,
		state:     state,
		journal:   journal,
		log:       log,
		stop:      make(chan struct{}),
		status:    Status{Configured: client != nil},
	}
}

// Start begins the tick loop and blocks until ctx is done or Stop is
// called. An in-flight tick is abandoned on shutdown; cursor checkpointing
// makes that safe by construction.
func (s *Syncer) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("syncer already running")
	}
	defer s.running.Store(false)

	s.setRunning(true)
	defer s.setRunning(false)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.runTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Status returns a snapshot of the sync loop.
func (s *Syncer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// runTick executes one tick and records the outcome. Errors never escape:
// the next scheduled tick retries from the last persisted cursor, so the
// loop is itself the outer retry mechanism.
func (s *Syncer) runTick(ctx context.Context) {
	now := time.Now().UTC()
	err := s.tick(ctx)

	s.mu.Lock()
	s.status.LastTickAt = &now
	if err != nil {
		s.status.LastTickError = err.Error()
	} else {
		s.status.LastTickError = ""
	}
	s.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		metrics.TicksTotal.WithLabelValues("error").Inc()
		s.log.Error("Chain sync tick failed", "error", err)
	}
}

func (s *Syncer) tick(ctx context.Context) error {
	if s.client == nil {
		metrics.TicksTotal.WithLabelValues("skipped").Inc()
		s.log.Warn("No chain provider configured, skipping sync tick")
		return nil
	}

	height, err := s.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to read chain height: %w", err)
	}
	metrics.ChainHead.Set(float64(height))

	if height <= s.cfg.ConfirmationDepth {
		metrics.TicksTotal.WithLabelValues("noop").Inc()
		s.log.Debug("Chain shorter than confirmation depth", "height", height)
		return nil
	}
	confirmed := height - s.cfg.ConfirmationDepth
	metrics.ConfirmedHead.Set(float64(confirmed))
	s.mu.Lock()
	s.status.ChainHead = height
	s.status.ConfirmedHead = confirmed
	s.mu.Unlock()

	cursor, err := s.loadOrSeedCursor(ctx, confirmed)
	if err != nil {
		return err
	}

	if cursor+1 > confirmed {
		metrics.TicksTotal.WithLabelValues("noop").Inc()
		s.log.Debug("No new confirmed blocks", "cursor", cursor, "confirmed", confirmed)
		return nil
	}

	from, to := cursor+1, confirmed
	s.log.Info("Processing chain range", "from", from, "to", to, "height", height)

	for _, super := range fetch.Partition(from, to, s.cfg.SuperChunkSize) {
		if err := s.processRange(ctx, super.From, super.To); err != nil {
			return err
		}
	}

	metrics.TicksTotal.WithLabelValues("ok").Inc()
	return nil
}

// loadOrSeedCursor reads the cursor, seeding it to a bounded backfill
// window below the confirmed frontier on first run.
func (s *Syncer) loadOrSeedCursor(ctx context.Context, confirmed uint64) (uint64, error) {
	cur, err := s.state.GetCursor(ctx)
	if err == nil {
		s.setCursor(cur.Value)
		return cur.Value, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, fmt.Errorf("failed to read sync cursor: %w", err)
	}

	var seed uint64
	if confirmed > s.cfg.BackfillWindow {
		seed = confirmed - s.cfg.BackfillWindow
	}
	s.log.Info("Initializing sync cursor", "value", seed)
	if err := s.state.UpsertCursor(ctx, seed); err != nil {
		return 0, fmt.Errorf("failed to initialize sync cursor: %w", err)
	}
	s.setCursor(seed)
	return seed, nil
}

// processRange fetches, decodes, and projects one super-chunk, then
// checkpoints the cursor at its end block. Checkpointing per super-chunk
// bounds re-processing on crash to at most one super-chunk.
func (s *Syncer) processRange(ctx context.Context, from, to uint64) error {
	logs, skipped, err := s.fetcher.Fetch(ctx, from, to, fetch.FilterSpec{
		Address: s.cfg.Contract,
		Topics:  s.cfg.Topics,
	})
	if err != nil {
		return err
	}
	s.journalSkipped(ctx, skipped)

	// Block timestamps are cached per tick; many logs share a block.
	timestamps := make(map[uint64]*time.Time)
	for _, lg := range logs {
		decoded := decode.Decode(lg, s.schema)
		if decoded != nil {
			metrics.LogsDecoded.WithLabelValues("decoded").Inc()
			s.log.Debug("Decoded event", "name", decoded.Name, "block", lg.BlockNumber)
		} else {
			metrics.LogsDecoded.WithLabelValues("undecoded").Inc()
		}

		s.projector.Project(ctx, decoded, lg, s.blockTimestamp(ctx, timestamps, lg.BlockNumber))
	}

	if err := s.state.UpsertCursor(ctx, to); err != nil {
		return fmt.Errorf("failed to advance sync cursor: %w", err)
	}
	s.setCursor(to)
	return nil
}

func (s *Syncer) blockTimestamp(ctx context.Context, cache map[uint64]*time.Time, block uint64) *time.Time {
	if ts, ok := cache[block]; ok {
		return ts
	}
	ts, err := s.client.BlockTimestamp(ctx, block)
	if err != nil {
		s.log.Warn("Failed to fetch block timestamp", "block", block, "error", err)
		ts = nil
	}
	cache[block] = ts
	return ts
}

func (s *Syncer) journalSkipped(ctx context.Context, skipped []fetch.Range) {
	if s.journal == nil {
		return
	}
	for _, r := range skipped {
		entry := domain.SkippedRange{
			FromBlock: r.From,
			ToBlock:   r.To,
			Reason:    "log fetch exhausted retries",
		}
		if err := s.journal.RecordSkippedRange(ctx, entry); err != nil {
			s.log.Warn("Failed to journal skipped range",
				"from", r.From, "to", r.To, "error", err)
		}
	}
}

func (s *Syncer) setCursor(v uint64) {
	metrics.SyncCursor.Set(float64(v))
	s.mu.Lock()
	s.status.Cursor = v
	s.mu.Unlock()
}

func (s *Syncer) setRunning(v bool) {
	s.mu.Lock()
	s.status.Running = v
	s.mu.Unlock()
}
