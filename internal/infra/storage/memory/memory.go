// Package memory provides in-memory repository implementations, used when
// no database is configured and as fakes in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
)

type MemoryStorage struct {
	cursor  *domain.SyncCursor
	jobs    map[string]*domain.JobRecord
	payouts map[string]*domain.PayoutRecord
	nodes   map[string]*domain.NodeRef // keyed by wallet
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		jobs:    make(map[string]*domain.JobRecord),
		payouts: make(map[string]*domain.PayoutRecord),
		nodes:   make(map[string]*domain.NodeRef),
	}
}

// AddNode registers a node for lookups. Test/dev helper; the real registry
// is maintained outside the pipeline.
func (s *MemoryStorage) AddNode(node *domain.NodeRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := *node
	s.nodes[n.WalletAddress] = &n
}

// -----------------------------------------------------------------------------
// Sync State Repository
// -----------------------------------------------------------------------------

type SyncStateRepo struct {
	store *MemoryStorage
}

func NewSyncStateRepo(store *MemoryStorage) *SyncStateRepo {
	return &SyncStateRepo{store: store}
}

func (r *SyncStateRepo) GetCursor(ctx context.Context) (*domain.SyncCursor, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.cursor == nil {
		return nil, storage.ErrNotFound
	}
	c := *r.store.cursor
	return &c, nil
}

func (r *SyncStateRepo) UpsertCursor(ctx context.Context, value uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.cursor = &domain.SyncCursor{
		Key:       domain.SyncCursorKey,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return nil
}

// -----------------------------------------------------------------------------
// Job Repository
// -----------------------------------------------------------------------------

type JobRepo struct {
	store *MemoryStorage
}

func NewJobRepo(store *MemoryStorage) *JobRepo {
	return &JobRepo{store: store}
}

func (r *JobRepo) UpsertByKey(ctx context.Context, key string, job *domain.JobRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.jobs[key]
	if !ok {
		j := *job
		j.UpdatedAt = time.Now()
		r.store.jobs[key] = &j
		return nil
	}

	// Merge: set fields overwrite, unset fields preserve stored values.
	if job.JobID != "" {
		existing.JobID = job.JobID
	}
	if job.JobType != "" {
		existing.JobType = job.JobType
	}
	if job.JobSpec != nil {
		existing.JobSpec = job.JobSpec
	}
	if job.NodeWallet != "" {
		existing.NodeWallet = job.NodeWallet
	}
	if job.NodeID != "" {
		existing.NodeID = job.NodeID
	}
	if job.Status != "" {
		existing.Status = job.Status
	}
	if job.Contribution != nil {
		existing.Contribution = job.Contribution
	}
	if job.RewardAmount != "" {
		existing.RewardAmount = job.RewardAmount
	}
	if job.TxHash != "" {
		existing.TxHash = job.TxHash
	}
	// Block 0 doubles as "unset": processed ranges start at cursor+1,
	// so no genesis-block log ever reaches the store.
	if job.BlockNumber != 0 {
		existing.BlockNumber = job.BlockNumber
	}
	if job.Timestamp != nil {
		existing.Timestamp = job.Timestamp
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *JobRepo) GetByKey(ctx context.Context, key string) (*domain.JobRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	job, ok := r.store.jobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	j := *job
	return &j, nil
}

// -----------------------------------------------------------------------------
// Payout Repository
// -----------------------------------------------------------------------------

type PayoutRepo struct {
	store *MemoryStorage
}

func NewPayoutRepo(store *MemoryStorage) *PayoutRepo {
	return &PayoutRepo{store: store}
}

func (r *PayoutRepo) UpsertByTxHash(ctx context.Context, txHash string, payout *domain.PayoutRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.payouts[txHash]
	if !ok {
		p := *payout
		p.UpdatedAt = time.Now()
		r.store.payouts[txHash] = &p
		return nil
	}

	if payout.PayoutID != "" {
		existing.PayoutID = payout.PayoutID
	}
	if payout.Recipient != "" {
		existing.Recipient = payout.Recipient
	}
	if payout.Amount != "" {
		existing.Amount = payout.Amount
	}
	if payout.BlockNumber != 0 {
		existing.BlockNumber = payout.BlockNumber
	}
	if payout.TxHash != "" {
		existing.TxHash = payout.TxHash
	}
	if payout.Timestamp != nil {
		existing.Timestamp = payout.Timestamp
	}
	if payout.Jobs != nil {
		existing.Jobs = payout.Jobs
	}
	if !payout.ProcessedAt.IsZero() {
		existing.ProcessedAt = payout.ProcessedAt
	}
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *PayoutRepo) GetByTxHash(ctx context.Context, txHash string) (*domain.PayoutRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	payout, ok := r.store.payouts[txHash]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p := *payout
	return &p, nil
}

// -----------------------------------------------------------------------------
// Node Repository
// -----------------------------------------------------------------------------

type NodeRepo struct {
	store *MemoryStorage
}

func NewNodeRepo(store *MemoryStorage) *NodeRepo {
	return &NodeRepo{store: store}
}

func (r *NodeRepo) GetByWallet(ctx context.Context, wallet string) (*domain.NodeRef, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	node, ok := r.store.nodes[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	n := *node
	return &n, nil
}
