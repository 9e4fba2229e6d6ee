// Package project classifies decoded chain events into domain records and
// upserts them idempotently into the job and payout stores.
package project

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/metrics"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
)

// IntentKind identifies the record an event projects into.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentJob
	IntentPayout
)

// Intent is the outcome of classifying one log. Exactly one of Job/Payout
// is set for the corresponding kind.
type Intent struct {
	Kind   IntentKind
	Key    string
	Job    *domain.JobRecord
	Payout *domain.PayoutRecord
}

// Candidate argument names, probed in priority order. The first present
// name wins; precedence is fixed here rather than in conditional chains.
var (
	recipientFields  = []string{"recipient", "to", "wallet"}
	amountFields     = []string{"amount", "value"}
	jobIDFields      = []string{"jobId", "id"}
	nodeWalletFields = []string{"node", "operator", "wallet"}
	rewardFields     = []string{"reward", "amount"}
)

// Classify maps a decoded event (or an undecoded log when decoded is nil)
// to a projection intent. Precedence: payout/reward events first, then job
// events, then nothing; an undecoded log always yields a placeholder payout
// so every observed log leaves an auditable trace.
func Classify(decoded *domain.DecodedEvent, lg domain.RawLog) Intent {
	if decoded == nil {
		return Intent{
			Kind: IntentPayout,
			Key:  lg.TxHash,
			Payout: &domain.PayoutRecord{
				PayoutID:    lg.TxHash,
				Recipient:   domain.UnknownRecipient,
				Amount:      "0",
				BlockNumber: lg.BlockNumber,
				TxHash:      lg.TxHash,
			},
		}
	}

	name := strings.ToLower(decoded.Name)

	if strings.Contains(name, "payout") || strings.Contains(name, "reward") {
		recipient := stringArg(decoded.Args, recipientFields, "0x0")
		amount := decimalArg(decoded.Args, amountFields, "0")
		return Intent{
			Kind: IntentPayout,
			Key:  lg.TxHash,
			Payout: &domain.PayoutRecord{
				PayoutID:    lg.TxHash,
				Recipient:   strings.ToLower(recipient),
				Amount:      amount,
				BlockNumber: lg.BlockNumber,
				TxHash:      lg.TxHash,
			},
		}
	}

	if strings.Contains(name, "job") {
		job := &domain.JobRecord{
			JobID:        stringArg(decoded.Args, jobIDFields, ""),
			JobType:      decoded.Name,
			NodeWallet:   strings.ToLower(stringArg(decoded.Args, nodeWalletFields, "")),
			Status:       domain.JobStatusReported,
			RewardAmount: decimalArg(decoded.Args, rewardFields, "0"),
			TxHash:       lg.TxHash,
			BlockNumber:  lg.BlockNumber,
		}
		return Intent{Kind: IntentJob, Key: job.IdentityKey(), Job: job}
	}

	return Intent{Kind: IntentNone}
}

// Projector persists intents into the job and payout stores.
type Projector struct {
	jobs    storage.JobRepository
	payouts storage.PayoutRepository
	nodes   storage.NodeRepository // optional
	log     *slog.Logger
}

// New creates a projector. nodes may be nil when no registry is available.
func New(jobs storage.JobRepository, payouts storage.PayoutRepository, nodes storage.NodeRepository, log *slog.Logger) *Projector {
	return &Projector{jobs: jobs, payouts: payouts, nodes: nodes, log: log}
}

// Project classifies one log and upserts the resulting record. Persistence
// failures are logged, counted, and dropped for this tick; the record is
// only revisited if the same log is ever refetched.
func (p *Projector) Project(ctx context.Context, decoded *domain.DecodedEvent, lg domain.RawLog, ts *time.Time) {
	intent := Classify(decoded, lg)

	switch intent.Kind {
	case IntentPayout:
		intent.Payout.Timestamp = ts
		intent.Payout.ProcessedAt = time.Now().UTC()
		if err := p.payouts.UpsertByTxHash(ctx, intent.Key, intent.Payout); err != nil {
			metrics.PersistenceErrors.WithLabelValues("payout").Inc()
			p.log.Error("Failed to upsert payout, dropping record",
				"tx_hash", intent.Key, "error", err)
			return
		}
		metrics.RecordUpserts.WithLabelValues("payout").Inc()
		p.log.Info("Upserted payout",
			"tx_hash", intent.Key, "recipient", intent.Payout.Recipient, "amount", intent.Payout.Amount)

	case IntentJob:
		if intent.Key == "" {
			p.log.Warn("Job event without identity key, dropping", "event", decoded.Name)
			return
		}
		intent.Job.Timestamp = ts
		p.resolveNode(ctx, intent.Job)
		if err := p.jobs.UpsertByKey(ctx, intent.Key, intent.Job); err != nil {
			metrics.PersistenceErrors.WithLabelValues("job").Inc()
			p.log.Error("Failed to upsert job, dropping record",
				"key", intent.Key, "error", err)
			return
		}
		metrics.RecordUpserts.WithLabelValues("job").Inc()
		p.log.Info("Upserted job",
			"key", intent.Key, "job_type", intent.Job.JobType, "node_wallet", intent.Job.NodeWallet)

	default:
		p.log.Debug("Unhandled event name", "event", decoded.Name)
	}
}

// resolveNode back-references a registered node by wallet, if any.
func (p *Projector) resolveNode(ctx context.Context, job *domain.JobRecord) {
	if p.nodes == nil || job.NodeWallet == "" {
		return
	}
	node, err := p.nodes.GetByWallet(ctx, job.NodeWallet)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("Node lookup failed", "wallet", job.NodeWallet, "error", err)
		}
		return
	}
	job.NodeID = node.ID
}

// stringArg returns the first present candidate rendered as a string.
func stringArg(args map[string]any, candidates []string, fallback string) string {
	if v, ok := firstArg(args, candidates); ok {
		if s := renderString(v); s != "" {
			return s
		}
	}
	return fallback
}

// decimalArg returns the first present candidate as a canonical decimal
// string. Amounts are never stored as native big-integer types.
func decimalArg(args map[string]any, candidates []string, fallback string) string {
	if v, ok := firstArg(args, candidates); ok {
		if s := renderDecimal(v); s != "" {
			return s
		}
	}
	return fallback
}

func firstArg(args map[string]any, candidates []string) (any, bool) {
	for _, name := range candidates {
		if v, ok := args[name]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
