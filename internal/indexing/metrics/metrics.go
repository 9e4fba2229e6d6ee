package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts scheduler ticks by outcome (ok, error, noop, skipped)
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodepulse_sync_ticks_total",
			Help: "Total number of chain sync ticks",
		},
		[]string{"outcome"},
	)

	// RPCCallsTotal counts ledger RPC calls per method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodepulse_rpc_calls_total",
			Help: "Total number of ledger RPC calls",
		},
		[]string{"method"},
	)

	// RPCErrorsTotal counts ledger RPC transport errors per method
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodepulse_rpc_errors_total",
			Help: "Total number of ledger RPC transport errors",
		},
		[]string{"method"},
	)

	// RPCLatency tracks ledger RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodepulse_rpc_latency_seconds",
			Help:    "Ledger RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// LogsFetched counts raw logs returned by the range fetcher
	LogsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodepulse_logs_fetched_total",
			Help: "Total number of raw logs fetched",
		},
	)

	// LogsDecoded counts logs by decode result (decoded, undecoded)
	LogsDecoded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodepulse_logs_decoded_total",
			Help: "Total number of logs by decode result",
		},
		[]string{"result"},
	)

	// ChunksSkipped counts chunks permanently skipped after retry exhaustion
	ChunksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodepulse_chunks_skipped_total",
			Help: "Total number of log chunks skipped after exhausting retries",
		},
	)

	// RecordUpserts counts projected record upserts per kind (job, payout)
	RecordUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodepulse_record_upserts_total",
			Help: "Total number of job/payout record upserts",
		},
		[]string{"kind"},
	)

	// PersistenceErrors counts dropped records due to store failures
	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodepulse_persistence_errors_total",
			Help: "Total number of records dropped due to persistence errors",
		},
		[]string{"kind"},
	)

	// ChainHead tracks the latest observed chain height
	ChainHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodepulse_chain_head",
			Help: "Latest observed chain height",
		},
	)

	// ConfirmedHead tracks the confirmed frontier (head minus confirmation depth)
	ConfirmedHead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodepulse_confirmed_head",
			Help: "Confirmed chain frontier visible to the sync loop",
		},
	)

	// SyncCursor tracks the last fully processed block
	SyncCursor = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodepulse_sync_cursor",
			Help: "Last fully processed block number",
		},
	)
)
