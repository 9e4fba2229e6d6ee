// Package control wires the sync pipeline together and manages its
// lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Ojukwu12/Nodepulse/internal/core/config"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/fetch"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/health"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/project"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/schema"
	"github.com/Ojukwu12/Nodepulse/internal/indexing/syncer"
	"github.com/Ojukwu12/Nodepulse/internal/infra/rpc"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage/memory"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage/postgres"

	redisclient "github.com/Ojukwu12/Nodepulse/internal/infra/redis"
)

// Service is the assembled chain sync application.
type Service struct {
	cfg          *config.AppConfig
	syncer       *syncer.Syncer
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// New creates a Service with all dependencies initialized.
func New(cfg *config.AppConfig, log *slog.Logger) (*Service, error) {
	// 1. Storage
	var (
		stateRepo  storage.SyncStateRepository
		jobRepo    storage.JobRepository
		payoutRepo storage.PayoutRepository
		nodeRepo   storage.NodeRepository
		db         *postgres.DB
	)

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		stateRepo = postgres.NewSyncStateRepo(db)
		jobRepo = postgres.NewJobRepo(db)
		payoutRepo = postgres.NewPayoutRepo(db)
		nodeRepo = postgres.NewNodeRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		stateRepo = memory.NewSyncStateRepo(store)
		jobRepo = memory.NewJobRepo(store)
		payoutRepo = memory.NewPayoutRepo(store)
		nodeRepo = memory.NewNodeRepo(store)
		log.Warn("No database configured, using in-memory storage")
	}

	// 2. Skipped-range journal (optional)
	var (
		redisClient *redisclient.Client
		journal     syncer.SkipJournal
	)
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		journal = redisClient
		log.Info("Skipped-range journal enabled")
	}

	// 3. Ledger client
	var client rpc.Client
	if cfg.Chain.RPCURL != "" {
		client = rpc.NewHTTPClient(cfg.Chain.RPCURL, time.Duration(cfg.Chain.RPCTimeout))
	} else {
		log.Warn("No chain RPC URL configured, chain sync will be disabled")
	}

	// 4. Event schema + topic filter
	sch := schema.Load(cfg.Chain.ABIPath, log)
	topics := resolveTopics(cfg, sch, log)

	// 5. Pipeline
	fetcher := fetch.New(client, fetch.Config{ChunkSize: cfg.Chain.LogRangeCap}, log)
	projector := project.New(jobRepo, payoutRepo, nodeRepo, log)
	sync := syncer.New(
		syncer.Config{
			Interval:          time.Duration(cfg.Chain.ScanInterval),
			ConfirmationDepth: cfg.Chain.Confirmations,
			SuperChunkSize:    cfg.Chain.SuperChunkSize,
			Contract:          cfg.Chain.ContractAddress,
			Topics:            topics,
		},
		client, sch, fetcher, projector, stateRepo, journal, log,
	)

	healthServer := health.NewServer(sync, cfg.Server.Port, time.Duration(cfg.Chain.ScanInterval))

	return &Service{
		cfg:          cfg,
		syncer:       sync,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          log,
	}, nil
}

// resolveTopics builds the topic filter: schema-derived topics for
// configured event names take precedence; raw topic hashes are the
// fallback when no schema+names pair is available.
func resolveTopics(cfg *config.AppConfig, sch *schema.EventSchema, log *slog.Logger) []string {
	names := config.SplitCSV(cfg.Chain.EventNames)
	if sch != nil && len(names) > 0 {
		if topics := sch.TopicsForNames(names, log); len(topics) > 0 {
			return topics
		}
	}
	return config.SplitCSV(cfg.Chain.EventTopics)
}

// Run starts the sync loop and health server, blocking until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.syncer.Start(gctx)
	})

	g.Go(func() error {
		s.log.Info("Health server listening", "port", s.cfg.Server.Port)
		return s.healthServer.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		s.syncer.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.healthServer.Stop(shutdownCtx)
	})

	return g.Wait()
}

// Close releases held connections.
func (s *Service) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", "error", err)
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close redis", "error", err)
		}
	}
}
