package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	httpadapter "github.com/harborworks/claimstream/internal/adapters/http"
	kafkaadapter "github.com/harborworks/claimstream/internal/adapters/kafka"
	"github.com/harborworks/claimstream/internal/adapters/memory"
	"github.com/harborworks/claimstream/internal/adapters/postgres"
	streamsadapter "github.com/harborworks/claimstream/internal/adapters/streams"
	"github.com/harborworks/claimstream/internal/application"
	"github.com/harborworks/claimstream/internal/domain"
	"github.com/harborworks/claimstream/internal/events"
	"github.com/harborworks/claimstream/internal/ledger"
	"github.com/harborworks/claimstream/internal/ports"
	"github.com/harborworks/claimstream/internal/projections"
)

// consumerRun pairs a consumer with the streams it joins.
type consumerRun struct {
	name     string
	consumer *events.Consumer
	streams  []string
}

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	workerHTTP *http.Server
	grpcServer *grpc.Server
	consumers  []consumerRun
	forwarder  *kafkaadapter.Forwarder
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping claimstream runtime",
		"service", cfg.ServiceID,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	redisClient, err := streamsadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	broker := streamsadapter.NewBroker(redisClient)

	// The durable event log and relational repos are best-effort: when
	// Postgres is unreachable at startup the runtime degrades to stream-only
	// operation instead of refusing to start.
	var (
		claims     ports.ClaimRepository
		eventLog   ports.EventLog
		readModels ports.ReadModelRepository
	)
	db, dbErr := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	switch {
	case dbErr == nil:
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		repos := postgres.NewRepositories(db)
		claims = repos.Claims
		eventLog = repos.EventLog
		readModels = repos.ReadModels
		if cfg.SeedDemoData {
			if err := postgres.SeedDemoData(ctx, repos, time.Now().UTC()); err != nil {
				logger.Warn("seeding demo data failed", "error", err)
			}
		}
	case cfg.AllowDegradedMode:
		logger.Warn("postgres unavailable; running stream-only with in-memory claims",
			"module", "bootstrap",
			"operation", "connect_postgres",
			"outcome", "degraded",
			"error", dbErr,
		)
		claims = memory.NewClaimRepository()
	default:
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect postgres: %w", dbErr)
	}

	publisher := events.NewPublisher(logger, broker, eventLog, cfg.ServiceID)
	svc := application.NewService(application.Dependencies{
		Logger:    logger,
		Claims:    claims,
		Publisher: publisher,
	})

	inventory := ledger.New()
	unroutable := events.UnroutablePolicy(cfg.UnroutablePolicy)

	newConsumer := func(group string) *events.Consumer {
		return events.NewConsumer(logger, broker, events.ConsumerConfig{
			Group:        group,
			Consumer:     cfg.ConsumerName,
			PollBlock:    cfg.PollBlock,
			ReclaimBatch: cfg.ReclaimBatch,
			ErrorBackoff: cfg.ErrorBackoff,
			Unroutable:   unroutable,
		})
	}

	var consumers []consumerRun

	inventoryConsumer := newConsumer(cfg.InventoryGroup)
	ledger.NewEventHandler(logger, inventory).Register(inventoryConsumer.RegisterHandler)
	consumers = append(consumers, consumerRun{
		name:     "inventory",
		consumer: inventoryConsumer,
		streams:  []string{domain.StreamForEvent(domain.EventClaimResolved)},
	})

	if readModels != nil {
		projectionConsumer := newConsumer(cfg.ProjectionGroup)
		projections.NewProjector(logger, readModels).Register(projectionConsumer.RegisterHandler)
		consumers = append(consumers, consumerRun{
			name:     "projections",
			consumer: projectionConsumer,
			streams: []string{
				domain.StreamForEvent(domain.EventClaimCreated),
				domain.StreamForEvent(domain.EventClaimAssigned),
				domain.StreamForEvent(domain.EventClaimStarted),
				domain.StreamForEvent(domain.EventClaimResolved),
				domain.StreamForEvent(domain.EventClaimClosed),
			},
		})
	}

	var forwarder *kafkaadapter.Forwarder
	if len(cfg.KafkaBrokers) > 0 {
		forwarder, err = kafkaadapter.NewForwarder(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka forwarder: %w", err)
		}
		auditConsumer := newConsumer(cfg.AuditGroup)
		forwarder.Register(auditConsumer.RegisterHandler)
		consumers = append(consumers, consumerRun{
			name:     "audit",
			consumer: auditConsumer,
			streams:  []string{domain.AuditStream},
		})
	}

	handler := httpadapter.NewHandler(svc, inventory)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}
	workerHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHTTPPort),
		Handler:           httpadapter.NewInventoryRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		workerHTTP: workerHTTP,
		grpcServer: grpcServer,
		consumers:  consumers,
		forwarder:  forwarder,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			if db != nil {
				if sqlDB, sqlErr := db.DB(); sqlErr == nil {
					_ = sqlDB.Close()
				}
			}
		},
	}, nil
}

// RunAPI serves the claims HTTP API plus the gRPC health endpoint until a
// shutdown signal arrives.
func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc health server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker joins the consumer groups and serves the inventory read endpoints
// until a shutdown signal arrives, then drains every polling loop.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, run := range r.consumers {
		if err := run.consumer.StartConsuming(ctx, run.streams); err != nil {
			return fmt.Errorf("start %s consumer: %w", run.name, err)
		}
		r.logger.Info("consumer loops started", "consumer", run.name, "streams", run.streams)
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("worker http server started", "addr", r.workerHTTP.Addr)
		if err := r.workerHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("worker http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	for _, run := range r.consumers {
		run.consumer.StopConsuming()
	}
	if r.forwarder != nil {
		_ = r.forwarder.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.workerHTTP.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}
