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

	cacheadapter "github.com/casetrail/assurance-service/internal/adapters/cache"
	eventadapter "github.com/casetrail/assurance-service/internal/adapters/events"
	grpcadapter "github.com/casetrail/assurance-service/internal/adapters/grpc"
	httpadapter "github.com/casetrail/assurance-service/internal/adapters/http"
	"github.com/casetrail/assurance-service/internal/adapters/platform"
	"github.com/casetrail/assurance-service/internal/adapters/postgres"
	"github.com/casetrail/assurance-service/internal/adapters/security"
	"github.com/casetrail/assurance-service/internal/application"
	"github.com/casetrail/assurance-service/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	scheduler  *eventadapter.RetentionScheduler
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping assurance service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	jobLocks := cacheadapter.NewRedisJobLockStore(redisClient)

	verifier, err := security.NewJWTVerifier(cfg.JWTPublicKeyPEM)
	if err != nil {
		if !cfg.AllowEphemeralJWT {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init jwt verifier: %w", err)
		}
		logger.Warn("using ephemeral JWT keys for local/dev runtime")
		verifier, _, err = security.NewEphemeralVerifier()
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init ephemeral jwt verifier: %w", err)
		}
	}

	var cases ports.CaseService
	if cfg.CaseServiceURL != "" {
		cases = platform.NewCaseClient(cfg.CaseServiceURL, cfg.ServiceToken)
	} else {
		cases = platform.NewStaticCaseService(cfg.HeldCaseIDs)
	}
	var storage ports.ArtifactStorage
	if cfg.StorageServiceURL != "" {
		storage = platform.NewStorageClient(cfg.StorageServiceURL, cfg.ServiceToken)
	} else {
		storage = platform.NewLoggingStorage(logger)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			PseudonymSalt:   cfg.PseudonymSalt,
			VerifyPageSize:  cfg.VerifyPageSize,
			ChainMaxRetries: cfg.ChainMaxRetries,
			JobLockTTL:      cfg.JobLockTTL,
			ArtifactTypes:   cfg.ArtifactTypes,
		},
		AuditEvents: repos.AuditEvents,
		AccessLogs:  repos.AccessLogs,
		Policies:    repos.Policies,
		Artifacts:   repos.Artifacts,
		Jobs:        repos.Jobs,
		SodPolicies: repos.SodPolicies,
		Approvals:   repos.Approvals,
		Outbox:      repos.Outbox,
		JobLocks:    jobLocks,
		Storage:     storage,
		Cases:       cases,
	})

	handler := httpadapter.NewHandler(svc, verifier, security.NewStaticAuthorizer())
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewAssuranceInternalServer(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	var publisher ports.EventPublisher
	var closePublisher func() error
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaDefaultTopic, nil)
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		publisher = kafkaPub
		closePublisher = kafkaPub.Close
	} else {
		logger.Warn("no kafka brokers configured, events will be logged only")
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	outbox := eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)
	scheduler := eventadapter.NewRetentionScheduler(logger, svc, cfg.RetentionTenants, cfg.RetentionScanInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		scheduler:  scheduler,
		cleanupFn: func(ctx context.Context) {
			if closePublisher != nil {
				_ = closePublisher()
			}
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
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

// RunWorker drives the background loops: outbox publishing and the periodic
// retention scan. Either loop exiting with a real error stops the worker.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("outbox worker started")
		errCh <- r.outbox.Run(ctx)
	}()
	go func() {
		r.logger.Info("retention scheduler started", "tenants", len(r.cfg.RetentionTenants))
		errCh <- r.scheduler.Run(ctx)
	}()

	var runErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
			stop()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return runErr
}
