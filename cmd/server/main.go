package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/opsledger/internal/adapter/http"
	"github.com/iho/opsledger/internal/adapter/http/handler"
	"github.com/iho/opsledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/opsledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/opsledger/internal/adapter/repository/redis"
	"github.com/iho/opsledger/internal/infrastructure/auth"
	"github.com/iho/opsledger/internal/infrastructure/config"
	"github.com/iho/opsledger/internal/infrastructure/eventpublisher"
	"github.com/iho/opsledger/internal/infrastructure/logger"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
	"github.com/iho/opsledger/internal/usecase"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	visitorCleanupInterval = time.Minute
	visitorIdleTimeout     = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Version: version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New()

	b, err := openBackend(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer b.Close()

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		go cleanupVisitors(ctx, rateLimiter)
	}

	routerCfg := newRouterConfig(cfg, b, m, prometheus.DefaultGatherer, log)
	routerCfg.RateLimiter = rateLimiter

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Deferred after b.Close, so the relay has stopped touching the outbox
	// and Redis before they are closed.
	stopRelay := startRelay(ctx, newEventRelay(cfg, b, m, log), log)
	defer stopRelay()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// newRouterConfig builds use cases and handlers on top of b.
func newRouterConfig(cfg *config.Config, b *backend, m *metrics.Metrics, gatherer prometheus.Gatherer, log zerolog.Logger) httpAdapter.RouterConfig {
	idGen := postgresRepo.NewULIDGenerator()

	approvalUC := usecase.NewApprovalUseCase(b.txManager, b.approvals, b.outbox, b.audit,
		b.directory, b.sequences, idGen, b.retrier, cfg.ApprovalHoldTTL, m, log)
	ledgerUC := usecase.NewLedgerUseCase(b.txManager, usecase.LedgerRepositories{
		Entries:        b.entries,
		Approvals:      b.approvals,
		VendorPayments: b.vendors,
		Liabilities:    b.liabilities,
		Salaries:       b.salaries,
		Outbox:         b.outbox,
		Audit:          b.audit,
	}, b.references, postgresRepo.NewEntryIDGenerator(), idGen, b.retrier, cfg.LargeEntryThreshold, m, log)
	vendorUC := usecase.NewVendorPaymentUseCase(b.txManager, b.vendors, b.outbox, b.audit,
		b.sequences, idGen, b.retrier, m, log)
	liabilityUC := usecase.NewLiabilityUseCase(b.txManager, b.liabilities, b.approvals, b.outbox, b.audit,
		b.sequences, idGen, cfg.InterestPolicy(), b.retrier, m, log)
	salaryUC := usecase.NewSalaryUseCase(b.txManager, b.salaries, b.outbox, b.audit,
		b.directory, b.sequences, idGen, b.retrier, m, log)
	reconUC := usecase.NewReconciliationUseCase(b.entries, b.vendors, b.liabilities, b.salaries, m, log)

	routerCfg := httpAdapter.RouterConfig{
		ApprovalHandler:       handler.NewApprovalHandler(approvalUC),
		EntryHandler:          handler.NewEntryHandler(ledgerUC),
		VendorPaymentHandler:  handler.NewVendorPaymentHandler(vendorUC),
		LiabilityHandler:      handler.NewLiabilityHandler(liabilityUC),
		SalaryHandler:         handler.NewSalaryHandler(salaryUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(b.checks...),
		IdempotencyTTL:        cfg.IdempotencyTTL,
		Metrics:               m,
		MetricsHandler:        metrics.Handler(gatherer),
		Logger:                log,
	}

	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}
	if b.redis != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(b.redis)
	}

	return routerCfg
}

// newEventRelay drains the outbox to the Redis stream, or to the log when
// Redis is not configured.
func newEventRelay(cfg *config.Config, b *backend, m *metrics.Metrics, log zerolog.Logger) *eventpublisher.EventPublisher {
	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(log)
	if b.redis != nil {
		publisher = redisRepo.NewStreamPublisher(b.redis, cfg.EventStream, cfg.EventStreamMaxLen)
	}

	return eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: b.outbox,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.EventBatchSize,
		Interval:   cfg.EventPublishInterval,
		Retention:  cfg.EventRetention,
	})
}

type relayRunner interface {
	Start(ctx context.Context) error
}

// startRelay runs relay in the background. The returned func cancels it and
// blocks until Start has returned.
func startRelay(ctx context.Context, relay relayRunner, log zerolog.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event relay stopped")
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func cleanupVisitors(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(visitorCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupVisitors(visitorIdleTimeout)
		}
	}
}
