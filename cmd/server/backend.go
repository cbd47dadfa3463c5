package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/opsledger/internal/adapter/http/handler"
	"github.com/iho/opsledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/opsledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/opsledger/internal/adapter/repository/redis"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/config"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
	"github.com/iho/opsledger/internal/infrastructure/postgres"
	"github.com/iho/opsledger/internal/infrastructure/redis"
	"github.com/iho/opsledger/internal/usecase"
)

// backend is the storage side of the service: repositories, the
// transaction manager they share, and the directories use cases read.
type backend struct {
	txManager   usecase.TransactionManager
	approvals   usecase.ApprovalRepository
	entries     usecase.LedgerEntryRepository
	vendors     usecase.VendorPaymentRepository
	liabilities usecase.LiabilityRepository
	salaries    usecase.SalaryRepository
	outbox      usecase.OutboxRepository
	audit       usecase.AuditRepository

	directory  usecase.EmployeeDirectory
	references usecase.ReferenceDirectory
	sequences  usecase.SequenceGenerator
	retrier    usecase.Retrier

	redis  *goredis.Client
	checks []handler.HealthCheck
	closes []func()
}

func (b *backend) Close() {
	for i := len(b.closes) - 1; i >= 0; i-- {
		b.closes[i]()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*backend, error) {
	var (
		b   *backend
		err error
	)

	switch cfg.StorageDriver {
	case config.StorageMemory:
		var employees []domain.Employee
		if cfg.DirectorySeedFile != "" {
			employees, err = loadEmployees(cfg.DirectorySeedFile)
			if err != nil {
				return nil, err
			}
		}
		b = newMemoryBackend(employees...)
		logger.Warn().Int("employees", len(employees)).Msg("using in-memory storage, data is lost on restart")
	default:
		b, err = newPostgresBackend(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{
			PoolSize:     cfg.RedisPoolSize,
			DialTimeout:  redis.DefaultOptions.DialTimeout,
			PingAttempts: cfg.RedisPingAttempts,
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.attachRedis(client, cfg, m, logger)
		logger.Info().Msg("connected to redis")
	}

	return b, nil
}

func newMemoryBackend(employees ...domain.Employee) *backend {
	store := memory.NewStore()

	return &backend{
		txManager:   store,
		approvals:   memory.NewApprovalRepository(store),
		entries:     memory.NewLedgerEntryRepository(store),
		vendors:     memory.NewVendorPaymentRepository(store),
		liabilities: memory.NewLiabilityRepository(store),
		salaries:    memory.NewSalaryRepository(store),
		outbox:      memory.NewOutboxRepository(store),
		audit:       memory.NewAuditRepository(store),
		directory:   memory.NewEmployeeDirectory(employees...),
		references:  memory.NewReferenceDirectory(),
		sequences:   memory.NewSequenceGenerator(),
	}
}

func newPostgresBackend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backend, error) {
	if cfg.MigrateOnStart {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logger).Up(); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Msg("connected to postgres")

	return &backend{
		txManager:   postgresRepo.NewTxManager(pool),
		approvals:   postgresRepo.NewApprovalRepository(pool),
		entries:     postgresRepo.NewEntryRepository(pool),
		vendors:     postgresRepo.NewVendorPaymentRepository(pool),
		liabilities: postgresRepo.NewLiabilityRepository(pool),
		salaries:    postgresRepo.NewSalaryRepository(pool),
		outbox:      postgresRepo.NewOutboxRepository(pool),
		audit:       postgresRepo.NewAuditRepository(pool),
		directory:   postgresRepo.NewEmployeeDirectory(pool),
		references:  postgresRepo.NewReferenceDirectory(pool),
		sequences:   postgresRepo.NewSequenceGenerator(pool),
		retrier:     postgresRepo.NewRetrier(logger),
		checks:      []handler.HealthCheck{{Name: "postgres", Check: pool.Ping}},
		closes:      []func(){pool.Close},
	}, nil
}

// attachRedis moves sequences onto INCR counters and puts the directory
// behind a read-through cache.
func (b *backend) attachRedis(client *goredis.Client, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) {
	if m != nil {
		client.AddHook(redis.NewMetricsHook(m))
	}

	b.redis = client
	b.sequences = redisRepo.NewSequenceGenerator(client)
	b.directory = redisRepo.NewCachedEmployeeDirectory(b.directory, redisRepo.NewCache(client), cfg.DirectoryCacheTTL, logger)
	b.checks = append(b.checks, handler.HealthCheck{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	})
	b.closes = append(b.closes, func() { _ = client.Close() })
}

// loadEmployees reads a JSON array of employees.
func loadEmployees(path string) ([]domain.Employee, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory seed: %w", err)
	}

	var employees []domain.Employee
	if err := json.Unmarshal(raw, &employees); err != nil {
		return nil, fmt.Errorf("failed to parse directory seed %s: %w", path, err)
	}

	return employees, nil
}
