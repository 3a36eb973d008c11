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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/budgetledger/internal/adapter/http"
	"github.com/iho/budgetledger/internal/adapter/http/handler"
	"github.com/iho/budgetledger/internal/adapter/http/middleware"
	"github.com/iho/budgetledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/budgetledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/budgetledger/internal/adapter/repository/redis"
	"github.com/iho/budgetledger/internal/infrastructure/auth"
	"github.com/iho/budgetledger/internal/infrastructure/config"
	"github.com/iho/budgetledger/internal/infrastructure/eventpublisher"
	applogger "github.com/iho/budgetledger/internal/infrastructure/logger"
	"github.com/iho/budgetledger/internal/infrastructure/metrics"
	"github.com/iho/budgetledger/internal/infrastructure/postgres"
	"github.com/iho/budgetledger/internal/infrastructure/redis"
	"github.com/iho/budgetledger/internal/usecase"
)

func main() {
	// Used until the configured logger exists.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := applogger.New(applogger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// storage is the set of repositories behind the use cases, for either driver.
type storage struct {
	txManager    usecase.TransactionManager
	transactions usecase.TransactionRepository
	accounts     usecase.AccountRepository
	ownership    usecase.OwnershipRepository
	budgets      usecase.BudgetRepository
	categories   usecase.CategoryRepository
	ledger       usecase.LedgerRepository
	outbox       usecase.OutboxRepository
	audit        usecase.AuditRepository
	retrier      usecase.Retrier
	checks       []handler.HealthCheck
	close        func()
}

func newMemoryStorage() *storage {
	store := memory.NewStore()

	return &storage{
		txManager:    store,
		transactions: store.Transactions(),
		accounts:     store.Accounts(),
		ownership:    store.Ownership(),
		budgets:      store.Budgets(),
		categories:   store.Categories(),
		ledger:       store.Ledger(),
		outbox:       store.Outbox(),
		audit:        store.Audit(),
		close:        func() {},
	}
}

func newPostgresStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	return &storage{
		txManager:    postgresRepo.NewTxManager(pool),
		transactions: postgresRepo.NewTransactionRepository(pool),
		accounts:     postgresRepo.NewAccountRepository(pool),
		ownership:    postgresRepo.NewOwnershipRepository(pool),
		budgets:      postgresRepo.NewBudgetRepository(pool),
		categories:   postgresRepo.NewCategoryRepository(pool),
		ledger:       postgresRepo.NewLedgerRepository(pool),
		outbox:       postgresRepo.NewOutboxRepository(pool),
		audit:        postgresRepo.NewAuditRepository(pool),
		retrier:      postgresRepo.NewRetrier(logger),
		checks:       []handler.HealthCheck{{Name: "postgres", Pinger: handler.PingFunc(pool.Ping)}},
		close:        pool.Close,
	}, nil
}

// application is everything run needs once wiring is done.
type application struct {
	router    http.Handler
	publisher *eventpublisher.EventPublisher
	limiter   *middleware.RateLimiter
	close     func()
}

func buildApplication(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*application, error) {
	var (
		store *storage
		err   error
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		store = newMemoryStorage()
		logger.Warn().Msg("using in-memory storage; data is lost on exit")
	default:
		store, err = newPostgresStorage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			store.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info().Msg("connected to redis")
	}

	idGen := postgresRepo.NewULIDGenerator()

	ledgerUC := usecase.NewTransactionUseCase(
		store.txManager, store.transactions, store.accounts, store.ownership,
		store.outbox, store.audit, store.retrier, idGen, m, logger,
	)
	accountUC := usecase.NewAccountUseCase(store.txManager, store.accounts, store.outbox, store.audit, idGen, m)
	budgetUC := usecase.NewBudgetUseCase(store.txManager, store.budgets, store.categories, ledgerUC, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(store.ledger, m)

	checks := store.checks
	var (
		idempotency usecase.IdempotencyStore
		publisher   eventpublisher.Publisher = eventpublisher.NewLogPublisher(logger)
	)
	if redisClient != nil {
		summaries := usecase.NewSummaryCache(redisRepo.NewCache(redisClient), cfg.SummaryCacheTTL, logger)
		ledgerUC.WithSummaryCache(summaries)
		accountUC.WithSummaryCache(summaries)

		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		publisher = eventpublisher.NewRedisPublisher(redisClient, cfg.OutboxChannel)
		checks = append(checks, handler.HealthCheck{Name: "redis", Pinger: handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})})
	}

	routerCfg := httpAdapter.RouterConfig{
		TransactionHandler:    handler.NewTransactionHandler(ledgerUC),
		AccountHandler:        handler.NewAccountHandler(accountUC),
		BudgetHandler:         handler.NewBudgetHandler(budgetUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC, store.audit),
		HealthHandler:         handler.NewHealthHandler(checks...),
		IdempotencyStore:      idempotency,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		CORSAllowedOrigins:    cfg.CORSAllowedOrigins,
		Metrics:               m,
		Logger:                logger,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = limiter
	}

	return &application{
		router: httpAdapter.NewRouter(routerCfg),
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outbox,
			Publisher:  publisher,
			Metrics:    m,
			Logger:     logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		}),
		limiter: limiter,
		close: func() {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			store.close()
		},
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	app, err := buildApplication(ctx, cfg, logger, metrics.New())
	if err != nil {
		return err
	}
	defer app.close()

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go func() {
		if err := app.publisher.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if app.limiter != nil {
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-workerCtx.Done():
					return
				case <-ticker.C:
					app.limiter.CleanupLimiters(time.Hour)
				}
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
