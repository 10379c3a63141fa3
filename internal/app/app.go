package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/auth"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/config"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/event"
	handler "github.com/Rohit-bisht-rise/shopmanagement/internal/handler/http"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/repository/postgres"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/service"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
	sessionredis "github.com/Rohit-bisht-rise/shopmanagement/internal/session/redis"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/storage/disk"
	"github.com/Rohit-bisht-rise/shopmanagement/internal/view"
	"github.com/Rohit-bisht-rise/shopmanagement/migrations"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/health"
	pkgkafka "github.com/Rohit-bisht-rise/shopmanagement/pkg/kafka"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/middleware"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/tracing"
)

const serviceName = "crm"

// App wires together all dependencies and runs the CRM.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	publisher      pkgkafka.Publisher
	httpServer     *http.Server
	tracerShutdown tracing.Shutdown
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Released in reverse when construction fails part way.
	var undo teardown
	defer func() {
		if err != nil {
			undo.run(logger)
		}
	}()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	undo.add("tracer", func() error {
		shutdownCtx, done := context.WithTimeout(context.Background(), 3*time.Second)
		defer done()
		return tracerShutdown(shutdownCtx)
	})

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	undo.add("postgres", func() error {
		pool.Close()
		return nil
	})
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, serviceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if threshold := cfg.SlowQuery(); threshold > 0 {
		database.SetSlowQueryLogging(threshold, logger)
	}

	// Redis
	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	undo.add("redis", rdb.Close)
	logger.Info("connected to Redis",
		slog.String("addr", cfg.Redis().Addr()),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka
	healthHandler := health.NewHandler()
	var publisher pkgkafka.Publisher = pkgkafka.NopPublisher{}
	if cfg.KafkaEnabled {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		publisher = producer
		undo.add("kafka", producer.Close)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka disabled, events are dropped")
	}

	// Avatars
	media, err := disk.New(cfg.MediaRoot, cfg.MediaURLPrefix)
	if err != nil {
		return nil, fmt.Errorf("init media storage: %w", err)
	}

	// Build the dependency graph.
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	eventProducer := event.NewProducer(publisher, logger)
	tokens := auth.NewResetTokenManager(cfg.ResetTokenSecret, cfg.ResetTokenExpiry)

	crmService := service.NewCRMService(customerRepo, productRepo, orderRepo, eventProducer, logger)
	accountService := service.NewAccountService(userRepo, customerRepo, media, tokens, eventProducer, cfg.BaseURL, logger)

	sessions := session.NewManager(
		sessionredis.NewStore(rdb, cfg.SessionTTL),
		cfg.SessionCookieName,
		cfg.SessionTTL,
		!cfg.IsDevelopment(),
	)

	views, err := view.New()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	h := handler.NewHandler(crmService, accountService, sessions, views, logger)
	router := handler.NewRouter(h, accountService, healthHandler, handler.RouterConfig{
		ServiceName:       serviceName,
		MediaRoot:         media.Root(),
		MediaURLPrefix:    cfg.MediaURLPrefix,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		AuthRateLimit: middleware.RateLimitConfig{
			PerMinute: cfg.AuthRatePerMinute,
			Burst:     cfg.AuthRateBurst,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		publisher:      publisher,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in order: HTTP server, tracer, Kafka, Redis,
// PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
