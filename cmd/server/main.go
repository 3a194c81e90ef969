package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	appevent "github.com/savings/backend/internal/application/event"
	"github.com/savings/backend/internal/application/gamification"
	goalapp "github.com/savings/backend/internal/application/goal"
	groupapp "github.com/savings/backend/internal/application/group"
	identityapp "github.com/savings/backend/internal/application/identity"
	"github.com/savings/backend/internal/application/ledger"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/infrastructure/auth"
	"github.com/savings/backend/internal/infrastructure/cache"
	"github.com/savings/backend/internal/infrastructure/config"
	"github.com/savings/backend/internal/infrastructure/event"
	"github.com/savings/backend/internal/infrastructure/logger"
	"github.com/savings/backend/internal/infrastructure/persistence"
	"github.com/savings/backend/internal/infrastructure/storage"
	"github.com/savings/backend/internal/infrastructure/telemetry"
	"github.com/savings/backend/internal/interfaces/http/handler"
	"github.com/savings/backend/internal/interfaces/http/middleware"
	"github.com/savings/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	_ "github.com/savings/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs --parseInternal

//	@title			Savings Ledger API
//	@version		1.0
//	@description	Group savings: members pool contributions toward shared goals and track their own progress.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

const (
	serviceVersion  = "1.0.0"
	shutdownTimeout = 30 * time.Second
)

// probePaths are never traced or profiled
var probePaths = []string{"/health", "/api/v1/system/ping"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
		Env:        cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(baseLog)
	}()

	if err := run(cfg, baseLog); err != nil {
		baseLog.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := setupTelemetry(ctx, cfg, baseLog)
	if err != nil {
		return err
	}
	defer tel.shutdown(baseLog)
	log := tel.log
	production := cfg.App.IsProduction()

	log.Info("Starting savings backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithRedactedParams(!cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.Open(ctx, &cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithStartupLog(log),
	)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}
	if tel.meters.IsEnabled() {
		dbMetrics, err := telemetry.NewDBMetrics(tel.meters.Meter("db"), db.SQL(), cfg.Telemetry.DBSlowQueryThresh, log)
		if err != nil {
			return fmt.Errorf("create db metrics: %w", err)
		}
		if err := db.DB.Use(dbMetrics); err != nil {
			return fmt.Errorf("register db metrics: %w", err)
		}
		defer dbMetrics.Stop()
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(tel.meters.Meter("savings.ledger"))
	if err != nil {
		return fmt.Errorf("create ledger metrics: %w", err)
	}

	// Repositories and the unit of work. Every aggregate change commits with its
	// domain events in the outbox.
	serializer := event.NewSavingsSerializer()
	scope := persistence.NewGormTransactionScope(db.DB, event.NewOutboxPublisher(serializer))
	userRepo := persistence.NewGormUserRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	goalRepo := persistence.NewGormGoalRepository(db.DB)
	contributionRepo := persistence.NewGormContributionRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	idempotency, err := cache.NewIdempotencyStoreFactory(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithLogger(log), cache.WithInMemoryFallback(!production)).CreateStore(ctx)
	if err != nil {
		return fmt.Errorf("create idempotency store: %w", err)
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}()

	blacklist, closeBlacklist, err := newTokenBlacklist(ctx, cfg.Redis, production, log)
	if err != nil {
		return err
	}
	defer closeBlacklist()

	avatars, err := newAvatarStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(scope, userRepo, jwtService, blacklist, log)
	profileService := identityapp.NewProfileService(scope, userRepo, avatars, identityapp.ProfileConfig{
		MaxAvatarBytes: cfg.Storage.MaxAvatarBytes,
		PresignExpiry:  cfg.Storage.PresignExpiry,
	}, log)
	groupService := groupapp.NewService(scope, groupRepo, userRepo, log)
	goalService := goalapp.NewService(scope, goalRepo, groupRepo, log)
	ledgerService := ledger.NewService(scope, contributionRepo, groupRepo, ledger.Config{
		DefaultStatus: contribution.Status(cfg.Ledger.DefaultStatus),
		RequestKeyTTL: cfg.Ledger.RequestKeyTTL,
	}, log, ledger.WithRequestStore(idempotency), ledger.WithMetrics(ledgerMetrics))
	deliveryService := appevent.NewDeliveryService(outboxRepo, log)

	// Event consumers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler("badge_awarder",
		gamification.NewBadgeHandler(scope, log), idempotency, log,
		event.WithClaimTTL(cfg.Event.IdempotencyTTL)))
	if cfg.Broker.Enabled {
		forwarder, err := event.DialAMQPForwarder(cfg.Broker, serializer, log)
		if err != nil {
			return fmt.Errorf("connect broker: %w", err)
		}
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Warn("Error closing broker connection", zap.Error(err))
			}
		}()
		eventBus.Subscribe(forwarder)
	}
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// HTTP
	gin.SetMode(ginMode(cfg.App.Env))
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	authMiddleware := middleware.Auth(middleware.AuthConfig{
		Authenticator: authService,
		SkipPaths:     router.PublicPaths,
		Logger:        log,
	})

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(middleware.DefaultSecurityConfig()),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
			MaxAge:        12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(middleware.TracingConfig{
			Enabled:          cfg.Telemetry.Enabled,
			ServiceName:      cfg.Telemetry.ServiceName,
			SkipPaths:        probePaths,
			SkipPathPrefixes: []string{"/swagger"},
		}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(tel.meters, log),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:          cfg.Telemetry.ProfilingEnabled,
			SkipPaths:        probePaths,
			SkipPathPrefixes: []string{"/swagger"},
		}),
	)
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow),
			middleware.ByUserOrIP,
		))
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, serviceVersion, db)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
			Logger:      log,
		}, authMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	engine.NoRoute(systemHandler.NotFound)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(profileService),
		Group:        handler.NewGroupHandler(groupService),
		Goal:         handler.NewGoalHandler(goalService),
		Contribution: handler.NewContributionHandler(ledgerService),
		System:       systemHandler,
	}
	var routeOpts router.RouteOptions
	if cfg.HTTP.AuthRateLimitEnabled {
		routeOpts.AuthLimiter = middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow),
			middleware.ByClientIP,
		)
	}
	if operators := parseUserIDs(cfg.Event.AdminUserIDs, log); len(operators) > 0 {
		handlers.Delivery = handler.NewDeliveryHandler(deliveryService)
		routeOpts.OperatorGuard = middleware.RequireUsers(operators)
	}

	router.NewRouter(engine).
		Use(authMiddleware, middleware.SpanAttributes()).
		Register(router.SavingsRoutes(handlers, routeOpts)...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	if cfg.Event.ProcessorEnabled {
		processor := event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			OnDelivered:      ledgerMetrics.RecordEventPublished,
		}, log)
		g.Go(func() error { return processor.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// telemetryStack owns the OpenTelemetry providers and the profiler
type telemetryStack struct {
	log      *zap.Logger
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

func setupTelemetry(ctx context.Context, cfg *config.Config, baseLog *zap.Logger) (*telemetryStack, error) {
	t := cfg.Telemetry
	stack := &telemetryStack{log: baseLog}
	var err error

	stack.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		SamplingRatio:     t.SamplingRatio,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, baseLog)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	stack.meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           t.Enabled && t.MetricsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, baseLog)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	stack.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           t.Enabled && t.LogsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, baseLog)
	if err != nil {
		return nil, fmt.Errorf("init log export: %w", err)
	}
	stack.log = telemetry.Bridge(baseLog, stack.logs, zapcore.InfoLevel)

	stack.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         t.ProfilingEnabled,
		ServerAddress:   t.PyroscopeEndpoint,
		ApplicationName: t.ServiceName,
	}, stack.log)
	if err != nil {
		return nil, fmt.Errorf("init profiler: %w", err)
	}
	if t.ProfilingEnabled {
		stack.tracer.EnableSpanProfiles()
	}
	return stack, nil
}

func (s *telemetryStack) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.profiler.Stop(); err != nil {
		log.Warn("Profiler shutdown failed", zap.Error(err))
	}
	if err := s.tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}
	if err := s.meters.Shutdown(ctx); err != nil {
		log.Warn("Meter shutdown failed", zap.Error(err))
	}
	if err := s.logs.Shutdown(ctx); err != nil {
		log.Warn("Log export shutdown failed", zap.Error(err))
	}
}

// newTokenBlacklist uses Redis when configured so revocations are shared
// between instances. Outside production it falls back to memory.
func newTokenBlacklist(ctx context.Context, cfg config.RedisConfig, required bool, log *zap.Logger) (auth.TokenBlacklist, func(), error) {
	if cfg.Host == "" {
		log.Warn("Redis not configured, token revocations are kept in memory")
		return auth.NewInMemoryTokenBlacklist(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if required {
			return nil, nil, fmt.Errorf("connect token blacklist redis: %w", err)
		}
		log.Warn("Redis unreachable, token revocations are kept in memory", zap.Error(err))
		return auth.NewInMemoryTokenBlacklist(), func() {}, nil
	}
	return auth.NewRedisTokenBlacklist(client, "savings:auth:"), func() { _ = client.Close() }, nil
}

// newAvatarStorage returns nil when storage is disabled; avatar endpoints
// then answer STORAGE_UNAVAILABLE
func newAvatarStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (identityapp.AvatarStorage, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := storage.NewS3AvatarStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init avatar storage: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure avatar bucket: %w", err)
	}
	return store, nil
}

func parseUserIDs(raw []string, log *zap.Logger) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			log.Warn("Ignoring invalid event operator id", zap.String("value", s))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func ginMode(env string) string {
	switch env {
	case "production", "prod":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	}
	return gin.DebugMode
}
