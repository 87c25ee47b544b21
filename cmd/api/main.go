package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/market-desk/internal/api/http"
	"github.com/spec-kit/market-desk/internal/api/http/handlers"
	"github.com/spec-kit/market-desk/internal/auth"
	"github.com/spec-kit/market-desk/internal/config"
	"github.com/spec-kit/market-desk/internal/events"
	"github.com/spec-kit/market-desk/internal/observability"
	"github.com/spec-kit/market-desk/internal/persistence"
	"github.com/spec-kit/market-desk/internal/ratelimit"
	"github.com/spec-kit/market-desk/internal/repository"
	"github.com/spec-kit/market-desk/internal/service"
	"github.com/spec-kit/market-desk/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	mongoStore, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer mongoStore.Close(context.Background())

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	userRepo, err := buildUserRepository(ctx, cfg, pg, mongoStore)
	if err != nil {
		logger.Fatal("failed to init user store", zap.Error(err))
	}
	contactRepo, err := buildContactRepository(cfg, pg, mongoStore, logger)
	if err != nil {
		logger.Fatal("failed to init contact store", zap.Error(err))
	}
	logger.Info("storage ready",
		zap.String("users", cfg.Storage.Backend),
		zap.String("contacts", cfg.Storage.ContactStore))

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, metrics, cfg.Notification)
	waitNotifications := worker.StartNotificationWorker(notificationService)

	policy := auth.NewAdminPolicy(cfg.Auth.AdminEmails)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	userDataService := service.NewUserDataService(userRepo, dispatcher, logger)
	contactService := service.NewContactService(contactRepo, dispatcher, logger)
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:    userRepo,
		ContactRepo: contactRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	articleService := service.NewArticleService(cfg.Articles.Dir)

	generalLimiter, authLimiter := buildLimiters(ctx, cfg.RateLimit, redis, logger)

	app := httptransport.NewApp(cfg.App, logger, metrics)
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:           logger,
		Metrics:          metrics,
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		GeneralLimiter:   httptransport.RateLimit("general", generalLimiter, cfg.RateLimit.Message, metrics),
	})

	dependencies := map[string]handlers.Dependency{}
	if pg.Enabled() {
		dependencies["postgres"] = pg
	}
	if mongoStore.Enabled() {
		dependencies["mongodb"] = mongoStore
	}
	if redis.Enabled() {
		dependencies["redis"] = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService),
		UserData:       handlers.NewUserDataHandler(userDataService),
		Contact:        handlers.NewContactHandler(contactService),
		Admin:          handlers.NewAdminHandler(adminService),
		Articles:       handlers.NewArticlesHandler(articleService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		AdminPolicy:    policy,
		AuthLimiter:    httptransport.RateLimit("auth", authLimiter, cfg.RateLimit.Message, metrics),
		Metrics:        metrics,
		StaticDir:      cfg.Articles.Dir,
	})

	go func() {
		logger.Info("http server starting",
			zap.String("addr", cfg.App.Addr()),
			zap.String("env", cfg.App.Env),
			zap.String("version", cfg.App.Version))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	waitNotifications()
	logger.Info("shutdown complete")
}

func buildUserRepository(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, mongoStore *persistence.Mongo) (repository.UserRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return repository.NewMemoryUserRepository(), nil
	case config.BackendPostgres:
		return repository.NewUserRepository(pg.PoolHandle()), nil
	case config.BackendMongo:
		if err := repository.EnsureUserIndexes(ctx, mongoStore.Database); err != nil {
			return nil, fmt.Errorf("ensure user indexes: %w", err)
		}
		return repository.NewMongoUserRepository(mongoStore.Database), nil
	default:
		return repository.NewFileUserRepository(filepath.Join(cfg.Storage.DataDir, "users.json"))
	}
}

func buildContactRepository(cfg *config.Config, pg *persistence.Postgres, mongoStore *persistence.Mongo, logger *zap.Logger) (repository.ContactRepository, error) {
	switch cfg.Storage.ContactStore {
	case config.BackendPostgres:
		return repository.NewContactRepository(pg.PoolHandle()), nil
	case config.BackendMongo:
		return repository.NewMongoContactRepository(mongoStore.Database), nil
	default:
		return repository.NewFileContactRepository(filepath.Join(cfg.Storage.DataDir, "contacts.json"), logger)
	}
}

// buildLimiters prefers Redis so limits hold across instances; without it each
// process keeps its own fixed windows.
func buildLimiters(ctx context.Context, cfg config.RateLimitConfig, redis *persistence.Redis, logger *zap.Logger) (ratelimit.Limiter, ratelimit.Limiter) {
	if redis.Enabled() {
		return ratelimit.NewRedisLimiter(redis.Client, "general", cfg.GeneralMax, cfg.Window, logger),
			ratelimit.NewRedisLimiter(redis.Client, "auth", cfg.AuthMax, cfg.Window, logger)
	}
	general := ratelimit.NewMemoryLimiter(cfg.GeneralMax, cfg.Window)
	authLimiter := ratelimit.NewMemoryLimiter(cfg.AuthMax, cfg.Window)
	general.StartCleanup(ctx, time.Minute)
	authLimiter.StartCleanup(ctx, time.Minute)
	return general, authLimiter
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
