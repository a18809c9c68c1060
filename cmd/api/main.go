package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/coaching-service/internal/api/http"
	"github.com/spec-kit/coaching-service/internal/api/http/handlers"
	"github.com/spec-kit/coaching-service/internal/auth"
	"github.com/spec-kit/coaching-service/internal/cache"
	"github.com/spec-kit/coaching-service/internal/config"
	"github.com/spec-kit/coaching-service/internal/events"
	"github.com/spec-kit/coaching-service/internal/observability"
	"github.com/spec-kit/coaching-service/internal/persistence"
	"github.com/spec-kit/coaching-service/internal/repository"
	"github.com/spec-kit/coaching-service/internal/repository/gormrepo"
	"github.com/spec-kit/coaching-service/internal/seed"
	"github.com/spec-kit/coaching-service/internal/service"
	"github.com/spec-kit/coaching-service/internal/worker"
)

const (
	minSecretBytes  = 32
	shutdownTimeout = 15 * time.Second
)

// storage is the repository set of the configured backend.
type storage struct {
	name     string
	users    repository.UserRepository
	problems repository.ProblemRepository
	notes    repository.NoteRepository
	pinger   handlers.Pinger
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	logger = logger.With(zap.String("service", cfg.App.Name), zap.String("version", cfg.App.Version))

	if len(cfg.Auth.JWTSecret) < minSecretBytes {
		logger.Warn("AUTH_JWT_SECRET is shorter than recommended for HS256",
			zap.Int("bytes", len(cfg.Auth.JWTSecret)), zap.Int("recommended", minSecretBytes))
	}

	ctx, cancel := context.WithCancel(context.Background())

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	problems := cache.NewProblemCatalog(store.problems, redis.CacheClient(), cfg.Redis.CatalogCacheTTL(), logger)

	if cfg.Seed.Enabled {
		catalog, err := seed.DefaultCatalog()
		if err != nil {
			logger.Fatal("failed to parse seed catalog", zap.Error(err))
		}
		seeder := seed.NewSeeder(store.users, problems, cfg.Auth.BcryptCost, logger)
		if err := seeder.Run(ctx, catalog); err != nil {
			logger.Fatal("failed to seed data", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	if cfg.Activity.Enabled {
		worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, metrics))
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	gate := auth.NewGate(tokenManager, auth.UserFinderFunc(store.users.GetByEmail), cfg.Auth.PublicRoutes,
		auth.WithLogger(logger), auth.WithOutcomeRecorder(metrics))

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     store.users,
		TokenManager: tokenManager,
		BcryptCost:   cfg.Auth.BcryptCost,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	problemService := service.NewProblemService(problems, dispatcher, logger)
	noteService := service.NewNoteService(service.NoteDependencies{
		UserRepo:    store.users,
		ProblemRepo: problems,
		NoteRepo:    store.notes,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics,
		handlers.Dependency{Name: store.name, Pinger: store.pinger},
		handlers.Dependency{Name: "redis", Pinger: redis, Optional: true},
	)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   healthHandler,
		Auth:     handlers.NewAuthHandler(authService),
		Problems: handlers.NewProblemsHandler(problemService),
		Notes:    handlers.NewNotesHandler(noteService),
		Gate:     gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, map[string]gfshutdown.Operation{
		// The listener stops before the stores it reads from are closed.
		"http-and-storage": func(ctx context.Context) error {
			logger.Info("shutting down")
			err := app.ShutdownWithContext(ctx)
			redis.Close()
			store.close()
			return err
		},
	})

	exitCode := <-wait
	logger.Info("stopped", zap.Int("exit_code", exitCode))
	cancel()
	_ = logger.Sync()
	os.Exit(exitCode)
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		db, err := persistence.NewSQLite(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		if err := gormrepo.AutoMigrate(db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		return &storage{
			name:     "sqlite",
			users:    gormrepo.NewUserRepository(db.DB),
			problems: gormrepo.NewProblemRepository(db.DB),
			notes:    gormrepo.NewNoteRepository(db.DB),
			pinger:   db,
			close:    db.Close,
		}, nil
	default:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		pool := pg.PoolHandle()
		return &storage{
			name:     "postgres",
			users:    repository.NewUserRepository(pool),
			problems: repository.NewProblemRepository(pool),
			notes:    repository.NewNoteRepository(pool),
			pinger:   pg,
			close:    pg.Close,
		}, nil
	}
}
