package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/config"
	"github.com/mx-space/journal/internal/database"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/modules/journal/entry"
	"github.com/mx-space/journal/internal/modules/journal/export"
	"github.com/mx-space/journal/internal/modules/processing/ai"
	pkgcron "github.com/mx-space/journal/internal/pkg/cron"
	"github.com/mx-space/journal/internal/pkg/jwt"
	pkgredis "github.com/mx-space/journal/internal/pkg/redis"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external handles the application is built from. Nil optional
// handles switch the matching feature off.
type Deps struct {
	DB       *gorm.DB
	Verifier middleware.TokenVerifier
	// Completer reaches the language model. It is wrapped with the
	// configured timeout and in-flight cap.
	Completer ai.Completer
	// Redis backs rate limiting, idempotence and the embedding cache.
	Redis *pkgredis.Client
	// Embedder enables POST /question.
	Embedder ai.Embedder
	// Uploader enables POST /export.
	Uploader export.Uploader
}

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	deps    Deps
	logger  *zap.Logger
	entries *entry.Service
	sched   *pkgcron.Scheduler
	cancel  context.CancelFunc
	started time.Time
}

// New connects everything named by cfg and builds the application:
// config → DB → Redis → model clients → routes.
func New(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	deps, err := Connect(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return Build(logger, cfg, deps)
}

// Connect opens the database and every configured external client.
// Optional clients that fail to initialize are logged and left nil. On error
// everything opened so far is closed and zero Deps are returned.
func Connect(ctx context.Context, logger *zap.Logger, cfg *config.AppConfig) (deps Deps, err error) {
	defer func() {
		if err != nil {
			if cerr := deps.Close(); cerr != nil {
				logger.Warn("close partially connected deps", zap.Error(cerr))
			}
			deps = Deps{}
		}
	}()

	db, err := database.Connect(cfg, cfg.Database.AutoMigrate)
	if err != nil {
		return deps, fmt.Errorf("database: %w", err)
	}
	deps.DB = db

	if cfg.RedisEnabled() {
		rc, err := pkgredis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return deps, fmt.Errorf("redis: %w", err)
		}
		deps.Redis = rc
	} else {
		logger.Warn("redis is not configured, rate limiting and idempotence are off")
	}

	verifier, err := jwt.NewVerifier(jwt.Options{
		Issuer:       cfg.Identity.Issuer,
		Audience:     cfg.Identity.Audience,
		HMACSecret:   cfg.Identity.HMACSecret,
		PublicKeyPEM: cfg.Identity.PublicKeyPEM,
	})
	if err != nil {
		return deps, fmt.Errorf("identity: %w", err)
	}
	deps.Verifier = verifier

	completer, err := ai.NewProviderCompleter(ctx, cfg.AI)
	if err != nil {
		return deps, fmt.Errorf("analysis model: %w", err)
	}
	logger.Info("analysis model ready",
		zap.String("provider", completer.ProviderID()),
		zap.String("model", completer.Model()))
	deps.Completer = completer

	if embedder, err := ai.NewEmbedder(ctx, cfg.AI); err != nil {
		logger.Warn("embeddings unavailable, question answering is off", zap.Error(err))
	} else {
		deps.Embedder = embedder
	}

	if cfg.Export.Enabled() {
		client, err := export.NewS3Client(cfg.Export)
		if err != nil {
			return deps, fmt.Errorf("export: %w", err)
		}
		deps.Uploader = client
	}
	return deps, nil
}

// Build wires handlers and background jobs from already connected deps.
func Build(logger *zap.Logger, cfg *config.AppConfig, deps Deps) (*App, error) {
	if deps.DB == nil || deps.Verifier == nil || deps.Completer == nil {
		return nil, errors.New("app: db, verifier and completer are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.Logger(logger))
	router.Use(corsMiddleware(cfg))

	a := &App{
		cfg:     cfg,
		router:  router,
		deps:    deps,
		logger:  logger,
		sched:   pkgcron.New(logger.Named("cron")),
		started: time.Now(),
	}
	a.registerRoutes()

	registerCronJobs(a.sched, a.entries, cfg, logger)
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(ctx)
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes the redis and database pools.
func (a *App) Shutdown() error {
	a.cancel()
	a.sched.Wait()
	return a.deps.Close()
}

// Close releases the redis and database pools held by d.
func (d Deps) Close() error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
