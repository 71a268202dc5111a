package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/middleware"
	"github.com/mx-space/journal/internal/modules/auth/user"
	"github.com/mx-space/journal/internal/modules/journal/entry"
	"github.com/mx-space/journal/internal/modules/journal/export"
	"github.com/mx-space/journal/internal/modules/journal/history"
	"github.com/mx-space/journal/internal/modules/journal/question"
	"github.com/mx-space/journal/internal/modules/processing/ai"
	"github.com/mx-space/journal/internal/modules/system/core/health"
	"github.com/mx-space/journal/internal/pkg/response"
)

const (
	apiPrefix         = "/api"
	embeddingCacheTTL = 7 * 24 * time.Hour
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.deps.DB
	log := a.logger

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Redis-backed guards. The interfaces stay nil without redis so the
	// middlewares pass requests through.
	var (
		counter    middleware.Counter
		idempotent middleware.IdempotencyStore
		cache      health.Pinger
	)
	if a.deps.Redis != nil {
		counter = a.deps.Redis
		idempotent = a.deps.Redis
		cache = a.deps.Redis
	}
	analysisMW := []gin.HandlerFunc{
		middleware.RateLimit(counter, "analysis", a.cfg.AI.RateLimit.Requests, a.cfg.AI.RateLimit.Window, log),
		middleware.Idempotence(idempotent),
	}

	userSvc := user.NewService(db)
	authMW := middleware.Auth(a.deps.Verifier, userSvc)

	model := ai.NewLimitedCompleter(a.deps.Completer, a.cfg.AI.Timeout, a.cfg.AI.MaxInFlight)
	a.entries = entry.NewService(db, ai.NewAnalyzer(model, log.Named("ai")), log.Named("entry"))

	api := r.Group(apiPrefix)
	api.GET("/ping", func(c *gin.Context) { response.OK(c, "pong") })
	api.GET("/uptime", func(c *gin.Context) {
		uptime := time.Since(a.started)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptime.Milliseconds(),
			"humanize":  humanizeDuration(uptime),
		})
	})
	health.RegisterRoutes(api, db, cache, a.sched, authMW)

	user.NewHandler(userSvc).RegisterRoutes(api, authMW)
	entry.NewHandler(a.entries).RegisterRoutes(api, authMW, analysisMW...)
	history.NewHandler(history.NewService(db)).RegisterRoutes(api, authMW)

	var questionSvc *question.Service
	if a.deps.Embedder != nil {
		var embedder ai.Embedder = a.deps.Embedder
		if a.deps.Redis != nil {
			embedder = ai.NewCachedEmbedder(embedder, a.deps.Redis, embeddingCacheTTL, log.Named("embeddings"))
		}
		questionSvc = question.NewService(db, ai.NewQA(embedder, model, log.Named("qa")))
	}
	question.NewHandler(questionSvc).RegisterRoutes(api, authMW, analysisMW[0])

	var exportSvc *export.Service
	if a.deps.Uploader != nil {
		exportSvc = export.NewService(db, a.deps.Uploader, a.cfg.Export.Bucket, a.cfg.Export.Prefix, log.Named("export"))
	}
	export.NewHandler(exportSvc).RegisterRoutes(api, authMW, middleware.Idempotence(idempotent))
}
