package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/journal/internal/pkg/cron"
	"github.com/mx-space/journal/internal/pkg/response"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// Pinger is anything that can report its connectivity (the redis client).
type Pinger interface {
	Ping(ctx context.Context) error
}

type status struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Redis    *bool  `json:"redis,omitempty"`
}

// RegisterRoutes mounts GET /health (public) and GET /health/cron. A nil
// cache means redis is not configured and is left out of the report.
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, cache Pinger, sched *cron.Scheduler, authMW gin.HandlerFunc) {
	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		st := status{Status: "ok", Database: pingDB(ctx, db)}
		healthy := st.Database
		if cache != nil {
			ok := cache.Ping(ctx) == nil
			st.Redis = &ok
			healthy = healthy && ok
		}

		code := http.StatusOK
		if !healthy {
			st.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, st)
	})

	rg.GET("/health/cron", authMW, func(c *gin.Context) {
		if sched == nil {
			response.OK(c, []cron.ListItem{})
			return
		}
		response.OK(c, sched.List())
	})
}

func pingDB(ctx context.Context, db *gorm.DB) bool {
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
