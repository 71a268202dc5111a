package app

import (
	"context"

	"github.com/mx-space/journal/internal/config"
	"github.com/mx-space/journal/internal/modules/journal/entry"
	pkgcron "github.com/mx-space/journal/internal/pkg/cron"
	"go.uber.org/zap"
)

const (
	// BackfillJob is the name of the job that analyzes unanalyzed entries.
	BackfillJob   = "backfill_analyses"
	backfillBatch = 20
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, entries *entry.Service, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        BackfillJob,
		Description: "analyze entries whose analysis failed",
		Interval:    cfg.AI.BackfillInterval,
		Fn: func(ctx context.Context) error {
			n, err := entries.BackfillMissing(ctx, backfillBatch)
			if n > 0 {
				cronLogger.Info("backfill finished", zap.Int("analyzed", n))
			}
			return err
		},
	})
}
