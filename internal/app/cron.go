package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chyrplite/core/internal/modules/post"
	"github.com/chyrplite/core/internal/pkg/blob"
	pkgcron "github.com/chyrplite/core/internal/pkg/cron"
	pkgredis "github.com/chyrplite/core/internal/pkg/redis"
)

const scheduledSweepLock = "cron:publish_scheduled_posts"

// registerCronJobs registers all scheduled background jobs. Jobs that must
// run once per deployment take a Redis lock so only one instance executes.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, rc *pkgredis.Client, store blob.Store, logger *zap.Logger) {
	postSvc := post.NewService(db, store, logger)
	cronLogger := logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:     "publish_scheduled_posts",
		Interval: time.Minute,
		Fn: func(ctx context.Context) error {
			ok, err := rc.AcquireLock(ctx, scheduledSweepLock, 50*time.Second)
			if err != nil {
				cronLogger.Warn("scheduled sweep lock unavailable", zap.Error(err))
				return err
			}
			if !ok {
				return nil
			}
			defer func() { _ = rc.ReleaseLock(ctx, scheduledSweepLock) }()

			n, err := postSvc.PublishDueScheduled(ctx)
			if err != nil {
				cronLogger.Warn("scheduled sweep failed", zap.Error(err))
				return err
			}
			if n > 0 {
				cronLogger.Info("published scheduled posts", zap.Int64("count", n))
			}
			return nil
		},
	})
}
