package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	importerjob "warehouse-picking-backend/internal/domains/importer/job"
	notificationjob "warehouse-picking-backend/internal/domains/notification/job"
	pickingjob "warehouse-picking-backend/internal/domains/picking/job"
	"warehouse-picking-backend/pkg/container"
	"warehouse-picking-backend/pkg/logger"
)

const pickEventRetentionDays = 30

// The worker owns every background task: the sync tick that polls the
// upstream feed, the daily out-of-stock report, and pick event retention.
func main() {
	_ = godotenv.Load()

	logger.Init(os.Getenv("APP_ENV"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker never serves migrations; the api owns them.
	c, err := container.New(ctx, "")
	if err != nil {
		logger.Error("startup failed", err)
		os.Exit(1)
	}
	defer c.Cleanup()

	redisOpt := asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"default": 1,
		},
	})

	mux := asynq.NewServeMux()
	mux.Handle(importerjob.TypeSyncTick,
		importerjob.NewSyncTickHandler(c.ImporterService, c.SettingsService))
	mux.Handle(notificationjob.TypeOutOfStockReport,
		notificationjob.NewReportHandler(c.NotificationService, c.SettingsService))
	mux.Handle(pickingjob.TypePickEventCleanup,
		pickingjob.NewCleanupHandler(c.PickingService))

	scheduler := asynq.NewScheduler(redisOpt, nil)

	if _, err := scheduler.Register("@every 1m", importerjob.NewSyncTickTask()); err != nil {
		logger.Error("failed to register sync tick", err)
		os.Exit(1)
	}
	if _, err := scheduler.Register("0 7 * * *", notificationjob.NewReportTask()); err != nil {
		logger.Error("failed to register report task", err)
		os.Exit(1)
	}
	cleanupTask, err := pickingjob.NewCleanupTask(pickEventRetentionDays)
	if err != nil {
		logger.Error("failed to build cleanup task", err)
		os.Exit(1)
	}
	if _, err := scheduler.Register("0 3 * * *", cleanupTask); err != nil {
		logger.Error("failed to register cleanup task", err)
		os.Exit(1)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("scheduler stopped", err)
			stop()
		}
	}()

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Error("worker stopped", err)
			stop()
		}
	}()

	logger.Info("worker started", map[string]interface{}{
		"environment": c.Config.App.Environment,
	})

	<-ctx.Done()
	logger.Info("shutting down", nil)
	scheduler.Shutdown()
	srv.Shutdown()
}
