// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"events-platform/cmd"
	"events-platform/internal/data/repository"
	"events-platform/internal/jobs"
	"events-platform/internal/usecase"
	"events-platform/internal/wire"
	"events-platform/pkg/database"
	"events-platform/pkg/jwt"
	"events-platform/pkg/mailer"
	"events-platform/pkg/metrics"
	"events-platform/pkg/queue"
	"events-platform/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Connect to redis
	rdb, err := database.InitRedis(config.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	logger.Info("Redis connected successfully")

	// Infrastructure clients
	taskQueue := queue.NewRedisQueue(rdb, queue.DefaultKey)
	appMetrics := metrics.New()

	deps := usecase.Deps{
		Repo:      repository.NewRepository(db, logger),
		JWT:       jwt.NewJWTService(config.JWT.Secret, config.JWT.AccessExpiry, config.JWT.RefreshExpiry),
		Mailer:    mailer.New(config.Email, logger),
		Scheduler: taskQueue,
		Metrics:   appMetrics,
	}

	// Wire all dependencies
	app := wire.Wiring(deps, config, logger)

	// Background jobs
	worker := jobs.NewTaskWorker(taskQueue, config.Notification.QueuePoll, appMetrics, logger)
	worker.Handle(usecase.TaskSendFollowup, jobs.FollowupHandler(app.Service.Notification))
	go worker.Start(ctx)
	defer worker.Stop()

	reminders := jobs.NewReminderJob(app.Service.Notification, config.Notification.ReminderInterval, logger)
	go reminders.Start(ctx)
	defer reminders.Stop()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}
