package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/config"
	"guestvoice/feedback-service/internal/app/feedback/handler"
	"guestvoice/feedback-service/internal/app/feedback/notifier"
	"guestvoice/feedback-service/internal/app/feedback/processor"
	"guestvoice/feedback-service/internal/app/feedback/repository"
	"guestvoice/feedback-service/internal/app/feedback/service"
	"guestvoice/feedback-service/internal/app/feedback/util"
	"guestvoice/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "feedback-service"

func main() {
	logger.Init(serviceName, os.Getenv("LOG_LEVEL"))

	if logstashAddr := os.Getenv("LOGSTASH_ADDR"); logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, serviceName, os.Getenv("LOG_LEVEL")); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, logging to stdout only")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	db, err := connectDB(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := repository.EnsureSchema(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure feedback schema")
	}

	redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()

	emailNotifier := notifier.NewEmailNotifier(cfg.SMTP, cfg.Alerts.Recipients, cfg.Hotel.Name)

	feedbackRepo := repository.NewFeedbackRepository(db)
	feedbackService := service.NewFeedbackService(
		feedbackRepo,
		emailNotifier,
		kafkaProducer,
		redisClient,
		service.NewThresholds(cfg.Alerts),
	)

	feedbackHandler := handler.NewFeedbackHandler(feedbackService, cfg.Hotel.Name)
	adminAuth := handler.NewAdminAuthMiddleware(cfg.Admin)
	router := handler.SetupRouter(feedbackHandler, adminAuth)

	var scheduler *processor.CronScheduler
	if cfg.Digest.Enabled {
		scheduler = processor.NewCronScheduler(feedbackService, cfg.Digest.WindowHours)
		if err := scheduler.Start(cfg.Digest.Schedule); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start digest scheduler")
		}
	}

	server := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Feedback service started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down feedback service")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Feedback service stopped")
}

// connectDB дожидается готовности PostgreSQL и открывает gorm-подключение
// Пул pgx нужен только для ретраев ping'а на старте в Docker, где БД
// поднимается параллельно с сервисом
func connectDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	var pingErr error
	for attempt := 1; attempt <= 10; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		pingErr = pool.Ping(pingCtx)
		cancel()

		if pingErr == nil {
			break
		}
		logger.Warn().
			Err(pingErr).
			Int("attempt", attempt).
			Msg("Database not ready, retrying")
		time.Sleep(2 * time.Second)
	}
	if pingErr != nil {
		return nil, pingErr
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}
