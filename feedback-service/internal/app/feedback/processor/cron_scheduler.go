package processor

import (
	"context"
	"time"

	"guestvoice/pkg/logger"

	"github.com/robfig/cron/v3"
)

// jobTimeout ограничивает один запуск дайджеста
const jobTimeout = 2 * time.Minute

// DigestSender - часть сервиса отзывов, нужная планировщику
type DigestSender interface {
	SendAlertDigest(ctx context.Context, windowHours int) error
}

// CronScheduler запускает ежедневный дайджест алертов по расписанию
type CronScheduler struct {
	cron        *cron.Cron
	digest      DigestSender
	windowHours int
}

// NewCronScheduler создает планировщик дайджеста
func NewCronScheduler(digest DigestSender, windowHours int) *CronScheduler {
	return &CronScheduler{
		cron:        cron.New(),
		digest:      digest,
		windowHours: windowHours,
	}
}

// Start регистрирует задачу по cron-выражению и запускает планировщик
// Дайджест при старте процесса не шлётся: иначе каждый рестарт
// дублировал бы письмо операторам
func (s *CronScheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.runDigest)
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().
		Str("schedule", schedule).
		Int("window_hours", s.windowHours).
		Msg("Alert digest scheduler started")
	return nil
}

// Stop останавливает планировщик и дожидается активной задачи
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Alert digest scheduler stopped")
}

func (s *CronScheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logger.Info().Int("window_hours", s.windowHours).Msg("Running alert digest")
	if err := s.digest.SendAlertDigest(ctx, s.windowHours); err != nil {
		logger.Error().Err(err).Msg("Alert digest run failed")
	}
}
