package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/feedback-service/internal/app/feedback/export"
	"guestvoice/feedback-service/internal/app/feedback/repository"
	"guestvoice/pkg/logger"
	"guestvoice/pkg/metrics"
)

// testAlertFeedbackID подставляется в тестовый алерт вместо реального id
const testAlertFeedbackID = 999

// FeedbackService - бизнес-логика приёма и анализа отзывов
type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
	notifier     AlertNotifier
	publisher    MessagePublisher
	cache        StatsCache
	thresholds   Thresholds
}

// NewFeedbackService создает новый сервис отзывов
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	notifier AlertNotifier,
	publisher MessagePublisher,
	cache StatsCache,
	thresholds Thresholds,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		notifier:     notifier,
		publisher:    publisher,
		cache:        cache,
		thresholds:   thresholds,
	}
}

// SubmitFeedback - конвейер приёма отзыва: валидация, сохранение, проверка
// порогов, алерт, событие в Kafka, сброс кеша статистики.
// После успешного сохранения отзыв уже не теряется: сбои доставки алерта,
// Kafka и кеша логируются и не возвращаются вызывающему
func (s *FeedbackService) SubmitFeedback(ctx context.Context, req *entity.SubmitFeedbackRequest) (*entity.Feedback, error) {
	if err := validateSubmission(req); err != nil {
		metrics.FeedbackValidationFailures.Inc()
		return nil, err
	}

	feedback := &entity.Feedback{
		FoodQuality:                req.FoodQuality,
		FoodQualityComments:        req.FoodQualityComments,
		SeatingArrangement:         req.SeatingArrangement,
		SeatingArrangementComments: req.SeatingArrangementComments,
		Parking:                    req.Parking,
		ParkingComments:            req.ParkingComments,
		Washroom:                   req.Washroom,
		WashroomComments:           req.WashroomComments,
		HotelService:               req.HotelService,
		HotelServiceComments:       req.HotelServiceComments,
		GeneralComments:            req.GeneralComments,
	}

	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	metrics.FeedbackCreated.Inc()
	metrics.FeedbackRating.Observe(feedback.OverallAverage())

	events := EvaluateThresholds(feedback, s.thresholds)
	if len(events) > 0 {
		for _, event := range events {
			metrics.AlertsTriggered.WithLabelValues(event.Category).Inc()
		}

		delivered, err := s.notifier.Notify(ctx, events, feedback.ID)
		if err != nil {
			logger.Error().Err(err).
				Uint("feedback_id", feedback.ID).
				Int("alerts", len(events)).
				Msg("Failed to deliver alert email")
		} else if !delivered {
			logger.Warn().
				Uint("feedback_id", feedback.ID).
				Int("alerts", len(events)).
				Msg("Alert email skipped")
		}
	}

	s.publishFeedbackEvent(ctx, feedback, len(events))
	s.invalidateStats(ctx)

	logger.Info().
		Uint("feedback_id", feedback.ID).
		Float64("overall", feedback.OverallAverage()).
		Int("alerts", len(events)).
		Msg("Feedback submitted")

	return feedback, nil
}

// GetAllFeedback возвращает все отзывы для админ-панели, новые первыми
func (s *FeedbackService) GetAllFeedback(ctx context.Context) ([]entity.FeedbackView, error) {
	records, err := s.feedbackRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	views := make([]entity.FeedbackView, 0, len(records))
	for i := range records {
		record := records[i]
		views = append(views, entity.FeedbackView{
			Feedback:       record,
			OverallAverage: record.OverallAverage(),
			HasLowRating:   len(EvaluateThresholds(&record, s.thresholds)) > 0,
		})
	}
	return views, nil
}

// GetStats возвращает агрегированную статистику, сквозное чтение через Redis
// Недоступность кеша деградирует до прямого подсчёта по БД
func (s *FeedbackService) GetStats(ctx context.Context) (*entity.FeedbackStats, error) {
	if stats, err := s.cache.GetStats(ctx); err != nil {
		logger.Warn().Err(err).Msg("Stats cache read failed, falling back to database")
	} else if stats != nil {
		return stats, nil
	}

	records, err := s.feedbackRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	stats := Summarize(records)
	if err := s.cache.SetStats(ctx, &stats); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache stats")
	}
	return &stats, nil
}

// GetRecentAlerts возвращает алерты за последние windowHours часов
func (s *FeedbackService) GetRecentAlerts(ctx context.Context, windowHours int) ([]entity.AlertGroup, error) {
	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour).Format(entity.TimestampLayout)

	records, err := s.feedbackRepo.GetSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent alerts: %w", err)
	}
	return GroupAlerts(records, s.thresholds), nil
}

// ExportRecords отдаёт все отзывы в CSV
func (s *FeedbackService) ExportRecords(ctx context.Context) ([]byte, error) {
	records, err := s.feedbackRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export feedback: %w", err)
	}
	return export.RenderRecords(records)
}

// ExportAlerts отдаёт алерты за окно windowHours в CSV
func (s *FeedbackService) ExportAlerts(ctx context.Context, windowHours int) ([]byte, error) {
	groups, err := s.GetRecentAlerts(ctx, windowHours)
	if err != nil {
		return nil, err
	}
	return export.RenderAlerts(groups)
}

// SendTestAlert шлёт канонический тестовый алерт для проверки SMTP-настроек
func (s *FeedbackService) SendTestAlert(ctx context.Context) (bool, error) {
	events := []entity.AlertEvent{{
		Category:  "Food Quality",
		Rating:    2,
		Threshold: s.thresholds.FoodQuality,
		Comments:  "This is a test alert to verify email configuration",
	}}
	return s.notifier.Notify(ctx, events, testAlertFeedbackID)
}

// SendAlertDigest собирает алерты за окно и шлёт сводку одним письмом
// Пустое окно - штатный исход: письмо не отправляется
func (s *FeedbackService) SendAlertDigest(ctx context.Context, windowHours int) error {
	groups, err := s.GetRecentAlerts(ctx, windowHours)
	if err != nil {
		metrics.DigestRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to build alert digest: %w", err)
	}

	if len(groups) == 0 {
		metrics.DigestRuns.WithLabelValues("empty").Inc()
		logger.Info().Int("window_hours", windowHours).Msg("No alerts in digest window, skipping email")
		return nil
	}

	delivered, err := s.notifier.SendDigest(ctx, groups)
	if err != nil {
		metrics.DigestRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to send alert digest: %w", err)
	}
	if !delivered {
		metrics.DigestRuns.WithLabelValues("empty").Inc()
		logger.Warn().Int("groups", len(groups)).Msg("Alert digest skipped")
		return nil
	}

	metrics.DigestRuns.WithLabelValues("sent").Inc()
	logger.Info().Int("groups", len(groups)).Msg("Alert digest sent")
	return nil
}

// publishFeedbackEvent отправляет событие FEEDBACK_CREATED в Kafka
// Сбой публикации не влияет на результат запроса
func (s *FeedbackService) publishFeedbackEvent(ctx context.Context, feedback *entity.Feedback, alertCount int) {
	event := entity.FeedbackEvent{
		EventType:  "FEEDBACK_CREATED",
		FeedbackID: feedback.ID,
		Overall:    feedback.OverallAverage(),
		AlertCount: alertCount,
		Timestamp:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Uint("feedback_id", feedback.ID).Msg("Failed to marshal feedback event")
		return
	}

	key := strconv.FormatUint(uint64(feedback.ID), 10)
	if err := s.publisher.PublishMessage(ctx, key, payload); err != nil {
		logger.Error().Err(err).Uint("feedback_id", feedback.ID).Msg("Failed to publish feedback event")
	}
}

func (s *FeedbackService) invalidateStats(ctx context.Context) {
	if err := s.cache.InvalidateStats(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate stats cache")
	}
}

// validateSubmission проверяет оценки до обращения к БД
// Возвращает первое невалидное поле в порядке объявления категорий
func validateSubmission(req *entity.SubmitFeedbackRequest) *ValidationError {
	ratings := []struct {
		field string
		value int
	}{
		{"food_quality", req.FoodQuality},
		{"seating_arrangement", req.SeatingArrangement},
		{"parking", req.Parking},
		{"washroom", req.Washroom},
		{"hotel_service", req.HotelService},
	}
	for _, rating := range ratings {
		if rating.value < 1 || rating.value > 5 {
			return &ValidationError{Field: rating.field, Reason: "rating must be between 1 and 5"}
		}
	}
	return nil
}
