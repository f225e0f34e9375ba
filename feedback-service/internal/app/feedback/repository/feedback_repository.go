package repository

import (
	"context"
	"fmt"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/pkg/logger"
	"guestvoice/pkg/metrics"

	"gorm.io/gorm"
)

const serviceName = "feedback-service"

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository создает новый репозиторий отзывов
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create сохраняет отзыв и присваивает ему id из последовательности БД
// created_at проставляется здесь: UTC, секундная точность
func (r *feedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "feedback")
	defer timer.ObserveDuration()

	feedback.CreatedAt = time.Now().UTC().Format(entity.TimestampLayout)

	result := r.db.WithContext(ctx).Create(feedback)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to save feedback: %w", result.Error)
	}

	return nil
}

// GetAll получает все отзывы, новые первыми
func (r *feedbackRepository) GetAll(ctx context.Context) ([]entity.Feedback, error) {
	return r.GetSince(ctx, "")
}

// GetSince получает отзывы с created_at >= since (строковое сравнение
// корректно для формата YYYY-MM-DD HH:MM:SS), новые первыми
// Пустой since означает все записи
func (r *feedbackRepository) GetSince(ctx context.Context, since string) ([]entity.Feedback, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "feedback")
	defer timer.ObserveDuration()

	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if since != "" {
		query = query.Where("created_at >= ?", since)
	}

	var feedback []entity.Feedback
	result := query.Find(&feedback)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get feedback: %w", result.Error)
	}

	return feedback, nil
}

// expectedCommentColumns - колонки, по которым определяется актуальность схемы
// (исходная версия таблицы была без комментариев по категориям)
var expectedCommentColumns = []string{
	"food_quality_comments",
	"seating_arrangement_comments",
	"parking_comments",
	"washroom_comments",
	"hotel_service_comments",
}

// EnsureSchema проверяет схему таблицы feedback и при несоответствии
// пересоздает её. Потеря данных при дрейфе схемы - задокументированное
// поведение, унаследованное от исходной системы
func EnsureSchema(db *gorm.DB) error {
	migrator := db.Migrator()

	if !migrator.HasTable(&entity.Feedback{}) {
		logger.Info().Msg("Feedback table missing, creating schema")
		if err := db.AutoMigrate(&entity.Feedback{}); err != nil {
			return fmt.Errorf("failed to create feedback schema: %w", err)
		}
		return nil
	}

	for _, column := range expectedCommentColumns {
		if migrator.HasColumn(&entity.Feedback{}, column) {
			continue
		}

		logger.Warn().
			Str("missing_column", column).
			Msg("Feedback schema outdated, reinitializing table (existing rows will be dropped)")

		if err := migrator.DropTable(&entity.Feedback{}); err != nil {
			return fmt.Errorf("%w: failed to drop table: %v", ErrSchemaMismatch, err)
		}
		if err := db.AutoMigrate(&entity.Feedback{}); err != nil {
			return fmt.Errorf("%w: failed to recreate table: %v", ErrSchemaMismatch, err)
		}
		return nil
	}

	return nil
}
