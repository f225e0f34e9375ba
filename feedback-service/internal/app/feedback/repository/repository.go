package repository

import (
	"context"
	"errors"

	"guestvoice/feedback-service/internal/app/feedback/entity"
)

var (
	// ErrSchemaMismatch - таблица существует, но ожидаемых колонок нет
	ErrSchemaMismatch = errors.New("feedback schema mismatch")
)

// FeedbackRepository - append-only хранилище отзывов
// Create обязан быть durable: запись видна последующим чтениям сразу после
// возврата, без отложенной записи. Конкурентные Create сериализует сама БД
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	GetAll(ctx context.Context) ([]entity.Feedback, error)
	GetSince(ctx context.Context, since string) ([]entity.Feedback, error)
}
