package service

import (
	"context"

	"guestvoice/feedback-service/internal/app/feedback/entity"
)

// AlertNotifier отправляет алерты операторам
// Сбой доставки - отдельный домен отказа: он логируется и превращается в
// delivered=false, но никогда не влияет на уже сохранённый отзыв
type AlertNotifier interface {
	Notify(ctx context.Context, events []entity.AlertEvent, feedbackID uint) (bool, error)
	SendDigest(ctx context.Context, groups []entity.AlertGroup) (bool, error)
}

// MessagePublisher интерфейс для отправки событий в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// StatsCache кеширует агрегированную статистику (Redis)
// GetStats возвращает (nil, nil) при промахе кеша
type StatsCache interface {
	GetStats(ctx context.Context) (*entity.FeedbackStats, error)
	SetStats(ctx context.Context, stats *entity.FeedbackStats) error
	InvalidateStats(ctx context.Context) error
}
