package mocks

import (
	"context"

	"guestvoice/feedback-service/internal/app/feedback/entity"

	"github.com/stretchr/testify/mock"
)

// MockFeedbackRepository мок для FeedbackRepository
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	args := m.Called(ctx, feedback)
	return args.Error(0)
}

func (m *MockFeedbackRepository) GetAll(ctx context.Context) ([]entity.Feedback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) GetSince(ctx context.Context, since string) ([]entity.Feedback, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Feedback), args.Error(1)
}

// MockAlertNotifier мок для AlertNotifier
type MockAlertNotifier struct {
	mock.Mock
}

func (m *MockAlertNotifier) Notify(ctx context.Context, events []entity.AlertEvent, feedbackID uint) (bool, error) {
	args := m.Called(ctx, events, feedbackID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAlertNotifier) SendDigest(ctx context.Context, groups []entity.AlertGroup) (bool, error) {
	args := m.Called(ctx, groups)
	return args.Bool(0), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockStatsCache мок для кеша статистики
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) GetStats(ctx context.Context) (*entity.FeedbackStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedbackStats), args.Error(1)
}

func (m *MockStatsCache) SetStats(ctx context.Context, stats *entity.FeedbackStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockStatsCache) InvalidateStats(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
