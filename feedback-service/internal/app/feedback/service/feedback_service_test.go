package service

import (
	"context"
	"errors"
	"testing"

	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/feedback-service/internal/app/feedback/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService(
	repo *mocks.MockFeedbackRepository,
	notifier *mocks.MockAlertNotifier,
	publisher *mocks.MockMessagePublisher,
	cache *mocks.MockStatsCache,
) *FeedbackService {
	return NewFeedbackService(repo, notifier, publisher, cache, defaultThresholds())
}

func validRequest() *entity.SubmitFeedbackRequest {
	return &entity.SubmitFeedbackRequest{
		FoodQuality:        4,
		SeatingArrangement: 5,
		Parking:            4,
		Washroom:           5,
		HotelService:       4,
	}
}

func TestSubmitFeedback_Success(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*entity.Feedback")).Return(nil).Run(func(args mock.Arguments) {
		feedback := args.Get(1).(*entity.Feedback)
		feedback.ID = 1
		feedback.CreatedAt = "2026-08-27 10:00:00"
	})
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateStats", ctx).Return(nil)

	result, err := service.SubmitFeedback(ctx, validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, uint(1), result.ID)
	assert.Equal(t, 4, result.FoodQuality)
	notifier.AssertNotCalled(t, "Notify")
	assert.Len(t, publisher.Messages, 1)
}

func TestSubmitFeedback_ValidationError(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	req := validRequest()
	req.Parking = 6

	result, err := service.SubmitFeedback(context.Background(), req)

	assert.Error(t, err)
	assert.Nil(t, result)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "parking", validationErr.Field)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitFeedback_RepoError(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	result, err := service.SubmitFeedback(ctx, validRequest())

	assert.Error(t, err)
	assert.Nil(t, result)
	notifier.AssertNotCalled(t, "Notify")
	assert.Empty(t, publisher.Messages)
}

func TestSubmitFeedback_LowRatingTriggersAlert(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	req := validRequest()
	req.FoodQuality = 1
	req.FoodQualityComments = "Inedible"

	repo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Feedback).ID = 42
	})
	notifier.On("Notify", ctx, mock.AnythingOfType("[]entity.AlertEvent"), uint(42)).Return(true, nil)
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateStats", ctx).Return(nil)

	result, err := service.SubmitFeedback(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)

	notifier.AssertCalled(t, "Notify", ctx, mock.MatchedBy(func(events []entity.AlertEvent) bool {
		return len(events) == 1 && events[0].Category == "Food Quality" && events[0].Comments == "Inedible"
	}), uint(42))
}

func TestSubmitFeedback_NotifierErrorIgnored(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	req := validRequest()
	req.Washroom = 1

	repo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Feedback).ID = 7
	})
	notifier.On("Notify", ctx, mock.Anything, uint(7)).Return(false, errors.New("smtp transport failure"))
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateStats", ctx).Return(nil)

	result, err := service.SubmitFeedback(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, uint(7), result.ID)
}

func TestSubmitFeedback_KafkaErrorIgnored(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Feedback).ID = 3
	})
	publisher.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))
	cache.On("InvalidateStats", ctx).Return(nil)

	result, err := service.SubmitFeedback(ctx, validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGetAllFeedback_MarksLowRatings(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	records := []entity.Feedback{
		{ID: 2, FoodQuality: 5, SeatingArrangement: 5, Parking: 5, Washroom: 5, HotelService: 5},
		{ID: 1, FoodQuality: 1, SeatingArrangement: 4, Parking: 4, Washroom: 4, HotelService: 4},
	}
	repo.On("GetAll", ctx).Return(records, nil)

	views, err := service.GetAllFeedback(ctx)

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.False(t, views[0].HasLowRating)
	assert.Equal(t, 5.0, views[0].OverallAverage)
	assert.True(t, views[1].HasLowRating)
}

func TestGetStats_CacheHit(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	cached := &entity.FeedbackStats{TotalReviews: 10, AvgOverall: 4.2}
	cache.On("GetStats", ctx).Return(cached, nil)

	stats, err := service.GetStats(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, stats)
	repo.AssertNotCalled(t, "GetAll")
}

func TestGetStats_CacheMiss(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	records := []entity.Feedback{
		{FoodQuality: 4, SeatingArrangement: 4, Parking: 4, Washroom: 4, HotelService: 4},
	}

	cache.On("GetStats", ctx).Return(nil, nil)
	repo.On("GetAll", ctx).Return(records, nil)
	cache.On("SetStats", ctx, mock.AnythingOfType("*entity.FeedbackStats")).Return(nil)

	stats, err := service.GetStats(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.InDelta(t, 4.0, stats.AvgOverall, 0.0001)
	cache.AssertCalled(t, "SetStats", ctx, mock.Anything)
}

func TestGetStats_CacheErrorFallsBack(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	cache.On("GetStats", ctx).Return(nil, errors.New("redis down"))
	repo.On("GetAll", ctx).Return([]entity.Feedback{}, nil)
	cache.On("SetStats", ctx, mock.Anything).Return(errors.New("redis down"))

	stats, err := service.GetStats(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalReviews)
}

func TestGetRecentAlerts_FiltersWindow(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	records := []entity.Feedback{
		{ID: 5, FoodQuality: 1, SeatingArrangement: 4, Parking: 4, Washroom: 4, HotelService: 4, CreatedAt: "2026-08-27 12:00:00"},
	}
	repo.On("GetSince", ctx, mock.AnythingOfType("string")).Return(records, nil)

	groups, err := service.GetRecentAlerts(ctx, 24)

	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, uint(5), groups[0].FeedbackID)
}

func TestSendTestAlert_UsesCanonicalEvent(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	notifier.On("Notify", ctx, mock.MatchedBy(func(events []entity.AlertEvent) bool {
		return len(events) == 1 && events[0].Category == "Food Quality"
	}), uint(999)).Return(true, nil)

	delivered, err := service.SendTestAlert(ctx)

	assert.NoError(t, err)
	assert.True(t, delivered)
}

func TestSendAlertDigest_EmptyWindowSkipsEmail(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	repo.On("GetSince", ctx, mock.AnythingOfType("string")).Return([]entity.Feedback{}, nil)

	err := service.SendAlertDigest(ctx, 24)

	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "SendDigest")
}

func TestSendAlertDigest_SendsGroups(t *testing.T) {
	repo := new(mocks.MockFeedbackRepository)
	notifier := new(mocks.MockAlertNotifier)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	cache := new(mocks.MockStatsCache)
	service := newTestService(repo, notifier, publisher, cache)

	ctx := context.Background()
	records := []entity.Feedback{
		{ID: 8, FoodQuality: 1, SeatingArrangement: 4, Parking: 4, Washroom: 4, HotelService: 4, CreatedAt: "2026-08-27 08:00:00"},
	}
	repo.On("GetSince", ctx, mock.AnythingOfType("string")).Return(records, nil)
	notifier.On("SendDigest", ctx, mock.AnythingOfType("[]entity.AlertGroup")).Return(true, nil)

	err := service.SendAlertDigest(ctx, 24)

	assert.NoError(t, err)
	notifier.AssertCalled(t, "SendDigest", ctx, mock.MatchedBy(func(groups []entity.AlertGroup) bool {
		return len(groups) == 1 && groups[0].FeedbackID == 8
	}))
}

func TestValidateSubmission_FirstInvalidFieldReported(t *testing.T) {
	req := validRequest()
	req.SeatingArrangement = 0
	req.Washroom = 9

	err := validateSubmission(req)

	assert.NotNil(t, err)
	assert.Equal(t, "seating_arrangement", err.Field)
}
