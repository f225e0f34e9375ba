package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"guestvoice/feedback-service/internal/app/feedback/entity"
	"guestvoice/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// statsCacheKey - ключ кеша агрегированной статистики
const statsCacheKey = "feedback:stats"

// statsCacheTTL ограничивает жизнь кеша на случай пропущенной инвалидации
const statsCacheTTL = 5 * time.Minute

const serviceName = "feedback-service"

// RedisClient кеширует статистику отзывов в Redis
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient создает подключение к Redis и проверяет его ping'ом
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// GetStats читает статистику из кеша, (nil, nil) при промахе
func (r *RedisClient) GetStats(ctx context.Context) (*entity.FeedbackStats, error) {
	data, err := r.client.Get(ctx, statsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss(serviceName, "stats")
		return nil, nil
	}
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get stats from cache: %w", err)
	}

	var stats entity.FeedbackStats
	if err := json.Unmarshal(data, &stats); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to unmarshal cached stats: %w", err)
	}

	metrics.RecordCacheHit(serviceName, "stats")
	return &stats, nil
}

// SetStats пишет статистику в кеш с TTL
func (r *RedisClient) SetStats(ctx context.Context, stats *entity.FeedbackStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := r.client.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to cache stats: %w", err)
	}
	return nil
}

// InvalidateStats сбрасывает кеш после записи нового отзыва
func (r *RedisClient) InvalidateStats(ctx context.Context) error {
	if err := r.client.Del(ctx, statsCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// Close закрывает подключение к Redis
func (r *RedisClient) Close() error {
	return r.client.Close()
}
