package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pawsit/internal/config"
	"pawsit/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisRatingCache struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisRatingCache(client *redis.Client) *RedisRatingCache {
	return &RedisRatingCache{client: client}
}

func ratingKey(sitterID int64) string {
	return fmt.Sprintf("rating_stats:%d", sitterID)
}

func (r *RedisRatingCache) GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, ratingKey(sitterID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats from redis: %w", err)
	}

	var stats models.RatingStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rating stats: %w", err)
	}

	return &stats, nil
}

func (r *RedisRatingCache) SetRatingStats(ctx context.Context, stats *models.RatingStats, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal rating stats: %w", err)
	}

	if err := r.client.Set(ctx, ratingKey(stats.SitterID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set rating stats in redis: %w", err)
	}

	return nil
}

func (r *RedisRatingCache) InvalidateRatingStats(ctx context.Context, sitterID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, ratingKey(sitterID)).Err(); err != nil {
		return fmt.Errorf("failed to delete rating stats from redis: %w", err)
	}
	return nil
}

func (r *RedisRatingCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%d", userID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
