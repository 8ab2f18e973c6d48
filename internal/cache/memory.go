package cache

import (
	"context"
	"sync"
	"time"

	"pawsit/internal/models"
)

type memoryEntry struct {
	stats     *models.RatingStats
	expiresAt time.Time
}

type MemoryRatingCache struct {
	entries    sync.Map
	rateLimits sync.Map
}

func NewMemoryRatingCache() *MemoryRatingCache {
	return &MemoryRatingCache{}
}

func (m *MemoryRatingCache) GetRatingStats(ctx context.Context, sitterID int64) (*models.RatingStats, error) {
	val, ok := m.entries.Load(sitterID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.entries.Delete(sitterID)
		return nil, nil
	}
	return entry.stats, nil
}

func (m *MemoryRatingCache) SetRatingStats(ctx context.Context, stats *models.RatingStats, ttl time.Duration) error {
	m.entries.Store(stats.SitterID, &memoryEntry{
		stats:     stats,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (m *MemoryRatingCache) InvalidateRatingStats(ctx context.Context, sitterID int64) error {
	m.entries.Delete(sitterID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (m *MemoryRatingCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := m.rateLimits.Load(userID)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	m.rateLimits.Store(userID, entry)
	return entry.count <= limit, nil
}
