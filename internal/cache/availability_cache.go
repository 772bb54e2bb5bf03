package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot is a cached per-station free-slot count. It only serves the
// listing and live-feed read path; booking transactions never consult it.
type Snapshot struct {
	FreeSlots  int       `json:"free_slots"`
	TotalSlots int       `json:"total_slots"`
	ComputedAt time.Time `json:"computed_at"`
}

// AvailabilityCache is a redis-backed TTL cache of availability snapshots.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache returns redis-backed cache.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func (c *AvailabilityCache) key(stationID string) string {
	return fmt.Sprintf("stations:availability:%s", stationID)
}

// Get returns the cached snapshot, reporting a miss without error.
func (c *AvailabilityCache) Get(ctx context.Context, stationID string) (*Snapshot, error) {
	result, err := c.client.Get(ctx, c.key(stationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(result), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save caches a snapshot under the configured TTL.
func (c *AvailabilityCache) Save(ctx context.Context, stationID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(stationID), data, c.ttl).Err()
}

// Invalidate drops the cached snapshot after a booking write.
func (c *AvailabilityCache) Invalidate(ctx context.Context, stationID string) error {
	return c.client.Del(ctx, c.key(stationID)).Err()
}
