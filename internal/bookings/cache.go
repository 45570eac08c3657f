package bookings

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// SlotCache memoizes availability results in Redis for a short TTL.
// Cache failures are never surfaced to callers; the resolver simply
// recomputes.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSlotCache creates a cache around the given client.
func NewSlotCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *SlotCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotCache{client: client, ttl: ttl, logger: logger}
}

func (c *SlotCache) key(doctorID, date string) string {
	return "slots:" + doctorID + ":" + date
}

// Get returns the cached slots and whether the key was present.
func (c *SlotCache) Get(ctx context.Context, doctorID, date string) ([]string, bool) {
	data, err := c.client.Get(ctx, c.key(doctorID, date)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("slot cache read failed", "error", err)
		return nil, false
	}
	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores the slots under the doctor+date key.
func (c *SlotCache) Set(ctx context.Context, doctorID, date string, slots []string) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(doctorID, date), data, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "error", err)
	}
}

// Delete drops the cached entry.
func (c *SlotCache) Delete(ctx context.Context, doctorID, date string) {
	if err := c.client.Del(ctx, c.key(doctorID, date)).Err(); err != nil {
		c.logger.Warn("slot cache invalidation failed", "error", err)
	}
}
