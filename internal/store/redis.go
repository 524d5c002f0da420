package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-geojob-automation/internal/models"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// SeenCache fronts a TableStore with a Redis set of job ids per source.
// Everything except SeenIDs and AppendDetails goes straight to the wrapped
// store. Redis errors are logged and fall back to the store.
type SeenCache struct {
	TableStore
	rdb *redis.Client
	ttl time.Duration
}

func WithSeenCache(inner TableStore, rdb *redis.Client, ttl time.Duration) *SeenCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SeenCache{TableStore: inner, rdb: rdb, ttl: ttl}
}

func seenKey(source models.Source) string {
	return "geojob:seen:" + string(source)
}

func (c *SeenCache) SeenIDs(ctx context.Context, source models.Source) ([]string, error) {
	key := seenKey(source)
	ids, err := c.rdb.SMembers(ctx, key).Result()
	if err == nil && len(ids) > 0 {
		return ids, nil
	}
	if err != nil {
		log.Printf("⚠️ Redis read failed for %s: %v", key, err)
	}

	ids, err = c.TableStore.SeenIDs(ctx, source)
	if err != nil || len(ids) == 0 {
		return ids, err
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("⚠️ Redis write failed for %s: %v", key, err)
	}
	return ids, nil
}

// AppendDetails writes through and drops the cached sets it made stale.
func (c *SeenCache) AppendDetails(ctx context.Context, details []models.JobDetail) error {
	if err := c.TableStore.AppendDetails(ctx, details); err != nil {
		return err
	}
	stale := make(map[string]struct{})
	for _, d := range details {
		stale[seenKey(d.Source)] = struct{}{}
	}
	for key := range stale {
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			log.Printf("⚠️ Redis invalidate failed for %s: %v", key, err)
		}
	}
	return nil
}

func (c *SeenCache) Close() error {
	if err := c.rdb.Close(); err != nil {
		log.Printf("⚠️ Failed to close redis client: %v", err)
	}
	return c.TableStore.Close()
}
