package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"vintnercrm/domain"

	"github.com/redis/go-redis/v9"
)

// RecoCache fronts the latest-recommendations lookup. Entries are written
// through on read and wiped wholesale when a new run completes, so a stale
// entry can never outlive its run by more than the TTL.
type RecoCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecoCache(client *redis.Client, ttl time.Duration) *RecoCache {
	return &RecoCache{
		client: client,
		ttl:    ttl,
	}
}

func recoKey(customerCode string) string {
	return fmt.Sprintf("reco:latest:%s", customerCode)
}

// Get returns the cached items and whether the entry existed. Cache errors
// degrade to a miss so the caller falls through to Postgres.
func (c *RecoCache) Get(ctx context.Context, customerCode string) ([]domain.RecoItem, bool) {
	val, err := c.client.Get(ctx, recoKey(customerCode)).Result()
	if err != nil {
		return nil, false
	}

	var items []domain.RecoItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false
	}

	return items, true
}

func (c *RecoCache) Set(ctx context.Context, customerCode string, items []domain.RecoItem) error {
	jsonData, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal reco items: %w", err)
	}

	if err := c.client.Set(ctx, recoKey(customerCode), jsonData, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache reco items: %w", err)
	}

	return nil
}

// InvalidateAll drops every cached recommendation list. Called after a batch
// run completes so reads pick up the new run.
func (c *RecoCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "reco:latest:*", 200).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return nil
}
