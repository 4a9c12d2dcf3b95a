package costing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheKeyPrefix = "costing:avg:"

// Source loads cost entries from durable storage. *Engine satisfies it.
type Source interface {
	AvgCostForProduct(ctx context.Context, productID int64) (CacheEntry, error)
}

// Reader serves average-cost lookups through Redis with a TTL, collapsing
// concurrent misses for the same product into one database read. A nil
// Redis client degrades to direct reads.
type Reader struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	group  singleflight.Group
}

func NewReader(client *redis.Client, source Source, ttl time.Duration) *Reader {
	return &Reader{client: client, source: source, ttl: ttl}
}

// AvgCost returns the cached entry for a product. Misses fall through to
// the source; ErrNoCostHistory from the source is passed on uncached.
func (r *Reader) AvgCost(ctx context.Context, productID int64) (CacheEntry, error) {
	if r.client == nil {
		return r.source.AvgCostForProduct(ctx, productID)
	}

	key := cacheKeyPrefix + strconv.FormatInt(productID, 10)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var entry CacheEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			return entry, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return CacheEntry{}, fmt.Errorf("costing: cache get: %w", err)
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		entry, err := r.source.AvgCostForProduct(ctx, productID)
		if err != nil {
			return CacheEntry{}, err
		}
		if payload, err := json.Marshal(entry); err == nil {
			_ = r.client.Set(ctx, key, payload, r.ttl).Err()
		}
		return entry, nil
	})
	if err != nil {
		return CacheEntry{}, err
	}
	return v.(CacheEntry), nil
}

// Invalidate drops the cached entries for the given products. Bulk imports
// call it after their batched recompute; single-row mutations let the TTL
// bound staleness instead.
func (r *Reader) Invalidate(ctx context.Context, productIDs ...int64) error {
	if r.client == nil || len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = cacheKeyPrefix + strconv.FormatInt(id, 10)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("costing: cache invalidate: %w", err)
	}
	return nil
}
