package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/op/go-logging"
	"github.com/redis/go-redis/v9"
)

var log = logging.MustGetLogger("log")

const (
	reportKeyPrefix = "reports:"
	reportKeySet    = "reports:keys"
)

// 報表快取，nil時不快取
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if rdb == nil {
		return nil
	}
	return &ReportCache{rdb: rdb, ttl: ttl}
}

// 優先讀取快取，Redis失敗時直接查詢
func Remember[T any](ctx context.Context, c *ReportCache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	fullKey := reportKeyPrefix + key
	cached, err := c.rdb.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		var value T
		if err := json.Unmarshal(cached, &value); err == nil {
			return value, nil
		}
		log.Warningf("discarding unreadable cache entry %s", fullKey)
	case !errors.Is(err, redis.Nil):
		log.Warningf("redis get %s failed: %v", fullKey, err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		log.Warningf("could not encode %s for cache: %v", fullKey, err)
		return value, nil
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, fullKey, payload, c.ttl)
	pipe.SAdd(ctx, reportKeySet, fullKey)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warningf("redis set %s failed: %v", fullKey, err)
	}
	return value, nil
}

// 寫入品項後清除所有報表快取
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	keys, err := c.rdb.SMembers(ctx, reportKeySet).Result()
	if err != nil {
		return err
	}
	return c.rdb.Del(ctx, append(keys, reportKeySet)...).Err()
}
