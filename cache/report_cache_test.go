package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoffeeShop/cache"
	"CoffeeShop/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*cache.ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.NewReportCache(rdb, time.Minute), mr
}

type ranking struct {
	Names []string `json:"names"`
}

func TestRememberCachesUntilInvalidated(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (ranking, error) {
		calls++
		return ranking{Names: []string{"Espresso", "Latte"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.Remember(ctx, c, "top", load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Espresso", "Latte"}, got.Names)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("reports:top"))
	assert.Equal(t, time.Minute, mr.TTL("reports:top"))

	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists("reports:top"))
	assert.False(t, mr.Exists("reports:keys"))

	_, err := cache.Remember(ctx, c, "top", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRememberExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	_, err := cache.Remember(ctx, c, "count", load)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	got, err := cache.Remember(ctx, c, "count", load)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	boom := errors.New("database down")
	_, err := cache.Remember(ctx, c, "top", func(context.Context) ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("reports:top"))
}

func TestRememberFallsThroughWhenRedisIsDown(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	got, err := cache.Remember(context.Background(), c, "top", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestRememberDiscardsUnreadableEntries(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("reports:top", "{not json"))

	got, err := cache.Remember(context.Background(), c, "top", func(context.Context) (ranking, error) {
		return ranking{Names: []string{"Tea"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tea"}, got.Names)
}

func TestNilCachePassesThrough(t *testing.T) {
	var c *cache.ReportCache
	assert.Nil(t, cache.NewReportCache(nil, time.Minute))

	got, err := cache.Remember(context.Background(), c, "top", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, c.InvalidateProducts(context.Background()))
}

func TestProductsUsesSortedSet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]models.Product, error) {
		calls++
		return []models.Product{
			{ProductID: 3, ProductName: "Croissant", ProductPrice: decimal.RequireFromString("2.75"), ProductType: "food"},
			{ProductID: 1, ProductName: "Espresso", ProductPrice: decimal.RequireFromString("3"), ProductType: "drink"},
		}, nil
	}

	first, err := c.Products(ctx, load)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	cached, err := c.Products(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, cached, 2)
	assert.Equal(t, uint(1), cached[0].ProductID)
	assert.Equal(t, uint(3), cached[1].ProductID)
	assert.True(t, decimal.RequireFromString("2.75").Equal(cached[1].ProductPrice))

	members, err := mr.ZMembers("products")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, c.InvalidateProducts(ctx))
	_, err = c.Products(ctx, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
