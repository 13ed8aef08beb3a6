package cache

import (
	"context"
	"encoding/json"

	"CoffeeShop/models"
	"github.com/redis/go-redis/v9"
)

const productsKey = "products"

// 從Redis讀取商品列表，快取不存在時重新建立
func (c *ReportCache) Products(ctx context.Context, load func(context.Context) ([]models.Product, error)) ([]models.Product, error) {
	if c == nil {
		return load(ctx)
	}

	redisProducts, err := c.rdb.ZRange(ctx, productsKey, 0, -1).Result()
	if err == nil && len(redisProducts) > 0 {
		products := make([]models.Product, 0, len(redisProducts))
		for _, redisProduct := range redisProducts {
			var product models.Product
			if err := json.Unmarshal([]byte(redisProduct), &product); err != nil {
				log.Warningf("could not decode cached product: %v", err)
				continue
			}
			products = append(products, product)
		}
		return products, nil
	}
	if err != nil {
		log.Warningf("redis zrange %s failed: %v", productsKey, err)
	}

	products, err := load(ctx)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, productsKey)
	for _, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			log.Warningf("could not encode product %d: %v", product.ProductID, err)
			continue
		}
		pipe.ZAdd(ctx, productsKey, redis.Z{
			Score:  float64(product.ProductID),
			Member: productJSON,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warningf("could not cache product list: %v", err)
	}
	return products, nil
}

func (c *ReportCache) InvalidateProducts(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, productsKey).Err()
}
