package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"shop-service/internal/models"
)

// Hot catalog lists cached in front of the document store. The DB stays the
// source of truth; a cache miss or failure degrades to a DB read.
const (
	KeyNewest  = "catalog:newest"
	KeyPopular = "catalog:popular:%s"

	listTTL = 5 * time.Minute
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// PopularKey builds the cache key for a category's popular list.
func PopularKey(category string) string {
	return fmt.Sprintf(KeyPopular, category)
}

// GetProductList retrieves a cached product list. Returns (nil, nil) on a
// cache miss.
func (c *Client) GetProductList(ctx context.Context, key string) ([]models.Product, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached list %s: %w", key, err)
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("failed to decode cached list %s: %w", key, err)
	}
	return products, nil
}

// SetProductList caches a product list with the standard TTL.
func (c *Client) SetProductList(ctx context.Context, key string, products []models.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode list %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, listTTL).Err()
}

// InvalidateLists drops every cached catalog list. Called after any catalog
// mutation so stale lists never outlive a change by more than one request.
func (c *Client) InvalidateLists(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, "catalog:*", 0).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
