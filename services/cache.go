package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heiphin7/bloom-boutique-catalog/models"
)

// ErrCacheMiss means the cart is not in the cache.
var ErrCacheMiss = errors.New("cart not in cache")

// CartCache is a read-through cache of a user's cart view.
type CartCache interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Set(ctx context.Context, userID string, cart *models.Cart) error
	Delete(ctx context.Context, userID string) error
}

type RedisCartCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *RedisCartCache) Get(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (r *RedisCartCache) Set(ctx context.Context, userID string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// Jitter spreads expiry so carts cached together do not all miss together.
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := r.client.Set(ctx, cacheKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return "cart:" + userID
}
