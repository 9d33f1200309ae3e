// Package dedupcache provides an optional fast-path membership cache for
// payload fingerprints, consulted by the persistence gateway before hitting
// the database. The cache is advisory: a miss or a cache error always falls
// through to the authoritative unique index in storage.
package dedupcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache answers "has this fingerprint been stored before" quickly.
type Cache interface {
	Contains(ctx context.Context, hash string) (bool, error)
	Add(ctx context.Context, hash string) error
	Close() error
}

const hashSetKey = "qrscan:hashes"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(address, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Contains(ctx context.Context, hash string) (bool, error) {
	return c.client.SIsMember(ctx, hashSetKey, hash).Result()
}

func (c *RedisCache) Add(ctx context.Context, hash string) error {
	return c.client.SAdd(ctx, hashSetKey, hash).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
