package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Pinger interface for databases that support ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageChecker checks request store connectivity.
type StorageChecker struct {
	name   string
	pinger Pinger
}

// NewStorageChecker creates a checker reported under name (the driver).
func NewStorageChecker(name string, p Pinger) *StorageChecker {
	return &StorageChecker{name: name, pinger: p}
}

// Name returns the checker name.
func (c *StorageChecker) Name() string {
	return c.name
}

// Check verifies the store is accessible.
func (c *StorageChecker) Check(ctx context.Context) error {
	if c.pinger == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.pinger.Ping(ctx)
}

// RedisChecker checks the shared rate limit store.
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Name returns the checker name.
func (c *RedisChecker) Name() string {
	return "redis"
}

// Check verifies Redis answers PING.
func (c *RedisChecker) Check(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis not configured")
	}
	return c.client.Ping(ctx).Err()
}
