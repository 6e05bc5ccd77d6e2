// Package cache wraps the Redis side channel that mirrors tenant
// entitlements into session metadata. The store remains authoritative;
// everything here is best-effort and rebuilt on demand.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/storeops/retail-platform/shared/models"
)

const featureKeyPrefix = "tenant:features:"

// Cache is an explicit handle on the Redis entitlement cache
type Cache struct {
	client *redis.Client
}

// New connects to Redis using REDIS_HOST/REDIS_PORT
func New() (*Cache, error) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s:%s: %w", host, port, err)
	}
	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client, used by tests with a fake server
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// SetTenantFeatures mirrors a tenant's entitlement set into Redis so
// session builders read the current set without hitting the store.
func (c *Cache) SetTenantFeatures(ctx context.Context, tenantID uuid.UUID, features models.FeatureSet) error {
	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("failed to marshal feature set: %w", err)
	}
	if err := c.client.Set(ctx, featureKeyPrefix+tenantID.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache feature set: %w", err)
	}
	return nil
}

// GetTenantFeatures reads the cached entitlement set; ok is false on a miss
func (c *Cache) GetTenantFeatures(ctx context.Context, tenantID uuid.UUID) (models.FeatureSet, bool, error) {
	data, err := c.client.Get(ctx, featureKeyPrefix+tenantID.String()).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached feature set: %w", err)
	}
	var features models.FeatureSet
	if err := json.Unmarshal([]byte(data), &features); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached feature set: %w", err)
	}
	return features, true, nil
}

// InvalidateTenant drops a tenant's cached entitlements
func (c *Cache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, featureKeyPrefix+tenantID.String()).Err()
}

// Close releases the underlying connection pool
func (c *Cache) Close() error {
	return c.client.Close()
}
