package testutils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/testcontainers/testcontainers-go"
	redisModule "github.com/testcontainers/testcontainers-go/modules/redis"

	"photobooth-display/internal/config"
	"photobooth-display/internal/platform/cache"
)

// TestContainers manages test containers for integration testing
type TestContainers struct {
	RedisContainer testcontainers.Container
	RedisClient    *cache.RedisClient
	RedisEndpoint  string
}

// SetupTestContainers initializes and starts test containers
func SetupTestContainers(ctx context.Context) (*TestContainers, error) {
	containers := &TestContainers{}

	if err := containers.setupRedis(ctx); err != nil {
		containers.Cleanup(ctx)
		return nil, fmt.Errorf("failed to setup redis container: %w", err)
	}

	return containers, nil
}

// setupRedis creates and starts a Valkey test container (Redis-compatible)
func (tc *TestContainers) setupRedis(ctx context.Context) error {
	redisContainer, err := redisModule.Run(ctx,
		"valkey/valkey:7-alpine",
		redisModule.WithLogLevel(redisModule.LogLevelVerbose),
	)
	if err != nil {
		return fmt.Errorf("failed to start valkey container: %w", err)
	}

	tc.RedisContainer = redisContainer

	endpoint, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get valkey endpoint: %w", err)
	}

	tc.RedisEndpoint = strings.TrimPrefix(endpoint, "redis://")

	redisClient, err := cache.NewRedisClient(RedisCacheConfig(tc.RedisEndpoint))
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}

	tc.RedisClient = redisClient

	if err := tc.RedisClient.Health(ctx); err != nil {
		return fmt.Errorf("failed to connect to valkey: %w", err)
	}

	return nil
}

// RedisCacheConfig returns a cache configuration pointing at address
func RedisCacheConfig(address string) config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Address:     address,
		Password:    "",
		Database:    0,
		DefaultTTL:  1 * time.Hour,
		DialTimeout: 5 * time.Second,
	}
}

// Cleanup terminates all test containers and closes connections
func (tc *TestContainers) Cleanup(ctx context.Context) error {
	var errs []error

	if tc.RedisClient != nil {
		if err := tc.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close valkey client: %w", err))
		}
	}

	if tc.RedisContainer != nil {
		if err := tc.RedisContainer.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to terminate valkey container: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}

// GetRedisEndpoint returns the Valkey endpoint (Redis-compatible)
func (tc *TestContainers) GetRedisEndpoint() string {
	return tc.RedisEndpoint
}

// FlushRedis clears all data from the Valkey test database
func (tc *TestContainers) FlushRedis(ctx context.Context) error {
	if tc.RedisClient == nil {
		return fmt.Errorf("valkey client not available")
	}

	return tc.RedisClient.FlushCache(ctx)
}

// GetRedisClient returns the Valkey client for tests (Redis-compatible)
func (tc *TestContainers) GetRedisClient() *cache.RedisClient {
	return tc.RedisClient
}
