// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"taxly/config"

	"github.com/go-redis/redis/v8"
)

var (
	// FlowCacheClient is the dedicated client for registration flow snapshots.
	FlowCacheClient *redis.Client
	// VerifyCacheClient is the dedicated client for email verification records.
	VerifyCacheClient *redis.Client
)

// InitFlowCache initializes the Redis client for flow snapshot storage.
func InitFlowCache() {
	FlowCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisFlowDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := FlowCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Flow Cache): %v", err)
	}
}

// GetFlowCacheClient returns the Redis client for flow snapshot storage.
func GetFlowCacheClient() *redis.Client {
	if FlowCacheClient == nil {
		InitFlowCache()
	}
	return FlowCacheClient
}

// InitVerifyCache initializes the Redis client for verification records.
func InitVerifyCache() {
	VerifyCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisVerifyDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := VerifyCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Verify Cache): %v", err)
	}
}

// GetVerifyCacheClient returns the Redis client for verification records.
func GetVerifyCacheClient() *redis.Client {
	if VerifyCacheClient == nil {
		InitVerifyCache()
	}
	return VerifyCacheClient
}

// InitRedis initializes all Redis clients eagerly at startup.
func InitRedis() {
	InitFlowCache()
	InitVerifyCache()
}
