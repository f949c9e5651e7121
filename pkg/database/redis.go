package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"rubrics_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

const redisPingTimeout = 3 * time.Second

// NewRedisClient 只构造客户端，不检查连通性
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 20
	}
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 10,
		DialTimeout:  redisPingTimeout,
	})
}

// InitRedis 未启用时返回 nil，评分实例锁退化为进程内锁
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		log.Println("Redis disabled, instance locks are process local")
		return nil, nil
	}

	rdb := NewRedisClient(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Printf("Redis connection established, instance lock prefix %q", cfg.KeyPrefix)
	return rdb, nil
}
