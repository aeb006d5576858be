package database

import (
	"context"
	"fmt"
	"game_portal_backend/internal/config"
	"game_portal_backend/pkg/logger"
	"net"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KeyPrefix 本服务写入 Redis 的键和频道统一前缀，便于与其他服务共用实例
const KeyPrefix = "portal:"

// RedisKey 拼接带前缀的键，RedisKey("friends", 3) 得到 portal:friends:3
func RedisKey(parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// InitRedis 连接失败时返回错误，由调用方决定是否降级运行
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout(),
		ReadTimeout:  cfg.DialTimeout(),
		WriteTimeout: cfg.DialTimeout(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout())
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Log.Info("Redis connection established", zap.String("addr", addr), zap.Int("db", cfg.DB))
	return rdb, nil
}
