package configscache

import (
	"context"
	"time"

	"nika.id/configs"
	"nika.id/configs/configslog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

// InitRedis connects when REDIS_ADDR is set. Without it the page cache runs as a no-op.
func InitRedis() {
	cfg := configs.Get()
	if cfg.RedisAddr == "" {
		configslog.SLog.Info("REDIS_ADDR not set, public page cache disabled")
		return
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		configslog.Log.Warn("Redis unreachable, public page cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = c.Close()
		return
	}
	client = c
	configslog.SLog.Infof("Redis connected (%s)", cfg.RedisAddr)
}

// GetRedis returns the client or nil when caching is disabled.
func GetRedis() *redis.Client {
	return client
}

func CloseRedis() {
	if client != nil {
		_ = client.Close()
	}
}
