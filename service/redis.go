package service

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (c *RedisConfig) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Enabled, "redis.enabled", false, "connect to redis (required by -cache.kind=redis)")
	fs.StringVar(&c.Addr, "redis.host", "127.0.0.1:6379", "redis host:port")
	fs.StringVar(&c.Password, "redis.password", "", "redis password")
	fs.IntVar(&c.DB, "redis.db", 0, "redis database number")
}

// NewRedisClient returns nil when redis is not enabled.  The connection is
// checked with a ping before the client is returned.
func NewRedisClient(ctx context.Context, logger *zap.Logger, conf RedisConfig) (*redis.Client, error) {
	if !conf.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s: %w", conf.Addr, err)
	}
	logger.Info("Redis connection established", zap.String("addr", conf.Addr), zap.Int("db", conf.DB))
	return client, nil
}
