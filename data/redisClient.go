package data

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient serves both the quote cache and the redis blob store.
func NewRedisClient(cfg *config.Config) *redis.Client {
	addr := net.JoinHostPort(cfg.Redis.Host, strconv.Itoa(cfg.Redis.Port))
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("Redis ping failed", slog.String("addr", addr), slog.String("err", err.Error()))
		panic(fmt.Errorf("redis %s: %w", addr, err))
	}
	slog.Info("Redis connected", slog.String("addr", addr), slog.Int("db", cfg.Redis.DB))

	return rdb
}
