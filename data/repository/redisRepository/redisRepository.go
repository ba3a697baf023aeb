package redisRepository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/data/repository"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps blobs as plain keys without expiration.
type RedisRepository struct {
	redis  *redis.Client
	prefix string
}

func New(redisClient *redis.Client, cfg *config.Config) *RedisRepository {
	return &RedisRepository{redis: redisClient, prefix: cfg.Storage.KeyPrefix + ":blob:"}
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisRepository.Get"
	slog.Debug("Get start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))

	res, err := r.redis.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Debug("Get completed", slog.String("rqID", rqID), slog.String("op", op))

	return res, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisRepository.Set"
	slog.Debug("Set start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key))

	if err := r.redis.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("Set completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisRepository.Delete"

	if err := r.redis.Del(ctx, r.prefix+key).Err(); err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}

// SetMany writes all entries atomically with MULTI/EXEC.
func (r *RedisRepository) SetMany(ctx context.Context, entries map[string][]byte) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisRepository.SetMany"

	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, r.prefix+key, value, 0)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed on TxPipelined", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
