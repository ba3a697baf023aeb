package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("error cache miss")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func (r *RedisCache) quoteKey(key model.AssetKey) string {
	return fmt.Sprintf("%s:quote:%s", r.cfg.Storage.KeyPrefix, key)
}

func (r *RedisCache) SetQuotes(ctx context.Context, quotes []model.Quote) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.SetQuotes"
	slog.Debug("SetQuotes start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(quotes)))

	if len(quotes) == 0 {
		return nil
	}

	pipe := r.redis.Pipeline()
	for _, quote := range quotes {
		quoteJson, err := json.Marshal(quote)
		if err != nil {
			slog.Error(
				"can't marshall quote",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("err", err.Error()),
				slog.Any("quote", quote),
			)
			return errors.New("can't marshall quote")
		}

		pipe.Set(ctx, r.quoteKey(quote.Key()), quoteJson, r.cfg.Cache.QuotesExpiration)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("failed on pipe.Exec", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetQuotes completed", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, key model.AssetKey) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "RedisCache.GetQuote"
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("op", op), slog.String("key", key.String()))

	res, err := r.redis.Get(ctx, r.quoteKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return model.Quote{}, ErrCacheMiss
	}
	if err != nil {
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()), slog.String("key", key.String()))
		return model.Quote{}, err
	}

	quote := model.Quote{}
	err = json.Unmarshal([]byte(res), &quote)
	if err != nil {
		slog.Error(
			"can't unmarshall quote",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return model.Quote{}, errors.New("can't unmarshall quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID), slog.String("op", op))

	return quote, nil
}
