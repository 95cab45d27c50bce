package storage

import (
	"context"
	"errors"
	"time"

	myErr "storefront/internal/types/errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisSlot хранит слоты в Redis под ключами storefront:<scope>:<key>
type RedisSlot struct {
	RedisClient *redis.Client
	Logger      *zap.SugaredLogger
	ttl         time.Duration
}

// NewRedisSlot создаёт хранилище слотов; ttl == 0 - без срока жизни
func NewRedisSlot(client *redis.Client, logger *zap.SugaredLogger, ttl time.Duration) *RedisSlot {
	return &RedisSlot{
		RedisClient: client,
		Logger:      logger,
		ttl:         ttl,
	}
}

func (rs *RedisSlot) Get(ctx context.Context, scope, key string) (string, error) {
	val, err := rs.RedisClient.Get(ctx, slotKey(scope, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", myErr.ErrNotFound
		}

		rs.Logger.Errorw("Failed get slot from Redis", "scope", scope, "key", key, "err", err)
		return "", err
	}

	return val, nil
}

func (rs *RedisSlot) Set(ctx context.Context, scope, key, value string) error {
	err := rs.RedisClient.Set(ctx, slotKey(scope, key), value, rs.ttl).Err()
	if err != nil {
		rs.Logger.Errorw("Failed save slot to Redis", "scope", scope, "key", key, "err", err)
		return err
	}

	return nil
}
