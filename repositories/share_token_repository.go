package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrShareTokenNotFound reports an unknown or expired share token.
var ErrShareTokenNotFound = redis.Nil

type RedisShareTokenRepository struct {
	redis *redis.Client
}

func NewRedisShareTokenRepository(redisClient *redis.Client) *RedisShareTokenRepository {
	return &RedisShareTokenRepository{redis: redisClient}
}

func shareTokenKey(token string) string {
	return fmt.Sprintf("share:%s", token)
}

func (r *RedisShareTokenRepository) Save(ctx context.Context, token string, target ShareTarget, expireSeconds int) error {
	value := fmt.Sprintf("%s:%d", target.Kind, target.ID)
	expire := time.Duration(expireSeconds) * time.Second
	return r.redis.Set(ctx, shareTokenKey(token), value, expire).Err()
}

func (r *RedisShareTokenRepository) Resolve(ctx context.Context, token string) (ShareTarget, error) {
	value, err := r.redis.Get(ctx, shareTokenKey(token)).Result()
	if err != nil {
		return ShareTarget{}, err
	}
	kind, rawID, ok := strings.Cut(value, ":")
	if !ok {
		return ShareTarget{}, fmt.Errorf("malformed share token value %q", value)
	}
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		return ShareTarget{}, fmt.Errorf("malformed share token id %q", rawID)
	}
	return ShareTarget{Kind: kind, ID: uint(id)}, nil
}

func (r *RedisShareTokenRepository) Delete(ctx context.Context, token string) error {
	return r.redis.Del(ctx, shareTokenKey(token)).Err()
}
