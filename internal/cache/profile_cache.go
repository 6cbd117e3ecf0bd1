// Package cache keeps resolved user records in Redis so that authenticated
// requests do not hit PostgreSQL on every call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"auth_service/internal/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:user:"

// ProfileCache stores users by id. Implementations must treat every failure
// as a miss: the credential store stays authoritative.
type ProfileCache interface {
	Get(ctx context.Context, userID int) (*model.User, bool)
	Set(ctx context.Context, user *model.User)
}

// Noop never caches anything
type Noop struct{}

func (Noop) Get(context.Context, int) (*model.User, bool) { return nil, false }
func (Noop) Set(context.Context, *model.User)             {}

// RedisProfileCache is a ProfileCache backed by Redis string keys with a TTL.
// Password hashes are never written (model.User omits them from JSON).
type RedisProfileCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisProfileCache returns Noop when client is nil or ttl is not positive
func NewRedisProfileCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) ProfileCache {
	if client == nil || ttl <= 0 {
		return Noop{}
	}
	return &RedisProfileCache{client: client, ttl: ttl, logger: logger.With("component", "profile_cache")}
}

func key(userID int) string {
	return keyPrefix + strconv.Itoa(userID)
}

func (c *RedisProfileCache) Get(ctx context.Context, userID int) (*model.User, bool) {
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "user_id", userID, "error", err)
		}
		return nil, false
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		c.logger.Warn("cache entry corrupt", "user_id", userID, "error", err)
		return nil, false
	}
	return &user, true
}

func (c *RedisProfileCache) Set(ctx context.Context, user *model.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		c.logger.Warn("cache encode failed", "user_id", user.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, key(user.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "user_id", user.ID, "error", err)
	}
}
