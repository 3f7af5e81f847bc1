package storage

import (
	"context"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"WChat/logger"
	rds "WChat/service/storage/redis"
)

// presence key: wchat:presence:<user>
// value: connection id; TTL bounds how long a crashed node can leave a
// stale entry behind.
const presencePrefix = "wchat:presence:"

func presenceKey(user string) string { return presencePrefix + user }

// RedisRegistry is the externalized presence registry for multi-node
// deployments. It satisfies the same interface as the in-memory registry
// (chat.Registry), so the gateway does not care which one it gets.
//
// Operations never return errors to the caller: presence is best-effort
// by contract, a failed write just means the user looks offline.
type RedisRegistry struct {
	TTL time.Duration
}

func NewRedisRegistry(ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRegistry{TTL: ttl}
}

func (r *RedisRegistry) Register(userID, connID string) {
	if userID == "" || connID == "" {
		return
	}
	ctx, cancel := opCtx()
	defer cancel()
	if err := rds.GetRedis().Set(ctx, presenceKey(userID), connID, r.TTL).Err(); err != nil {
		logger.Errorf("[presence] register failed user=%s: %v", userID, err)
	}
}

func (r *RedisRegistry) Unregister(userID string) {
	ctx, cancel := opCtx()
	defer cancel()
	if err := rds.GetRedis().Del(ctx, presenceKey(userID)).Err(); err != nil {
		logger.Errorf("[presence] unregister failed user=%s: %v", userID, err)
	}
}

func (r *RedisRegistry) Lookup(userID string) (string, bool) {
	ctx, cancel := opCtx()
	defer cancel()
	val, err := rds.GetRedis().Get(ctx, presenceKey(userID)).Result()
	if err == goredis.Nil {
		return "", false
	}
	if err != nil {
		logger.Errorf("[presence] lookup failed user=%s: %v", userID, err)
		return "", false
	}
	return val, true
}

func (r *RedisRegistry) ListOnline() []string {
	ctx, cancel := opCtx()
	defer cancel()

	out := make([]string, 0, 16)
	iter := rds.GetRedis().Scan(ctx, 0, presencePrefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), presencePrefix))
	}
	if err := iter.Err(); err != nil {
		logger.Errorf("[presence] list failed: %v", err)
	}
	return out
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}
