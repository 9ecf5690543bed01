package cache

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const redisScanBatch = 100

// RedisStore is a Backend on a shared redis, so every API replica sees the
// same invalidations. Keys are namespaced to keep DeletePrefix scoped.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

func NewRedisStore(client redis.UniversalClient, namespace string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.namespace+key, value, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	pattern := escapeGlob(s.namespace+prefix) + "*"
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return errors.Wrapf(err, "redis scan %s", pattern)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return errors.Wrapf(err, "redis del %d keys", len(keys))
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// scanGlobEscaper escapes the characters SCAN MATCH treats as glob syntax.
var scanGlobEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"?", `\?`,
	"[", `\[`,
	"]", `\]`,
)

func escapeGlob(s string) string {
	return scanGlobEscaper.Replace(s)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
