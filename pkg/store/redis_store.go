package store

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "petlink:session"

// RedisStore keeps session keys in Redis under a prefix. Keys have no TTL;
// the token's own expiry is enforced by the backend.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(addr, password, prefix string) (*RedisStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
	}, nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.key(k))
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
