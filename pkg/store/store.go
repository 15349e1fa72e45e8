package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Session keys written by login and cleared together by logout.
const (
	KeyToken    = "token"
	KeyUserID   = "userId"
	KeyUsername = "username"
)

// SessionKeys lists every key that belongs to a persisted session.
var SessionKeys = []string{KeyToken, KeyUserID, KeyUsername}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// KV is the durable key-value storage that holds the client session.
// Writes are last-write-wins; there is no grouping across keys.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Options selects and configures a KV backend.
type Options struct {
	Backend       string
	StatePath     string
	RedisAddr     string
	RedisPassword string
	RedisPrefix   string
	DatabaseURL   string
}

// Open builds the backend named in opts.
func Open(opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileStore(opts.StatePath)
	case BackendRedis:
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisPrefix)
	case BackendPostgres:
		return NewGormStore(opts.DatabaseURL)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

var errEmptyKey = errors.New("storage key is required")

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errEmptyKey
	}
	return nil
}
