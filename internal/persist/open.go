package persist

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	DataFile      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open builds the configured store. The returned close function releases
// backend resources and is never nil.
func Open(ctx context.Context, opts Options) (KV, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		if opts.DataFile == "" {
			return nil, noop, fmt.Errorf("data file path is empty")
		}
		return NewFileKV(opts.DataFile), noop, nil
	case BackendMemory:
		return NewMemoryKV(), noop, nil
	case BackendRedis:
		client, err := newRedisClient(opts)
		if err != nil {
			return nil, noop, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect to redis at %s: %w", opts.RedisAddr, err)
		}
		kv := NewRedisKV(client, opts.RedisPrefix)
		return kv, kv.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend %q, must be one of: file, memory, redis", opts.Backend)
	}
}

// newRedisClient accepts either a redis:// URL or a host:port address.
func newRedisClient(opts Options) (*redis.Client, error) {
	if opts.RedisAddr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if strings.HasPrefix(opts.RedisAddr, "redis://") || strings.HasPrefix(opts.RedisAddr, "rediss://") {
		ro, err := redis.ParseURL(opts.RedisAddr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if opts.RedisPassword != "" {
			ro.Password = opts.RedisPassword
		}
		return redis.NewClient(ro), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	}), nil
}
