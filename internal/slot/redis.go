package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisAddr is used when no address is configured.
const DefaultRedisAddr = "localhost:6379"

const defaultRedisTimeout = 5 * time.Second

// RedisOptions configures a Redis slot.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key.
	Prefix string

	// Timeout bounds each command. Defaults to 5s.
	Timeout time.Duration
}

// Redis stores each key as a Redis string.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultRedisAddr
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	return &Redis{client: client, prefix: opts.Prefix, timeout: opts.Timeout}, nil
}

// Key returns the Redis key used for key.
func (r *Redis) Key(key string) string {
	return r.prefix + key
}

// Load returns the value stored under key, or nil if the key is unset.
func (r *Redis) Load(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.Key(key), err)
	}
	return data, nil
}

// Save replaces the value stored under key.
func (r *Redis) Save(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.Key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.Key(key), err)
	}
	return nil
}

// Close closes the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
