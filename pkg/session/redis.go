package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultRedisPrefix = "vortex-bridge:session"

// RedisStore keeps sessions in Redis and lets key TTLs drive expiry
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds connection settings for NewRedisClient
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// NewRedisClient parses the URL, applies overrides and pings the server
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps an existing client. An empty prefix selects the default.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(hash string) string {
	return r.prefix + ":" + hash
}

// Create stores the session with a TTL matching its expiry
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(s.IssuedAt)
	if ttl <= 0 {
		return fmt.Errorf("session has no lifetime")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.TokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Touch renews the key TTL with a single GETEX, so a concurrent DEL either
// wins outright or is applied after the renewal
func (r *RedisStore) Touch(ctx context.Context, hash string, now time.Time, ttl time.Duration) (*Session, error) {
	data, err := r.client.GetEx(ctx, r.key(hash), ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	} else if err != nil {
		return nil, fmt.Errorf("redis getex failed: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		r.client.Del(ctx, r.key(hash))
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s.TokenHash = hash
	s.ExpiresAt = now.Add(ttl)
	return &s, nil
}

// Delete removes the session key
func (r *RedisStore) Delete(ctx context.Context, hash string) error {
	if err := r.client.Del(ctx, r.key(hash)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Sweep is a no-op; Redis expires keys on its own
func (r *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
