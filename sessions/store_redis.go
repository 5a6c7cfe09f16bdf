package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lefeverd/openid-proxy/oauth2"
)

// Default timeouts for Redis operations.
const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// keyPrefix namespaces session keys so the store can share a Redis database
// with other applications.
const keyPrefix = "openid-proxy:session:"

// RedisStore is the distributed session store backend. Expiry is delegated to
// Redis key TTLs, so sessions are shared and expired consistently across all
// gateway processes.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, host, port, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, port),
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client. Useful for testing with
// miniredis.
func NewRedisStoreWithClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Create persists the token payload as JSON under the session ID, with the
// TTL enforced by Redis itself.
func (s *RedisStore) Create(ctx context.Context, sessionID string, tokens oauth2.TokenResponse, ttl time.Duration) error {
	payload, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal session payload: %w", err)
	}
	if ttl < 0 {
		ttl = 0 // redis treats 0 as "no expiration"
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get retrieves the token payload for a session ID.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*oauth2.TokenResponse, error) {
	payload, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var tokens oauth2.TokenResponse
	if err := json.Unmarshal(payload, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session payload: %w", err)
	}
	return &tokens, nil
}

// Destroy removes the session, reporting whether an entry existed.
func (s *RedisStore) Destroy(ctx context.Context, sessionID string) bool {
	deleted, err := s.client.Del(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to destroy session")
		return false
	}
	return deleted > 0
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
