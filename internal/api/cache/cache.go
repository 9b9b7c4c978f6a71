// Package cache holds the active access token registry. Redis keeps exactly
// one trusted access token per session; overwriting the entry on refresh is
// what revokes the previous token.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss reports that no active token is stored for the session. The caller
// treats a miss the same as a mismatch: the presented token is stale.
var ErrMiss = errors.New("cache: no active token")

const keyPrefix = "access_token:"

// AccessTokenCache maps session ids to their sole trusted access token.
type AccessTokenCache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(ctx context.Context, addr, password string, db int) (*AccessTokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &AccessTokenCache{client: client}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client) *AccessTokenCache {
	return &AccessTokenCache{client: client}
}

func key(sessionID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, sessionID)
}

// Set stores token as the session's sole trusted access token. Any token
// stored previously is overwritten and thereby revoked. The TTL should match
// the access token lifetime so entries expire with the tokens they guard.
func (c *AccessTokenCache) Set(ctx context.Context, sessionID int64, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key(sessionID), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Get returns the session's active access token, or ErrMiss when none is
// stored.
func (c *AccessTokenCache) Get(ctx context.Context, sessionID int64) (string, error) {
	val, err := c.client.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Delete drops the session's entry. Subsequent access validation for the
// session fails until a new token is stored.
func (c *AccessTokenCache) Delete(ctx context.Context, sessionID int64) error {
	if err := c.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (c *AccessTokenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (c *AccessTokenCache) Close() error {
	return c.client.Close()
}
