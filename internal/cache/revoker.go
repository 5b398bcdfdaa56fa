// Package cache holds revoked session tokens until they would have expired.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "jwt:revoked:"

// Revoker records tokens that were logged out before their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// New returns a Redis-backed revoker when redisURL is set and reachable,
// and an in-process one otherwise.
func New(ctx context.Context, redisURL string, log *zap.Logger) Revoker {
	if redisURL == "" {
		return NewMemory()
	}
	r, err := NewRedis(ctx, redisURL)
	if err != nil {
		log.Warn("redis unavailable, revoking tokens in memory", zap.Error(err))
		return NewMemory()
	}
	return r
}

type RedisRevoker struct {
	client *redis.Client
}

func NewRedis(ctx context.Context, redisURL string) (*RedisRevoker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisRevoker{client: client}, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (r *RedisRevoker) Close() error {
	return r.client.Close()
}

type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemory() *MemoryRevoker {
	return &MemoryRevoker{revoked: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	if expiresAt.After(m.now()) {
		m.revoked[token] = expiresAt
	}
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[token]
	if !ok {
		return false, nil
	}
	if m.now().After(exp) {
		delete(m.revoked, token)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevoker) sweepLocked() {
	now := m.now()
	for token, exp := range m.revoked {
		if now.After(exp) {
			delete(m.revoked, token)
		}
	}
}
