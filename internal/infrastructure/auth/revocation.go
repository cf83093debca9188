package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RevocationList invalidates access tokens before they expire
type RevocationList interface {
	// Revoke marks one token id as revoked. ttl should be the token's
	// remaining lifetime.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether the token id was revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser invalidates every token issued to the user up to now
	RevokeUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error

	// IsUserRevoked reports whether a token issued at issuedAt predates the
	// user's last revocation
	IsUserRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error)
}

const revocationKeyPrefix = "auth:revoked:"

// RedisRevocationList implements RevocationList using Redis
type RedisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList stores revocations in Redis through client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func tokenKey(jti string) string {
	return revocationKeyPrefix + "jti:" + jti
}

func userKey(userID uuid.UUID) string {
	return revocationKeyPrefix + "user:" + userID.String()
}

// Revoke stores the token id until the token would have expired anyway
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, tokenKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks the token id
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser stores the revocation time in unix seconds
func (l *RedisRevocationList) RevokeUser(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	if err := l.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked compares issuedAt with the stored revocation time
func (l *RedisRevocationList) IsUserRevoked(ctx context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	raw, err := l.client.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation time: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// MemoryRevocationList keeps revocations in process memory. It is used when
// Redis is disabled and only holds for a single instance.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	tokens  map[string]time.Time
	users   map[uuid.UUID]time.Time
	nowFunc func() time.Time
}

// NewMemoryRevocationList creates an empty in-memory revocation list
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		tokens:  make(map[string]time.Time),
		users:   make(map[uuid.UUID]time.Time),
		nowFunc: time.Now,
	}
}

// Revoke records the token id until now+ttl
func (l *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowFunc()
	l.tokens[jti] = now.Add(ttl)
	l.pruneLocked(now)
	return nil
}

// IsRevoked reports whether the token id is revoked and not yet expired
func (l *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	until, ok := l.tokens[jti]
	return ok && l.nowFunc().Before(until), nil
}

// RevokeUser records the revocation time for the user
func (l *MemoryRevocationList) RevokeUser(_ context.Context, userID uuid.UUID, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[userID] = l.nowFunc()
	return nil
}

// IsUserRevoked reports whether issuedAt is not after the user's revocation
func (l *MemoryRevocationList) IsUserRevoked(_ context.Context, userID uuid.UUID, issuedAt time.Time) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	revokedAt, ok := l.users[userID]
	if !ok {
		return false, nil
	}
	return issuedAt.Unix() <= revokedAt.Unix(), nil
}

// pruneLocked drops expired token entries. Caller holds the write lock.
func (l *MemoryRevocationList) pruneLocked(now time.Time) {
	for jti, until := range l.tokens {
		if !now.Before(until) {
			delete(l.tokens, jti)
		}
	}
}

var _ RevocationList = (*MemoryRevocationList)(nil)
