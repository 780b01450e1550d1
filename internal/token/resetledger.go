package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// ResetLedger records outstanding password-reset tokens. Each entry is
// single-use: Consume removes it whether it succeeds or reports expiry.
// Multiple entries may exist for the same user at once.
type ResetLedger interface {
	// Issue records a reset token for userID, valid until expiresAt.
	Issue(ctx context.Context, tokenString string, userID uuid.UUID, expiresAt time.Time) error
	// Consume removes the entry and returns its user ID. Returns
	// models.ErrTokenNotFound for unknown or already-consumed tokens and
	// models.ErrTokenExpired for entries past their expiry (also removed).
	Consume(ctx context.Context, tokenString string) (uuid.UUID, error)
}

// Compile-time checks
var (
	_ ResetLedger = (*MemoryResetLedger)(nil)
	_ ResetLedger = (*RedisResetLedger)(nil)
)

func resetKey(tokenString string) string {
	return fmt.Sprintf("reset_token:%s", tokenString)
}

type resetEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemoryResetLedger is a process-local ResetLedger.
type MemoryResetLedger struct {
	mu      sync.Mutex
	entries map[string]resetEntry
	logger  *zap.Logger
}

// NewMemoryResetLedger creates an in-memory ResetLedger.
func NewMemoryResetLedger(logger *zap.Logger) *MemoryResetLedger {
	return &MemoryResetLedger{
		entries: make(map[string]resetEntry),
		logger:  logger.Named("MemoryResetLedger"),
	}
}

func (l *MemoryResetLedger) Issue(_ context.Context, tokenString string, userID uuid.UUID, expiresAt time.Time) error {
	l.mu.Lock()
	l.entries[tokenString] = resetEntry{userID: userID, expiresAt: expiresAt}
	l.mu.Unlock()
	l.logger.Debug("Reset token issued", zap.String("userID", userID.String()), zap.Time("expiresAt", expiresAt))
	return nil
}

func (l *MemoryResetLedger) Consume(_ context.Context, tokenString string) (uuid.UUID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, found := l.entries[tokenString]
	if !found {
		return uuid.Nil, models.ErrTokenNotFound
	}
	// Expired entries are removed too; a retry must not see them again.
	delete(l.entries, tokenString)
	if time.Now().After(entry.expiresAt) {
		l.logger.Debug("Reset token consumed past expiry", zap.String("userID", entry.userID.String()))
		return uuid.Nil, models.ErrTokenExpired
	}
	return entry.userID, nil
}

// RedisResetLedger stores reset entries in Redis. Expiry is enforced by the
// key TTL; GETDEL makes consumption atomic, so a concurrent double-consume
// yields exactly one success.
type RedisResetLedger struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisResetLedger creates a Redis-backed ResetLedger.
func NewRedisResetLedger(client *redis.Client, logger *zap.Logger) *RedisResetLedger {
	return &RedisResetLedger{
		client: client,
		logger: logger.Named("RedisResetLedger"),
	}
}

func (l *RedisResetLedger) Issue(ctx context.Context, tokenString string, userID uuid.UUID, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("reset token expiry %s is in the past", expiresAt)
	}
	key := resetKey(tokenString)
	if err := l.client.Set(ctx, key, userID.String(), ttl).Err(); err != nil {
		l.logger.Error("Failed to store reset token in redis", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	l.logger.Debug("Reset token issued", zap.String("userID", userID.String()), zap.Duration("ttl", ttl))
	return nil
}

func (l *RedisResetLedger) Consume(ctx context.Context, tokenString string) (uuid.UUID, error) {
	key := resetKey(tokenString)
	userIDStr, err := l.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			// Redis drops the key at TTL, so an expired entry is
			// indistinguishable from an unknown one here.
			return uuid.Nil, models.ErrTokenNotFound
		}
		l.logger.Error("Failed to consume reset token from redis", zap.Error(err))
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.logger.Error("Corrupted userID data in redis for reset token", zap.Error(err), zap.String("value", userIDStr))
		return uuid.Nil, fmt.Errorf("corrupted userID data for reset token: %w", err)
	}
	return userID, nil
}
