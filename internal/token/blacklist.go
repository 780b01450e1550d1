package token

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"user-server/internal/models"
)

// Blacklist records revoked tokens until their natural expiry. Constructed
// once in main and injected wherever tokens are verified.
type Blacklist interface {
	// Revoke marks the token invalid until expiresAt. Idempotent.
	Revoke(ctx context.Context, tokenString string, expiresAt time.Time) error
	// IsRevoked reports whether the token has been revoked.
	IsRevoked(ctx context.Context, tokenString string) (bool, error)
}

// Compile-time checks
var (
	_ Blacklist = (*MemoryBlacklist)(nil)
	_ Blacklist = (*RedisBlacklist)(nil)
)

// revocationKey hashes the raw token so full JWTs never appear in store keys
// or log output.
func revocationKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return fmt.Sprintf("revoked_token:%x", sum)
}

// MemoryBlacklist is a process-local Blacklist. A background sweep drops
// entries whose tokens have expired, so memory stays bounded by the number
// of live revocations.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// NewMemoryBlacklist creates a MemoryBlacklist and starts its sweep loop.
func NewMemoryBlacklist(sweepInterval time.Duration, logger *zap.Logger) *MemoryBlacklist {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	b := &MemoryBlacklist{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
		logger:  logger.Named("MemoryBlacklist"),
	}
	go b.sweepLoop(sweepInterval)
	return b
}

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenString string, expiresAt time.Time) error {
	key := revocationKey(tokenString)
	b.mu.Lock()
	b.entries[key] = expiresAt
	b.mu.Unlock()
	b.logger.Debug("Token revoked", zap.Time("expiresAt", expiresAt))
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenString string) (bool, error) {
	key := revocationKey(tokenString)
	b.mu.RLock()
	expiresAt, found := b.entries[key]
	b.mu.RUnlock()
	if !found {
		return false, nil
	}
	// An entry past the token's own expiry is stale; the sweep will drop it.
	// The token itself is already rejected as expired at that point.
	if time.Now().After(expiresAt) {
		return false, nil
	}
	return true, nil
}

// Stop terminates the sweep loop.
func (b *MemoryBlacklist) Stop() {
	b.once.Do(func() { close(b.done) })
}

func (b *MemoryBlacklist) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.sweep()
		case <-b.done:
			return
		}
	}
}

func (b *MemoryBlacklist) sweep() {
	now := time.Now()
	b.mu.Lock()
	removed := 0
	for key, expiresAt := range b.entries {
		if now.After(expiresAt) {
			delete(b.entries, key)
			removed++
		}
	}
	remaining := len(b.entries)
	b.mu.Unlock()
	if removed > 0 {
		b.logger.Debug("Swept expired revocations", zap.Int("removed", removed), zap.Int("remaining", remaining))
	}
}

// RedisBlacklist stores revocations in Redis with a TTL equal to the
// token's remaining lifetime. Survives restarts and is shared between
// instances.
type RedisBlacklist struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBlacklist creates a Redis-backed Blacklist.
func NewRedisBlacklist(client *redis.Client, logger *zap.Logger) *RedisBlacklist {
	return &RedisBlacklist{
		client: client,
		logger: logger.Named("RedisBlacklist"),
	}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, tokenString string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past expiry; verification rejects it as expired anyway.
		return nil
	}
	key := revocationKey(tokenString)
	if err := b.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		b.logger.Error("Failed to store revocation in redis", zap.Error(err))
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	b.logger.Debug("Token revoked", zap.Duration("ttl", ttl))
	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, tokenString string) (bool, error) {
	key := revocationKey(tokenString)
	_, err := b.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		b.logger.Error("Failed to check revocation in redis", zap.Error(err))
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return true, nil
}

// Verifier combines the Codec with a Blacklist. The revocation check runs
// before signature verification, so a revoked-and-expired token reports
// revoked, not expired.
type Verifier struct {
	codec     *Codec
	blacklist Blacklist
	logger    *zap.Logger
}

// NewVerifier creates a Verifier.
func NewVerifier(codec *Codec, blacklist Blacklist, logger *zap.Logger) *Verifier {
	return &Verifier{
		codec:     codec,
		blacklist: blacklist,
		logger:    logger.Named("TokenVerifier"),
	}
}

// Verify checks revocation, then signature and expiry, and returns the
// token's claims. Errors are the models sentinels.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.Claims, error) {
	revoked, err := v.blacklist.IsRevoked(ctx, tokenString)
	if err != nil {
		v.logger.Error("Revocation check failed", zap.Error(err))
		return nil, fmt.Errorf("revocation check failed: %w", err)
	}
	if revoked {
		v.logger.Debug("Rejected revoked token")
		return nil, models.ErrTokenRevoked
	}
	return v.codec.Decode(tokenString)
}

// Revoke adds the token to the blacklist until its own expiry, falling back
// to the refresh TTL when the expiry cannot be read.
func (v *Verifier) Revoke(ctx context.Context, tokenString string) error {
	expiresAt, ok := PeekExpiry(tokenString)
	if !ok {
		expiresAt = time.Now().Add(v.codec.RefreshTTL())
	}
	return v.blacklist.Revoke(ctx, tokenString, expiresAt)
}
