package token

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"user-server/internal/models"
)

func TestMemoryBlacklist_RevokeAndCheck(t *testing.T) {
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	ctx := context.Background()

	revoked, err := b.IsRevoked(ctx, "some-token")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "some-token", time.Now().Add(time.Hour)))

	revoked, err = b.IsRevoked(ctx, "some-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	// A different token stays unaffected.
	revoked, err = b.IsRevoked(ctx, "other-token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryBlacklist_RevokeIdempotent(t *testing.T) {
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, b.Revoke(ctx, "token", expiresAt))
	require.NoError(t, b.Revoke(ctx, "token", expiresAt))

	revoked, err := b.IsRevoked(ctx, "token")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryBlacklist_ExpiredEntryNotRevoked(t *testing.T) {
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "token", time.Now().Add(-time.Second)))

	revoked, err := b.IsRevoked(ctx, "token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryBlacklist_SweepDropsExpired(t *testing.T) {
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "stale", time.Now().Add(-time.Second)))
	require.NoError(t, b.Revoke(ctx, "live", time.Now().Add(time.Hour)))

	b.sweep()

	b.mu.RLock()
	defer b.mu.RUnlock()
	assert.Len(t, b.entries, 1)
	_, kept := b.entries[revocationKey("live")]
	assert.True(t, kept)
}

func TestVerifier_RevokedBeforeExpired(t *testing.T) {
	// A token that is both revoked and expired must report revoked:
	// the revocation check runs before signature verification.
	codec := NewCodec("test-secret", "user-server", time.Millisecond, time.Millisecond, time.Millisecond)
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	verifier := NewVerifier(codec, b, zap.NewNop())
	ctx := context.Background()

	tokenString, _, err := codec.IssueRefresh(uuid.New())
	require.NoError(t, err)
	require.NoError(t, b.Revoke(ctx, tokenString, time.Now().Add(time.Hour)))

	time.Sleep(5 * time.Millisecond)

	_, err = verifier.Verify(ctx, tokenString)
	assert.ErrorIs(t, err, models.ErrTokenRevoked)
}

func TestVerifier_ValidToken(t *testing.T) {
	codec := testCodec()
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	verifier := NewVerifier(codec, b, zap.NewNop())
	ctx := context.Background()

	identity := testIdentity()
	tokenString, _, err := codec.IssueAccess(identity)
	require.NoError(t, err)

	claims, err := verifier.Verify(ctx, tokenString)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindAccess, claims.Kind)
	assert.Equal(t, identity.UserID, claims.Identity.UserID)
}

func TestVerifier_Revoke_UsesTokenExpiry(t *testing.T) {
	codec := testCodec()
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	verifier := NewVerifier(codec, b, zap.NewNop())
	ctx := context.Background()

	tokenString, expiresAt, err := codec.IssueRefresh(uuid.New())
	require.NoError(t, err)
	require.NoError(t, verifier.Revoke(ctx, tokenString))

	b.mu.RLock()
	stored, found := b.entries[revocationKey(tokenString)]
	b.mu.RUnlock()
	require.True(t, found)
	assert.Equal(t, expiresAt, stored.Unix())

	_, err = verifier.Verify(ctx, tokenString)
	assert.ErrorIs(t, err, models.ErrTokenRevoked)
}

func TestVerifier_Revoke_FallbackExpiry(t *testing.T) {
	codec := testCodec()
	b := NewMemoryBlacklist(time.Hour, zap.NewNop())
	defer b.Stop()
	verifier := NewVerifier(codec, b, zap.NewNop())
	ctx := context.Background()

	// Unparseable token still gets an entry, held for the refresh TTL.
	require.NoError(t, verifier.Revoke(ctx, "garbage"))

	revoked, err := b.IsRevoked(ctx, "garbage")
	require.NoError(t, err)
	assert.True(t, revoked)
}
