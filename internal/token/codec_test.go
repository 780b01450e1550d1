package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-server/internal/models"
)

func testCodec() *Codec {
	return NewCodec("test-secret", "user-server", 15*time.Minute, 168*time.Hour, 15*time.Minute)
}

func testIdentity() models.Identity {
	roleID := uuid.New()
	return models.Identity{
		UserID:   uuid.New(),
		Email:    "jane.doe@example.com",
		RoleID:   &roleID,
		RoleName: models.RoleAdmin,
	}
}

func TestCodec_IssueAccess_EmbedsIdentity(t *testing.T) {
	codec := testCodec()
	identity := testIdentity()

	tokenString, expiresAt, err := codec.IssueAccess(identity)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	assert.InDelta(t, time.Now().Add(15*time.Minute).Unix(), expiresAt, 2)

	claims, err := codec.Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindAccess, claims.Kind)
	require.NotNil(t, claims.Identity)
	assert.Equal(t, identity.UserID, claims.Identity.UserID)
	assert.Equal(t, identity.Email, claims.Identity.Email)
	assert.Equal(t, identity.RoleName, claims.Identity.RoleName)
	assert.Equal(t, identity.UserID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestCodec_IssueRefresh_SubjectOnly(t *testing.T) {
	codec := testCodec()
	userID := uuid.New()

	tokenString, expiresAt, err := codec.IssueRefresh(userID)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(168*time.Hour).Unix(), expiresAt, 2)

	claims, err := codec.Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindRefresh, claims.Kind)
	assert.Nil(t, claims.Identity)

	subject, err := Subject(claims)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func TestCodec_IssueReset_Kind(t *testing.T) {
	codec := testCodec()
	tokenString, _, err := codec.IssueReset(uuid.New())
	require.NoError(t, err)

	claims, err := codec.Decode(tokenString)
	require.NoError(t, err)
	assert.Equal(t, models.TokenKindReset, claims.Kind)
}

func TestCodec_Decode_Expired(t *testing.T) {
	codec := NewCodec("test-secret", "user-server", -time.Second, -time.Second, -time.Second)
	tokenString, _, err := codec.IssueRefresh(uuid.New())
	require.NoError(t, err)

	_, err = codec.Decode(tokenString)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

// A token whose exp equals its issue instant is already expired: exp marks
// the first invalid moment and no leeway is granted.
func TestCodec_Decode_ExpiryBoundaryIsExclusive(t *testing.T) {
	codec := NewCodec("test-secret", "user-server", 0, 0, 0)
	tokenString, expiresAt, err := codec.IssueAccess(testIdentity())
	require.NoError(t, err)
	assert.LessOrEqual(t, expiresAt, time.Now().Unix())

	_, err = codec.Decode(tokenString)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestCodec_Decode_Malformed(t *testing.T) {
	codec := testCodec()
	_, err := codec.Decode("not-a-jwt")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}

func TestCodec_Decode_WrongSecret(t *testing.T) {
	codec := testCodec()
	other := NewCodec("other-secret", "user-server", 15*time.Minute, 168*time.Hour, 15*time.Minute)

	tokenString, _, err := other.IssueRefresh(uuid.New())
	require.NoError(t, err)

	_, err = codec.Decode(tokenString)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestCodec_UniqueJTIs(t *testing.T) {
	codec := testCodec()
	userID := uuid.New()

	first, _, err := codec.IssueReset(userID)
	require.NoError(t, err)
	second, _, err := codec.IssueReset(userID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestPeekExpiry(t *testing.T) {
	codec := testCodec()
	tokenString, expiresAt, err := codec.IssueRefresh(uuid.New())
	require.NoError(t, err)

	peeked, ok := PeekExpiry(tokenString)
	require.True(t, ok)
	assert.Equal(t, expiresAt, peeked.Unix())

	_, ok = PeekExpiry("garbage")
	assert.False(t, ok)
}
