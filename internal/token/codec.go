package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"user-server/internal/models"
)

// Codec issues and decodes the service's signed tokens. All kinds share one
// HMAC-SHA256 secret and issuer; they differ in TTL and payload.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// NewCodec creates a Codec with the given signing secret and TTLs.
func NewCodec(secret, issuer string, accessTTL, refreshTTL, resetTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// ResetTTL returns the configured reset token lifetime.
func (c *Codec) ResetTTL() time.Duration { return c.resetTTL }

// IssueAccess signs an access token embedding the user's identity.
// Returns the token string and its unix expiry.
func (c *Codec) IssueAccess(identity models.Identity) (string, int64, error) {
	return c.sign(models.TokenKindAccess, identity.UserID, &identity, c.accessTTL)
}

// IssueRefresh signs a refresh token carrying only the user ID as subject.
func (c *Codec) IssueRefresh(userID uuid.UUID) (string, int64, error) {
	return c.sign(models.TokenKindRefresh, userID, nil, c.refreshTTL)
}

// IssueReset signs a password-reset token carrying only the user ID as subject.
func (c *Codec) IssueReset(userID uuid.UUID) (string, int64, error) {
	return c.sign(models.TokenKindReset, userID, nil, c.resetTTL)
}

func (c *Codec) sign(kind string, userID uuid.UUID, identity *models.Identity, ttl time.Duration) (string, int64, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := &models.Claims{
		Kind:     kind,
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, expiresAt.Unix(), nil
}

// Decode parses and validates a token string, mapping jwt errors to the
// service's sentinel errors. Expiry is exclusive: a token presented exactly
// at its exp instant is already expired.
func (c *Codec) Decode(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, models.ErrTokenMalformed
		}
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// Subject extracts the user ID a token was issued for.
func Subject(claims *models.Claims) (uuid.UUID, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, models.ErrTokenInvalid
	}
	return userID, nil
}

// PeekExpiry reads the exp claim without verifying the signature. Used when
// revoking a token: even a token that no longer verifies carries the expiry
// the revocation entry should live until.
func PeekExpiry(tokenString string) (time.Time, bool) {
	claims := &models.Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
