package models

import "github.com/golang-jwt/jwt/v5"

// Token kinds. Every token carries its kind so one verification path can
// reject a refresh token presented where an access token is expected.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
	TokenKindReset   = "reset"
)

// Claims is the JWT payload for all token kinds. Identity is only present
// on access tokens; refresh and reset tokens identify the user via Subject.
type Claims struct {
	Kind                 string    `json:"kind"`
	Identity             *Identity `json:"identity,omitempty"`
	jwt.RegisteredClaims           // Issuer, Subject, ExpiresAt, NotBefore, IssuedAt, ID (JTI)
}
