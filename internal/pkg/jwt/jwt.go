package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims are the backend session token claims the console reads. The console
// never holds the backend signing secret, so signatures are not verified here;
// the backend remains the authority on every request.
type Claims struct {
	UserID int64  `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes a token without verifying its signature
func Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// CheckExpiry fails with ErrTokenExpired once the token's exp has passed.
// Tokens without exp are accepted.
func CheckExpiry(tokenString string, now time.Time) (*Claims, error) {
	claims, err := Inspect(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// ExpiryOr returns the token's exp, or fallback when the token has none or
// cannot be decoded
func ExpiryOr(tokenString string, fallback time.Time) time.Time {
	claims, err := Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}
