package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose tags for single-workflow tokens. A token minted for one purpose
// never verifies under another even though both share the signing secret.
const (
	PurposeEmailVerify   = "email-verify"
	PurposePasswordReset = "password-reset"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session JWT payload.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session JWT for userID, valid for ttl.
func GenerateToken(secret string, userID uint, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a session JWT and returns its claims. Tampered,
// malformed and expired tokens are indistinguishable to the caller.
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// PurposeClaims is the payload of email-verification and password-reset
// tokens. Only iat is embedded, the max age is a verification-time policy
// so each purpose can expire differently without re-issuing.
type PurposeClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GeneratePurposeToken signs a token binding email to a single purpose.
func GeneratePurposeToken(secret, email, purpose string) (string, error) {
	claims := &PurposeClaims{
		Email:   email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParsePurposeToken verifies signature, purpose and age, and returns the
// subject email.
func ParsePurposeToken(secret, tokenStr, purpose string, maxAge time.Duration) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &PurposeClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*PurposeClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return "", ErrInvalidToken
	}
	if claims.IssuedAt == nil || time.Since(claims.IssuedAt.Time) > maxAge {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
