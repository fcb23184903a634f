package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrTokenInvalid indicates the signature did not verify or the claims failed validation.
	ErrTokenInvalid = errors.New("jwt: token invalid")
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("jwt: token malformed")
)

// TokenClaims carries the user identity embedded in every issued token.
// The same claims go into the access and refresh token of a pair; only the
// signing secret and expiry differ.
type TokenClaims struct {
	UserID       string `json:"uid"`
	TokenVersion int64  `json:"tv"`
	jwt.RegisteredClaims
}

// TokenIssuer produces and verifies stateless HS256-signed tokens with a
// fixed secret and lifetime. The service holds two: one for access tokens,
// one for refresh tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenIssuer constructs an issuer. The secret must be non-empty and the
// ttl positive.
func NewTokenIssuer(secret string, ttl time.Duration, issuer string) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt: signing secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: token ttl must be positive")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

// Issue signs a token embedding the user identity claims. No server-side
// state is created.
func (i *TokenIssuer) Issue(userID string, tokenVersion int64) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("jwt: user id is required")
	}

	now := time.Now().UTC()
	claims := TokenClaims{
		UserID:       userID,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}

	return signed, nil
}

// Verify parses the token, checks the signature and expiry, and returns the
// embedded claims. Failures map onto ErrTokenExpired, ErrTokenMalformed, or
// ErrTokenInvalid.
func (i *TokenIssuer) Verify(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// TTL exposes the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}
