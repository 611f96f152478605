// Package auth provides session tokens, password hashing and the HTTP
// middleware that resolves the caller's identity.
//
// SESSION FLOW:
//  1. POST /api/auth/login verifies the password and issues a signed JWT.
//     The token is returned in the body and also set as an HttpOnly cookie.
//  2. Every protected request carries the token, either as
//     "Authorization: Bearer <token>" or as the cookie.
//  3. RequireAuth validates it and stores the user ID in the request context.
//  4. POST /api/auth/logout revokes the token's ID until it would have expired.
//
// JWT STRUCTURE:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<userID>","jti":"<uuid>","iss":"course-registration","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	issuer = "course-registration"

	// DefaultTokenTTL is used when NewTokenService is given a zero TTL.
	DefaultTokenTTL = time.Hour

	// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
	MinSecretLength = 16
)

// TokenService issues, validates and revokes session tokens.
//
// Revocation is an in-memory denylist keyed by token ID. Entries expire
// with the token they block, so the list never outgrows the set of live
// tokens. It does not survive a restart.
type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoked *gocache.Cache
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. The secret should be at least 32 bytes of random data in
// production, e.g. $(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: gocache.New(ttl, 10*time.Minute),
	}, nil
}

// TTL is the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Claims is the validated content of a session token.
type Claims struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for userID with the
// configured lifetime.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom lifetime.
// A negative duration yields an already-expired token, which tests use.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies a token and returns the user ID it was issued for.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	c, err := s.Parse(tokenStr)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

// Parse verifies signature, algorithm, issuer, expiry and revocation, and
// returns the token's claims.
//
// jwt.WithValidMethods pins HS256 so a token claiming "alg":"none" (or an
// asymmetric algorithm keyed with our secret) is rejected.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" || c.ID == "" {
		return nil, fmt.Errorf("%w: missing subject or id", ErrInvalidToken)
	}
	if _, revoked := s.revoked.Get(c.ID); revoked {
		return nil, ErrTokenRevoked
	}

	return &Claims{
		UserID:    c.Subject,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Revoke blocks a token for the rest of its lifetime. Revoking an invalid,
// expired or already-revoked token is a no-op.
func (s *TokenService) Revoke(tokenStr string) {
	c, err := s.Parse(tokenStr)
	if err != nil {
		return
	}
	if remaining := time.Until(c.ExpiresAt); remaining > 0 {
		s.revoked.Set(c.TokenID, struct{}{}, remaining)
	}
}
