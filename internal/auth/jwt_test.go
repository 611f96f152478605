package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ZeroTTLUsesDefault(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if ts.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want %v", ts.TTL(), DefaultTokenTTL)
	}
}

// =========================================================================
// GENERATE / PARSE
// =========================================================================

func TestGenerate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-abc-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("Generate() token doesn't look like a JWT: %q", token)
	}

	c, err := ts.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.UserID != "user-abc-123" {
		t.Errorf("UserID = %q, want %q", c.UserID, "user-abc-123")
	}
	if c.TokenID == "" {
		t.Error("TokenID should be set")
	}
	if d := time.Until(c.ExpiresAt); d <= 59*time.Minute || d > time.Hour {
		t.Errorf("token expires in %v, want about 1h", d)
	}
}

func TestGenerate_EveryTokenHasItsOwnID(t *testing.T) {
	ts := newTestTokenService(t)

	t1, _ := ts.Generate("user-1")
	t2, _ := ts.Generate("user-1")

	c1, _ := ts.Parse(t1)
	c2, _ := ts.Parse(t2)
	if c1.TokenID == c2.TokenID {
		t.Error("two tokens for the same user share a token ID")
	}
}

func TestValidate_Failures(t *testing.T) {
	ts := newTestTokenService(t)
	valid, _ := ts.Generate("user-123")
	expired, _ := ts.GenerateWithDuration("user-123", -time.Second)

	other, _ := NewTokenService("a-completely-different-secret!!", time.Hour)
	foreign, _ := other.Generate("user-123")

	wrongIssuer, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "id",
		Subject:   "user-123",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "id",
		Subject:   "user-123",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrInvalidToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
		{"tampered signature", valid[:len(valid)-3] + "xxx", ErrInvalidToken},
		{"expired", expired, ErrTokenExpired},
		{"signed with another secret", foreign, ErrInvalidToken},
		{"wrong issuer", wrongIssuer, ErrInvalidToken},
		{"alg none", noneAlg, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Validate(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =========================================================================
// REVOCATION
// =========================================================================

func TestRevoke(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate("user-123")
	other, _ := ts.Generate("user-123")

	ts.Revoke(token)

	if _, err := ts.Validate(token); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("Validate(revoked) error = %v, want ErrTokenRevoked", err)
	}
	if _, err := ts.Validate(other); err != nil {
		t.Errorf("revoking one token should not affect another: %v", err)
	}
}

func TestRevoke_InvalidTokenIsNoop(t *testing.T) {
	ts := newTestTokenService(t)

	ts.Revoke("garbage")
	ts.Revoke("")

	if n := ts.revoked.ItemCount(); n != 0 {
		t.Errorf("denylist has %d entries, want 0", n)
	}
}
