package auth

// PASSWORD HASHING:
// bcrypt is deliberately slow, generates a random salt per hash and embeds
// salt and cost in its output:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// Store that string as-is; CompareHashAndPassword decodes it.

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used in production.
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer passwords are rejected
// rather than silently truncated.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)

// PasswordService provides bcrypt hashing and verification.
//
// The cost is a field so tests can use bcrypt.MinCost (4) instead of
// paying ~250ms per hash at cost 12.
type PasswordService struct {
	cost int

	// compared against for unknown emails; built at the same cost
	dummyHash []byte
}

// NewPasswordService creates a PasswordService with the given cost.
// A zero cost selects DefaultCost.
func NewPasswordService(cost int) (*PasswordService, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return newPasswordService(cost)
}

// NewPasswordServiceForTest creates a PasswordService with the given cost
// without validation. Use bcrypt.MinCost in tests in other packages.
//
// Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	p, err := newPasswordService(cost)
	if err != nil {
		panic(err)
	}
	return p
}

func newPasswordService(cost int) (*PasswordService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth: building dummy hash: %w", err)
	}
	return &PasswordService{cost: cost, dummyHash: dummy}, nil
}

// Hash hashes the given plaintext password with bcrypt.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil if they match, ErrInvalidCredentials if they don't.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyDummy burns the same bcrypt work as Verify against a fixed hash.
// Login calls it for unknown emails so response time does not reveal
// whether an account exists. It always returns ErrInvalidCredentials.
func (p *PasswordService) VerifyDummy(plaintext string) error {
	_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(plaintext))
	return ErrInvalidCredentials
}
