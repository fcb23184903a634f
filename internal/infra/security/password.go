package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor used for all existing hashes.
const DefaultBcryptCost = 10

// PasswordHasher wraps bcrypt hashing with a tunable cost factor.
// The encoded output is self-describing: algorithm, cost, and salt are
// embedded in the hash, so Compare needs no extra parameters.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher constructs a hasher. Costs outside bcrypt's valid range
// fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash generates a salted bcrypt hash for the provided password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	sum, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: hash password: %w", err)
	}
	return string(sum), nil
}

// Compare checks the provided password against a stored bcrypt hash.
// A mismatch is not an error; only malformed hashes produce one.
func (h *PasswordHasher) Compare(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("bcrypt: compare password: %w", err)
}
