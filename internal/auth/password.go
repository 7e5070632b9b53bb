package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"civic-registry/internal/domain"
)

// DefaultCost is the bcrypt cost used for stored passwords.
const DefaultCost = 12

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher; cost <= 0 selects DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword returns the bcrypt hash of plaintext.
func (h *PasswordHasher) HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Invalid("Password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether plaintext matches hash. A mismatch is not an
// error; only a malformed hash is.
func (h *PasswordHasher) ComparePassword(hash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("could not verify password: %w", err)
}
