package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword    = errors.New("password must not be empty")
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	ErrHashMismatch = errors.New("password does not match hash")
)

const (
	// bcryptHashLen is the length of every encoded bcrypt hash.
	bcryptHashLen = 60

	// MaxPasswordBytes is bcrypt's input limit. Multibyte characters count
	// once per byte.
	MaxPasswordBytes = 72
)

// Hasher hashes and verifies passwords.
// This abstracts the underlying algorithm so the account store stays independent of it.
type Hasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Verify compares a plaintext password with a hash.
	// Returns ErrHashMismatch when they do not match.
	Verify(password, hash string) error

	// IsHash reports whether s is a well-formed output of Hash.
	IsHash(s string) bool
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks password against hash. Timing is handled by bcrypt.
func (h *BcryptHasher) Verify(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrHashMismatch
	}
	return fmt.Errorf("%w: %v", ErrHashMismatch, err)
}

// IsHash reports whether s looks like an encoded bcrypt hash.
func (h *BcryptHasher) IsHash(s string) bool {
	return IsBcryptHash(s)
}

// IsBcryptHash checks the length, version prefix and cost field of s.
func IsBcryptHash(s string) bool {
	if len(s) != bcryptHashLen {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
