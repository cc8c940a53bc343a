package account

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and verifies one-way password digests.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Verify(digest []byte, plaintext string) (bool, error)
}

// BcryptHasher implements Hasher with salted bcrypt digests.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a bcrypt hasher. A cost outside bcrypt's valid
// range falls back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash derives a salted digest from the plaintext password.
func (h *BcryptHasher) Hash(plaintext string) ([]byte, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return digest, nil
}

// Verify reports whether the digest was produced from the plaintext.
// A mismatch returns (false, nil); only a malformed digest yields an error.
func (h *BcryptHasher) Verify(digest []byte, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(digest, []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrHashing, err)
	}
}
