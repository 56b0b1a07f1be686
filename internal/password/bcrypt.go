// Package password implements the bcrypt password hasher.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the cost the service has always hashed with.
const DefaultCost = 10

// Bcrypt hashes passwords with a per-call random salt embedded in the output.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher using cost, or DefaultCost when cost is outside
// bcrypt's accepted range.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares plaintext against hash. A mismatch is (false, nil); a hash
// bcrypt cannot parse is an error.
func (b *Bcrypt) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
