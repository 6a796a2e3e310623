package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/avelins/membergate/internal/core/port"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// Cost grows exponentially with the factor; 12 keeps interactive login
// latency acceptable while resisting offline brute force.
const DefaultCost = 12

// maxPasswordBytes is the bcrypt input limit. The algorithm never keyed
// on more than 72 bytes; older implementations truncated silently while
// current x/crypto rejects longer input on hashing. Truncating here
// keeps any string valid input and stays compatible with digests
// produced by the truncating implementations.
const maxPasswordBytes = 72

// BcryptHasher implements port.PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher with the given cost factor.
// Costs outside bcrypt's supported range fall back to DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost reports the configured work factor.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash computes a salted one-way digest of the password. Any string is
// valid input; an error indicates an internal hashing failure.
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncate(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify compares the password against a stored digest. A mismatch is
// (false, nil); an error is returned only for a malformed stored hash.
func (h *BcryptHasher) Verify(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), truncate(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt verify: %w", err)
	}
}

// DummyHash returns a digest of an unguessable sentinel. Login compares
// the submitted password against it when no account matches, so the
// miss path performs the same bcrypt work as the hit path.
func (h *BcryptHasher) DummyHash() (string, error) {
	return h.Hash("membergate-no-such-account-sentinel")
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

var _ port.PasswordHasher = (*BcryptHasher)(nil)
