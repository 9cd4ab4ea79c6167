// Package password wraps bcrypt hashing and verification for user
// credentials.
//
// Verify never returns an error: a malformed digest resolves to false the
// same way a wrong password does. Callers on a "user not found" path should
// call DummyVerify so the response cost matches a real comparison and does
// not leak account existence.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest accepted plaintext, inherited from bcrypt's
// 72-byte input limit.
const MaxLength = 72

// Validation failures from Hash.
var (
	ErrTooShort = errors.New("password: below minimum length")
	ErrTooLong  = fmt.Errorf("password: maximum length is %d bytes (bcrypt limit)", MaxLength)
)

// Hasher hashes and verifies user credentials.
type Hasher interface {
	// Hash returns a salted digest of the plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the digest. It never
	// errors; malformed digests simply compare false.
	Verify(plaintext, digest string) bool

	// DummyVerify burns the same work as a failed Verify against a real
	// digest. Used on lookup-miss paths to equalize response timing.
	DummyVerify(plaintext string)
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost      int
	minLength int
	// dummyDigest is a digest of an unguessable value, compared against
	// on DummyVerify.
	dummyDigest []byte
}

// Option configures the hasher.
type Option func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) Option {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithMinLength sets the minimum plaintext length (default: 8).
func WithMinLength(n int) Option {
	return func(h *BcryptHasher) {
		if n > 0 {
			h.minLength = n
		}
	}
}

// NewBcryptHasher creates a bcrypt-based credential hasher.
func NewBcryptHasher(opts ...Option) *BcryptHasher {
	h := &BcryptHasher{cost: 12, minLength: 8}
	for _, opt := range opts {
		opt(h)
	}
	// Precomputed at the configured cost so DummyVerify matches Verify's
	// work factor.
	dummy, err := bcrypt.GenerateFromPassword([]byte("connexa-dummy-comparison-subject"), h.cost)
	if err != nil {
		// Only reachable with an out-of-range cost, which options reject.
		panic(fmt.Sprintf("password: dummy digest: %v", err))
	}
	h.dummyDigest = dummy
	return h
}

// Hash returns a salted digest of the plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) < h.minLength {
		return "", ErrTooShort
	}
	if len(plaintext) > MaxLength {
		return "", ErrTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the digest.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// DummyVerify performs an equivalent-cost comparison that always fails.
func (h *BcryptHasher) DummyVerify(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyDigest, []byte(plaintext))
}
