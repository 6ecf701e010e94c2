// Password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is deliberately slow, which makes offline guessing expensive.
// It also:
//   - Generates a random salt per hash (same password, different output)
//   - Embeds salt and cost in the output (one column, nothing else to store)
//   - Compares in constant time
//
// Hash format:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/devconnector/internal/apperror"
)

const (
	// DefaultCost takes roughly 250ms on a modern server.
	DefaultCost = 12

	// MaxPasswordBytes is bcrypt's input limit. Longer inputs would be
	// silently truncated, so Hash rejects them instead.
	MaxPasswordBytes = 72
)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected:
// production uses DefaultCost, tests use bcrypt.MinCost.
type PasswordService struct {
	cost int

	// decoy is a hash at the same cost, compared against by SimulateVerify.
	decoy []byte
}

// NewPasswordService creates a PasswordService with the given cost.
// Values outside bcrypt's accepted range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return newPasswordService(cost)
}

// NewPasswordServiceForTest creates a PasswordService with bcrypt's minimum
// cost. Use it in tests in other packages; never in production.
func NewPasswordServiceForTest() *PasswordService {
	return newPasswordService(bcrypt.MinCost)
}

// newPasswordService pays for the decoy hash up front so the first login
// with an unknown email is not slower than the rest.
func newPasswordService(cost int) *PasswordService {
	p := &PasswordService{cost: cost}
	// Any fixed input works; the hash only needs the right cost.
	if h, err := bcrypt.GenerateFromPassword([]byte("decoy-password"), cost); err == nil {
		p.decoy = h
	}
	return p
}

// Hash hashes the given plaintext password with bcrypt.
//
// Store the result as-is; it contains everything Verify needs.
//
// Errors:
//   - apperror.ErrValidation if plaintext is longer than 72 bytes
//   - apperror.ErrCryptoFailure if bcrypt or the RNG fails
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", apperror.CryptoFailure("hashing password", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches a stored bcrypt hash.
//
// A mismatch, an over-long plaintext and a malformed hash all return false.
// The comparison inside bcrypt is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) bool {
	// bcrypt only reads the first 72 bytes, so "correct password + suffix"
	// would otherwise match.
	if len(plaintext) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// SimulateVerify runs one bcrypt comparison against a throwaway hash.
//
// Login calls it when the email is unknown so that "no such account" takes
// as long as "wrong password".
func (p *PasswordService) SimulateVerify(plaintext string) {
	if p.decoy == nil {
		return
	}
	_ = bcrypt.CompareHashAndPassword(p.decoy, []byte(plaintext))
}

// Cost returns the bcrypt work factor new hashes are created with.
func (p *PasswordService) Cost() int {
	return p.cost
}
