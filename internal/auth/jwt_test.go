package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
)

const testSecret = "test-secret-at-least-16-chars!!"

var alice = model.Principal{ID: "u1", Name: "Alice", Avatar: "https://www.gravatar.com/avatar/abc"}

// newTestTokenService creates a TokenService whose clock is pinned to a
// whole second so expiry boundaries are exact.
func newTestTokenService(t *testing.T) (*TokenService, *time.Time) {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return now }
	return ts, &now
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	assert.Error(t, err)
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, ts.TTL())
}

// =========================================================================
// ROUND TRIP
// =========================================================================

func TestIssueVerify_RoundTrip(t *testing.T) {
	ts, now := newTestTokenService(t)

	token, err := ts.Issue(alice)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "a JWT has three segments")

	claims, err := ts.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, alice, claims.Principal())
	assert.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, now.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestIssue_SameClaimsSameToken(t *testing.T) {
	ts, _ := newTestTokenService(t)

	a, err := ts.Issue(alice)
	require.NoError(t, err)
	b, err := ts.Issue(alice)
	require.NoError(t, err)

	// HS256 is deterministic: identical claims and key give identical tokens.
	assert.Equal(t, a, b)
}

func TestIssue_DifferentPrincipalsDifferentTokens(t *testing.T) {
	ts, _ := newTestTokenService(t)

	a, _ := ts.Issue(alice)
	b, _ := ts.Issue(model.Principal{ID: "u2", Name: "Bob"})
	assert.NotEqual(t, a, b)
}

// =========================================================================
// EXPIRY
// =========================================================================

func TestVerify_ValidJustBeforeExpiry(t *testing.T) {
	ts, now := newTestTokenService(t)

	token, err := ts.IssueWithTTL(alice, 10*time.Minute)
	require.NoError(t, err)

	*now = now.Add(10*time.Minute - time.Second)
	_, err = ts.Verify(token)
	assert.NoError(t, err)
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	ts, now := newTestTokenService(t)

	token, err := ts.IssueWithTTL(alice, 10*time.Minute)
	require.NoError(t, err)

	*now = now.Add(10*time.Minute + time.Second)
	_, err = ts.Verify(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInvalidToken))
	assert.Equal(t, "token expired", err.Error())
}

func TestVerify_ExpiredAtExactBoundary(t *testing.T) {
	ts, now := newTestTokenService(t)

	token, err := ts.IssueWithTTL(alice, time.Minute)
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

// =========================================================================
// TAMPERING
// =========================================================================

func TestVerify_AnySingleCharacterChangeFails(t *testing.T) {
	ts, _ := newTestTokenService(t)

	token, err := ts.Issue(alice)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := ts.Verify(tampered)
		if !errors.Is(err, apperror.ErrInvalidToken) {
			t.Fatalf("Verify() accepted token altered at byte %d (err = %v)", i, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!", time.Hour)
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	token, err := ts1.Issue(alice)
	require.NoError(t, err)

	_, err = ts2.Verify(token)
	require.Error(t, err)
	assert.Equal(t, "token signature is invalid", err.Error())
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	ts, now := newTestTokenService(t)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(*now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestVerify_RejectsForeignIssuer(t *testing.T) {
	ts, now := newTestTokenService(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			IssuedAt:  jwt.NewNumericDate(*now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	token, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestVerify_RejectsMissingAccountID(t *testing.T) {
	ts, _ := newTestTokenService(t)

	token, err := ts.Issue(model.Principal{Name: "nobody"})
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	ts, _ := newTestTokenService(t)

	for _, s := range []string{"", "not.a.jwt.token", "abc", "a.b.c"} {
		_, err := ts.Verify(s)
		assert.ErrorIs(t, err, apperror.ErrInvalidToken, "input %q", s)
	}
}
