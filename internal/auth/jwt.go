// Package auth provides the identity primitives of the API: bcrypt password
// hashing, JWT issuance/verification and the bearer-token guard.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /api/users/login with email + password
//  2. The account service verifies the password and asks TokenService for a
//     token carrying {id, name, avatar}
//  3. The client sends it back as "Authorization: Bearer <token>"
//  4. Guard verifies the token and puts a model.Principal in the request
//     context for the handler
//
// WHY JWT?
// JWT is stateless: the server keeps no session table, everything needed is
// in the signed token. The price is that a token cannot be revoked before it
// expires, so the TTL is kept short (1h by default).
//
// JWT STRUCTURE (three base64url parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"id":"...","name":"...","avatar":"...","iat":...,"exp":...,"iss":"devconnector"}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
)

const (
	// DefaultTokenTTL bounds how long a leaked token stays useful.
	DefaultTokenTTL = time.Hour

	// MinSecretLength is the shortest HMAC secret NewTokenService accepts.
	MinSecretLength = 16

	issuer = "devconnector"
)

// TokenService handles JWT creation and validation.
//
// The secret is handed in once at startup and never changes for the life of
// the process. TokenService holds no other state, so one instance is shared
// by every request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A non-positive ttl means DefaultTokenTTL.
//
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}

	// VALIDATION RULES:
	//   - HS256 only (no "none", no RS/HS confusion)
	//   - exp required, zero leeway
	//   - iat must not be in the future
	//   - issuer must be ours
	//   - strict base64: no two encodings of the same bytes are both accepted,
	//     so changing any character of the token breaks it
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)

	return s, nil
}

// TTL returns the lifetime given to tokens issued with Issue.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Claims is the JWT payload: the principal plus the registered claims
// (iat, exp, iss).
type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	jwt.RegisteredClaims
}

// Principal returns the identity carried by the claims.
func (c *Claims) Principal() model.Principal {
	return model.Principal{
		ID:     c.UserID,
		Name:   c.Name,
		Avatar: c.Avatar,
	}
}

// Issue signs a token for p that expires after the service's TTL.
func (s *TokenService) Issue(p model.Principal) (string, error) {
	return s.IssueWithTTL(p, s.ttl)
}

// IssueWithTTL signs a token for p that expires after ttl.
//
// Failures from the signer are reported as apperror.ErrCryptoFailure.
func (s *TokenService) IssueWithTTL(p model.Principal, ttl time.Duration) (string, error) {
	now := s.now()

	c := Claims{
		UserID: p.ID,
		Name:   p.Name,
		Avatar: p.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", apperror.CryptoFailure("signing token", err)
	}

	return signed, nil
}

// Verify parses tokenStr, checks its signature and validity window, and
// returns its claims.
//
// Every failure is an apperror.ErrInvalidToken. The message says what went
// wrong (expired, bad signature, malformed) for logging; callers facing a
// client should not forward it.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	c := &Claims{}

	token, err := s.parser.ParseWithClaims(tokenStr, c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperror.InvalidToken("token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperror.InvalidToken("token signature is invalid")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperror.InvalidToken("token is malformed")
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, apperror.InvalidToken("token is unverifiable")
		default:
			return nil, apperror.InvalidToken("token is invalid: " + err.Error())
		}
	}

	if !token.Valid {
		return nil, apperror.InvalidToken("token is invalid")
	}
	if c.UserID == "" {
		return nil, apperror.InvalidToken("token has no account id")
	}

	return c, nil
}
