// Package apperror defines the domain error taxonomy shared by every layer.
//
// Each failure kind is a sentinel error. Constructors wrap the sentinel in an
// *AppError carrying a human-readable message, so callers can branch with
// errors.Is and still show something useful to the client.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidToken    = errors.New("invalid token")
	ErrDuplicateEmail  = errors.New("duplicate email")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrNotLiked        = errors.New("not liked")
	ErrCryptoFailure   = errors.New("crypto failure")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated is the single outward-facing failure for every credential
// or token problem. The message never says which check failed.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// InvalidToken describes why a token was rejected ("token expired",
// "token signature is invalid", ...). It is for logs; the guard converts it
// to Unauthenticated before it reaches a client.
func InvalidToken(reason string) *AppError {
	return &AppError{
		Err:     ErrInvalidToken,
		Message: reason,
	}
}

func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: "email already exists",
		Field:   "email",
	}
}

func AlreadyLiked(postID string) *AppError {
	return &AppError{
		Err:     ErrAlreadyLiked,
		Message: fmt.Sprintf("post %s already liked by this user", postID),
	}
}

func NotLiked(postID string) *AppError {
	return &AppError{
		Err:     ErrNotLiked,
		Message: fmt.Sprintf("post %s has not been liked by this user", postID),
	}
}

// CryptoFailure wraps a fault from the RNG or a crypto library. It is fatal
// for the request and never retried.
func CryptoFailure(op string, err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s: %v", ErrCryptoFailure, op, err),
		Message: "internal cryptographic failure",
	}
}

// Kind returns the stable machine-readable name of err's failure kind.
// Unknown errors report "internal_error".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrAlreadyLiked):
		return "already_liked"
	case errors.Is(err, ErrNotLiked):
		return "not_liked"
	case errors.Is(err, ErrCryptoFailure):
		return "crypto_failure"
	default:
		return "internal_error"
	}
}
