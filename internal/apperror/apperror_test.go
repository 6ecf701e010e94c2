package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("post", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "DuplicateEmail wraps ErrDuplicateEmail",
			err:       DuplicateEmail(),
			target:    ErrDuplicateEmail,
			wantMatch: true,
		},
		{
			name:      "AlreadyLiked wraps ErrAlreadyLiked",
			err:       AlreadyLiked("p1"),
			target:    ErrAlreadyLiked,
			wantMatch: true,
		},
		{
			name:      "NotLiked wraps ErrNotLiked",
			err:       NotLiked("p1"),
			target:    ErrNotLiked,
			wantMatch: true,
		},
		{
			name:      "CryptoFailure wraps ErrCryptoFailure",
			err:       CryptoFailure("hashing password", errors.New("rng exhausted")),
			target:    ErrCryptoFailure,
			wantMatch: true,
		},
		{
			name:      "InvalidToken is not Unauthenticated",
			err:       InvalidToken("token expired"),
			target:    ErrUnauthenticated,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("liking post: %w", AlreadyLiked("p1")),
			target:    ErrAlreadyLiked,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("post", "abc123"),
			wantMessage: "post not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "DuplicateEmail does not echo the address",
			err:         DuplicateEmail(),
			wantMessage: "email already exists",
		},
		{
			name:        "CryptoFailure hides the underlying fault",
			err:         CryptoFailure("signing token", errors.New("key too short")),
			wantMessage: "internal cryptographic failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NotFound("post", "x"), "not_found"},
		{ValidationFailed("text", "too short"), "validation_error"},
		{Forbidden("not yours"), "forbidden"},
		{Conflict("post", "x"), "conflict"},
		{Unauthenticated("no"), "unauthenticated"},
		{InvalidToken("token expired"), "invalid_token"},
		{DuplicateEmail(), "duplicate_email"},
		{AlreadyLiked("x"), "already_liked"},
		{NotLiked("x"), "not_liked"},
		{CryptoFailure("op", errors.New("boom")), "crypto_failure"},
		{errors.New("disk full"), "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("post", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestFieldIsSet(t *testing.T) {
	if err := ValidationFailed("email", "invalid email format"); err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if err := DuplicateEmail(); err.Field != "email" {
		t.Errorf("DuplicateEmail Field = %q, want %q", err.Field, "email")
	}
}
