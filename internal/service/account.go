// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never *sqlite.DB, so the tests in this
// package run against in-memory fakes. They return apperror values; turning
// those into HTTP status codes is the handler's job.
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/auth"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

// loginFailedMessage is shared by the unknown-email and wrong-password paths
// so the response does not reveal which emails are registered.
const loginFailedMessage = "email or password is incorrect"

// RegisterInput is what a client submits to create an account.
type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=30"`
}

// LoginInput is what a client submits to obtain a token.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by a successful login. Token already carries the
// "Bearer " prefix so clients can send it back verbatim.
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// AccountService handles registration, login and account lookup.
//
// DEPENDENCIES (injected via NewAccountService):
//   - accounts   repository.AccountRepository → read/write account records
//   - passwords  *auth.PasswordService        → bcrypt hashing
//   - tokens     *auth.TokenService           → JWT issuance
//   - logger     *slog.Logger                 → structured logging
type AccountService struct {
	accounts  repository.AccountRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	accounts repository.AccountRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// FindByEmail returns the account registered under email, or
// apperror.ErrNotFound. The match is exact.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.accounts.GetAccountByEmail(ctx, email)
}

// Create hashes password, derives the avatar from email and stores a new
// account.
//
// The FindByEmail check only saves a bcrypt round for the common case. Two
// concurrent calls can both pass it; the repository's unique constraint
// then rejects the second with apperror.ErrDuplicateEmail.
func (s *AccountService) Create(ctx context.Context, email, name, password string) (*model.Account, error) {
	_, err := s.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.DuplicateEmail()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:         name,
		Email:        email,
		Avatar:       gravatarURL(email),
		PasswordHash: hash,
	}

	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error("failed to create account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account registered", slog.String("id", account.ID))
	return account, nil
}

// Register validates in and creates the account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	return s.Create(ctx, in.Email, in.Name, in.Password)
}

// Login checks the credentials and issues a token.
//
// An unknown email still pays for one bcrypt comparison, and both failure
// paths return the same apperror.ErrUnauthenticated, so neither the message
// nor the response time tells a caller whether the email exists.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	account, err := s.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.SimulateVerify(in.Password)
			s.logger.Debug("login rejected", slog.String("reason", "unknown email"))
			return nil, apperror.Unauthenticated(loginFailedMessage)
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !s.passwords.Verify(account.PasswordHash, in.Password) {
		s.logger.Debug("login rejected",
			slog.String("reason", "wrong password"),
			slog.String("account_id", account.ID),
		)
		return nil, apperror.Unauthenticated(loginFailedMessage)
	}

	token, err := s.tokens.Issue(account.Principal())
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("account logged in", slog.String("id", account.ID))
	return &LoginResult{Success: true, Token: "Bearer " + token}, nil
}

// Current loads the account the request was authenticated as. A token whose
// account no longer exists is treated like any other bad credential.
func (s *AccountService) Current(ctx context.Context, p model.Principal) (*model.Account, error) {
	account, err := s.accounts.GetAccountByID(ctx, p.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		s.logger.Debug("token names a missing account", slog.String("account_id", p.ID))
		return nil, apperror.Unauthenticated("valid authentication required")
	}
	if err != nil {
		return nil, wrapRepoErr("loading current account", err)
	}
	return account, nil
}

// gravatarURL builds the avatar URL for email: 200px, rated PG, falling back
// to the "mystery person" silhouette.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")

	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
