package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

// CreateAccount inserts a new account and fills in its ID and CreatedAt.
//
// The UNIQUE constraint on accounts.email is what guarantees one account per
// email. Two registrations racing past the service's lookup both reach this
// INSERT; SQLite lets exactly one through and the other gets
// apperror.ErrDuplicateEmail.
func (db *DB) CreateAccount(ctx context.Context, account *model.Account) error {
	account.ID = xid.New().String()
	account.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, email, name, avatar, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Email,
		account.Name,
		account.Avatar,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "accounts.email") {
			return apperror.DuplicateEmail()
		}
		return fmt.Errorf("sqlite: creating account: %w", err)
	}

	return nil
}

// GetAccountByEmail looks an account up by exact email match.
func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, avatar, password_hash, created_at
		 FROM accounts
		 WHERE email = ?`,
		email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", email)
		}
		return nil, fmt.Errorf("sqlite: getting account by email: %w", err)
	}
	return a, nil
}

// GetAccountByID looks an account up by its ID.
func (db *DB) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	a, err := scanAccount(db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, avatar, password_hash, created_at
		 FROM accounts
		 WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("account", id)
		}
		return nil, fmt.Errorf("sqlite: getting account %s: %w", id, err)
	}
	return a, nil
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var a model.Account
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.Avatar,
		&a.PasswordHash,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
