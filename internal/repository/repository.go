// Package repository declares the storage interfaces the services depend on.
//
// Services receive these interfaces, never a concrete database type, so the
// service tests can swap in hand-written fakes and the sqlite package stays
// the only code that knows SQL.
package repository

import (
	"context"

	"github.com/sakif/devconnector/internal/model"
)

// AccountRepository persists registered accounts.
//
// CreateAccount must treat email as unique: a second account with the same
// email fails with apperror.ErrDuplicateEmail no matter how close together
// the two calls arrive.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
}

// PostRepository persists posts.
//
// UpdatePost and DeletePost are compare-and-set on Version: they apply only
// if the stored version still equals post.Version, and fail with
// apperror.ErrConflict otherwise. A successful UpdatePost bumps post.Version.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string, version int64) error
}
