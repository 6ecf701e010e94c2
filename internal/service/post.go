package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

// CreatePostInput is what a client submits to publish a post.
type CreatePostInput struct {
	Text string `json:"text" validate:"required,min=10,max=300"`
}

// PostService handles publishing posts and the like/unlike/delete
// interactions on them.
//
// Every mutation reads the post, checks the rule against what it read, and
// writes back through a version-checked repository call. If another request
// wrote the post in between, the write fails with apperror.ErrConflict and
// nothing is retried; the client decides whether to try again.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// Create publishes a post authored by p. Name and Avatar are copied from
// the principal.
func (s *PostService) Create(ctx context.Context, p model.Principal, in CreatePostInput) (*model.Post, error) {
	in.Text = strings.TrimSpace(in.Text)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID: p.ID,
		Text:     in.Text,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Likes:    []model.Like{},
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("author_id", p.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("author_id", p.ID),
	)
	return post, nil
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetByID returns one post.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post id is required")
	}

	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("getting post", err)
	}
	return post, nil
}

// Like adds p to the front of the post's likes.
func (s *PostService) Like(ctx context.Context, p model.Principal, postID string) (*model.Post, error) {
	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.LikedBy(p.ID) {
		return nil, apperror.AlreadyLiked(post.ID)
	}
	post.AddLike(p.ID)

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		s.logWriteFailure("like", post.ID, p.ID, err)
		return nil, wrapRepoErr("liking post", err)
	}

	s.logger.Info("post liked",
		slog.String("id", post.ID),
		slog.String("user_id", p.ID),
	)
	return post, nil
}

// Unlike removes p's entry from the post's likes.
func (s *PostService) Unlike(ctx context.Context, p model.Principal, postID string) (*model.Post, error) {
	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.RemoveLike(p.ID) {
		return nil, apperror.NotLiked(post.ID)
	}

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		s.logWriteFailure("unlike", post.ID, p.ID, err)
		return nil, wrapRepoErr("unliking post", err)
	}

	s.logger.Info("post unliked",
		slog.String("id", post.ID),
		slog.String("user_id", p.ID),
	)
	return post, nil
}

// Delete removes the post if p is its author. The ownership check always
// runs before the delete is attempted.
func (s *PostService) Delete(ctx context.Context, p model.Principal, postID string) error {
	post, err := s.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != p.ID {
		s.logger.Warn("delete refused",
			slog.String("id", post.ID),
			slog.String("user_id", p.ID),
		)
		return apperror.Forbidden("only the author can delete this post")
	}

	if err := s.repo.DeletePost(ctx, post.ID, post.Version); err != nil {
		s.logWriteFailure("delete", post.ID, p.ID, err)
		return wrapRepoErr("deleting post", err)
	}

	s.logger.Info("post deleted", slog.String("id", post.ID))
	return nil
}

func (s *PostService) logWriteFailure(op, postID, userID string, err error) {
	if errors.Is(err, apperror.ErrConflict) {
		s.logger.Warn("concurrent write lost",
			slog.String("op", op),
			slog.String("id", postID),
			slog.String("user_id", userID),
		)
		return
	}
	s.logger.Error("post write failed",
		slog.String("op", op),
		slog.String("id", postID),
		slog.String("error", err.Error()),
	)
}

// wrapRepoErr passes domain errors through untouched so their message
// reaches the client, and adds context to everything else.
func wrapRepoErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
