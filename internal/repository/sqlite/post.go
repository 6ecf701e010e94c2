package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devconnector/internal/apperror"
	"github.com/sakif/devconnector/internal/model"
	"github.com/sakif/devconnector/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

const postColumns = `id, author_id, text, name, avatar, likes, version, created_at`

// CreatePost inserts a new post and fills in its ID, Version and CreatedAt.
// A new post starts at version 1 with no likes.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.Version = 1
	post.CreatedAt = time.Now().UTC()
	if post.Likes == nil {
		post.Likes = []model.Like{}
	}

	likes, err := encodeLikes(post.Likes)
	if err != nil {
		return err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Text,
		post.Name,
		post.Avatar,
		likes,
		post.Version,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetPost retrieves a single post by its ID.
func (db *DB) GetPost(ctx context.Context, id string) (*model.Post, error) {
	p, err := scanPost(db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return p, nil
}

// ListPosts returns every post, newest first.
func (db *DB) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// UpdatePost writes post's text and likes if the stored version still equals
// post.Version, then increments post.Version to match the new stored value.
//
// OPTIMISTIC CONCURRENCY:
// The version check and the write are one UPDATE statement, so two requests
// that read the same version cannot both succeed. The loser sees zero rows
// affected and gets apperror.ErrConflict.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	likes, err := encodeLikes(post.Likes)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts
		 SET text = ?, likes = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		post.Text,
		likes,
		post.ID,
		post.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	if err := db.checkVersionedWrite(ctx, result, post.ID); err != nil {
		return err
	}

	post.Version++
	return nil
}

// DeletePost removes the post if its stored version equals version.
func (db *DB) DeletePost(ctx context.Context, id string, version int64) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND version = ?`,
		id,
		version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	return db.checkVersionedWrite(ctx, result, id)
}

// checkVersionedWrite tells apart the two reasons a versioned write can
// touch zero rows: the post is gone, or someone else wrote it first.
func (db *DB) checkVersionedWrite(ctx context.Context, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists int
	err = db.conn.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("post", id)
	}
	if err != nil {
		return fmt.Errorf("sqlite: checking post %s: %w", id, err)
	}
	return apperror.Conflict("post", id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.Post, error) {
	var (
		p     model.Post
		likes string
	)
	if err := row.Scan(
		&p.ID,
		&p.AuthorID,
		&p.Text,
		&p.Name,
		&p.Avatar,
		&likes,
		&p.Version,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(likes), &p.Likes); err != nil {
		return nil, fmt.Errorf("decoding likes of post %s: %w", p.ID, err)
	}
	if p.Likes == nil {
		p.Likes = []model.Like{}
	}
	return &p, nil
}

// Likes are stored as a JSON array in a TEXT column; the list is small and
// always read and written as a whole together with the post.
func encodeLikes(likes []model.Like) (string, error) {
	if likes == nil {
		return "[]", nil
	}
	b, err := json.Marshal(likes)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding likes: %w", err)
	}
	return string(b), nil
}
