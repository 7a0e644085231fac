package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/blog-api/internal/domain"
)

// postRepo implements domain.PostRepository using SQLite.
type postRepo struct {
	db *sql.DB
}

const selectPostWithAuthor = `
	SELECT p.id, p.author_id, p.title, p.content, p.image_url, p.created_at, p.updated_at,
	       u.name, u.email
	FROM posts p
	JOIN users u ON u.id = p.author_id`

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	now := toUnix(time.Now())
	id := domain.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, content, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, post.AuthorID, post.Title, post.Content, nullString(post.ImageURL), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	post.ID = id
	post.CreatedAt = fromUnix(now)
	post.UpdatedAt = post.CreatedAt
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id domain.ID) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPostWithAuthor+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *postRepo) ListAll(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPostWithAuthor+` ORDER BY p.created_at DESC, p.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *postRepo) ListByAuthor(ctx context.Context, authorID domain.ID) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		selectPostWithAuthor+` WHERE p.author_id = ? ORDER BY p.created_at DESC, p.rowid DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return collectPosts(rows)
}

func (r *postRepo) Update(ctx context.Context, post *domain.Post) error {
	now := toUnix(time.Now())
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, image_url = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title, post.Content, nullString(post.ImageURL), now, post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	post.UpdatedAt = fromUnix(now)
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id domain.ID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*domain.Post, error) {
	p := &domain.Post{Author: &domain.Author{}}
	var image sql.NullString
	var created, updated int64
	if err := s.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &image, &created, &updated,
		&p.Author.Name, &p.Author.Email); err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	if image.Valid {
		p.ImageURL = &image.String
	}
	p.CreatedAt = fromUnix(created)
	p.UpdatedAt = fromUnix(updated)
	return p, nil
}

func collectPosts(rows *sql.Rows) ([]domain.Post, error) {
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
