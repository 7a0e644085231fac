package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/msomdec/blog-api/internal/domain"
)

type postRepo struct {
	pool *pgxpool.Pool
}

const selectPostWithAuthor = `
	SELECT p.id, p.author_id, p.title, p.content, p.image_url, p.created_at, p.updated_at,
	       u.name, u.email
	FROM posts p
	JOIN users u ON u.id = p.author_id`

// seq breaks created_at ties in insertion order.
const newestFirst = ` ORDER BY p.created_at DESC, p.seq DESC`

func (r *postRepo) Create(ctx context.Context, post *domain.Post) error {
	ts := now()
	id := domain.NewID()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO posts (id, author_id, title, content, image_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		id.String(), post.AuthorID.String(), post.Title, post.Content, post.ImageURL, ts,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	post.ID = id
	post.CreatedAt = ts
	post.UpdatedAt = ts
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id domain.ID) (*domain.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, selectPostWithAuthor+` WHERE p.id = $1`, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *postRepo) ListAll(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, selectPostWithAuthor+newestFirst)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collectPosts(rows)
}

func (r *postRepo) ListByAuthor(ctx context.Context, authorID domain.ID) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, selectPostWithAuthor+` WHERE p.author_id = $1`+newestFirst, authorID.String())
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return collectPosts(rows)
}

func (r *postRepo) Update(ctx context.Context, post *domain.Post) error {
	ts := now()
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET title = $1, content = $2, image_url = $3, updated_at = $4
		 WHERE id = $5`,
		post.Title, post.Content, post.ImageURL, ts, post.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	post.UpdatedAt = ts
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id domain.ID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id.String())
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	p := &domain.Post{Author: &domain.Author{}}
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Name, &p.Author.Email); err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
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
