// Package rediscache caches post reads in Redis in front of a
// domain.PostRepository.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/msomdec/blog-api/internal/domain"
)

const defaultKeyPrefix = "blog:"

// PostRepository wraps another PostRepository and caches GetByID and the
// list queries. Writes go to the wrapped store first and then invalidate the
// affected keys. Redis failures are logged and reads fall back to the store.
type PostRepository struct {
	next      domain.PostRepository
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

var _ domain.PostRepository = (*PostRepository)(nil)

// NewPostRepository wraps next. keyPrefix defaults to "blog:".
func NewPostRepository(next domain.PostRepository, client *redis.Client, ttl time.Duration, keyPrefix string) *PostRepository {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &PostRepository{next: next, client: client, ttl: ttl, keyPrefix: keyPrefix}
}

func (r *PostRepository) postKey(id domain.ID) string {
	return fmt.Sprintf("%spost:%s", r.keyPrefix, id)
}

func (r *PostRepository) allPostsKey() string {
	return r.keyPrefix + "posts:all"
}

func (r *PostRepository) authorPostsKey(authorID domain.ID) string {
	return fmt.Sprintf("%sposts:author:%s", r.keyPrefix, authorID)
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	if err := r.next.Create(ctx, post); err != nil {
		return err
	}
	r.invalidate(ctx, r.allPostsKey(), r.authorPostsKey(post.AuthorID))
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Post, error) {
	var post domain.Post
	if r.load(ctx, r.postKey(id), &post) {
		return &post, nil
	}

	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, r.postKey(id), p)
	return p, nil
}

func (r *PostRepository) ListAll(ctx context.Context) ([]domain.Post, error) {
	return r.list(ctx, r.allPostsKey(), r.next.ListAll)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID domain.ID) ([]domain.Post, error) {
	return r.list(ctx, r.authorPostsKey(authorID), func(ctx context.Context) ([]domain.Post, error) {
		return r.next.ListByAuthor(ctx, authorID)
	})
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	if err := r.next.Update(ctx, post); err != nil {
		return err
	}
	r.invalidate(ctx, r.postKey(post.ID), r.allPostsKey(), r.authorPostsKey(post.AuthorID))
	return nil
}

// Delete looks the post up first so its author's list can be invalidated.
func (r *PostRepository) Delete(ctx context.Context, id domain.ID) error {
	post, err := r.next.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, r.postKey(id), r.allPostsKey(), r.authorPostsKey(post.AuthorID))
	return nil
}

func (r *PostRepository) list(ctx context.Context, key string, fetch func(context.Context) ([]domain.Post, error)) ([]domain.Post, error) {
	var posts []domain.Post
	if r.load(ctx, key, &posts) {
		if posts == nil {
			posts = []domain.Post{}
		}
		return posts, nil
	}

	posts, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, posts)
	return posts, nil
}

// load reports whether key was present and decoded into dst.
func (r *PostRepository) load(ctx context.Context, key string, dst any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.Warn("redis cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (r *PostRepository) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("redis cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		slog.Warn("redis cache write failed", "key", key, "error", err)
	}
}

func (r *PostRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("redis cache invalidation failed", "keys", keys, "error", err)
	}
}
