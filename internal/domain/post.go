package domain

import (
	"context"
	"time"
)

// Author is the denormalized view of a post's author.
type Author struct {
	ID    ID
	Name  string
	Email string
}

// Post is a blog post owned by a single author.
type Post struct {
	ID       ID
	AuthorID ID
	// Author is resolved on reads; it is nil on freshly created posts.
	Author    *Author
	Title     string
	Content   string
	ImageURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostRepository handles post persistence. List methods return posts
// newest-first with Author resolved.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id ID) (*Post, error)
	ListAll(ctx context.Context) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID ID) ([]Post, error)
	// Update writes title, content and image reference and bumps UpdatedAt.
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id ID) error
}
