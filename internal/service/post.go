package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/msomdec/blog-api/internal/domain"
)

// postImageFolder is the asset folder for post images.
const postImageFolder = "posts"

// NewPost holds the fields of a post to be created. Title and Content are
// validated by the caller.
type NewPost struct {
	Title   string
	Content string
	Image   *domain.Upload
}

// PostUpdate is a partial update. Nil fields are left untouched.
type PostUpdate struct {
	Title   *string
	Content *string
	Image   *domain.Upload
	// RemoveImage clears the image reference. Ignored when Image is set.
	RemoveImage bool
}

// PostService handles post CRUD and enforces single-author ownership on
// every mutation.
type PostService struct {
	posts  domain.PostRepository
	assets domain.AssetStore
}

// NewPostService creates a new PostService. assets may be nil when image
// uploads are not supported.
func NewPostService(posts domain.PostRepository, assets domain.AssetStore) *PostService {
	return &PostService{posts: posts, assets: assets}
}

// Create stores a new post authored by authorID. If an image is supplied it
// is uploaded first. The temporary upload file is removed on every path.
func (s *PostService) Create(ctx context.Context, authorID domain.ID, in NewPost) (*domain.Post, error) {
	if in.Image != nil {
		defer releaseUpload(in.Image)
	}

	post := &domain.Post{
		AuthorID: authorID,
		Title:    in.Title,
		Content:  in.Content,
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = &url
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.ImageURL != nil {
			s.discardAsset(ctx, *post.ImageURL)
		}
		return nil, fmt.Errorf("create post: %w", err)
	}

	return post, nil
}

// List returns every post, newest first, with authors resolved.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	return s.posts.ListAll(ctx)
}

// ListByAuthor returns the posts written by authorID, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID domain.ID) ([]domain.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

// Get returns a single post with its author resolved.
func (s *PostService) Get(ctx context.Context, id domain.ID) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Update applies a partial update after verifying that callerID authored
// the post. A replaced image is deleted from the asset store once the new
// reference has been persisted.
func (s *PostService) Update(ctx context.Context, id, callerID domain.ID, upd PostUpdate) (*domain.Post, error) {
	if upd.Image != nil {
		defer releaseUpload(upd.Image)
	}

	post, err := s.loadOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	previousImage := post.ImageURL

	if upd.Title != nil {
		post.Title = *upd.Title
	}
	if upd.Content != nil {
		post.Content = *upd.Content
	}

	var uploaded *string
	switch {
	case upd.Image != nil:
		url, err := s.uploadImage(ctx, upd.Image)
		if err != nil {
			return nil, err
		}
		uploaded = &url
		post.ImageURL = uploaded
	case upd.RemoveImage:
		post.ImageURL = nil
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if uploaded != nil {
			s.discardAsset(ctx, *uploaded)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	if previousImage != nil && (post.ImageURL == nil || *post.ImageURL != *previousImage) {
		s.discardAsset(ctx, *previousImage)
	}

	return post, nil
}

// Delete permanently removes a post after verifying that callerID authored
// it. The post's image, if any, is left in the asset store.
func (s *PostService) Delete(ctx context.Context, id, callerID domain.ID) error {
	if _, err := s.loadOwned(ctx, id, callerID); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *PostService) loadOwned(ctx context.Context, id, callerID domain.ID) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != callerID {
		return nil, domain.ErrUnauthorized
	}
	return post, nil
}

func (s *PostService) uploadImage(ctx context.Context, upload *domain.Upload) (string, error) {
	if s.assets == nil {
		return "", fmt.Errorf("%w: image uploads are not enabled", domain.ErrInvalidInput)
	}
	url, err := s.assets.Upload(ctx, upload, postImageFolder)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

// discardAsset is a best-effort compensating delete.
func (s *PostService) discardAsset(ctx context.Context, url string) {
	if s.assets == nil {
		return
	}
	if err := s.assets.Delete(ctx, url); err != nil {
		slog.Warn("discard orphaned asset", "url", url, "error", err)
	}
}

func releaseUpload(upload *domain.Upload) {
	if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("remove temporary upload", "path", upload.Path, "error", err)
	}
}
