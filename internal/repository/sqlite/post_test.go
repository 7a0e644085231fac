package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/blog-api/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com")
	repo := db.Posts()
	ctx := context.Background()

	post := &domain.Post{
		AuthorID: author.ID,
		Title:    "Hello",
		Content:  "<p>World</p>",
		ImageURL: strPtr("/assets/posts/abc"),
	}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.ID.IsZero() {
		t.Fatal("expected post ID to be set")
	}
	if post.CreatedAt.IsZero() || !post.CreatedAt.Equal(post.UpdatedAt) {
		t.Fatalf("expected equal non-zero timestamps, got %v / %v", post.CreatedAt, post.UpdatedAt)
	}

	found, err := repo.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != "Hello" || found.Content != "<p>World</p>" {
		t.Fatalf("unexpected post: %+v", found)
	}
	if found.ImageURL == nil || *found.ImageURL != "/assets/posts/abc" {
		t.Fatalf("unexpected image url: %v", found.ImageURL)
	}
	if found.Author == nil || found.Author.Email != "author@example.com" || found.Author.Name != author.Name {
		t.Fatalf("expected resolved author, got %+v", found.Author)
	}
	if found.AuthorID != author.ID {
		t.Fatalf("expected author %s, got %s", author.ID, found.AuthorID)
	}
}

func TestPostRepository_Create_UnknownAuthor(t *testing.T) {
	db := newTestDB(t)

	err := db.Posts().Create(context.Background(), &domain.Post{AuthorID: domain.NewID(), Title: "t", Content: "c"})
	if err == nil {
		t.Fatal("expected foreign key error for unknown author")
	}
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Posts().GetByID(context.Background(), domain.NewID())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ana := createTestUser(t, db, "ana@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	repo := db.Posts()
	ctx := context.Background()

	var ids []domain.ID
	for i, author := range []*domain.User{ana, bob, ana} {
		p := &domain.Post{AuthorID: author.ID, Title: "post", Content: string(rune('a' + i))}
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		ids = append(ids, p.ID)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(all))
	}
	for i, want := range []domain.ID{ids[2], ids[1], ids[0]} {
		if all[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, all[i].ID)
		}
		if all[i].Author == nil || all[i].Author.Email == "" {
			t.Fatalf("position %d: author not resolved", i)
		}
	}

	mine, err := repo.ListByAuthor(ctx, ana.ID)
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != ids[2] || mine[1].ID != ids[0] {
		t.Fatalf("unexpected author listing: %+v", mine)
	}
}

func TestPostRepository_ListAll_Empty(t *testing.T) {
	db := newTestDB(t)

	posts, err := db.Posts().ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", posts)
	}
}

func TestPostRepository_Update(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "upd@example.com")
	repo := db.Posts()
	ctx := context.Background()

	post := &domain.Post{AuthorID: author.ID, Title: "Old", Content: "old", ImageURL: strPtr("/assets/x")}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("Create: %v", err)
	}

	post.Title = "New"
	post.ImageURL = nil
	if err := repo.Update(ctx, post); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := repo.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Title != "New" || found.Content != "old" {
		t.Fatalf("unexpected post after update: %+v", found)
	}
	if found.ImageURL != nil {
		t.Fatalf("expected image cleared, got %q", *found.ImageURL)
	}
	if found.UpdatedAt.Before(found.CreatedAt) {
		t.Fatal("expected UpdatedAt >= CreatedAt")
	}
	if found.AuthorID != author.ID {
		t.Fatal("author must not change on update")
	}
}

func TestPostRepository_UpdateAndDelete_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := db.Posts()
	ctx := context.Background()

	err := repo.Update(ctx, &domain.Post{ID: domain.NewID(), Title: "t", Content: "c"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, domain.NewID()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestPostRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "del@example.com")
	repo := db.Posts()
	ctx := context.Background()

	post := &domain.Post{AuthorID: author.ID, Title: "Bye", Content: "bye"}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
