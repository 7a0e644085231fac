package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/blog-api/internal/domain"
	"github.com/msomdec/blog-api/internal/repository/sqlite"
)

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Email:        "test@example.com",
		Name:         "Test User",
		PasswordHash: "hashedpw",
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID.IsZero() {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	first := &domain.User{Email: "dup@example.com", Name: "User 1", PasswordHash: "hash1"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}

	second := &domain.User{Email: "dup@example.com", Name: "User 2", PasswordHash: "hash2"}
	err := repo.Create(ctx, second)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	found, err := repo.GetByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != first.ID || found.Name != "User 1" {
		t.Fatalf("first user was modified: %+v", found)
	}
}

func TestUserRepository_EmailIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.User{Email: "case@example.com", Name: "a", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create lower: %v", err)
	}
	if err := repo.Create(ctx, &domain.User{Email: "Case@example.com", Name: "b", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create mixed case: %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Email: "byid@example.com", Name: "By ID", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Email != user.Email || found.Name != user.Name {
		t.Fatalf("unexpected user: %+v", found)
	}
	if found.PasswordHash != "" {
		t.Fatal("expected password hash to be excluded from GetByID")
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), domain.NewID())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail_ExcludesHash(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Email: "byemail@example.com", Name: "By Email", PasswordHash: "secret-hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByEmail(ctx, "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, found.ID)
	}
	if found.PasswordHash != "" {
		t.Fatal("expected password hash to be excluded from GetByEmail")
	}

	creds, err := repo.GetCredentialsByEmail(ctx, "byemail@example.com")
	if err != nil {
		t.Fatalf("GetCredentialsByEmail: %v", err)
	}
	if creds.PasswordHash != "secret-hash" {
		t.Fatalf("expected stored hash, got %q", creds.PasswordHash)
	}
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByEmail(ctx, "nonexistent@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetCredentialsByEmail(ctx, "nonexistent@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
