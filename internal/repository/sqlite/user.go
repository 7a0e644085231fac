package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/blog-api/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	id := domain.NewID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, user.Email, user.Name, user.PasswordHash, toUnix(now), toUnix(now),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = fromUnix(toUnix(now))
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, '', created_at, updated_at
		 FROM users WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, '', created_at, updated_at
		 FROM users WHERE email = ?`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetCredentialsByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at
		 FROM users WHERE email = ?`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("query credentials by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var created, updated int64
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = fromUnix(created)
	user.UpdatedAt = fromUnix(updated)
	return user, nil
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
