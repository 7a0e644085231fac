package domain

import (
	"context"
	"time"
)

// User represents a registered author.
type User struct {
	ID    ID
	Email string
	Name  string
	// PasswordHash is only populated by UserRepository.GetCredentialsByEmail.
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts the user, assigning ID and timestamps.
	// Returns ErrAlreadyExists if the email is taken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id ID) (*User, error)
	// GetByEmail returns the user without its password hash.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetCredentialsByEmail returns the user including its password hash.
	GetCredentialsByEmail(ctx context.Context, email string) (*User, error)
}
