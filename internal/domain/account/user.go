// Package account defines the registered-user entity and its repository
// contract.
package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.  PasswordHash is a bcrypt digest and never
// leaves the persistence and authentication layers.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository is the persistence contract for users.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
