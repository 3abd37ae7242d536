package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patlytics/internal/domain/account"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// UserRepository persists user accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository backed by the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ account.Repository = (*UserRepository)(nil)

// Create inserts a new user.  A duplicate email is reported as a conflict.
func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	const q = `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, user.ID, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Newf(apperrors.ErrCodeEmailAlreadyExists, "email %s is already registered", user.Email)
		}
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "inserting user")
	}
	return nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1`
	var u account.User
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.Newf(apperrors.ErrCodeNotFound, "user %s not found", id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "querying user by id")
	}
	return &u, nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1`
	var u account.User
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.Newf(apperrors.ErrCodeNotFound, "user %s not found", email)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "querying user by email")
	}
	return &u, nil
}
