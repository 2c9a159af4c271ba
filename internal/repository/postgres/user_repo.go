package postgres

import (
	"context"
	"fmt"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, input repository.NewUser) (*domain.User, error) {
	var user domain.User

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, created_at
	`, input.Username, input.Email, input.PasswordHash).Scan(
		&user.ID, &user.Username, &user.Email, &user.CreatedAt,
	)
	if err != nil {
		if constraint := uniqueViolationConstraint(err); constraint != "" {
			return nil, domain.NewAlreadyExistsError(uniqueField(constraint))
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User

	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, username, email, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetCredentialsByUsername retrieves a user with its password hash.
func (r *UserRepository) GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	var creds domain.Credentials

	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&creds.User.ID, &creds.User.Username, &creds.User.Email,
		&creds.PasswordHash, &creds.User.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	return &creds, nil
}
