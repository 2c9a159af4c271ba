package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/repository"
)

// UserRepository implements repository.UserRepository using SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, input repository.NewUser) (*domain.User, error) {
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, input.Username, input.Email, input.PasswordHash, now.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			switch uniqueViolationColumn(err) {
			case "email":
				return nil, domain.NewAlreadyExistsError("email")
			default:
				return nil, domain.NewAlreadyExistsError("username")
			}
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted user id: %w", err)
	}

	return &domain.User{
		ID:        id,
		Username:  input.Username,
		Email:     input.Email,
		CreatedAt: now,
	}, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	var createdAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, created_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Username, &user.Email, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCredentialsByUsername retrieves a user with its password hash.
func (r *UserRepository) GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error) {
	var creds domain.Credentials
	var createdAt string

	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = ?
	`, username).Scan(&creds.User.ID, &creds.User.Username, &creds.User.Email, &creds.PasswordHash, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}

	creds.User.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &creds, nil
}

// parseTime parses a stored RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}
