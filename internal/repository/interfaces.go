// Package repository defines data access interfaces for Inkwell.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, fakes for testing) while keeping
// the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/inkwell/internal/domain"
)

// NewUser contains the data needed to persist a new user with its
// credential hash.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create persists a new user and returns the stored entity.
	// A uniqueness violation on username or email surfaces as a
	// domain.AlreadyExistsError naming the offending field.
	Create(ctx context.Context, input NewUser) (*domain.User, error)

	// GetByID retrieves a user by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetCredentialsByUsername retrieves a user together with its stored
	// password hash. Returns ErrNotFound if missing.
	GetCredentialsByUsername(ctx context.Context, username string) (*domain.Credentials, error)
}

// NewPost contains the data needed to persist a new post.
type NewPost struct {
	Title    string
	Content  string
	AuthorID int64
}

// PostPatch contains the mutable fields of a post.
type PostPatch struct {
	Title   string
	Content string
}

// Page is the store-facing pagination window. Transports speak
// limit/offset; the service layer translates before reaching here.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Size is the number of posts per page.
	Size int
}

// PostRepository defines the interface for post data access.
type PostRepository interface {
	// Create persists a new post owned by input.AuthorID.
	Create(ctx context.Context, input NewPost) (*domain.Post, error)

	// GetByID retrieves a post by ID. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// UpdateOwned applies patch to the post in a single conditional
	// statement (WHERE id = ? AND author_id = ?). Returns ErrNotFound when
	// no row matched, which the service disambiguates into not-found vs
	// forbidden.
	UpdateOwned(ctx context.Context, postID, ownerID int64, patch PostPatch) (*domain.Post, error)

	// Delete removes a post by ID. Returns false when no row matched.
	Delete(ctx context.Context, id int64) (bool, error)

	// List returns one page of posts ordered by created_at descending,
	// tie-broken by id descending.
	List(ctx context.Context, page Page) ([]*domain.Post, error)

	// Count returns the total number of posts. Taken separately from List,
	// so the two can be momentarily inconsistent under concurrent writes.
	Count(ctx context.Context) (int64, error)
}
