package repository

import "context"

// Repositories holds all repository instances wired for one backend.
type Repositories struct {
	User UserRepository
	Post PostRepository
}

// DatabaseHealth is the slice of a database connection the health endpoint
// needs. Both the PostgreSQL and SQLite wrappers satisfy it.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
