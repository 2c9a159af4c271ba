// Package client provides Go clients for the Inkwell API, speaking either
// the REST or the gRPC surface behind one interface.
package client

import (
	"context"
	"fmt"
	"time"
)

// User is a registered account as returned by the API.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a blog post as returned by the API.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResult is the outcome of Register or Login.
type AuthResult struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// PostList is one page of posts plus the total count.
type PostList struct {
	Posts  []Post `json:"posts"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// Client is the transport-independent Inkwell API client.
type Client interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)

	CreatePost(ctx context.Context, title, content string) (*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListPosts(ctx context.Context, limit, offset int) (*PostList, error)

	// SetToken installs the bearer token sent with mutating requests.
	SetToken(token string)

	Close() error
}

// APIError is a failure reported by the server, as opposed to a transport
// failure.
type APIError struct {
	// StatusCode is the HTTP status, or the gRPC code mapped onto its
	// closest HTTP equivalent.
	StatusCode int

	// Message is the server-provided error message.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}
