package domain

import (
	"strings"
	"time"
)

// Post represents a blog post. AuthorID is set at creation and never
// changes; only the author may update or delete the post.
type Post struct {
	// ID is the unique identifier for the post (assigned by the store).
	ID int64 `json:"id"`

	// Title is the post title. Constraints: 1-255 characters after trimming.
	Title string `json:"title"`

	// Content is the post body. Must be non-empty after trimming.
	Content string `json:"content"`

	// AuthorID references the owning user. Immutable after creation.
	AuthorID int64 `json:"author_id"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last mutation. Never before CreatedAt.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPost validates and builds a Post from raw parts.
func NewPost(id int64, title, content string, authorID int64, createdAt, updatedAt time.Time) (*Post, error) {
	if id <= 0 {
		return nil, NewValidationError("id", "must be > 0")
	}
	if authorID <= 0 {
		return nil, NewValidationError("author_id", "must be > 0")
	}
	title, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}
	content, err = NormalizeContent(content)
	if err != nil {
		return nil, err
	}
	if updatedAt.Before(createdAt) {
		return nil, NewValidationError("updated_at", "must be >= created_at")
	}
	return &Post{
		ID:        id,
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// NormalizeTitle trims the title and enforces the 1-255 character bound.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 255 {
		return "", NewValidationError("title", "must be 1-255 characters")
	}
	return title, nil
}

// NormalizeContent trims the content and rejects empty bodies.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", NewValidationError("content", "must not be empty")
	}
	return content, nil
}
