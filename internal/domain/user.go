// Package domain contains the core business entities for Inkwell.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the blogging platform.
package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// User represents a registered user in the system.
// The credential hash is never part of this entity; see Credentials.
type User struct {
	// ID is the unique identifier for the user (assigned by the store).
	ID int64 `json:"id"`

	// Username is the unique username for login and display.
	// Constraints: 3-64 characters after trimming.
	Username string `json:"username"`

	// Email is the unique email address, stored trimmed and lower-cased.
	Email string `json:"email"`

	// CreatedAt is the timestamp when the user was created. Immutable.
	CreatedAt time.Time `json:"created_at"`
}

// Credentials pairs a user with its stored password hash.
// Only the auth flow ever sees this; API responses carry User alone.
type Credentials struct {
	User         User
	PasswordHash string
}

// NewUser validates and builds a User from raw parts.
func NewUser(id int64, username, email string, createdAt time.Time) (*User, error) {
	if id <= 0 {
		return nil, NewValidationError("id", "must be > 0")
	}
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	email, err = NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:        id,
		Username:  username,
		Email:     email,
		CreatedAt: createdAt,
	}, nil
}

// NormalizeUsername trims the username and enforces the registration
// length bounds (3-64 characters).
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 64 {
		return "", NewValidationError("username", "must be 3-64 characters")
	}
	return username, nil
}

// NormalizeLoginUsername trims the username with the looser login bounds
// (1-64 characters). Login must accept any name register could never have
// produced without revealing that it cannot exist.
func NormalizeLoginUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 64 {
		return "", NewValidationError("username", "must be 1-64 characters")
	}
	return username, nil
}

// NormalizeEmail trims, lower-cases and syntactically validates an email
// address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", NewValidationError("email", "must be a valid email address")
	}
	return email, nil
}

// ValidatePassword enforces the registration password policy. Length is
// counted in characters, not bytes.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 8 || n > 128 {
		return NewValidationError("password", "must be 8-128 characters")
	}
	return nil
}
