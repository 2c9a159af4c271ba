package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "trims surrounding whitespace", in: "  valid_user  ", want: "valid_user"},
		{name: "too short", in: "ab", wantErr: true},
		{name: "too long", in: strings.Repeat("a", 65), wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeUsername(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				assertValidationField(t, err, "username")
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeLoginUsername(t *testing.T) {
	// Login bounds are looser than registration: one character is fine.
	got, err := NormalizeLoginUsername(" x ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "x" {
		t.Errorf("expected x, got %q", got)
	}

	if _, err := NormalizeLoginUsername("  "); err == nil {
		t.Error("expected error for empty username")
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  TeSt@Example.COM ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "test@example.com" {
		t.Errorf("expected test@example.com, got %q", got)
	}

	for _, bad := range []string{"not-an-email", "a@", "", "Name <a@b.com>"} {
		if _, err := NormalizeEmail(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword(strings.Repeat("a", 129)); err == nil {
		t.Error("expected error for long password")
	}
	// Length is counted in runes, not bytes.
	if err := ValidatePassword(strings.Repeat("я", 8)); err != nil {
		t.Errorf("unexpected error for 8-rune password: %v", err)
	}
}

func TestNewUser(t *testing.T) {
	if _, err := NewUser(0, "valid_user", "test@example.com", time.Now()); err == nil {
		t.Error("expected error for non-positive id")
	}

	u, err := NewUser(1, "  valid_user ", " TEST@example.com ", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "valid_user" || u.Email != "test@example.com" {
		t.Errorf("fields not normalized: %+v", u)
	}
}

func TestNewPost(t *testing.T) {
	now := time.Now()

	post, err := NewPost(1, "  Title  ", "  Content  ", 10, now, now.Add(time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Title != "Title" || post.Content != "Content" {
		t.Errorf("fields not normalized: %+v", post)
	}

	if _, err := NewPost(1, "Title", "Content", 0, now, now); err == nil {
		t.Error("expected error for non-positive author_id")
	}

	if _, err := NewPost(1, "Title", "Content", 10, now.Add(time.Second), now); err == nil {
		t.Error("expected error for updated_at before created_at")
	}
	if _, err := NewPost(1, "   ", "Content", 10, now, now); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := NewPost(1, "Title", "   ", 10, now, now); err == nil {
		t.Error("expected error for blank content")
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsValidation(NewValidationError("title", "bad")) {
		t.Error("validation error not classified")
	}
	if !IsNotFound(NewNotFoundError("post id: 1")) {
		t.Error("not-found error not classified")
	}
	if !IsAlreadyExists(NewAlreadyExistsError("email")) {
		t.Error("already-exists error not classified")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("plain error misclassified as validation")
	}
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if ve.Field != field {
		t.Errorf("expected field %q, got %q", field, ve.Field)
	}
}
