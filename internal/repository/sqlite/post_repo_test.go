package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	ctx := context.Background()
	db, err := NewDB(ctx, DefaultConfig(":memory:"), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *DB) *domain.User {
	t.Helper()

	user, err := NewUserRepository(db).Create(context.Background(), repository.NewUser{
		Username:     "author",
		Email:        "author@example.com",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestPostCreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := NewPostRepository(db)

	created, err := repo.Create(ctx, repository.NewPost{
		Title:    "Hello",
		Content:  "World",
		AuthorID: user.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID < 1 {
		t.Errorf("expected assigned id, got %d", created.ID)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "Hello" || got.AuthorID != user.ID {
		t.Errorf("unexpected post: %+v", got)
	}
}

func TestPostCreateDanglingAuthor(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewPostRepository(db)

	// No user with this id exists: the foreign key must reject the insert
	// and surface as a not-found on the author.
	_, err := repo.Create(ctx, repository.NewPost{
		Title:    "Orphan",
		Content:  "body",
		AuthorID: 999,
	})
	if err == nil {
		t.Fatal("expected error for dangling author_id, got none")
	}
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.Create(ctx, repository.NewUser{
		Username: "alice", Email: "alice@example.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = repo.Create(ctx, repository.NewUser{
		Username: "alice", Email: "other@example.com", PasswordHash: "x",
	})
	var exists *domain.AlreadyExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
	if exists.Field != "username" {
		t.Errorf("expected field username, got %q", exists.Field)
	}

	_, err = repo.Create(ctx, repository.NewUser{
		Username: "bob", Email: "alice@example.com", PasswordHash: "x",
	})
	if !errors.As(err, &exists) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
	if exists.Field != "email" {
		t.Errorf("expected field email, got %q", exists.Field)
	}
}
