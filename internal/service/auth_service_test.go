package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/pkg/crypto"
	"github.com/prn-tf/inkwell/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthService(users *MockUserRepository, hasher *fakeHasher) *AuthService {
	tokens := token.NewService(testSecret, time.Hour)
	return NewAuthService(users, hasher, tokens, zerolog.Nop())
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(NewMockUserRepository(), &fakeHasher{})

	out, err := svc.Register(ctx, RegisterInput{
		Username: "  alice  ",
		Email:    " Alice@Example.COM ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if out.User.Username != "alice" {
		t.Errorf("username not normalized: %q", out.User.Username)
	}
	if out.User.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", out.User.Email)
	}
	if out.AccessToken == "" {
		t.Error("expected access token on register")
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{name: "short username", input: RegisterInput{Username: "ab", Email: "a@b.com", Password: "longenough"}, field: "username"},
		{name: "bad email", input: RegisterInput{Username: "alice", Email: "nope", Password: "longenough"}, field: "email"},
		{name: "short password", input: RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"}, field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := NewMockUserRepository()
			hasher := &fakeHasher{}
			svc := newAuthService(users, hasher)

			_, err := svc.Register(ctx, tt.input)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
			if hasher.hashCalls != 0 {
				t.Error("password must not be hashed when validation fails")
			}
			if len(users.users) != 0 {
				t.Error("no user should be stored when validation fails")
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(NewMockUserRepository(), &fakeHasher{})

	input := RegisterInput{Username: "alice", Email: "a@b.com", Password: "longenough"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(ctx, input)
	if !domain.IsAlreadyExists(err) {
		t.Fatalf("expected already-exists error, got %v", err)
	}

	// Same email under a different username is also a conflict.
	_, err = svc.Register(ctx, RegisterInput{Username: "alice2", Email: "a@b.com", Password: "longenough"})
	var ae *domain.AlreadyExistsError
	if !errors.As(err, &ae) || ae.Field != "email" {
		t.Fatalf("expected already-exists on email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepository()
	hasher := &fakeHasher{}
	svc := newAuthService(users, hasher)

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.com", Password: "longenough"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	out, err := svc.Login(ctx, LoginInput{Username: " alice ", Password: "longenough"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if out.User.Username != "alice" || out.AccessToken == "" {
		t.Errorf("unexpected login output: %+v", out)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepository()
	svc := newAuthService(users, &fakeHasher{})

	if _, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.com", Password: "longenough"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "not it"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserBurnsVerification(t *testing.T) {
	// The unknown-user path must cost one verification against the fixed
	// hash so it is indistinguishable in timing from a wrong password.
	ctx := context.Background()
	hasher := &fakeHasher{}
	svc := newAuthService(NewMockUserRepository(), hasher)

	_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "whatever"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(hasher.verifyCalls) != 1 {
		t.Fatalf("expected exactly one verification, got %d", len(hasher.verifyCalls))
	}
	if hasher.verifyCalls[0] != crypto.DummyHash {
		t.Errorf("expected verification against the fixed dummy hash, got %q", hasher.verifyCalls[0])
	}
}

func TestLoginValidation(t *testing.T) {
	ctx := context.Background()
	hasher := &fakeHasher{}
	svc := newAuthService(NewMockUserRepository(), hasher)

	// Login accepts single-character usernames that register would reject.
	if _, err := svc.Login(ctx, LoginInput{Username: "x", Password: "whatever"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown short username, got %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Username: "", Password: "whatever"}); !domain.IsValidation(err) {
		t.Error("expected validation error for empty username")
	}
	if _, err := svc.Login(ctx, LoginInput{Username: "alice", Password: ""}); !domain.IsValidation(err) {
		t.Error("expected validation error for empty password")
	}
}

func TestLoginRepositoryFailure(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepository()
	users.getErr = errors.New("connection refused")
	svc := newAuthService(users, &fakeHasher{})

	_, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "whatever"})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Error("infrastructure failures must not masquerade as credential failures")
	}
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepository()
	svc := newAuthService(users, &fakeHasher{})

	out, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := svc.GetUser(ctx, out.User.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := svc.GetUser(ctx, 9999); !domain.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}
