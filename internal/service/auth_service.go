// Package service provides the business logic for Inkwell.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/inkwell/internal/domain"
	"github.com/prn-tf/inkwell/internal/pkg/crypto"
	"github.com/prn-tf/inkwell/internal/repository"
	"github.com/prn-tf/inkwell/internal/token"
)

// PasswordHasher hashes and verifies passwords. Implemented by
// crypto.Argon2Hasher; tests substitute cheaper fakes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) error
}

// AuthService handles user registration and login.
type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens *token.Service
	logger zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens *token.Service, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With().Str("service", "auth").Logger(),
	}
}

// RegisterInput contains the data needed to register a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthOutput is the result of a successful register or login: the user
// plus a fresh access token.
type AuthOutput struct {
	User        *domain.User
	AccessToken string
}

// Register creates a new user account and logs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthOutput, error) {
	username, err := domain.NormalizeUsername(input.Username)
	if err != nil {
		return nil, err
	}
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	user, err := s.users.Create(ctx, repository.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return &AuthOutput{User: user, AccessToken: accessToken}, nil
}

// LoginInput contains login credentials.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the user with a fresh token.
// Whether the username exists or the password is wrong, the caller sees
// the same domain.ErrInvalidCredentials, and both paths cost one password
// verification so response timing does not reveal which it was.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthOutput, error) {
	username, err := domain.NormalizeLoginUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, domain.NewValidationError("password", "must not be empty")
	}

	creds, err := s.users.GetCredentialsByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a verification against a fixed hash to equalize timing.
			_ = s.hasher.Verify(input.Password, crypto.DummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("failed to load credentials")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if err := s.hasher.Verify(input.Password, creds.PasswordHash); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		// Stored hashes are produced by us; a parse failure is a fault.
		s.logger.Error().Err(err).Int64("user_id", creds.User.ID).Msg("failed to verify password hash")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	accessToken, err := s.tokens.Issue(creds.User.ID, creds.User.Username)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", creds.User.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.logger.Info().
		Int64("user_id", creds.User.ID).
		Str("username", creds.User.Username).
		Msg("user logged in")

	user := creds.User
	return &AuthOutput{User: &user, AccessToken: accessToken}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("user id: %d", id))
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return user, nil
}
