// Package token issues and verifies the signed, time-limited identity
// tokens used by both transports. Tokens are stateless JWTs: there is no
// server-side session store and no revocation list.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is used when the configured TTL is missing or non-positive.
	DefaultTTL = time.Hour

	// Leeway absorbs clock skew between issuer and verifier when checking
	// expiry.
	Leeway = 10 * time.Second

	// MinSecretLength is the minimum acceptable HMAC secret length in bytes.
	MinSecretLength = 32
)

// ErrInvalidToken is the single failure outcome of Verify. Signature,
// format and expiry failures all collapse into it so no partial
// information leaks to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the authenticated identity embedded in a token.
type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256-signed tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service. A non-positive ttl falls back to
// DefaultTTL. Secret length is enforced at config validation; this
// constructor trusts its input.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured validity window.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed token for the given identity, valid for the
// configured TTL.
func (s *Service) Issue(userID int64, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of a token string and returns its
// claims. Any failure returns ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
