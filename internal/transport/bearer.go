package transport

import (
	"errors"
	"strings"
)

// ErrNoBearer indicates the credential is absent or not a bearer token.
var ErrNoBearer = errors.New("missing or malformed bearer token")

// ParseBearer extracts the token from an Authorization value of the form
// "Bearer <token>". The scheme is case-insensitive and the value must
// split into exactly two fields.
func ParseBearer(authorization string) (string, error) {
	fields := strings.Fields(authorization)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", ErrNoBearer
	}
	return fields[1], nil
}
