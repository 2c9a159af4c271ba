package service

import "errors"

// ErrInternal wraps unexpected infrastructure failures. Transports map it
// (and any unclassified error) to a generic internal error response
// without leaking detail.
var ErrInternal = errors.New("internal error")
