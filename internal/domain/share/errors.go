package share

import "errors"

var (
	// ErrNotFound covers absent, expired and revoked links alike: the public
	// endpoints must not let callers tell those apart.
	ErrNotFound        = errors.New("link not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
)
