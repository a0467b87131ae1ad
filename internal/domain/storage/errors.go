package storage

import "errors"

var (
	ErrNotFound           = errors.New("blob not found")
	ErrInvalidLocator     = errors.New("invalid locator")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrEmptyPayload       = errors.New("payload is empty")
)
