package conversion

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("record is already in a terminal state")
	ErrInvalidArgument   = errors.New("invalid argument")
)
