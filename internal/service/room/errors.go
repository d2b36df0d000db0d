package room

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("sender is not the room leader")
	ErrMalformed    = errors.New("malformed payload")
	ErrStopped      = errors.New("dispatcher stopped")
)
