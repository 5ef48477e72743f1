package mines

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid game configuration")
	ErrIndexOutOfRange      = errors.New("cell index out of range")
)
