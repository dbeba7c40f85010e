package sim

import "errors"

var (
	ErrUnknownRole   = errors.New("unknown role")
	ErrInvalidConfig = errors.New("invalid simulation config")
)
