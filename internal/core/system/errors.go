package system

import "errors"

var (
	ErrStop        = errors.New("loop: stop requested")
	ErrLoopRunning = errors.New("loop: already running")
	ErrNilStepper  = errors.New("loop: nil stepper")
	ErrInvalidRate = errors.New("loop: rates must be positive")
)
