package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrIncomplete   = errors.New("incomplete expression at end of input")

	// ErrInterrupted is the cancellation cause of an evaluation stopped
	// with Ctrl+C.
	ErrInterrupted = errors.New("interrupted")
)
