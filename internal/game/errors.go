package game

import "errors"

var (
	// ErrInvalidInput rejects award amounts that are negative or not numbers.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyFinal rejects an advance past the last stage of a clamping roster.
	ErrAlreadyFinal = errors.New("already final")
)
