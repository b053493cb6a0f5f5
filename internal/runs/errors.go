package runs

import (
	"errors"

	"resume-screener/internal/screening"
)

var (
	ErrNotFound = errors.New("run not found")
	// ErrInvalidInput is the engine's sentinel so its validation errors pass through unwrapped.
	ErrInvalidInput   = screening.ErrInvalidInput
	ErrNoValidResumes = errors.New("no valid resumes could be processed")
)
