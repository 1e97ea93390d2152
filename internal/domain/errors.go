package domain

import "errors"

var (
	// ErrNotFound is wrapped by every lookup that misses a conference,
	// participant or endpoint.
	ErrNotFound = errors.New("not found")

	ErrJudgeNotFound  = errors.New("judge not found")
	ErrMultipleJudges = errors.New("more than one judge in conference")
)
