package task

import "errors"

var (
	ErrNotFound          = errors.New("task not found")
	ErrStatusConflict    = errors.New("task status changed concurrently")
	ErrInvalidTransition = errors.New("invalid status transition")
)
