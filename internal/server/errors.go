package server

import "errors"

// Sentinel errors for task service operations.
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
)
