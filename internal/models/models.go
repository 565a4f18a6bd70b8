// Package models defines the core domain types for todo.
package models

import "time"

const (
	// MaxTitleLength is the maximum task title length in characters.
	MaxTitleLength = 100
	// MaxDescriptionLength is the maximum task description length in characters.
	MaxDescriptionLength = 500
	// VisibleLimit is the number of most recent active tasks the service returns.
	VisibleLimit = 5
)

// Task is a persisted work item. Completed tasks are never listed again.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask is the request body for creating a task.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AuditEntry records a state-mutating action for the audit trail.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ErrorResponse is the JSON body the service returns for every failure.
type ErrorResponse struct {
	Status    int               `json:"status"`
	Message   string            `json:"message,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Path      string            `json:"path"`
	Timestamp time.Time         `json:"timestamp"`
}
