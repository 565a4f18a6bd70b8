// Package store provides persistence for todo tasks.
//
// Two backends implement Store: SQLiteStore (the default, a single local
// file) and PostgresStore. Open picks one from the DSN.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fentz26/todo/internal/models"
	"github.com/google/uuid"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound         = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrDuplicateID      = errors.New("duplicate id")
)

// Store is the persistence contract used by the task service.
type Store interface {
	// CreateTask inserts a new active task. An id collision yields
	// ErrDuplicateID.
	CreateTask(ctx context.Context, title, description string) (*models.Task, error)

	// GetTask returns the task with id, or ErrNotFound.
	GetTask(ctx context.Context, id string) (*models.Task, error)

	// ListRecentActive returns up to limit active tasks, newest first.
	ListRecentActive(ctx context.Context, limit int) ([]models.Task, error)

	// CompleteTask marks an active task completed and returns it.
	// It returns ErrNotFound or ErrAlreadyCompleted.
	CompleteTask(ctx context.Context, id string) (*models.Task, error)

	// DeleteAllTasks removes every task and returns how many were deleted.
	DeleteAllTasks(ctx context.Context) (int64, error)

	// WriteAudit appends an entry to the audit trail.
	WriteAudit(ctx context.Context, action, inputsHash, outcome, taskID string) (*models.AuditEntry, error)

	// ListAudit returns the newest audit entries first.
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)

	// Ping checks the database connection is alive.
	Ping(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}

// Open returns a PostgresStore for postgres:// DSNs and a SQLiteStore for
// anything else, treating the DSN as a file path. opts only apply to
// PostgreSQL.
func Open(ctx context.Context, dsn string, opts ...PostgresOption) (Store, error) {
	if IsPostgresDSN(dsn) {
		return NewPostgres(ctx, dsn, opts...)
	}
	return NewSQLite(dsn)
}

// IsPostgresDSN reports whether dsn names a PostgreSQL database.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// newTask builds an active task with a time-ordered id.
func newTask(title, description string) *models.Task {
	now := time.Now().UTC()
	return &models.Task{
		ID:          newID(),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// newID returns a UUIDv7 so ids sort in creation order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
