// Package server provides the task HTTP API and its service layer.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fentz26/todo/internal/audit"
	"github.com/fentz26/todo/internal/models"
	"github.com/fentz26/todo/internal/store"
)

// Audit log page sizes.
const (
	DefaultAuditLimit = 20
	MaxAuditLimit     = 100
)

// Service provides the task business logic.
type Service struct {
	store store.Store
	audit *audit.Recorder
	log   *slog.Logger
}

// NewService creates a new task service.
func NewService(s store.Store, rec *audit.Recorder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store: s,
		audit: rec,
		log:   log,
	}
}

// CreateTask validates and stores a new task.
// Invalid input yields a *models.ValidationError.
func (s *Service) CreateTask(ctx context.Context, req models.NewTask) (*models.Task, error) {
	if err := models.ValidateNewTask(req.Title, req.Description); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "creating task", "title", req.Title)
	task, err := s.store.CreateTask(ctx, req.Title, req.Description)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.ActionCreate, req, audit.OutcomeSuccess, task.ID)
	s.log.InfoContext(ctx, "task created", "id", task.ID)
	return task, nil
}

// RecentTasks returns the most recent active tasks, newest first.
func (s *Service) RecentTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.ListRecentActive(ctx, models.VisibleLimit)
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "fetched recent tasks", "count", len(tasks))
	return tasks, nil
}

// GetTask returns a single task, completed or not.
// It returns ErrTaskNotFound for unknown ids.
func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AuditLog returns up to limit audit entries, newest first. A limit outside
// 1..MaxAuditLimit is clamped.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	entries, err := s.store.ListAudit(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}

// CompleteTask marks a task completed.
// It returns ErrTaskNotFound or ErrTaskAlreadyCompleted.
func (s *Service) CompleteTask(ctx context.Context, id string) (*models.Task, error) {
	inputs := map[string]string{"id": id}

	task, err := s.store.CompleteTask(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.record(ctx, audit.ActionComplete, inputs, audit.OutcomeFailure, id)
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	case errors.Is(err, store.ErrAlreadyCompleted):
		s.record(ctx, audit.ActionComplete, inputs, audit.OutcomeFailure, id)
		return nil, fmt.Errorf("%w: %s", ErrTaskAlreadyCompleted, id)
	case err != nil:
		return nil, err
	}

	s.record(ctx, audit.ActionComplete, inputs, audit.OutcomeSuccess, id)
	s.log.InfoContext(ctx, "task completed", "id", id)
	return task, nil
}

// DeleteAllTasks removes every task. Only meant for test isolation.
func (s *Service) DeleteAllTasks(ctx context.Context) error {
	n, err := s.store.DeleteAllTasks(ctx)
	if err != nil {
		return err
	}
	s.record(ctx, audit.ActionClear, map[string]int64{"deleted": n}, audit.OutcomeSuccess, "")
	s.log.WarnContext(ctx, "deleted all tasks", "count", n)
	return nil
}

// Health reports whether the backing database is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// record writes an audit entry; audit failures never fail the request.
func (s *Service) record(ctx context.Context, action string, inputs any, outcome, taskID string) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.Record(ctx, action, inputs, outcome, taskID); err != nil {
		s.log.ErrorContext(ctx, "audit write failed", "action", action, "error", err)
	}
}
