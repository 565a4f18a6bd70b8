// Package tasksync keeps a local view of the visible tasks in sync with the
// task service and publishes it to presentation layers.
package tasksync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fentz26/todo/internal/models"
)

// Remote is the task service as seen by the store. *client.Client satisfies it.
type Remote interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, title, description string) (models.Task, error)
	CompleteTask(ctx context.Context, id string) (models.Task, error)
}

// State is a point-in-time copy of the store.
type State struct {
	// Tasks holds at most models.VisibleLimit active tasks, newest first.
	Tasks []models.Task
	// Loading is true while a refresh is in flight.
	Loading bool
	// Err is the message of the most recent failure, or "".
	Err string
}

// Store is the single source of truth for the visible task list.
// Operations may overlap; each state change is applied atomically and the
// last one to resolve wins.
type Store struct {
	remote Remote
	log    *slog.Logger

	mu       sync.Mutex
	tasks    []models.Task
	inflight int
	err      string
	subs     map[int]func(State)
	nextSub  int

	// notifyMu is held across a mutation and its deliveries so
	// subscribers see states in mutation order. Always taken before mu.
	notifyMu sync.Mutex

	activate sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a store backed by remote. The store starts empty; call
// Activate to load it.
func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote: remote,
		log:    slog.Default(),
		subs:   make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate performs the initial load. Only the first call does anything.
func (s *Store) Activate(ctx context.Context) error {
	var err error
	s.activate.Do(func() {
		err = s.Refresh(ctx)
	})
	return err
}

// Refresh replaces the task list with the service's current visible set.
// On failure the list is left unchanged and Err is set.
func (s *Store) Refresh(ctx context.Context) error {
	return s.refresh(ctx, false)
}

// refresh fetches the visible set. With keepErr the current Err survives
// a successful fetch.
func (s *Store) refresh(ctx context.Context, keepErr bool) error {
	s.update(func() {
		s.inflight++
		if !keepErr {
			s.err = ""
		}
	})

	tasks, err := s.remote.ListTasks(ctx)

	s.update(func() {
		s.inflight--
		if err != nil {
			s.err = err.Error()
			return
		}
		if len(tasks) > models.VisibleLimit {
			tasks = tasks[:models.VisibleLimit]
		}
		s.tasks = append([]models.Task(nil), tasks...)
		if !keepErr {
			s.err = ""
		}
	})

	if err != nil {
		s.log.WarnContext(ctx, "refresh failed", "error", err)
		return err
	}
	s.log.DebugContext(ctx, "refreshed tasks", "count", len(tasks))
	return nil
}

// CreateTask submits a new task and then refreshes the list. Input is not
// validated here. A failed follow-up refresh is reported through Err only.
func (s *Store) CreateTask(ctx context.Context, title, description string) (models.Task, error) {
	s.update(func() { s.err = "" })

	task, err := s.remote.CreateTask(ctx, title, description)
	if err != nil {
		s.update(func() { s.err = err.Error() })
		s.log.WarnContext(ctx, "create task failed", "error", err)
		return models.Task{}, err
	}

	s.log.DebugContext(ctx, "task created", "id", task.ID)
	_ = s.Refresh(ctx)
	return task, nil
}

// CompleteTask removes id from the list and then asks the service to
// complete it. On failure Err is set and the list is re-fetched.
func (s *Store) CompleteTask(ctx context.Context, id string) error {
	s.update(func() {
		s.err = ""
		s.tasks = without(s.tasks, id)
	})

	if _, err := s.remote.CompleteTask(ctx, id); err != nil {
		s.update(func() { s.err = err.Error() })
		s.log.WarnContext(ctx, "complete task failed", "id", id, "error", err)
		_ = s.refresh(ctx, true)
		return err
	}

	s.log.DebugContext(ctx, "task completed", "id", id)
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change and must not call
// CreateTask, CompleteTask or Refresh synchronously.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) update(mutate func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	mutate()
	snap := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() State {
	return State{
		Tasks:   append([]models.Task(nil), s.tasks...),
		Loading: s.inflight > 0,
		Err:     s.err,
	}
}

func without(tasks []models.Task, id string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
