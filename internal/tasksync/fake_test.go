package tasksync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fentz26/todo/internal/models"
)

var errFakeNotFound = errors.New("task not found")

// fakeRemote is an in-memory Remote with error injection and gates.
type fakeRemote struct {
	mu    sync.Mutex
	tasks []models.Task
	seq   int

	// Error injection for testing
	ListErr     error
	CreateErr   error
	CompleteErr error

	// When set, the call signals *Started and blocks until *Release
	// is closed.
	ListStarted      chan struct{}
	ListRelease      chan struct{}
	CompleteStarted  chan struct{}
	CompleteRelease  chan struct{}
	listCalls        int
	completeRequests []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{}
}

// add stores an active task directly, bypassing CreateTask.
func (f *fakeRemote) add(title string) models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(title, title+" description")
}

func (f *fakeRemote) addLocked(title, description string) models.Task {
	f.seq++
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	task := models.Task{
		ID:          fmt.Sprintf("task-%d", f.seq),
		Title:       title,
		Description: description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	f.tasks = append(f.tasks, task)
	return task
}

// ListTasks builds its response before waiting on the gate, so a gated
// call returns the list as it was when the call was made.
func (f *fakeRemote) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	f.listCalls++
	started, release := f.ListStarted, f.ListRelease
	active, err := f.activeLocked()
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return active, err
}

func (f *fakeRemote) activeLocked() ([]models.Task, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var active []models.Task
	for _, t := range f.tasks {
		if !t.Completed {
			active = append(active, t)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	if len(active) > models.VisibleLimit {
		active = active[:models.VisibleLimit]
	}
	return active, nil
}

func (f *fakeRemote) CreateTask(ctx context.Context, title, description string) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return models.Task{}, f.CreateErr
	}
	return f.addLocked(title, description), nil
}

func (f *fakeRemote) CompleteTask(ctx context.Context, id string) (models.Task, error) {
	f.mu.Lock()
	f.completeRequests = append(f.completeRequests, id)
	started, release := f.CompleteStarted, f.CompleteRelease
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CompleteErr != nil {
		return models.Task{}, f.CompleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id && !f.tasks[i].Completed {
			f.tasks[i].Completed = true
			return f.tasks[i], nil
		}
	}
	return models.Task{}, errFakeNotFound
}

func (f *fakeRemote) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeRemote) completed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.completeRequests...)
}
