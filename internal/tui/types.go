package tui

import "github.com/fentz26/todo/internal/tasksync"

// stateMsg carries a store snapshot into the program.
type stateMsg struct {
	state tasksync.State
}

// createdMsg reports the outcome of a form submission.
type createdMsg struct {
	err error
}

// completedMsg reports the outcome of marking a task done.
type completedMsg struct {
	id  string
	err error
}
