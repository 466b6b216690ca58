package taskmanager

import (
	"context"
	"time"
)

// TaskFunc is the function signature for a task's execution logic.
type TaskFunc func(ctx context.Context, sharedCtx *SharedContext) error

// Task represents a single unit of work in a workflow.
type Task struct {
	ID        string
	Handler   TaskFunc
	DependsOn []string // IDs of tasks this task depends on
	// Fatal stops the workflow when the task fails.
	Fatal bool
}

// TaskStatus is the final state of a task after Execute.
type TaskStatus string

const (
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
	StatusSkipped   TaskStatus = "skipped"
)

// TaskResult records how a task ended.
type TaskResult struct {
	ID       string
	Status   TaskStatus
	Err      error
	Duration time.Duration
}
