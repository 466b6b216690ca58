package taskmanager

import (
	"fmt"
)

// TaskOption configures a task added through WorkflowBuilder.
type TaskOption func(*Task)

// After makes the task depend on the given task IDs.
func After(ids ...string) TaskOption {
	return func(t *Task) {
		t.DependsOn = append(t.DependsOn, ids...)
	}
}

// Fatal marks the task as one whose failure stops the workflow.
func Fatal() TaskOption {
	return func(t *Task) {
		t.Fatal = true
	}
}

// WorkflowBuilder is a builder for creating Workflow instances with validation
type WorkflowBuilder struct {
	workflowID string
	tasks      map[string]*Task
	order      []string
	err        error
}

// NewWorkflowBuilder creates a new WorkflowBuilder with the given workflow ID
func NewWorkflowBuilder(id string) *WorkflowBuilder {
	return &WorkflowBuilder{
		workflowID: id,
		tasks:      make(map[string]*Task),
	}
}

// AddTask adds a task. Tasks with no ordering constraint between them run in
// the order they were added.
func (wb *WorkflowBuilder) AddTask(id string, handler TaskFunc, opts ...TaskOption) *WorkflowBuilder {
	if _, exists := wb.tasks[id]; exists && wb.err == nil {
		wb.err = fmt.Errorf("task '%s' added twice", id)
		return wb
	}
	task := &Task{ID: id, Handler: handler}
	for _, opt := range opts {
		opt(task)
	}
	wb.tasks[id] = task
	wb.order = append(wb.order, id)
	return wb
}

// Build validates and constructs the final Workflow object
func (wb *WorkflowBuilder) Build() (*Workflow, error) {
	order, err := wb.ShowOrder()
	if err != nil {
		return nil, err
	}
	if len(order) != len(wb.tasks) {
		return nil, fmt.Errorf("invalid workflow structure: %d tasks but %d ordered", len(wb.tasks), len(order))
	}

	return &Workflow{
		ID:    wb.workflowID,
		Tasks: wb.tasks,
		Order: append([]string(nil), wb.order...),
	}, nil
}

// ShowOrder returns the planned execution order without building the full Workflow
func (wb *WorkflowBuilder) ShowOrder() ([]string, error) {
	if wb.err != nil {
		return nil, wb.err
	}

	w := &Workflow{ID: wb.workflowID, Tasks: wb.tasks, Order: wb.order}
	if err := w.validateDependencies(); err != nil {
		return nil, err
	}

	order, err := w.createDAG().TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("invalid workflow structure: %w", err)
	}
	return order, nil
}
