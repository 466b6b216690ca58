package taskmanager

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/maxkimambo/cbci/internal/logger"
)

// Workflow is a set of tasks run one at a time in dependency order.
type Workflow struct {
	ID    string
	Tasks map[string]*Task
	// Order is the insertion order used to break ties; tasks missing from it
	// are appended in ID order.
	Order []string
}

// Report holds the result of every task in the order they were considered.
type Report struct {
	WorkflowID string
	Results    []TaskResult
}

// Failed returns the results of tasks that ran and failed.
func (r *Report) Failed() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Execute runs the tasks in topological order. A task whose dependency did not
// succeed is skipped. A failing Fatal task stops the workflow: the remaining
// tasks are skipped and the error is returned. Failures of other tasks are
// only recorded in the report.
func (w *Workflow) Execute(ctx context.Context, sharedCtx *SharedContext) (*Report, error) {
	report := &Report{WorkflowID: w.ID}

	if err := w.validateDependencies(); err != nil {
		return report, err
	}

	executionOrder, err := w.createDAG().TopologicalSort()
	if err != nil {
		return report, fmt.Errorf("failed to determine execution order: %w", err)
	}

	status := make(map[string]TaskStatus, len(executionOrder))
	var stopErr error

	for _, taskID := range executionOrder {
		task := w.Tasks[taskID]

		if stopErr == nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				stopErr = fmt.Errorf("workflow %s interrupted before task %s: %w", w.ID, taskID, ctxErr)
			}
		}
		if stopErr != nil {
			status[taskID] = StatusSkipped
			report.Results = append(report.Results, TaskResult{ID: taskID, Status: StatusSkipped})
			continue
		}

		if dep, ok := unmetDependency(task, status); ok {
			logger.Op.WithFields(map[string]interface{}{
				"workflow":   w.ID,
				"task":       taskID,
				"dependency": dep,
			}).Debug("skipping task, dependency did not succeed")
			status[taskID] = StatusSkipped
			report.Results = append(report.Results, TaskResult{ID: taskID, Status: StatusSkipped})
			continue
		}

		logger.Op.Debugf("workflow %s: running task %s", w.ID, taskID)
		start := time.Now()
		taskErr := task.Handler(ctx, sharedCtx)
		result := TaskResult{ID: taskID, Status: StatusSucceeded, Duration: time.Since(start)}

		if taskErr != nil {
			result.Status = StatusFailed
			result.Err = taskErr
			if task.Fatal {
				stopErr = fmt.Errorf("task %s failed: %w", taskID, taskErr)
			} else {
				logger.Op.WithFields(map[string]interface{}{
					"workflow": w.ID,
					"task":     taskID,
				}).Warnf("task failed, continuing: %v", taskErr)
			}
		}

		status[taskID] = result.Status
		report.Results = append(report.Results, result)
	}

	return report, stopErr
}

func unmetDependency(task *Task, status map[string]TaskStatus) (string, bool) {
	for _, dep := range task.DependsOn {
		if status[dep] != StatusSucceeded {
			return dep, true
		}
	}
	return "", false
}

// validateDependencies ensures all dependencies reference existing tasks
func (w *Workflow) validateDependencies() error {
	for _, taskID := range w.taskOrder() {
		task := w.Tasks[taskID]
		for _, depID := range task.DependsOn {
			if _, exists := w.Tasks[depID]; !exists {
				return fmt.Errorf("task %s depends on non-existent task %s", task.ID, depID)
			}
		}
	}
	return nil
}

func (w *Workflow) taskOrder() []string {
	seen := make(map[string]bool, len(w.Tasks))
	order := make([]string, 0, len(w.Tasks))
	for _, id := range w.Order {
		if _, ok := w.Tasks[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	var rest []string
	for id := range w.Tasks {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func (w *Workflow) createDAG() *DAG {
	dag := NewDAG()
	order := w.taskOrder()
	for _, taskID := range order {
		dag.AddNode(taskID)
	}
	for _, taskID := range order {
		for _, depID := range w.Tasks[taskID].DependsOn {
			dag.AddEdge(taskID, depID)
		}
	}
	return dag
}
