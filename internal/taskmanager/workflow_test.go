package taskmanager

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recorder struct {
	order []string
}

func (r *recorder) task(id string, err error) TaskFunc {
	return func(ctx context.Context, sharedCtx *SharedContext) error {
		r.order = append(r.order, id)
		return err
	}
}

func statuses(report *Report) string {
	parts := make([]string, 0, len(report.Results))
	for _, res := range report.Results {
		parts = append(parts, res.ID+"="+string(res.Status))
	}
	return strings.Join(parts, " ")
}

func TestWorkflow_Execute_RunsInInsertionOrder(t *testing.T) {
	rec := &recorder{}
	wf, err := NewWorkflowBuilder("6.0.0").
		AddTask("allocate", rec.task("allocate", nil), Fatal()).
		AddTask("address", rec.task("address", nil), Fatal(), After("allocate")).
		AddTask("setup", rec.task("setup", nil), After("address")).
		AddTask("pool-quota", rec.task("pool-quota", nil), After("address")).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	report, err := wf.Execute(context.Background(), NewSharedContext())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := strings.Join(rec.order, ","); got != "allocate,address,setup,pool-quota" {
		t.Errorf("unexpected order %s", got)
	}
	if len(report.Failed()) != 0 {
		t.Errorf("expected no failures, got %v", report.Failed())
	}
	if report.WorkflowID != "6.0.0" {
		t.Errorf("WorkflowID = %s", report.WorkflowID)
	}
}

func TestWorkflow_Execute_NonFatalFailureContinues(t *testing.T) {
	rec := &recorder{}
	setupErr := errors.New("setup failed")

	wf, err := NewWorkflowBuilder("w").
		AddTask("address", rec.task("address", nil), Fatal()).
		AddTask("setup", rec.task("setup", setupErr), After("address")).
		AddTask("pool-quota", rec.task("pool-quota", nil), After("address")).
		AddTask("after-setup", rec.task("after-setup", nil), After("setup")).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	report, err := wf.Execute(context.Background(), NewSharedContext())
	if err != nil {
		t.Fatalf("non-fatal failure must not stop the workflow, got %v", err)
	}

	want := "address=succeeded setup=failed pool-quota=succeeded after-setup=skipped"
	if got := statuses(report); got != want {
		t.Errorf("statuses = %s, want %s", got, want)
	}

	failed := report.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected one failure, got %d", len(failed))
	}
	if failed[0].ID != "setup" || !errors.Is(failed[0].Err, setupErr) {
		t.Errorf("expected setup error in report, got %+v", failed[0])
	}
}

func TestWorkflow_Execute_FatalFailureStops(t *testing.T) {
	rec := &recorder{}
	cloneErr := errors.New("clone failed")

	wf, err := NewWorkflowBuilder("w").
		AddTask("clone", rec.task("clone", cloneErr), Fatal()).
		AddTask("build", rec.task("build", nil), After("clone")).
		AddTask("unrelated", rec.task("unrelated", nil)).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	report, err := wf.Execute(context.Background(), NewSharedContext())
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if !errors.Is(err, cloneErr) {
		t.Errorf("expected wrapped clone error, got %v", err)
	}
	if !strings.Contains(err.Error(), "task clone failed") {
		t.Errorf("error should name the task, got %v", err)
	}

	if got := strings.Join(rec.order, ","); got != "clone" {
		t.Errorf("nothing may run after a fatal failure, ran %s", got)
	}
	if got := statuses(report); got != "clone=failed build=skipped unrelated=skipped" {
		t.Errorf("statuses = %s", got)
	}
}

func TestWorkflow_Execute_CancelledContext(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())

	wf, err := NewWorkflowBuilder("w").
		AddTask("first", func(ctx context.Context, sc *SharedContext) error {
			rec.order = append(rec.order, "first")
			cancel()
			return nil
		}).
		AddTask("second", rec.task("second", nil)).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	report, err := wf.Execute(ctx, NewSharedContext())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := statuses(report); got != "first=succeeded second=skipped" {
		t.Errorf("statuses = %s", got)
	}
}

func TestWorkflow_Execute_SharedContext(t *testing.T) {
	sc := NewSharedContext()

	wf, err := NewWorkflowBuilder("w").
		AddTask("allocate", func(ctx context.Context, sc *SharedContext) error {
			sc.Set("cluster_id", "c-42")
			return nil
		}, Fatal()).
		AddTask("remove", func(ctx context.Context, sc *SharedContext) error {
			id, ok := sc.GetString("cluster_id")
			if !ok || id != "c-42" {
				return errors.New("cluster id not shared")
			}
			return nil
		}, After("allocate")).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	report, err := wf.Execute(context.Background(), sc)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(report.Failed()) != 0 {
		t.Errorf("unexpected failures: %v", report.Failed()[0].Err)
	}
}

func TestWorkflow_Execute_MissingDependency(t *testing.T) {
	wf := &Workflow{
		ID: "w",
		Tasks: map[string]*Task{
			"build": {ID: "build", Handler: (&recorder{}).task("build", nil), DependsOn: []string{"clone"}},
		},
	}

	if _, err := wf.Execute(context.Background(), NewSharedContext()); err == nil {
		t.Error("expected error for missing dependency")
	}
}

func TestWorkflow_Execute_WithoutOrderFallsBackToIDs(t *testing.T) {
	rec := &recorder{}
	wf := &Workflow{
		ID: "w",
		Tasks: map[string]*Task{
			"b": {ID: "b", Handler: rec.task("b", nil)},
			"a": {ID: "a", Handler: rec.task("a", nil)},
			"c": {ID: "c", Handler: rec.task("c", nil), DependsOn: []string{"b"}},
		},
	}

	if _, err := wf.Execute(context.Background(), NewSharedContext()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.Join(rec.order, ","); got != "a,b,c" {
		t.Errorf("order = %s, want a,b,c", got)
	}
}
