package taskmanager

import (
	"context"
	"strings"
	"testing"
)

func noop(ctx context.Context, sc *SharedContext) error { return nil }

func TestWorkflowBuilder_Build(t *testing.T) {
	wf, err := NewWorkflowBuilder("5.5.0").
		AddTask("allocate", noop, Fatal()).
		AddTask("address", noop, After("allocate")).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if wf.ID != "5.5.0" {
		t.Errorf("ID = %s", wf.ID)
	}
	if !wf.Tasks["allocate"].Fatal {
		t.Error("allocate should be fatal")
	}
	if wf.Tasks["address"].Fatal {
		t.Error("address should not be fatal")
	}
	if strings.Join(wf.Tasks["address"].DependsOn, ",") != "allocate" {
		t.Errorf("DependsOn = %v", wf.Tasks["address"].DependsOn)
	}
	if strings.Join(wf.Order, ",") != "allocate,address" {
		t.Errorf("Order = %v", wf.Order)
	}
}

func TestWorkflowBuilder_ForwardDependency(t *testing.T) {
	order, err := NewWorkflowBuilder("w").
		AddTask("build", noop, After("clone")).
		AddTask("clone", noop).
		ShowOrder()
	if err != nil {
		t.Fatalf("ShowOrder() error = %v", err)
	}
	if strings.Join(order, ",") != "clone,build" {
		t.Errorf("order = %v", order)
	}
}

func TestWorkflowBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *WorkflowBuilder
		want    string
	}{
		{
			name:    "unknown dependency",
			builder: NewWorkflowBuilder("w").AddTask("build", noop, After("clone")),
			want:    "non-existent task clone",
		},
		{
			name:    "duplicate task",
			builder: NewWorkflowBuilder("w").AddTask("clone", noop).AddTask("clone", noop),
			want:    "added twice",
		},
		{
			name: "cycle",
			builder: NewWorkflowBuilder("w").
				AddTask("a", noop, After("b")).
				AddTask("b", noop, After("a")),
			want: "circular dependency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}
