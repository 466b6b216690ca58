// Package orchestrator runs the integration cycle once per requested server
// version: allocate a cluster, configure it, build the client libraries
// against it and remove it again.
package orchestrator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/maxkimambo/cbci/internal/build"
	"github.com/maxkimambo/cbci/internal/cluster"
	"github.com/maxkimambo/cbci/internal/config"
	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/maxkimambo/cbci/internal/properties"
	"github.com/maxkimambo/cbci/internal/taskmanager"
)

// Dependencies are the external tools the orchestrator drives.
type Dependencies struct {
	Allocator cluster.Allocator
	Admin     cluster.AdminAPI
	VCS       build.VCS
	BuildTool build.BuildTool
}

// Orchestrator runs integration cycles.
type Orchestrator struct {
	config    *config.Config
	allocator cluster.Allocator
	admin     cluster.AdminAPI
	vcs       build.VCS
	buildTool build.BuildTool
}

// New creates an Orchestrator
func New(cfg *config.Config, deps Dependencies) *Orchestrator {
	return &Orchestrator{
		config:    cfg,
		allocator: deps.Allocator,
		admin:     deps.Admin,
		vcs:       deps.VCS,
		buildTool: deps.BuildTool,
	}
}

// Run executes one cycle per version, in order. A fatal error stops the loop
// after the current cluster has been removed; the summary then lists the
// versions that never ran.
func (o *Orchestrator) Run(ctx context.Context, versions []string) (*Summary, error) {
	summary := &Summary{}
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	for i, version := range versions {
		logger.User.Startingf("[%d/%d] Server version %s", i+1, len(versions), version)

		result, err := o.RunVersion(ctx, version)
		summary.Results = append(summary.Results, result)
		if err != nil {
			summary.Skipped = append(summary.Skipped, versions[i+1:]...)
			if len(summary.Skipped) > 0 {
				logger.User.Warnf("Skipping remaining versions: %v", summary.Skipped)
			}
			return summary, err
		}
	}

	if failed := summary.FailedBuilds(); o.config.FailOnBuildError && len(failed) > 0 {
		return summary, harnesserrors.NewBuildFailuresError(failed)
	}
	return summary, nil
}

// RunVersion runs a single cycle. The cluster is removed on every path out,
// including interruption, unless keep_cluster is set.
func (o *Orchestrator) RunVersion(ctx context.Context, version string) (result *VersionResult, err error) {
	result = &VersionResult{Version: version}
	start := time.Now()

	defer func() {
		o.teardown(ctx, result)
		result.Duration = time.Since(start)
	}()

	workflow, err := o.buildWorkflow(version, result)
	if err != nil {
		result.Err = err
		return result, err
	}

	report, err := workflow.Execute(ctx, taskmanager.NewSharedContext())
	result.collect(report)
	if err != nil {
		result.Err = err
		logger.User.Errorf("Version %s failed: %s", version, harnesserrors.DisplayErrorSummary(err))
		return result, err
	}

	if len(result.Warnings) == 0 && len(result.FailedBuilds()) == 0 {
		logger.User.Successf("Version %s passed", version)
	}
	return result, nil
}

func (o *Orchestrator) teardown(ctx context.Context, result *VersionResult) {
	if result.Cluster == nil || result.Cluster.ID == "" {
		return
	}
	id := result.Cluster.ID

	if o.config.KeepCluster {
		logger.User.Warnf("Keeping cluster %s (%s)", id, result.Cluster.Address)
		return
	}

	// the run context may already be cancelled; removal still gets its own budget
	teardownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.TeardownTimeout)
	defer cancel()

	logger.User.Teardownf("Removing cluster %s", id)
	if err := o.allocator.Remove(teardownCtx, id); err != nil {
		logger.User.Warnf("Cluster %s was not removed: %s", id, harnesserrors.DisplayErrorSummary(err))
		result.Warnings = append(result.Warnings, err)
		return
	}
	result.TornDown = true
}

func (o *Orchestrator) workspace(version string) string {
	return o.config.Workspace(version)
}

func (o *Orchestrator) propertiesWriter(version string) *properties.Writer {
	return properties.NewWriter(filepath.Join(o.workspace(version), properties.DefaultStagingName), o.config.DryRun)
}
