package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/maxkimambo/cbci/internal/build"
	"github.com/maxkimambo/cbci/internal/cluster"
	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/maxkimambo/cbci/internal/properties"
	"github.com/maxkimambo/cbci/internal/taskmanager"
)

// Task IDs
const (
	TaskWorkspace   = "prepare-workspace"
	TaskAllocate    = "allocate"
	TaskAddress     = "resolve-address"
	TaskSetup       = "setup"
	TaskWaitReady   = "wait-ready"
	TaskPoolQuota   = "pool-quota"
	TaskBucketQuota = "bucket-quota"
)

// Shared context keys
const (
	ctxClusterID = "cluster_id"
	ctxAddress   = "address"
)

func cloneTaskID(repo string) string      { return "clone:" + repo }
func propertiesTaskID(repo string) string { return "properties:" + repo }
func buildTaskID(repo string) string      { return "build:" + repo }

// buildWorkflow lays out one cycle. Workspace preparation, allocation, address
// lookup, clones and the properties file are fatal; everything else is
// recorded and the cycle goes on.
func (o *Orchestrator) buildWorkflow(version string, result *VersionResult) (*taskmanager.Workflow, error) {
	cfg := o.config
	wb := taskmanager.NewWorkflowBuilder(version)
	workspace := o.workspace(version)

	// a repeated version must not clone on top of the previous checkout;
	// workspace lives under Workdir/.cbci so nothing else is ever removed
	wb.AddTask(TaskWorkspace, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		if cfg.DryRun {
			return nil
		}
		if err := os.RemoveAll(workspace); err != nil {
			return harnesserrors.NewWorkspaceError(workspace, err)
		}
		if err := os.MkdirAll(workspace, 0o755); err != nil {
			return harnesserrors.NewWorkspaceError(workspace, err)
		}
		logger.Op.Debugf("workspace %s ready", workspace)
		return nil
	}, taskmanager.Fatal())

	wb.AddTask(TaskAllocate, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		logger.User.Clusterf("Allocating a single node %s cluster", version)
		id, err := o.allocator.Allocate(ctx, version)
		if id != "" {
			// recorded even on error so teardown can remove a half-allocated cluster
			result.Cluster = &cluster.Cluster{ID: id, Version: version, AllocatedAt: time.Now()}
			sc.Set(ctxClusterID, id)
		}
		if err != nil {
			return err
		}
		logger.User.Clusterf("Allocated cluster %s", id)
		return nil
	}, taskmanager.Fatal())

	wb.AddTask(TaskAddress, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		id, _ := sc.GetString(ctxClusterID)
		address, err := o.allocator.NodeAddress(ctx, id)
		if err != nil {
			return err
		}
		result.Cluster.Address = address
		sc.Set(ctxAddress, address)
		logger.User.Clusterf("Cluster %s is reachable at %s", id, address)
		return nil
	}, taskmanager.Fatal(), taskmanager.After(TaskAllocate))

	wb.AddTask(TaskSetup, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		id, _ := sc.GetString(ctxClusterID)
		logger.User.Clusterf("Setting up services and bucket %q", cfg.Bucket)
		return o.allocator.Setup(ctx, id, cfg.Bucket)
	}, taskmanager.After(TaskAddress))

	wb.AddTask(TaskWaitReady, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		address, _ := sc.GetString(ctxAddress)
		return o.admin.WaitReady(ctx, address)
	}, taskmanager.After(TaskAddress))

	wb.AddTask(TaskPoolQuota, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		address, _ := sc.GetString(ctxAddress)
		return o.admin.SetPoolQuota(ctx, address, cfg.MemoryQuotaMB)
	}, taskmanager.After(TaskAddress))

	wb.AddTask(TaskBucketQuota, func(ctx context.Context, sc *taskmanager.SharedContext) error {
		address, _ := sc.GetString(ctxAddress)
		return o.admin.UpdateBucket(ctx, address, cfg.Bucket, cfg.BucketRAMQuotaMB)
	}, taskmanager.After(TaskAddress))

	for _, repo := range cfg.Repositories {
		o.addRepositoryTasks(wb, repo, workspace, version, result)
	}

	return wb.Build()
}

func (o *Orchestrator) addRepositoryTasks(wb *taskmanager.WorkflowBuilder, repo build.Repository, workspace, version string, result *VersionResult) {
	cfg := o.config
	dir := repo.CheckoutDir(workspace)
	buildDeps := []string{cloneTaskID(repo.Name)}

	wb.AddTask(cloneTaskID(repo.Name), func(ctx context.Context, sc *taskmanager.SharedContext) error {
		logger.User.Buildf("Cloning %s", repo.URL)
		return o.vcs.Clone(ctx, repo.URL, dir)
	}, taskmanager.Fatal(), taskmanager.After(TaskAddress))

	if repo.PropertiesPath != "" {
		destination := filepath.Join(dir, filepath.FromSlash(repo.PropertiesPath))
		wb.AddTask(propertiesTaskID(repo.Name), func(ctx context.Context, sc *taskmanager.SharedContext) error {
			address, _ := sc.GetString(ctxAddress)
			record := properties.NewCoreTestProperties(address, cfg.Bucket, cfg.Password)
			return o.propertiesWriter(version).Write(record, destination)
		}, taskmanager.Fatal(), taskmanager.After(cloneTaskID(repo.Name)))
		buildDeps = append(buildDeps, propertiesTaskID(repo.Name))
	}

	wb.AddTask(buildTaskID(repo.Name), func(ctx context.Context, sc *taskmanager.SharedContext) error {
		var params []build.Param
		if repo.ClusterParams {
			address, _ := sc.GetString(ctxAddress)
			params = build.ClusterParams(address, cfg.Bucket, cfg.Password)
		}

		logger.User.Buildf("Building %s", repo.Name)
		outcome, err := o.buildTool.Build(ctx, dir, params)
		if err != nil {
			return err
		}

		br := result.build(repo.Name)
		br.Dir = outcome.Dir
		br.ExitCode = outcome.ExitCode
		br.Duration = outcome.Duration

		if outcome.Failed() {
			logger.User.Warnf("%s build failed with exit code %d", repo.Name, outcome.ExitCode)
			return harnesserrors.NewBuildFailedError(repo.Name, outcome.ExitCode)
		}
		logger.User.Successf("%s built in %s", repo.Name, outcome.Duration.Round(time.Second))
		return nil
	}, taskmanager.After(buildDeps...))
}
