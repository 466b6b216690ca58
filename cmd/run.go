package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maxkimambo/cbci/internal/build"
	"github.com/maxkimambo/cbci/internal/cluster"
	"github.com/maxkimambo/cbci/internal/config"
	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/maxkimambo/cbci/internal/orchestrator"
	"github.com/maxkimambo/cbci/internal/runner"
	"github.com/maxkimambo/cbci/internal/validation"
)

func runIntegration(cmd *cobra.Command, opts *options, versions []string) error {
	if err := validation.ValidateVersions(versions); err != nil {
		return harnesserrors.NewValidationFailedError("cluster_versions", strings.Join(versions, " "), "Argument parsing").
			WithOriginalError(err)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	logger.Op.WithFields(map[string]interface{}{
		"versions": versions,
		"workdir":  cfg.Workdir,
		"config":   cfg.ConfigFile,
		"dry_run":  cfg.DryRun,
	}).Info("starting integration run")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := orchestrator.New(cfg, newDependencies(cfg)).Run(ctx, versions)

	if summary != nil {
		logger.Op.WithFields(map[string]interface{}{
			"versions":      len(summary.Results),
			"skipped":       summary.Skipped,
			"failed_builds": summary.FailedBuilds(),
			"duration":      summary.Duration.String(),
		}).Info("integration run finished")

		if !opts.quiet && !opts.jsonLogs {
			fmt.Fprintln(cmd.OutOrStdout(), summary.Render())
		}
	}
	return runErr
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	loader := config.NewLoader(opts.configFile)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, harnesserrors.NewConfigurationError(harnesserrors.CodeConfigLoad,
			"Failed to bind command-line flags", "Configuration loading").
			WithOriginalError(err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		logger.Op.Debugf("using config file %s", cfg.ConfigFile)
	}
	return cfg, nil
}

// newDependencies wires the real tools, or stand-ins that only print what
// would happen when dry_run is set.
func newDependencies(cfg *config.Config) orchestrator.Dependencies {
	var (
		r     runner.Runner
		admin cluster.AdminAPI
	)

	if cfg.DryRun {
		r = runner.NewDryRunRunner(dryRunOutputs(cfg))
		admin = cluster.DryRunAdmin{Port: cfg.AdminPort}
	} else {
		r = runner.NewExecRunner(cfg.CommandTimeout)
		client := cluster.NewAdminClient(cfg.AdminUser, cfg.AdminPassword, cfg.AdminPort)
		client.ReadyTimeout = cfg.AdminReadyTimeout
		admin = client
	}

	return orchestrator.Dependencies{
		Allocator: cluster.NewCBDynCluster(cfg.AllocatorBin, r),
		Admin:     admin,
		VCS:       build.NewGit(cfg.GitBin, r),
		BuildTool: build.NewMaven(cfg.MavenBin, cfg.MavenRepoPath(), cfg.RerunFailingTests, r),
	}
}

// dryRunOutputs are the lines the allocator would print, so a dry run gets
// past the steps that parse them.
func dryRunOutputs(cfg *config.Config) map[string][]string {
	bin := filepath.Base(cfg.AllocatorBin)
	return map[string][]string{
		bin + " allocate": {"dry-run-cluster"},
		bin + " ips":      {"127.0.0.1"},
	}
}
