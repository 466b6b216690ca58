package build

import (
	"context"
	"fmt"
	"strconv"

	"github.com/maxkimambo/cbci/internal/logger"
	"github.com/maxkimambo/cbci/internal/runner"
)

const (
	DefaultMavenBin          = "mvn"
	DefaultRerunFailingTests = 1
)

// Maven runs `mvn install` against an isolated local repository.
type Maven struct {
	Bin string
	// RepoDir is passed as maven.repo.local so runs never share ~/.m2.
	RepoDir           string
	RerunFailingTests int
	Goals             []string
	Runner            runner.Runner
}

func NewMaven(bin, repoDir string, rerun int, r runner.Runner) *Maven {
	if bin == "" {
		bin = DefaultMavenBin
	}
	return &Maven{
		Bin:               bin,
		RepoDir:           repoDir,
		RerunFailingTests: rerun,
		Goals:             []string{"install"},
		Runner:            r,
	}
}

// Args returns the mvn arguments for params.
func (m *Maven) Args(params []Param) []string {
	args := []string{
		"-Dmaven.repo.local=" + m.RepoDir,
		"-Dsurefire.rerunFailingTestsCount=" + strconv.Itoa(m.RerunFailingTests),
	}
	args = append(args, m.Goals...)
	for _, p := range params {
		args = append(args, fmt.Sprintf("-D%s=%s", p.Key, p.Value))
	}
	return args
}

// Build runs mvn in dir. A failing build is reported through the Outcome.
func (m *Maven) Build(ctx context.Context, dir string, params []Param) (*Outcome, error) {
	cmd := runner.NewCommand(m.Bin, m.Args(params)...).InDir(dir)

	result, err := m.Runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("running maven in %s: %w", dir, err)
	}

	outcome := &Outcome{
		Dir:      dir,
		ExitCode: result.ExitCode,
		Duration: result.Duration,
	}
	if outcome.Failed() {
		logger.Op.WithFields(map[string]interface{}{
			"dir":       dir,
			"exit_code": outcome.ExitCode,
		}).Warn("maven build failed")
	}
	return outcome, nil
}

var _ BuildTool = (*Maven)(nil)
