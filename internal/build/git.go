package build

import (
	"context"
	"os"
	"path/filepath"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/runner"
)

const DefaultGitBin = "git"

// Git clones repositories with the git CLI.
type Git struct {
	Bin    string
	Runner runner.Runner
}

func NewGit(bin string, r runner.Runner) *Git {
	if bin == "" {
		bin = DefaultGitBin
	}
	return &Git{Bin: bin, Runner: r}
}

// Clone checks url out into dir. The parent of dir is created if needed.
func (g *Git) Clone(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return harnesserrors.NewCloneFailedError(url, dir, err)
	}

	result, err := g.Runner.Run(ctx, runner.NewCommand(g.Bin, "clone", url, dir))
	if err != nil {
		return harnesserrors.NewCloneFailedError(url, dir, err)
	}
	if !result.Succeeded() {
		return harnesserrors.NewCloneFailedError(url, dir, result.Err())
	}
	return nil
}

var _ VCS = (*Git)(nil)
