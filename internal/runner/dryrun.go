package runner

import (
	"context"

	"github.com/maxkimambo/cbci/internal/logger"
)

// DryRunRunner prints commands instead of running them. Commands whose Key
// is present in Canned report those lines as their output.
type DryRunRunner struct {
	Canned map[string][]string
}

func NewDryRunRunner(canned map[string][]string) *DryRunRunner {
	return &DryRunRunner{Canned: canned}
}

func (r *DryRunRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.User.Infof("[dry-run] $ %s", cmd.String())

	out := append([]string(nil), r.Canned[cmd.Key()]...)
	return &Result{Command: cmd, Output: out}, nil
}
