package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	harnesserrors "github.com/maxkimambo/cbci/internal/errors"
	"github.com/maxkimambo/cbci/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Runner executes external commands.
type Runner interface {
	// Run blocks until cmd exits. A non-zero exit status is reported in the
	// Result, not as an error; the error is for commands that could not be
	// started or were interrupted.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// LineSink receives each output line as it is produced.
type LineSink func(command, line string)

const (
	maxLineSize = 1024 * 1024
	waitDelay   = 10 * time.Second
)

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Timeout bounds each command; zero means no limit.
	Timeout time.Duration
	Sink    LineSink
}

// NewExecRunner returns a runner streaming output through the user logger.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Timeout: timeout,
		Sink: func(command, line string) {
			logger.User.Output(command, line)
		},
	}
}

func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	logger.User.Infof("$ %s", cmd.String())
	if cmd.Dir != "" {
		logger.Op.Debugf("working directory: %s", cmd.Dir)
	}

	execCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(execCtx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.environ()...)
	}
	c.WaitDelay = waitDelay
	setProcessGroup(c)

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	start := time.Now()
	if err := c.Start(); err != nil {
		_ = pw.Close()
		return nil, harnesserrors.NewHarnessError(harnesserrors.ErrorCategoryCommand, harnesserrors.CodeCommandStart,
			fmt.Sprintf("Unable to start '%s'", cmd.Name),
			"Command execution").
			WithContext("command", cmd.String()).
			WithOriginalError(err).
			WithTroubleshooting(fmt.Sprintf("Make sure '%s' is installed and on PATH", cmd.Name))
	}

	var (
		lines   []string
		waitErr error
		g       errgroup.Group
	)

	g.Go(func() error {
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Text()
			lines = append(lines, line)
			if r.Sink != nil {
				r.Sink(cmd.Name, line)
			}
		}
		if err := scanner.Err(); err != nil {
			// keep the child unblocked
			_, _ = io.Copy(io.Discard, pr)
			return fmt.Errorf("reading output of %s: %w", cmd.Name, err)
		}
		return nil
	})

	g.Go(func() error {
		waitErr = c.Wait()
		return pw.Close()
	})

	pumpErr := g.Wait()

	result := &Result{
		Command:  cmd,
		Output:   lines,
		Duration: time.Since(start),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	}

	if ctxErr := execCtx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s interrupted: %w", cmd.Key(), ctxErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return result, fmt.Errorf("waiting for %s: %w", cmd.Key(), waitErr)
	}
	if pumpErr != nil {
		logger.Op.Warnf("output of %s truncated: %v", cmd.Key(), pumpErr)
	}

	logger.Op.WithFields(map[string]interface{}{
		"cmd":       cmd.Key(),
		"exit_code": result.ExitCode,
		"duration":  result.Duration.Round(time.Millisecond),
	}).Debug("command finished")

	return result, nil
}

// Capture runs cmd and returns its first output line.
func Capture(ctx context.Context, r Runner, cmd Command) (string, *Result, error) {
	result, err := r.Run(ctx, cmd)
	if err != nil {
		return "", result, err
	}
	return result.FirstLine(), result, nil
}
