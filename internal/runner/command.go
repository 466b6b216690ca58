package runner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Command describes one invocation of an external tool.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is added on top of the inherited environment.
	Env map[string]string
}

// NewCommand builds a Command for name with args.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// InDir returns a copy of c running in dir.
func (c Command) InDir(dir string) Command {
	c.Dir = dir
	return c
}

// Key identifies the tool and subcommand, e.g. "cbdyncluster allocate".
func (c Command) Key() string {
	base := filepath.Base(c.Name)
	if len(c.Args) == 0 {
		return base
	}
	return base + " " + c.Args[0]
}

// String renders the command line the way a shell user would type it.
func (c Command) String() string {
	var sb strings.Builder

	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s=%s ", k, quote(c.Env[k])))
	}

	sb.WriteString(quote(c.Name))
	for _, arg := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(quote(arg))
	}
	return sb.String()
}

func (c Command) environ() []string {
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

// quote single-quotes s when a POSIX shell would split or expand it.
// Embedded single quotes become '\''.
func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'$`\\|&;<>()*?[]#~{}!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	Command  Command
	ExitCode int
	// Output holds stdout and stderr lines in arrival order.
	Output   []string
	Duration time.Duration
}

// Succeeded reports a zero exit status.
func (r *Result) Succeeded() bool {
	return r.ExitCode == 0
}

// FirstLine returns the first output line without trailing whitespace.
func (r *Result) FirstLine() string {
	if len(r.Output) == 0 {
		return ""
	}
	return strings.TrimRight(r.Output[0], " \t\r\n")
}

// Tail returns at most n trailing output lines.
func (r *Result) Tail(n int) []string {
	if len(r.Output) <= n {
		return r.Output
	}
	return r.Output[len(r.Output)-n:]
}

// Err returns a *CommandError for a non-zero exit, nil otherwise.
func (r *Result) Err() error {
	if r.Succeeded() {
		return nil
	}
	return &CommandError{
		Command:  r.Command.String(),
		ExitCode: r.ExitCode,
		Tail:     r.Tail(tailLines),
	}
}

const tailLines = 10

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Tail     []string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	if len(e.Tail) > 0 {
		msg += ": " + strings.Join(e.Tail, "\n")
	}
	return msg
}
