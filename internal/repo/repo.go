// Package repo wraps the git operations prfixer performs on the working
// tree: remote identity checks, branch checkout and status inspection.
package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanmeadows/prfixer/internal/command"
)

// ErrGitNotFound is returned when the git executable is missing. It is
// distinct from a git command that ran and failed.
var ErrGitNotFound = errors.New("git not found: install git and make sure it is on your PATH")

// DefaultRemote is the remote PR branches are fetched from.
const DefaultRemote = "origin"

// DefaultTimeout bounds each individual git command.
const DefaultTimeout = 60 * time.Second

// Attempt records one git command that exited non-zero.
type Attempt struct {
	Command string
	Output  string
}

// GitError reports git commands that ran but failed.
type GitError struct {
	Op       string
	Attempts []Attempt
}

func (e *GitError) Error() string {
	if len(e.Attempts) == 1 {
		a := e.Attempts[0]
		return fmt.Sprintf("%s: %s: %s", e.Op, a.Command, a.Output)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: all %d attempts failed", e.Op, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %s", a.Command, a.Output)
	}
	return b.String()
}

// Git runs git in a single working directory.
type Git struct {
	runner  command.Runner
	binary  string
	remote  string
	dir     string
	timeout time.Duration
}

// Option configures a Git.
type Option func(*Git)

// WithBinary overrides the git executable.
func WithBinary(binary string) Option {
	return func(g *Git) {
		if binary != "" {
			g.binary = binary
		}
	}
}

// WithRemote overrides the remote PR branches are fetched from.
func WithRemote(remote string) Option {
	return func(g *Git) {
		if remote != "" {
			g.remote = remote
		}
	}
}

// WithTimeout overrides the per-command timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Git) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New returns a Git bound to dir. An empty dir means the process's
// current directory.
func New(runner command.Runner, dir string, opts ...Option) *Git {
	g := &Git{
		runner:  runner,
		binary:  "git",
		remote:  DefaultRemote,
		dir:     dir,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// run executes one git command. Only launch failures are returned as
// errors; a non-zero exit is left to the caller.
func (g *Git) run(ctx context.Context, args ...string) (command.Result, error) {
	inv := command.Invocation{Name: g.binary, Args: args, Dir: g.dir, Timeout: g.timeout}
	slog.Debug("running git", "cmd", inv.String(), "dir", g.dir)

	res, err := g.runner.Run(ctx, inv)
	if err != nil {
		if errors.Is(err, command.ErrNotFound) {
			return res, ErrGitNotFound
		}
		return res, fmt.Errorf("git %s: %w", args[0], err)
	}
	return res, nil
}

// output runs a git command and converts a non-zero exit into a GitError.
func (g *Git) output(ctx context.Context, op string, args ...string) (string, error) {
	res, err := g.run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", &GitError{Op: op, Attempts: []Attempt{attempt(g.binary, args, res)}}
	}
	return res.Stdout, nil
}

func attempt(binary string, args []string, res command.Result) Attempt {
	out := res.Output()
	if out == "" {
		out = fmt.Sprintf("exit status %d", res.ExitCode)
	}
	return Attempt{
		Command: command.Invocation{Name: binary, Args: args}.String(),
		Output:  out,
	}
}
