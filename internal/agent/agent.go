// Package agent invokes the external code-editing agent for a single
// comment unit and classifies what it did.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/comment"
)

// Defaults for the agent command line.
const (
	DefaultCommand = "claude"
	DefaultTimeout = 5 * time.Minute
)

// DefaultArgs run the agent non-interactively; the prompt is appended.
var DefaultArgs = []string{"-p", "--dangerously-skip-permissions"}

// Kind classifies a failure to run the agent at all.
type Kind int

const (
	KindLaunch Kind = iota
	KindNotFound
	KindTimeout
)

// InvocationError means the agent process could not be run to completion.
// It is fatal for the whole run, unlike a non-zero exit.
type InvocationError struct {
	Kind    Kind
	Command string
	Timeout time.Duration
	Err     error
}

func (e *InvocationError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("agent %q not found: install it and make sure it is on your PATH", e.Command)
	case KindTimeout:
		return fmt.Sprintf("agent %q timed out after %s", e.Command, e.Timeout)
	default:
		return fmt.Sprintf("failed to run agent %q: %v", e.Command, e.Err)
	}
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one agent run.
type Result struct {
	Outcome Outcome
	Message string
	Stdout  string
	Stderr  string
}

// Config configures an Agent. Zero values fall back to the defaults.
type Config struct {
	Command string
	Args    []string
	Timeout time.Duration
	// Dir is the working tree the agent edits and commits in.
	Dir string
	// PRURL is included in every prompt.
	PRURL string
}

// Agent runs one agent process per comment unit.
type Agent struct {
	runner command.Runner
	cfg    Config
}

// New returns an Agent using runner to launch processes.
func New(runner command.Runner, cfg Config) *Agent {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Args == nil {
		cfg.Args = DefaultArgs
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Agent{runner: runner, cfg: cfg}
}

// Process runs the agent once for c. A non-zero exit yields an Error
// outcome with a nil error; an *InvocationError is returned only when the
// process could not be launched or timed out.
func (a *Agent) Process(ctx context.Context, c comment.Comment) (Result, error) {
	prompt, err := BuildPrompt(c, a.cfg.PRURL)
	if err != nil {
		return Result{}, fmt.Errorf("building prompt: %w", err)
	}

	args := append(slices.Clone(a.cfg.Args), prompt)
	slog.Debug("invoking agent", "command", a.cfg.Command, "comment", c.String(), "timeout", a.cfg.Timeout)

	res, err := a.runner.Run(ctx, command.Invocation{
		Name:    a.cfg.Command,
		Args:    args,
		Dir:     a.cfg.Dir,
		Timeout: a.cfg.Timeout,
	})
	if err != nil {
		return Result{}, a.invocationError(err)
	}

	if !res.Success() {
		return Result{
			Outcome: Error,
			Message: fmt.Sprintf("agent exited with code %d", res.ExitCode),
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
		}, nil
	}

	outcome, message, ruleName := classify(rules, res.Stdout)
	slog.Debug("classified agent output", "outcome", outcome, "rule", ruleName)

	return Result{
		Outcome: outcome,
		Message: message,
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	}, nil
}

func (a *Agent) invocationError(err error) *InvocationError {
	ie := &InvocationError{Kind: KindLaunch, Command: a.cfg.Command, Timeout: a.cfg.Timeout, Err: err}
	switch {
	case errors.Is(err, command.ErrNotFound):
		ie.Kind = KindNotFound
	case errors.Is(err, command.ErrTimeout):
		ie.Kind = KindTimeout
	}
	return ie
}
