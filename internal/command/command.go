// Package command runs external tools (git, gh, the fix agent) as
// synchronous subprocesses with captured output.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when the executable cannot be located.
	ErrNotFound = errors.New("executable not found")
	// ErrTimeout is returned when an invocation exceeds its timeout.
	ErrTimeout = errors.New("timed out")
)

// waitDelay bounds how long Run waits for output pipes to drain after the
// process has been killed on timeout.
const waitDelay = 5 * time.Second

// Invocation describes a single subprocess call.
type Invocation struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// String renders the invocation as a shell-like command line for logs.
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Name
	}
	return i.Name + " " + strings.Join(i.Args, " ")
}

// Result is the outcome of a process that started and exited.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Output returns trimmed stderr, falling back to stdout, for error messages.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Runner executes invocations. A non-zero exit is reported through
// Result.ExitCode with a nil error; the error return is reserved for
// processes that could not be launched or did not finish in time.
//
//go:generate mockgen -destination=mock_command/mock_runner.go -package=mock_command . Runner
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	// execCommand is a hook for testing; defaults to exec.CommandContext.
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExecRunner returns a Runner backed by real subprocesses.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{execCommand: exec.CommandContext}
}

// Run starts the process, waits for it, and classifies the failure mode.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	execCommand := r.execCommand
	if execCommand == nil {
		execCommand = exec.CommandContext
	}

	cmd := execCommand(ctx, inv.Name, inv.Args...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%s: %w after %s", inv.Name, ErrTimeout, inv.Timeout)
		}
		return res, fmt.Errorf("%s: %w", inv.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	if isNotFound(err) {
		return res, fmt.Errorf("%s: %w", inv.Name, ErrNotFound)
	}

	return res, fmt.Errorf("launching %s: %w", inv.Name, err)
}

// isNotFound reports whether err means the executable itself is missing.
// A missing working directory surfaces as a chdir PathError and is not
// treated as such.
func isNotFound(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound) || errors.Is(execErr.Err, fs.ErrNotExist)
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Op != "chdir" {
		return errors.Is(pathErr.Err, fs.ErrNotExist)
	}
	return false
}

var _ Runner = (*ExecRunner)(nil)
