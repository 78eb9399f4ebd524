// Package preflight verifies that the external tools a run depends on are
// installed, and that the GitHub CLI is logged in when it is used.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alanmeadows/prfixer/internal/command"
)

// DefaultTimeout bounds each version or auth probe.
const DefaultTimeout = 10 * time.Second

// ErrNotAuthenticated is returned by RequireGHAuth when gh has no session.
var ErrNotAuthenticated = errors.New("GitHub CLI is not authenticated")

// Tool is an external executable prfixer invokes.
type Tool struct {
	Name    string
	Command string
	Install string
}

// Status is the probe result for one tool.
type Status struct {
	Tool      Tool
	Available bool
	// Version is the first non-empty line of `<cmd> --version`, if any.
	Version string
}

// Git describes the git executable at binary.
func Git(binary string) Tool {
	return Tool{
		Name:    "Git",
		Command: binary,
		Install: "Install Git from https://git-scm.com/downloads or use your package manager.",
	}
}

// GH describes the GitHub CLI at binary.
func GH(binary string) Tool {
	return Tool{
		Name:    "GitHub CLI",
		Command: binary,
		Install: "Install GitHub CLI from https://cli.github.com/\n" +
			"  macOS: brew install gh\n" +
			"  Windows: winget install --id GitHub.cli\n" +
			"  Linux: see https://github.com/cli/cli/blob/trunk/docs/install_linux.md",
	}
}

// Agent describes the coding agent CLI at command.
func Agent(cmd string) Tool {
	return Tool{
		Name:    "Agent CLI",
		Command: cmd,
		Install: "Install the agent CLI (default: npm install -g @anthropic-ai/claude-code) " +
			"or point agent.command / PRFIXER_AGENT at another executable.",
	}
}

// MissingError lists tools that could not be found.
type MissingError struct {
	Missing []Tool
}

func (e *MissingError) Error() string {
	var b strings.Builder
	for i, t := range e.Missing {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s (%s) is not available.\n%s", t.Name, t.Command, t.Install)
	}
	return b.String()
}

// AuthError carries the gh auth status output.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	msg := ErrNotAuthenticated.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg + "\n\nPlease authenticate with GitHub CLI:\n  gh auth login"
}

func (e *AuthError) Unwrap() error { return ErrNotAuthenticated }

// Checker probes tools through a command.Runner.
type Checker struct {
	runner  command.Runner
	timeout time.Duration
}

// New returns a Checker using DefaultTimeout.
func New(runner command.Runner) *Checker {
	return &Checker{runner: runner, timeout: DefaultTimeout}
}

// Check probes a single tool with `--version`. A tool that launches but
// exits non-zero or times out is still available, just without a version.
func (c *Checker) Check(ctx context.Context, t Tool) Status {
	res, err := c.runner.Run(ctx, command.Invocation{
		Name:    t.Command,
		Args:    []string{"--version"},
		Timeout: c.timeout,
	})
	st := Status{Tool: t}
	switch {
	case errors.Is(err, command.ErrNotFound):
		return st
	case err != nil:
		slog.Debug("version probe failed", "tool", t.Command, "error", err)
		st.Available = !errors.Is(err, context.Canceled)
		return st
	}
	st.Available = true
	if res.Success() {
		st.Version = firstLine(res.Stdout)
		if st.Version == "" {
			st.Version = firstLine(res.Stderr)
		}
	}
	return st
}

// CheckAll probes each tool in order.
func (c *Checker) CheckAll(ctx context.Context, tools ...Tool) []Status {
	out := make([]Status, 0, len(tools))
	for _, t := range tools {
		out = append(out, c.Check(ctx, t))
	}
	return out
}

// Require returns a MissingError naming every unavailable tool.
func Require(statuses []Status) error {
	var missing []Tool
	for _, s := range statuses {
		if !s.Available {
			missing = append(missing, s.Tool)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingError{Missing: missing}
}

// GHAuth runs `gh auth status` and reports whether a session exists along
// with a short status message.
func (c *Checker) GHAuth(ctx context.Context, binary string) (bool, string) {
	res, err := c.runner.Run(ctx, command.Invocation{
		Name:    binary,
		Args:    []string{"auth", "status"},
		Timeout: c.timeout,
	})
	switch {
	case errors.Is(err, command.ErrNotFound):
		return false, "gh CLI not installed"
	case errors.Is(err, command.ErrTimeout):
		return false, "timed out checking authentication"
	case err != nil:
		return false, err.Error()
	case !res.Success():
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return false, msg
		}
		return false, "not authenticated"
	}
	return true, "authenticated"
}

// RequireGHAuth returns an AuthError when gh is not logged in.
func (c *Checker) RequireGHAuth(ctx context.Context, binary string) error {
	ok, msg := c.GHAuth(ctx, binary)
	if ok {
		return nil
	}
	return &AuthError{Detail: msg}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
