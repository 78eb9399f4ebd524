package preflight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/command/mock_command"
)

func newTestChecker(t *testing.T) (*Checker, *mock_command.MockRunner) {
	t.Helper()
	runner := mock_command.NewMockRunner(gomock.NewController(t))
	return New(runner), runner
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		res       command.Result
		err       error
		available bool
		version   string
	}{
		{
			name:      "version on stdout",
			res:       command.Result{Stdout: "\ngit version 2.47.0\nextra\n"},
			available: true,
			version:   "git version 2.47.0",
		},
		{
			name:      "version on stderr",
			res:       command.Result{Stderr: "tool 1.0\n"},
			available: true,
			version:   "tool 1.0",
		},
		{
			name:      "non-zero exit",
			res:       command.Result{ExitCode: 2, Stdout: "usage"},
			available: true,
		},
		{
			name: "not found",
			err:  fmt.Errorf("git: %w", command.ErrNotFound),
		},
		{
			name:      "timeout",
			err:       fmt.Errorf("git: %w", command.ErrTimeout),
			available: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, runner := newTestChecker(t)
			runner.EXPECT().
				Run(gomock.Any(), mock_command.Invocation("git", "--version")).
				DoAndReturn(func(_ context.Context, inv command.Invocation) (command.Result, error) {
					assert.Equal(t, DefaultTimeout, inv.Timeout)
					return tt.res, tt.err
				})

			st := c.Check(context.Background(), Git("git"))
			assert.Equal(t, tt.available, st.Available)
			assert.Equal(t, tt.version, st.Version)
			assert.Equal(t, "Git", st.Tool.Name)
		})
	}
}

func TestCheckAllAndRequire(t *testing.T) {
	c, runner := newTestChecker(t)
	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), mock_command.Invocation("git", "--version")).
			Return(command.Result{Stdout: "git version 2"}, nil),
		runner.EXPECT().Run(gomock.Any(), mock_command.Invocation("gh", "--version")).
			Return(command.Result{}, command.ErrNotFound),
		runner.EXPECT().Run(gomock.Any(), mock_command.Invocation("claude", "--version")).
			Return(command.Result{}, command.ErrNotFound),
	)

	statuses := c.CheckAll(context.Background(), Git("git"), GH("gh"), Agent("claude"))
	require.Len(t, statuses, 3)

	err := Require(statuses)
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	require.Len(t, missing.Missing, 2)
	assert.Equal(t, "gh", missing.Missing[0].Command)
	assert.Contains(t, err.Error(), "GitHub CLI (gh) is not available.")
	assert.Contains(t, err.Error(), "Agent CLI (claude) is not available.")
	assert.Contains(t, err.Error(), "https://cli.github.com/")
}

func TestRequireAllAvailable(t *testing.T) {
	assert.NoError(t, Require([]Status{{Tool: Git("git"), Available: true}}))
	assert.NoError(t, Require(nil))
}

func TestGHAuth(t *testing.T) {
	tests := []struct {
		name string
		res  command.Result
		err  error
		ok   bool
		msg  string
	}{
		{name: "logged in", res: command.Result{Stdout: "Logged in to github.com"}, ok: true, msg: "authenticated"},
		{name: "logged out", res: command.Result{ExitCode: 1, Stderr: "You are not logged into any GitHub hosts.\n"}, msg: "You are not logged into any GitHub hosts."},
		{name: "logged out silently", res: command.Result{ExitCode: 1}, msg: "not authenticated"},
		{name: "missing", err: command.ErrNotFound, msg: "gh CLI not installed"},
		{name: "timeout", err: command.ErrTimeout, msg: "timed out checking authentication"},
		{name: "other", err: errors.New("boom"), msg: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, runner := newTestChecker(t)
			runner.EXPECT().
				Run(gomock.Any(), mock_command.Invocation("gh", "auth", "status")).
				Return(tt.res, tt.err)

			ok, msg := c.GHAuth(context.Background(), "gh")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestRequireGHAuth(t *testing.T) {
	c, runner := newTestChecker(t)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		Return(command.Result{ExitCode: 1, Stderr: "not logged in"}, nil)

	err := c.RequireGHAuth(context.Background(), "gh")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Contains(t, err.Error(), "gh auth login")
	assert.Contains(t, err.Error(), "not logged in")
}
