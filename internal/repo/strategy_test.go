package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/command/mock_command"
)

var (
	resOK     = command.Result{}
	resFailed = command.Result{ExitCode: 1, Stderr: "error: failed"}
)

func expectGit(runner *mock_command.MockRunner, res command.Result, args ...string) *gomock.Call {
	return runner.EXPECT().Run(gomock.Any(), mock_command.Invocation("git", args...)).Return(res, nil)
}

func TestCheckout_LocalBranch(t *testing.T) {
	g, runner := newMockGit(t)
	expectGit(runner, resOK, "checkout", "feat")

	require.NoError(t, g.Checkout(context.Background(), "feat"))
}

func TestCheckout_TrackingBranchSkipsFetch(t *testing.T) {
	g, runner := newMockGit(t)
	gomock.InOrder(
		expectGit(runner, resFailed, "checkout", "feat"),
		expectGit(runner, resOK, "checkout", "-b", "feat", "origin/feat"),
	)

	require.NoError(t, g.Checkout(context.Background(), "feat"))
}

func TestCheckout_RefspecFetch(t *testing.T) {
	g, runner := newMockGit(t)
	gomock.InOrder(
		expectGit(runner, resFailed, "checkout", "feat"),
		expectGit(runner, resFailed, "checkout", "-b", "feat", "origin/feat"),
		expectGit(runner, resOK, "fetch", "origin", "feat:feat"),
		expectGit(runner, resOK, "checkout", "feat"),
	)

	require.NoError(t, g.Checkout(context.Background(), "feat"))
}

func TestCheckout_PlainFetchFallback(t *testing.T) {
	g, runner := newMockGit(t)
	gomock.InOrder(
		expectGit(runner, resFailed, "checkout", "feat"),
		expectGit(runner, resFailed, "checkout", "-b", "feat", "origin/feat"),
		expectGit(runner, resFailed, "fetch", "origin", "feat:feat"),
		expectGit(runner, resOK, "fetch", "origin", "feat"),
		expectGit(runner, resOK, "checkout", "-b", "feat", "origin/feat"),
	)

	require.NoError(t, g.Checkout(context.Background(), "feat"))
}

func TestCheckout_CustomRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mock_command.NewMockRunner(ctrl)
	g := New(runner, "/work", WithRemote("upstream"))

	gomock.InOrder(
		expectGit(runner, resFailed, "checkout", "feat"),
		expectGit(runner, resOK, "checkout", "-b", "feat", "upstream/feat"),
	)

	require.NoError(t, g.Checkout(context.Background(), "feat"))
}

func TestCheckout_Exhausted(t *testing.T) {
	g, runner := newMockGit(t)
	gomock.InOrder(
		expectGit(runner, command.Result{ExitCode: 1, Stderr: "pathspec 'feat' did not match"}, "checkout", "feat"),
		expectGit(runner, command.Result{ExitCode: 128, Stderr: "'origin/feat' is not a commit"}, "checkout", "-b", "feat", "origin/feat"),
		expectGit(runner, command.Result{ExitCode: 128, Stderr: "couldn't find remote ref feat"}, "fetch", "origin", "feat:feat"),
		expectGit(runner, command.Result{ExitCode: 128, Stderr: "couldn't find remote ref feat (plain)"}, "fetch", "origin", "feat"),
	)

	err := g.Checkout(context.Background(), "feat")
	require.Error(t, err)

	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	require.Len(t, gitErr.Attempts, 4)
	assert.Equal(t, "git fetch origin feat", gitErr.Attempts[3].Command)
	assert.Contains(t, err.Error(), "pathspec 'feat' did not match")
	assert.Contains(t, err.Error(), "couldn't find remote ref feat (plain)")
}

func TestCheckout_FetchSucceedsButCheckoutFailsStops(t *testing.T) {
	g, runner := newMockGit(t)
	gomock.InOrder(
		expectGit(runner, resFailed, "checkout", "feat"),
		expectGit(runner, resFailed, "checkout", "-b", "feat", "origin/feat"),
		expectGit(runner, resOK, "fetch", "origin", "feat:feat"),
		expectGit(runner, command.Result{ExitCode: 1, Stderr: "local changes would be overwritten"}, "checkout", "feat"),
	)

	err := g.Checkout(context.Background(), "feat")
	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Len(t, gitErr.Attempts, 3)
	assert.Contains(t, err.Error(), "local changes would be overwritten")
}

func TestCheckout_GitMissingAbortsImmediately(t *testing.T) {
	g, runner := newMockGit(t)
	runner.EXPECT().Run(gomock.Any(), mock_command.Invocation("git", "checkout", "feat")).
		Return(command.Result{}, fmt.Errorf("git: %w", command.ErrNotFound))

	err := g.Checkout(context.Background(), "feat")
	assert.ErrorIs(t, err, ErrGitNotFound)

	var gitErr *GitError
	assert.False(t, errors.As(err, &gitErr))
}

func TestCheckout_GitMissingDuringFetch(t *testing.T) {
	g, runner := newMockGit(t)
	gomock.InOrder(
		expectGit(runner, resFailed, "checkout", "feat"),
		expectGit(runner, resFailed, "checkout", "-b", "feat", "origin/feat"),
		runner.EXPECT().Run(gomock.Any(), mock_command.Invocation("git", "fetch", "origin", "feat:feat")).
			Return(command.Result{}, fmt.Errorf("git: %w", command.ErrNotFound)),
	)

	assert.ErrorIs(t, g.Checkout(context.Background(), "feat"), ErrGitNotFound)
}

func TestCheckout_RealRepository(t *testing.T) {
	base := t.TempDir()
	origin := filepath.Join(base, "origin")
	clone := filepath.Join(base, "clone")

	require.NoError(t, os.MkdirAll(origin, 0755))
	initGitRepo(t, origin)
	gitCmds(t, origin, []string{"branch", "known"})
	gitCmds(t, base, []string{"clone", origin, clone})

	// Created after the clone, so only a fetch can find it.
	gitCmds(t, origin, []string{"branch", "late"})

	g := New(command.NewExecRunner(), clone)
	ctx := context.Background()

	require.NoError(t, g.Checkout(ctx, "known"))
	branch, err := g.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "known", branch)

	require.NoError(t, g.Checkout(ctx, "late"))
	branch, err = g.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", branch)

	err = g.Checkout(ctx, "does-not-exist")
	var gitErr *GitError
	require.ErrorAs(t, err, &gitErr)
	assert.Len(t, gitErr.Attempts, 4)
}
