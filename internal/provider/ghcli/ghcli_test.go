package ghcli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/command/mock_command"
	"github.com/alanmeadows/prfixer/internal/prref"
)

var ref = prref.Reference{Owner: "o", Repo: "r", Number: 42}

func newTestBackend(t *testing.T) (*Backend, *mock_command.MockRunner) {
	t.Helper()
	runner := mock_command.NewMockRunner(gomock.NewController(t))
	return NewBackend(runner, "", 0), runner
}

func TestNewBackendDefaults(t *testing.T) {
	b := NewBackend(nil, "", 0)
	assert.Equal(t, "gh", b.binary)
	assert.Equal(t, DefaultTimeout, b.timeout)
	assert.Equal(t, "gh", b.Name())
}

func TestHeadBranch(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().
		Run(gomock.Any(), mock_command.Invocation("gh", "pr", "view", "42", "--repo", "o/r", "--json", "headRefName")).
		Return(command.Result{Stdout: `{"headRefName":"fix/typo"}`}, nil)

	branch, err := b.HeadBranch(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "fix/typo", branch)
}

func TestHeadBranch_Missing(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(command.Result{Stdout: `{}`}, nil)

	branch, err := b.HeadBranch(context.Background(), ref)
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestDiscussionComments(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().
		Run(gomock.Any(), mock_command.Invocation("gh", "pr", "view", "42", "--repo", "o/r", "--json", "comments")).
		Return(command.Result{Stdout: `{"comments":[
			{"author":{"login":"alice"},"body":"first"},
			{"author":null,"body":"from a deleted account"},
			{"author":{"login":"bob"}}
		]}`}, nil)

	comments, err := b.DiscussionComments(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "alice", comments[0].Author)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "unknown", comments[1].Author)
	assert.Equal(t, "", comments[2].Body)
}

func TestDiscussionComments_InvalidJSON(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(command.Result{Stdout: `not json`}, nil)

	_, err := b.DiscussionComments(context.Background(), ref)
	assert.Error(t, err)
}

func TestReviewSummaries(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().
		Run(gomock.Any(), mock_command.Invocation("gh", "api", "--paginate", "repos/o/r/pulls/42/reviews", "--jq", ".[]")).
		Return(command.Result{Stdout: `{"user":{"login":"carol"},"body":"please add tests","state":"CHANGES_REQUESTED"}
{"user":{"login":"dave"},"body":"","state":"APPROVED"}
{"user":{"login":"erin"},"body":"  \n ","state":"COMMENTED"}
{"user":null,"body":"looks odd"}
`}, nil)

	reviews, err := b.ReviewSummaries(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "carol", reviews[0].Author)
	assert.Equal(t, "CHANGES_REQUESTED", reviews[0].State)
	assert.Equal(t, "unknown", reviews[1].Author)
	assert.Equal(t, "UNKNOWN", reviews[1].State)
}

func TestInlineComments_SkipsResolvedThreads(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, inv command.Invocation) (command.Result, error) {
			assert.Equal(t, "gh", inv.Name)
			assert.Equal(t, []string{"api", "graphql", "--paginate"}, inv.Args[:3])
			assert.Contains(t, inv.Args, "owner=o")
			assert.Contains(t, inv.Args, "repo=r")
			assert.Contains(t, inv.Args, "number=42")
			return command.Result{Stdout: `{"isResolved":false,"comments":{"nodes":[{"author":{"login":"x"},"body":"rename","path":"a.py","line":5,"originalLine":4},{"author":{"login":"y"},"body":"+1","path":"a.py","line":5,"originalLine":null}]}}
{"isResolved":true,"comments":{"nodes":[{"author":{"login":"z"},"body":"done already","path":"b.py","line":1}]}}
{"isResolved":false,"comments":{"nodes":[{"author":null,"body":"outdated","path":"c.py","line":null,"originalLine":12}]}}
`}, nil
		})

	inline, err := b.InlineComments(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, inline, 3)

	assert.Equal(t, "x", inline[0].Author)
	assert.Equal(t, 5, *inline[0].Line)
	assert.Equal(t, 4, *inline[0].OriginalLine)
	assert.Nil(t, inline[1].OriginalLine)

	assert.Equal(t, "unknown", inline[2].Author)
	assert.Nil(t, inline[2].Line)
	assert.Equal(t, 12, *inline[2].EffectiveLine())
}

func TestGH_Failures(t *testing.T) {
	tests := []struct {
		name    string
		res     command.Result
		err     error
		wantErr error
		wantMsg string
	}{
		{
			name:    "not installed",
			err:     fmt.Errorf("gh: %w", command.ErrNotFound),
			wantErr: ErrGHNotFound,
		},
		{
			name:    "timeout",
			err:     fmt.Errorf("gh: %w", command.ErrTimeout),
			wantErr: command.ErrTimeout,
		},
		{
			name:    "non-zero exit",
			res:     command.Result{ExitCode: 1, Stderr: "GraphQL: Could not resolve to a PullRequest"},
			wantMsg: "Could not resolve to a PullRequest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, runner := newTestBackend(t)
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(tt.res, tt.err)

			_, err := b.HeadBranch(context.Background(), ref)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestToken(t *testing.T) {
	b, runner := newTestBackend(t)
	runner.EXPECT().
		Run(gomock.Any(), mock_command.Invocation("gh", "auth", "token")).
		Return(command.Result{Stdout: "gho_abc123\n"}, nil)

	token, err := b.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gho_abc123", token)
}
