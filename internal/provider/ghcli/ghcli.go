// Package ghcli implements provider.Source on top of the gh command-line
// tool, reusing whatever authentication gh already has.
package ghcli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/prref"
	"github.com/alanmeadows/prfixer/internal/provider"
)

// ErrGHNotFound is returned when the gh executable is missing.
var ErrGHNotFound = errors.New("gh CLI not found: install it from https://cli.github.com and run `gh auth login`")

// DefaultTimeout bounds each gh invocation.
const DefaultTimeout = 60 * time.Second

// reviewThreadsQuery lists review threads with their comments. gh's
// --paginate drives $endCursor through pageInfo.
const reviewThreadsQuery = `query($owner: String!, $repo: String!, $number: Int!, $endCursor: String) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      reviewThreads(first: 100, after: $endCursor) {
        pageInfo { hasNextPage endCursor }
        nodes {
          isResolved
          comments(first: 100) {
            nodes { author { login } body path line originalLine }
          }
        }
      }
    }
  }
}`

// Backend runs gh subprocesses.
type Backend struct {
	runner  command.Runner
	binary  string
	timeout time.Duration
}

// NewBackend returns a gh-backed source. An empty binary means "gh".
func NewBackend(runner command.Runner, binary string, timeout time.Duration) *Backend {
	if binary == "" {
		binary = "gh"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backend{runner: runner, binary: binary, timeout: timeout}
}

// Name returns "gh".
func (b *Backend) Name() string {
	return "gh"
}

// HeadBranch reads headRefName from `gh pr view`.
func (b *Backend) HeadBranch(ctx context.Context, ref prref.Reference) (string, error) {
	out, err := b.gh(ctx, "pr", "view", strconv.Itoa(ref.Number), "--repo", ref.Slug(), "--json", "headRefName")
	if err != nil {
		return "", err
	}
	return gjson.Get(out, "headRefName").String(), nil
}

// DiscussionComments reads the conversation comments from `gh pr view`.
func (b *Backend) DiscussionComments(ctx context.Context, ref prref.Reference) ([]comment.Discussion, error) {
	out, err := b.gh(ctx, "pr", "view", strconv.Itoa(ref.Number), "--repo", ref.Slug(), "--json", "comments")
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(out) {
		return nil, fmt.Errorf("parsing gh pr view output: invalid JSON")
	}

	var comments []comment.Discussion
	gjson.Get(out, "comments").ForEach(func(_, c gjson.Result) bool {
		comments = append(comments, comment.Discussion{
			Author: login(c.Get("author.login")),
			Body:   c.Get("body").String(),
		})
		return true
	})
	return comments, nil
}

// ReviewSummaries lists reviews through the REST API, one JSON object per
// line, dropping reviews whose body is blank.
func (b *Backend) ReviewSummaries(ctx context.Context, ref prref.Reference) ([]comment.Review, error) {
	path := fmt.Sprintf("repos/%s/pulls/%d/reviews", ref.Slug(), ref.Number)
	out, err := b.gh(ctx, "api", "--paginate", path, "--jq", ".[]")
	if err != nil {
		return nil, err
	}

	var reviews []comment.Review
	var parseErr error
	gjson.ForEachLine(out, func(line gjson.Result) bool {
		if !line.IsObject() {
			parseErr = fmt.Errorf("parsing review: unexpected value %q", line.Raw)
			return false
		}
		body := line.Get("body").String()
		if strings.TrimSpace(body) == "" {
			return true
		}
		state := line.Get("state").String()
		if state == "" {
			state = comment.UnknownState
		}
		reviews = append(reviews, comment.Review{
			Author: login(line.Get("user.login")),
			Body:   body,
			State:  state,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return reviews, nil
}

// InlineComments queries review threads over GraphQL and keeps comments
// from unresolved threads only.
func (b *Backend) InlineComments(ctx context.Context, ref prref.Reference) ([]comment.Inline, error) {
	out, err := b.gh(ctx, "api", "graphql", "--paginate",
		"-f", "query="+reviewThreadsQuery,
		"-F", "owner="+ref.Owner,
		"-F", "repo="+ref.Repo,
		"-F", "number="+strconv.Itoa(ref.Number),
		"--jq", ".data.repository.pullRequest.reviewThreads.nodes[]",
	)
	if err != nil {
		return nil, err
	}

	var inline []comment.Inline
	gjson.ForEachLine(out, func(thread gjson.Result) bool {
		if thread.Get("isResolved").Bool() {
			return true
		}
		thread.Get("comments.nodes").ForEach(func(_, c gjson.Result) bool {
			inline = append(inline, comment.Inline{
				Author:       login(c.Get("author.login")),
				Body:         c.Get("body").String(),
				Path:         c.Get("path").String(),
				Line:         optionalInt(c.Get("line")),
				OriginalLine: optionalInt(c.Get("originalLine")),
			})
			return true
		})
		return true
	})
	return inline, nil
}

// Token returns the token gh is authenticated with.
func (b *Backend) Token(ctx context.Context) (string, error) {
	out, err := b.gh(ctx, "auth", "token")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// gh runs one gh command and returns stdout. A non-zero exit becomes an
// error carrying gh's own message.
func (b *Backend) gh(ctx context.Context, args ...string) (string, error) {
	res, err := b.runner.Run(ctx, command.Invocation{Name: b.binary, Args: args, Timeout: b.timeout})
	if err != nil {
		if errors.Is(err, command.ErrNotFound) {
			return "", ErrGHNotFound
		}
		return "", fmt.Errorf("gh %s: %w", strings.Join(args[:2], " "), err)
	}
	if !res.Success() {
		return "", fmt.Errorf("gh %s failed (exit %d): %s", strings.Join(args[:2], " "), res.ExitCode, res.Output())
	}
	return res.Stdout, nil
}

func login(r gjson.Result) string {
	if s := r.String(); s != "" {
		return s
	}
	return comment.UnknownAuthor
}

func optionalInt(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	n := int(r.Int())
	return &n
}

var _ provider.Source = (*Backend)(nil)
