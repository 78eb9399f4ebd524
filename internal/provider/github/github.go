// Package github implements provider.Source against the GitHub REST and
// GraphQL APIs.
package github

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	github_ratelimit "github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/prref"
	"github.com/alanmeadows/prfixer/internal/provider"
)

// Backend implements provider.Source for GitHub.
type Backend struct {
	client     *gh.Client
	gqlOnce    sync.Once
	gqlClient  *githubv4.Client
	token      string
	graphqlURL string // override for testing
}

// NewBackend creates a GitHub API backend authenticated with token.
// Uses go-github-ratelimit middleware for automatic rate limit handling.
func NewBackend(token string) *Backend {
	rateLimiter := github_ratelimit.NewClient(nil)
	client := gh.NewClient(rateLimiter)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Backend{
		client: client,
		token:  token,
	}
}

// Name returns "api".
func (b *Backend) Name() string {
	return "api"
}

// HeadBranch returns the head ref name of the pull request.
func (b *Backend) HeadBranch(ctx context.Context, ref prref.Reference) (string, error) {
	pr, _, err := b.client.PullRequests.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return "", fmt.Errorf("failed to get PR: %w", err)
	}
	return pr.GetHead().GetRef(), nil
}

// DiscussionComments lists the issue comments on the pull request.
func (b *Backend) DiscussionComments(ctx context.Context, ref prref.Reference) ([]comment.Discussion, error) {
	var comments []comment.Discussion

	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := b.client.Issues.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments: %w", err)
		}
		for _, c := range page {
			comments = append(comments, comment.Discussion{
				Author: c.GetUser().GetLogin(),
				Body:   c.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return comments, nil
}

// ReviewSummaries lists submitted reviews, skipping those without a body.
func (b *Backend) ReviewSummaries(ctx context.Context, ref prref.Reference) ([]comment.Review, error) {
	var reviews []comment.Review

	opts := &gh.ListOptions{PerPage: 100}
	for {
		page, resp, err := b.client.PullRequests.ListReviews(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews: %w", err)
		}
		for _, r := range page {
			if r.GetBody() == "" {
				continue
			}
			reviews = append(reviews, comment.Review{
				Author: r.GetUser().GetLogin(),
				Body:   r.GetBody(),
				State:  r.GetState(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return reviews, nil
}

// InlineComments returns comments from unresolved review threads. Thread
// resolution is only exposed over GraphQL.
func (b *Backend) InlineComments(ctx context.Context, ref prref.Reference) ([]comment.Inline, error) {
	gql := b.getGraphQLClient(ctx)

	vars := map[string]any{
		"owner":  githubv4.String(ref.Owner),
		"repo":   githubv4.String(ref.Repo),
		"number": githubv4.Int(ref.Number),
		"cursor": (*githubv4.String)(nil),
	}

	var inline []comment.Inline
	for {
		var q reviewThreadsQuery
		if err := gql.Query(ctx, &q, vars); err != nil {
			return nil, fmt.Errorf("failed to query review threads: %w", err)
		}

		threads := q.Repository.PullRequest.ReviewThreads
		for _, thread := range threads.Nodes {
			if thread.IsResolved {
				continue
			}
			for _, c := range thread.Comments.Nodes {
				inline = append(inline, comment.Inline{
					Author:       c.Author.Login,
					Body:         c.Body,
					Path:         c.Path,
					Line:         c.Line,
					OriginalLine: c.OriginalLine,
				})
			}
		}

		if !threads.PageInfo.HasNextPage {
			break
		}
		vars["cursor"] = githubv4.NewString(threads.PageInfo.EndCursor)
	}

	return inline, nil
}

// getGraphQLClient returns (and lazily creates) the GitHub GraphQL client.
// Thread-safe via sync.Once.
func (b *Backend) getGraphQLClient(ctx context.Context) *githubv4.Client {
	b.gqlOnce.Do(func() {
		var httpClient *http.Client
		if b.token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: b.token})
			httpClient = oauth2.NewClient(ctx, ts)
		}
		if b.graphqlURL != "" {
			b.gqlClient = githubv4.NewEnterpriseClient(b.graphqlURL, httpClient)
			return
		}
		b.gqlClient = githubv4.NewClient(httpClient)
	})
	return b.gqlClient
}

var _ provider.Source = (*Backend)(nil)
