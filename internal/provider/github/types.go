package github

import "github.com/shurcooL/githubv4"

// reviewThreadComment is one comment inside a review thread.
type reviewThreadComment struct {
	Author struct {
		Login string
	}
	Body         string
	Path         string
	Line         *int
	OriginalLine *int
}

// reviewThreadsQuery pages through a pull request's review threads.
type reviewThreadsQuery struct {
	Repository struct {
		PullRequest struct {
			ReviewThreads struct {
				PageInfo struct {
					HasNextPage bool
					EndCursor   githubv4.String
				}
				Nodes []struct {
					IsResolved bool
					Comments   struct {
						Nodes []reviewThreadComment
					} `graphql:"comments(first: 100)"`
				}
			} `graphql:"reviewThreads(first: 100, after: $cursor)"`
		} `graphql:"pullRequest(number: $number)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}
