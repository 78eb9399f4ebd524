// Package provider fetches pull request metadata and review feedback from
// the hosting platform.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/prref"
)

// ErrEmptyBranch is returned when the platform reports no head branch.
var ErrEmptyBranch = errors.New("pull request has no head branch name")

// Source is a hosting platform backend. Implementations return inline
// comments only from unresolved review threads.
type Source interface {
	// Name returns the backend identifier (e.g. "gh", "api").
	Name() string

	// HeadBranch returns the name of the pull request's head branch.
	HeadBranch(ctx context.Context, ref prref.Reference) (string, error)

	// DiscussionComments returns the general conversation comments.
	DiscussionComments(ctx context.Context, ref prref.Reference) ([]comment.Discussion, error)

	// ReviewSummaries returns submitted reviews that carry a body.
	ReviewSummaries(ctx context.Context, ref prref.Reference) ([]comment.Review, error)

	// InlineComments returns code comments from unresolved threads.
	InlineComments(ctx context.Context, ref prref.Reference) ([]comment.Inline, error)
}

// PlatformError wraps a failure talking to the hosting platform.
type PlatformError struct {
	Source string
	Op     string
	Err    error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// HeadBranch resolves the pull request's head branch, treating an empty
// name as a platform failure.
func HeadBranch(ctx context.Context, src Source, ref prref.Reference) (string, error) {
	branch, err := src.HeadBranch(ctx, ref)
	if err != nil {
		return "", &PlatformError{Source: src.Name(), Op: "getting head branch of " + ref.String(), Err: err}
	}
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return "", &PlatformError{Source: src.Name(), Op: "getting head branch of " + ref.String(), Err: ErrEmptyBranch}
	}
	return branch, nil
}

// FetchAll retrieves all three comment kinds and normalizes them: absent
// authors become "unknown", absent review states become "UNKNOWN", and
// reviews with a blank body are dropped.
func FetchAll(ctx context.Context, src Source, ref prref.Reference) (*comment.Collection, error) {
	wrap := func(op string, err error) error {
		return &PlatformError{Source: src.Name(), Op: "fetching " + op + " for " + ref.String(), Err: err}
	}

	discussion, err := src.DiscussionComments(ctx, ref)
	if err != nil {
		return nil, wrap("discussion comments", err)
	}
	reviews, err := src.ReviewSummaries(ctx, ref)
	if err != nil {
		return nil, wrap("review summaries", err)
	}
	inline, err := src.InlineComments(ctx, ref)
	if err != nil {
		return nil, wrap("inline comments", err)
	}

	c := &comment.Collection{
		Discussion: make([]comment.Discussion, 0, len(discussion)),
		Reviews:    make([]comment.Review, 0, len(reviews)),
		Inline:     make([]comment.Inline, 0, len(inline)),
	}
	for _, d := range discussion {
		d.Author = authorOrUnknown(d.Author)
		c.Discussion = append(c.Discussion, d)
	}
	for _, r := range reviews {
		if strings.TrimSpace(r.Body) == "" {
			continue
		}
		r.Author = authorOrUnknown(r.Author)
		if r.State == "" {
			r.State = comment.UnknownState
		}
		c.Reviews = append(c.Reviews, r)
	}
	for _, i := range inline {
		i.Author = authorOrUnknown(i.Author)
		c.Inline = append(c.Inline, i)
	}

	slog.Debug("fetched comments",
		"source", src.Name(),
		"pr", ref.String(),
		"discussion", len(c.Discussion),
		"reviews", len(c.Reviews),
		"inline", len(c.Inline),
	)
	return c, nil
}

func authorOrUnknown(author string) string {
	if author == "" {
		return comment.UnknownAuthor
	}
	return author
}
