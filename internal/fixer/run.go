package fixer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/prref"
	"github.com/alanmeadows/prfixer/internal/provider"
)

// Workspace is the git working tree the run operates on.
type Workspace interface {
	ValidateIdentity(ctx context.Context, ref prref.Reference) error
	RequireClean(ctx context.Context) error
	Checkout(ctx context.Context, branch string) error
	CurrentBranch(ctx context.Context) (string, error)
}

// Options controls Prepare.
type Options struct {
	// SkipCheckout leaves the working tree on its current branch.
	SkipCheckout bool
	// GroupInline collapses inline comments sharing a location.
	GroupInline bool
}

// Plan is everything known before the agent is first invoked.
type Plan struct {
	Ref    prref.Reference
	Branch string
	// SkippedCheckout is set when the working tree was left as it was.
	SkippedCheckout bool
	// CurrentBranch is the branch the tree was on when checkout was skipped.
	// It is empty on a detached HEAD or when the branch could not be read.
	CurrentBranch string
	Comments      *comment.Collection
	Queue         []comment.Comment
}

// Orchestrator wires the workspace and comment source together.
type Orchestrator struct {
	Workspace Workspace
	Source    provider.Source
}

// Prepare resolves the pull request, validates the repository, switches to
// the head branch and builds the processing queue. Nothing is mutated
// before the repository identity has been confirmed.
func (o *Orchestrator) Prepare(ctx context.Context, rawURL string, opts Options) (*Plan, error) {
	ref, err := prref.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	log := slog.With("pr", ref.String())

	if err := o.Workspace.ValidateIdentity(ctx, ref); err != nil {
		return nil, err
	}
	log.Debug("repository identity confirmed")

	branch, err := provider.HeadBranch(ctx, o.Source, ref)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Ref: ref, Branch: branch}

	if opts.SkipCheckout {
		plan.SkippedCheckout = true
		current, err := o.Workspace.CurrentBranch(ctx)
		switch {
		case err != nil:
			log.Warn("could not determine current branch", "error", err)
		case current != branch:
			plan.CurrentBranch = current
			log.Warn("skipping checkout while not on the pull request branch", "current", current, "branch", branch)
		default:
			plan.CurrentBranch = current
		}
	} else {
		if err := o.Workspace.RequireClean(ctx); err != nil {
			return nil, err
		}
		if err := o.Workspace.Checkout(ctx, branch); err != nil {
			return nil, err
		}
	}

	comments, err := provider.FetchAll(ctx, o.Source, ref)
	if err != nil {
		return nil, err
	}
	plan.Comments = comments

	if opts.GroupInline {
		plan.Queue = comments.Grouped()
	} else {
		plan.Queue = comments.All()
	}

	log.Info("prepared run",
		"branch", branch,
		"comments", comments.Total(),
		"units", len(plan.Queue),
	)
	return plan, nil
}

// Execute runs the plan's queue through the engine.
func (p *Plan) Execute(ctx context.Context, engine *Engine) (*Summary, error) {
	if len(p.Queue) == 0 {
		return &Summary{}, nil
	}
	summary, err := engine.Run(ctx, p.Queue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Ref, err)
	}
	return summary, nil
}
