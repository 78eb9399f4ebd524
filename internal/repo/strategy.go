package repo

import (
	"context"
	"log/slog"
)

// checkoutStrategy is one tier of the checkout cascade. When prepare is
// set it runs first; if it fails the cascade moves on, but if it succeeds
// and the checkout that follows fails the cascade stops there.
type checkoutStrategy struct {
	name     string
	prepare  func(branch, remote string) []string
	checkout func(branch, remote string) []string
}

// checkoutStrategies are tried in order, cheapest first:
//  1. the branch already exists locally
//  2. a remote-tracking ref is already present
//  3. the remote has the branch and a ref-mapping fetch can create it
//  4. a plain fetch populates the remote-tracking ref
var checkoutStrategies = []checkoutStrategy{
	{
		name:     "local",
		checkout: checkoutExisting,
	},
	{
		name:     "tracking",
		checkout: checkoutTracking,
	},
	{
		name: "fetch-refspec",
		prepare: func(branch, remote string) []string {
			return []string{"fetch", remote, branch + ":" + branch}
		},
		checkout: checkoutExisting,
	},
	{
		name: "fetch",
		prepare: func(branch, remote string) []string {
			return []string{"fetch", remote, branch}
		},
		checkout: checkoutTracking,
	},
}

func checkoutExisting(branch, _ string) []string {
	return []string{"checkout", branch}
}

func checkoutTracking(branch, remote string) []string {
	return []string{"checkout", "-b", branch, remote + "/" + branch}
}

// Checkout brings the working tree onto branch, falling through the
// strategies until one succeeds. Failure output of every attempt is kept
// and returned in a GitError only when the cascade gives up. A missing git
// binary aborts immediately with ErrGitNotFound.
func (g *Git) Checkout(ctx context.Context, branch string) error {
	gitErr := &GitError{Op: "checking out branch " + branch}

	for _, s := range checkoutStrategies {
		if s.prepare != nil {
			args := s.prepare(branch, g.remote)
			res, err := g.run(ctx, args...)
			if err != nil {
				return err
			}
			if !res.Success() {
				gitErr.Attempts = append(gitErr.Attempts, attempt(g.binary, args, res))
				slog.Debug("checkout strategy failed", "strategy", s.name, "branch", branch, "step", "prepare")
				continue
			}
		}

		args := s.checkout(branch, g.remote)
		res, err := g.run(ctx, args...)
		if err != nil {
			return err
		}
		if res.Success() {
			slog.Info("checked out branch", "branch", branch, "strategy", s.name)
			return nil
		}
		gitErr.Attempts = append(gitErr.Attempts, attempt(g.binary, args, res))
		slog.Debug("checkout strategy failed", "strategy", s.name, "branch", branch, "step", "checkout")

		if s.prepare != nil {
			return gitErr
		}
	}

	return gitErr
}
