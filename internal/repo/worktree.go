package repo

import (
	"context"
	"fmt"
	"strings"
)

// maxDirtyPreview caps how many changed files a DirtyError lists.
const maxDirtyPreview = 5

// DirtyError means the working tree has uncommitted changes.
type DirtyError struct {
	Files []string
}

func (e *DirtyError) Error() string {
	var b strings.Builder
	b.WriteString("working directory has uncommitted changes:")
	for i, f := range e.Files {
		if i == maxDirtyPreview {
			fmt.Fprintf(&b, "\n  ... and %d more", len(e.Files)-maxDirtyPreview)
			break
		}
		fmt.Fprintf(&b, "\n  %s", f)
	}
	b.WriteString("\ncommit or stash them first (git stash), then re-run")
	return b.String()
}

// CurrentBranch returns the checked out branch, or "" on a detached HEAD.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "reading current branch", "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TopLevel returns the root of the working tree containing the directory.
func (g *Git) TopLevel(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "finding repository root", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles lists paths reported by `git status --porcelain`, including
// untracked files.
func (g *Git) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := g.output(ctx, "checking working tree status", "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// RequireClean returns a DirtyError when the working tree has changes.
func (g *Git) RequireClean(ctx context.Context) error {
	files, err := g.ChangedFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		return &DirtyError{Files: files}
	}
	return nil
}

// parsePorcelain strips the two-letter status prefix from each line.
func parsePorcelain(out string) []string {
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) > 3 {
			line = line[3:]
		}
		files = append(files, strings.TrimSpace(line))
	}
	return files
}
