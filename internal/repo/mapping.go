package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/alanmeadows/prfixer/internal/prref"
)

var (
	// ErrNoRemotes means the repository has no remotes configured.
	ErrNoRemotes = errors.New("repository has no git remotes configured")
	// ErrUnparseableRemotes means no remote URL points at a github.com repository.
	ErrUnparseableRemotes = errors.New("could not parse any github.com repository from git remotes")
)

const githubHost = "github.com"

// MismatchError means the remotes point at repositories other than the
// pull request's.
type MismatchError struct {
	Expected string
	Found    []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("repository mismatch: pull request belongs to %s but remotes point to %s",
		e.Expected, strings.Join(e.Found, ", "))
}

// ValidateIdentity confirms that at least one remote of the working tree
// refers to ref's owner/repo. The comparison is case-insensitive and any
// matching fetch or push entry is sufficient.
func (g *Git) ValidateIdentity(ctx context.Context, ref prref.Reference) error {
	res, err := g.run(ctx, "remote", "-v")
	if err != nil {
		return err
	}
	if !res.Success() {
		return &GitError{
			Op:       "listing remotes (is this a git repository?)",
			Attempts: []Attempt{attempt(g.binary, []string{"remote", "-v"}, res)},
		}
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return ErrNoRemotes
	}

	expected := strings.ToLower(ref.Slug())
	found := RemoteRepos(res.Stdout)
	if len(found) == 0 {
		return ErrUnparseableRemotes
	}
	if slices.Contains(found, expected) {
		return nil
	}
	return &MismatchError{Expected: ref.Slug(), Found: found}
}

// RemoteRepos extracts the sorted, de-duplicated lowercase owner/repo
// pairs of every github.com URL in `git remote -v` output.
func RemoteRepos(remoteOutput string) []string {
	var found []string
	for _, line := range strings.Split(remoteOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if slug, ok := parseGitHubURL(fields[1]); ok {
			found = append(found, slug)
		}
	}
	slices.Sort(found)
	return slices.Compact(found)
}

// parseGitHubURL returns owner/repo for https, scp-style and ssh:// URLs
// that point at github.com.
func parseGitHubURL(url string) (string, bool) {
	parts := strings.Split(normalizeGitURL(url), "/")
	if len(parts) != 3 || parts[0] != githubHost || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return parts[1] + "/" + parts[2], true
}

// normalizeGitURL lowercases a git URL and reduces it to host/path.
//
//	https://github.com/o/r.git     -> github.com/o/r
//	git@github.com:o/r.git         -> github.com/o/r
//	ssh://git@github.com/o/r.git   -> github.com/o/r
func normalizeGitURL(url string) string {
	url = strings.ToLower(strings.TrimSpace(url))
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	switch {
	case strings.HasPrefix(url, "ssh://"):
		url = strings.TrimPrefix(url, "ssh://")
		url = strings.TrimPrefix(url, "git@")
	case strings.HasPrefix(url, "git@"):
		url = strings.TrimPrefix(url, "git@")
		url = strings.Replace(url, ":", "/", 1)
	default:
		url = strings.TrimPrefix(url, "https://")
		url = strings.TrimPrefix(url, "http://")
	}

	return url
}
