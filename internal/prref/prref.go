// Package prref parses GitHub pull request URLs.
package prref

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidReference is wrapped by every Parse failure.
var ErrInvalidReference = errors.New("invalid pull request reference")

const host = "github.com"

// pathPattern matches owner/repo/pull/N with an optional trailing sub-view
// such as /files or /commits/<sha>.
var pathPattern = regexp.MustCompile(`^([^/]+)/([^/]+)/pull/(\d+)(?:/.*)?$`)

// Reference identifies a single pull request.
type Reference struct {
	Owner  string
	Repo   string
	Number int
}

// Parse extracts a Reference from a pull request URL. A missing scheme is
// accepted only when the input begins with the GitHub host.
func Parse(raw string) (Reference, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		if !strings.HasPrefix(s, host) {
			return Reference{}, invalid(raw, "expected a github.com pull request URL")
		}
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Reference{}, invalid(raw, err.Error())
	}
	if u.Host != host && u.Host != "www."+host {
		return Reference{}, invalid(raw, fmt.Sprintf("host %q is not %s", u.Host, host))
	}

	m := pathPattern.FindStringSubmatch(strings.Trim(u.EscapedPath(), "/"))
	if m == nil {
		return Reference{}, invalid(raw, "expected path owner/repo/pull/<number>")
	}

	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return Reference{}, invalid(raw, fmt.Sprintf("pull request number %q must be a positive integer", m[3]))
	}

	return Reference{Owner: m[1], Repo: m[2], Number: n}, nil
}

func invalid(raw, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidReference, raw, reason)
}

// URL returns the canonical https URL of the pull request.
func (r Reference) URL() string {
	return fmt.Sprintf("https://%s/%s/%s/pull/%d", host, r.Owner, r.Repo, r.Number)
}

// Slug returns owner/repo.
func (r Reference) Slug() string {
	return r.Owner + "/" + r.Repo
}

// String returns the short owner/repo#N form.
func (r Reference) String() string {
	return fmt.Sprintf("%s#%d", r.Slug(), r.Number)
}
