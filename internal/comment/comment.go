// Package comment models the pull request feedback prfixer processes.
//
// Comment is a closed set of variants: Discussion, Review, Inline and
// InlineGroup. Consumers switch over the concrete types and panic on
// anything else.
package comment

import (
	"fmt"
	"strings"
)

// UnknownAuthor stands in for an author missing from the source data.
const UnknownAuthor = "unknown"

// UnknownState stands in for a review state missing from the source data.
const UnknownState = "UNKNOWN"

// Comment is one unit of feedback.
type Comment interface {
	fmt.Stringer
	comment()
}

// Discussion is a general conversation comment on the pull request.
type Discussion struct {
	Author string
	Body   string
}

// Review is the summary body of a submitted review.
type Review struct {
	Author string
	Body   string
	// State is the platform review state, e.g. APPROVED or CHANGES_REQUESTED.
	State string
}

// Inline is a code comment from an unresolved review thread.
type Inline struct {
	Author string
	Body   string
	Path   string
	Line   *int
	// OriginalLine is the line before later pushes shifted the diff.
	OriginalLine *int
}

// InlineGroup collects two or more inline comments on the same location.
type InlineGroup struct {
	Path     string
	Line     *int
	Comments []Inline
}

func (Discussion) comment()  {}
func (Review) comment()      {}
func (Inline) comment()      {}
func (InlineGroup) comment() {}

// EffectiveLine returns Line, or OriginalLine when Line is absent.
func (c Inline) EffectiveLine() *int {
	if c.Line != nil {
		return c.Line
	}
	return c.OriginalLine
}

// Location renders path:line, or just the path when no line is known.
func (c Inline) Location() string {
	return location(c.Path, c.EffectiveLine())
}

// Location renders path:line for the group.
func (g InlineGroup) Location() string {
	return location(g.Path, g.Line)
}

// Authors returns member authors de-duplicated in first-seen order.
func (g InlineGroup) Authors() []string {
	seen := make(map[string]bool, len(g.Comments))
	var authors []string
	for _, c := range g.Comments {
		if seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		authors = append(authors, c.Author)
	}
	return authors
}

// Body joins every member as "author: body", separated by blank lines.
func (g InlineGroup) Body() string {
	parts := make([]string, 0, len(g.Comments))
	for _, c := range g.Comments {
		parts = append(parts, c.Author+": "+c.Body)
	}
	return strings.Join(parts, "\n\n")
}

func (c Discussion) String() string {
	return fmt.Sprintf("discussion by %s", c.Author)
}

func (c Review) String() string {
	return fmt.Sprintf("review (%s) by %s", c.State, c.Author)
}

func (c Inline) String() string {
	return fmt.Sprintf("inline on %s by %s", c.Location(), c.Author)
}

func (g InlineGroup) String() string {
	return fmt.Sprintf("%d inline comments on %s by %s", len(g.Comments), g.Location(), strings.Join(g.Authors(), ", "))
}

// AuthorOf returns the author attribution of any comment variant. Groups
// report their authors comma-separated.
func AuthorOf(c Comment) string {
	switch v := c.(type) {
	case Discussion:
		return v.Author
	case Review:
		return v.Author
	case Inline:
		return v.Author
	case InlineGroup:
		return strings.Join(v.Authors(), ", ")
	default:
		panic(fmt.Sprintf("comment: unknown variant %T", c))
	}
}

// BodyOf returns the text of any comment variant.
func BodyOf(c Comment) string {
	switch v := c.(type) {
	case Discussion:
		return v.Body
	case Review:
		return v.Body
	case Inline:
		return v.Body
	case InlineGroup:
		return v.Body()
	default:
		panic(fmt.Sprintf("comment: unknown variant %T", c))
	}
}

// Kind returns a short label for the variant.
func Kind(c Comment) string {
	switch c.(type) {
	case Discussion:
		return "discussion"
	case Review:
		return "review"
	case Inline:
		return "inline"
	case InlineGroup:
		return "inline-group"
	default:
		panic(fmt.Sprintf("comment: unknown variant %T", c))
	}
}

func location(path string, line *int) string {
	if line == nil {
		return path
	}
	return fmt.Sprintf("%s:%d", path, *line)
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
