// Package console renders run progress and summaries for humans.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/alanmeadows/prfixer/internal/agent"
	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/fixer"
)

// PreviewLength is how much of a comment body verbose output shows.
const PreviewLength = 100

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Reporter prints per-comment progress. It implements fixer.Observer.
type Reporter struct {
	w       io.Writer
	verbose bool

	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewReporter writes to w. A spinner is shown while the agent runs only
// when w is a terminal.
func NewReporter(w io.Writer, verbose bool) *Reporter {
	r := &Reporter{w: w, verbose: verbose}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		r.spinner.Suffix = " waiting for agent"
		_ = r.spinner.Color("cyan")
	}
	return r
}

var _ fixer.Observer = (*Reporter)(nil)

// CommentStarted prints the progress header for a unit.
func (r *Reporter) CommentStarted(index, total int, c comment.Comment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w, headingStyle.Render(fmt.Sprintf("Processing comment %d/%d%s...", index+1, total, describe(c))))
	if r.verbose {
		fmt.Fprintf(r.w, "  Author: %s\n", comment.AuthorOf(c))
		fmt.Fprintf(r.w, "  Comment: %s\n", Preview(comment.BodyOf(c), PreviewLength))
	}
	if r.spinner != nil {
		r.spinner.Start()
	}
}

// CommentCompleted prints the outcome line for a unit.
func (r *Reporter) CommentCompleted(_, _ int, _ comment.Comment, res agent.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner != nil && r.spinner.Active() {
		r.spinner.Stop()
	}
	fmt.Fprintln(r.w, StatusLine(res))
	fmt.Fprintln(r.w)
}

// Summary prints the totals block.
func (r *Reporter) Summary(s *fixer.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w, strings.Repeat("=", 40))
	fmt.Fprintln(r.w, headingStyle.Render("Processing complete!"))
	fmt.Fprintf(r.w, "  Total comments: %d\n", s.Total())
	fmt.Fprintf(r.w, "  Changes made: %d\n", s.ChangesMade)
	fmt.Fprintf(r.w, "  No changes needed: %d\n", s.NoChangesNeeded)
	if s.Errors > 0 {
		fmt.Fprintf(r.w, "  Errors: %d\n", s.Errors)
	}
}

// StatusLine renders one outcome.
func StatusLine(res agent.Result) string {
	switch res.Outcome {
	case agent.ChangesMade:
		return okStyle.Render("  -> Changes made and committed")
	case agent.NoChangesNeeded:
		return mutedStyle.Render("  -> No changes needed")
	default:
		return errStyle.Render("  -> Error: " + res.Message)
	}
}

// FinalMessage is the closing line of a run.
func FinalMessage(s *fixer.Summary) string {
	switch {
	case s.Errors > 0:
		return fmt.Sprintf("Completed with %d error(s).", s.Errors)
	case s.ChangesMade > 0:
		return fmt.Sprintf("Done! Created %d commit(s).\nReview the changes and push when ready.", s.ChangesMade)
	default:
		return "Done! No changes were needed."
	}
}

// describe is the location suffix used in progress headers.
func describe(c comment.Comment) string {
	switch c := c.(type) {
	case comment.Discussion:
		return ""
	case comment.Review:
		return " (" + c.State + ")"
	case comment.Inline:
		return " on " + c.Location()
	case comment.InlineGroup:
		return fmt.Sprintf(" on %s (%d comments)", c.Location(), len(c.Comments))
	default:
		panic(fmt.Sprintf("console: unknown comment type %T", c))
	}
}

// Preview flattens body to one line and truncates it to n runes.
func Preview(body string, n int) string {
	flat := strings.ReplaceAll(body, "\n", " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}
