// Package report records the outcome of a run as a markdown document.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/fixer"
	"github.com/alanmeadows/prfixer/internal/store"
)

// Report is a persisted run summary.
type Report struct {
	RunID           string
	PR              string
	URL             string
	Branch          string
	Started         time.Time
	Finished        time.Time
	Total           int
	ChangesMade     int
	NoChangesNeeded int
	Errors          int
	// Body is the rendered per-unit listing.
	Body string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// New builds a report for a finished run.
func New(runID string, plan *fixer.Plan, summary *fixer.Summary, started, finished time.Time) *Report {
	return &Report{
		RunID:           runID,
		PR:              plan.Ref.String(),
		URL:             plan.Ref.URL(),
		Branch:          plan.Branch,
		Started:         started,
		Finished:        finished,
		Total:           summary.Total(),
		ChangesMade:     summary.ChangesMade,
		NoChangesNeeded: summary.NoChangesNeeded,
		Errors:          summary.Errors,
		Body:            renderEntries(plan.Ref.String(), summary.Entries),
	}
}

func renderEntries(pr string, entries []fixer.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Review comments on %s\n", pr)
	if len(entries) == 0 {
		b.WriteString("\nNo comments were processed.\n")
		return b.String()
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, e.Comment)
		fmt.Fprintf(&b, "- kind: %s\n", comment.Kind(e.Comment))
		fmt.Fprintf(&b, "- outcome: %s\n", e.Result.Outcome)
		if e.Result.Message != "" {
			fmt.Fprintf(&b, "- message: %s\n", e.Result.Message)
		}
		if body := strings.TrimSpace(comment.BodyOf(e.Comment)); body != "" {
			b.WriteString("\n")
			for _, line := range strings.Split(body, "\n") {
				b.WriteString(strings.TrimRight("> "+line, " "))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// Write stores r at path.
func Write(path string, r *Report) error {
	doc := &store.Document{
		Frontmatter: map[string]any{
			"run_id":            r.RunID,
			"pr":                r.PR,
			"url":               r.URL,
			"branch":            r.Branch,
			"started":           store.FormatTime(r.Started),
			"finished":          store.FormatTime(r.Finished),
			"total":             r.Total,
			"changes_made":      r.ChangesMade,
			"no_changes_needed": r.NoChangesNeeded,
			"errors":            r.Errors,
		},
		Body: r.Body,
	}
	if err := store.WriteDocument(path, doc); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Read loads a report written by Write.
func Read(path string) (*Report, error) {
	if !store.Exists(path) {
		return nil, fmt.Errorf("no such report: %s", path)
	}
	doc, err := store.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	fm := doc.Frontmatter
	if store.GetString(fm, "run_id") == "" {
		return nil, fmt.Errorf("%s is not a run report", path)
	}
	return &Report{
		RunID:           store.GetString(fm, "run_id"),
		PR:              store.GetString(fm, "pr"),
		URL:             store.GetString(fm, "url"),
		Branch:          store.GetString(fm, "branch"),
		Started:         store.GetTime(fm, "started"),
		Finished:        store.GetTime(fm, "finished"),
		Total:           store.GetInt(fm, "total"),
		ChangesMade:     store.GetInt(fm, "changes_made"),
		NoChangesNeeded: store.GetInt(fm, "no_changes_needed"),
		Errors:          store.GetInt(fm, "errors"),
		Body:            doc.Body,
	}, nil
}

// Duration is how long the run took.
func (r *Report) Duration() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
