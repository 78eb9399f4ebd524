// Package fixer drives the remediation run: it prepares the working tree
// and the comment queue, then feeds each unit to the agent one at a time.
package fixer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alanmeadows/prfixer/internal/agent"
	"github.com/alanmeadows/prfixer/internal/comment"
)

// Processor handles one comment unit. A returned error aborts the run.
type Processor interface {
	Process(ctx context.Context, c comment.Comment) (agent.Result, error)
}

// Observer is notified around each comment. Indexes are zero-based.
type Observer interface {
	CommentStarted(index, total int, c comment.Comment)
	CommentCompleted(index, total int, c comment.Comment, res agent.Result)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) CommentStarted(int, int, comment.Comment)                   {}
func (NopObserver) CommentCompleted(int, int, comment.Comment, agent.Result) {}

// Entry pairs a processed comment with its result.
type Entry struct {
	Comment comment.Comment
	Result  agent.Result
}

// Summary aggregates a completed run.
type Summary struct {
	Entries         []Entry
	ChangesMade     int
	NoChangesNeeded int
	Errors          int
}

// Total is the number of processed comment units.
func (s *Summary) Total() int {
	return len(s.Entries)
}

// Success reports whether no unit ended in Error.
func (s *Summary) Success() bool {
	return s.Errors == 0
}

func (s *Summary) add(c comment.Comment, res agent.Result) {
	s.Entries = append(s.Entries, Entry{Comment: c, Result: res})
	switch res.Outcome {
	case agent.ChangesMade:
		s.ChangesMade++
	case agent.NoChangesNeeded:
		s.NoChangesNeeded++
	case agent.Error:
		s.Errors++
	}
}

// Engine processes comment units strictly in order, one at a time.
type Engine struct {
	processor Processor
	observer  Observer
}

// NewEngine returns an Engine. A nil observer is replaced by NopObserver.
func NewEngine(p Processor, o Observer) *Engine {
	if o == nil {
		o = NopObserver{}
	}
	return &Engine{processor: p, observer: o}
}

// Run processes every comment. Per-comment Error outcomes are counted and
// the run continues; a Processor error stops the run and no Summary is
// returned.
func (e *Engine) Run(ctx context.Context, comments []comment.Comment) (*Summary, error) {
	total := len(comments)
	summary := &Summary{Entries: make([]Entry, 0, total)}

	for i, c := range comments {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted before comment %d/%d: %w", i+1, total, err)
		}

		e.observer.CommentStarted(i, total, c)
		res, err := e.processor.Process(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("processing comment %d/%d (%s): %w", i+1, total, c, err)
		}
		summary.add(c, res)
		slog.Debug("comment processed", "index", i+1, "total", total, "outcome", res.Outcome)
		e.observer.CommentCompleted(i, total, c, res)
	}

	return summary, nil
}
