package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanmeadows/prfixer/internal/agent"
	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/fixer"
	"github.com/alanmeadows/prfixer/internal/prref"
)

func samplePlan() *fixer.Plan {
	return &fixer.Plan{
		Ref:    prref.Reference{Owner: "o", Repo: "r", Number: 42},
		Branch: "feature",
	}
}

func sampleSummary() *fixer.Summary {
	return &fixer.Summary{
		Entries: []fixer.Entry{
			{
				Comment: comment.Discussion{Author: "alice", Body: "rename it\nplease"},
				Result:  agent.Result{Outcome: agent.ChangesMade, Message: "changes made and committed"},
			},
			{
				Comment: comment.Inline{Author: "bob", Body: "typo", Path: "a.go", Line: comment.IntPtr(3)},
				Result:  agent.Result{Outcome: agent.Error, Message: "agent exited with code 2"},
			},
		},
		ChangesMade: 1,
		Errors:      1,
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.md")
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)
	runID := NewRunID()

	require.NoError(t, Write(path, New(runID, samplePlan(), sampleSummary(), started, finished)))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, "o/r#42", got.PR)
	assert.Equal(t, "https://github.com/o/r/pull/42", got.URL)
	assert.Equal(t, "feature", got.Branch)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.ChangesMade)
	assert.Equal(t, 0, got.NoChangesNeeded)
	assert.Equal(t, 1, got.Errors)
	assert.True(t, started.Equal(got.Started))
	assert.Equal(t, 90*time.Second, got.Duration())

	assert.Contains(t, got.Body, "## 1. discussion by alice")
	assert.Contains(t, got.Body, "> rename it\n> please\n")
	assert.Contains(t, got.Body, "## 2. inline on a.go:3 by bob")
	assert.Contains(t, got.Body, "- outcome: error")
	assert.Contains(t, got.Body, "- message: agent exited with code 2")
}

func TestNewRunIDIsUUID(t *testing.T) {
	_, err := uuid.Parse(NewRunID())
	assert.NoError(t, err)
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestEmptyRun(t *testing.T) {
	r := New("id", samplePlan(), &fixer.Summary{}, time.Now(), time.Now())
	assert.Contains(t, r.Body, "No comments were processed.")
	assert.Equal(t, 0, r.Total)
}

func TestReadRejectsPlainMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# notes\n"), 0o644))

	_, err := Read(path)
	assert.ErrorContains(t, err, "not a run report")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "run.md"))
	assert.ErrorContains(t, err, "no such report")
}

func TestDurationClampsNegative(t *testing.T) {
	now := time.Now()
	r := &Report{Started: now, Finished: now.Add(-time.Second)}
	assert.Equal(t, time.Duration(0), r.Duration())
}
