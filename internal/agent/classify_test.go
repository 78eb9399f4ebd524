package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		want    Outcome
		rule    string
		message string
	}{
		{
			name:   "changes marker",
			stdout: "Renamed the helper.\nRESULT: CHANGES_MADE - renamed foo to bar",
			want:   ChangesMade,
			rule:   "changes-marker",
		},
		{
			name:   "no changes marker",
			stdout: "result: no_changes_needed - this is a question",
			want:   NoChangesNeeded,
			rule:   "no-changes-marker",
		},
		{
			name:   "changes marker beats no-change phrase",
			stdout: "Initially no changes needed, but then... RESULT: CHANGES_MADE - fixed",
			want:   ChangesMade,
			rule:   "changes-marker",
		},
		{
			name:   "no-changes marker beats commit phrase",
			stdout: "I did not run git commit.\nRESULT: NO_CHANGES_NEEDED - praise only",
			want:   NoChangesNeeded,
			rule:   "no-changes-marker",
		},
		{
			name:   "no-change phrase beats commit phrase",
			stdout: "This comment is not actionable. Nothing was committed.",
			want:   NoChangesNeeded,
			rule:   "no-change-phrase",
		},
		{
			name:   "commit phrase",
			stdout: "I have committed the fix as abc123.",
			want:   ChangesMade,
			rule:   "commit-phrase",
		},
		{
			name:   "case insensitive phrase",
			stdout: "NO ACTION REQUIRED here",
			want:   NoChangesNeeded,
			rule:   "no-change-phrase",
		},
		{
			name:   "default is no changes",
			stdout: "I looked at the file and updated it.",
			want:   NoChangesNeeded,
			rule:   "default",
		},
		{
			name:   "empty output",
			stdout: "",
			want:   NoChangesNeeded,
			rule:   "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, message, rule := classify(rules, tt.stdout)
			assert.Equal(t, tt.want, outcome)
			assert.Equal(t, tt.rule, rule)
			assert.NotEmpty(t, message)

			pubOutcome, pubMessage := Classify(tt.stdout)
			assert.Equal(t, outcome, pubOutcome)
			assert.Equal(t, message, pubMessage)
		})
	}
}

func TestClassify_DefaultMessageSaysUnclear(t *testing.T) {
	_, message := Classify("did some stuff")
	assert.Contains(t, message, "unclear")
}

func TestClassify_EveryPhraseMatches(t *testing.T) {
	for _, r := range rules {
		for _, p := range r.phrases {
			t.Run(p, func(t *testing.T) {
				outcome, _, name := classify(rules, "prefix "+p+" suffix")
				assert.Equal(t, r.outcome, outcome)
				assert.Equal(t, r.name, name)
			})
		}
	}
}

func TestClassify_CustomRuleTable(t *testing.T) {
	custom := []rule{{name: "done", phrases: []string{"done"}, outcome: ChangesMade, message: "ok"}}
	outcome, message, name := classify(custom, "All DONE")
	assert.Equal(t, ChangesMade, outcome)
	assert.Equal(t, "ok", message)
	assert.Equal(t, "done", name)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "changes_made", ChangesMade.String())
	assert.Equal(t, "no_changes_needed", NoChangesNeeded.String())
	assert.Equal(t, "error", Error.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
