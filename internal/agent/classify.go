package agent

import "strings"

// Outcome is the classified result of processing one comment unit.
type Outcome int

const (
	NoChangesNeeded Outcome = iota
	ChangesMade
	Error
)

func (o Outcome) String() string {
	switch o {
	case ChangesMade:
		return "changes_made"
	case NoChangesNeeded:
		return "no_changes_needed"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

const (
	msgChangesMade = "changes made and committed"
	msgNoChanges   = "no code changes needed"
	msgUnclear     = "processed, unclear whether changes were made"
)

// rule maps any of its phrases, found in lower-cased agent output, to an
// outcome.
type rule struct {
	name    string
	phrases []string
	outcome Outcome
	message string
}

// rules are evaluated in order and the first match wins. No-change phrases
// precede commit phrases: output containing both is NoChangesNeeded.
var rules = []rule{
	{
		name:    "changes-marker",
		phrases: []string{"result: changes_made"},
		outcome: ChangesMade,
		message: msgChangesMade,
	},
	{
		name:    "no-changes-marker",
		phrases: []string{"result: no_changes_needed"},
		outcome: NoChangesNeeded,
		message: msgNoChanges,
	},
	{
		name: "no-change-phrase",
		phrases: []string{
			"no changes needed",
			"no changes required",
			"no code changes",
			"doesn't require changes",
			"does not require changes",
			"not actionable",
			"no action needed",
			"no action required",
			"non-actionable",
		},
		outcome: NoChangesNeeded,
		message: msgNoChanges,
	},
	{
		name: "commit-phrase",
		phrases: []string{
			"created commit",
			"committed",
			"git commit",
			"made commit",
			"changes committed",
			"commit created",
		},
		outcome: ChangesMade,
		message: msgChangesMade,
	},
}

// Classify interprets the stdout of an agent run that exited zero. Output
// matching no rule is NoChangesNeeded, never ChangesMade.
func Classify(stdout string) (Outcome, string) {
	outcome, message, _ := classify(rules, stdout)
	return outcome, message
}

// classify returns the outcome, message and name of the matching rule
// ("default" when nothing matched).
func classify(rules []rule, stdout string) (Outcome, string, string) {
	lower := strings.ToLower(stdout)
	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				return r.outcome, r.message, r.name
			}
		}
	}
	return NoChangesNeeded, msgUnclear, "default"
}
