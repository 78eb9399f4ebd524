package agent

import (
	"fmt"
	"strconv"

	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/prompts"
)

var reviewStateContext = map[string]string{
	"APPROVED":          "The reviewer approved the pull request but left this note.",
	"CHANGES_REQUESTED": "The reviewer requested changes; this likely needs action.",
	"COMMENTED":         "The reviewer left a general comment.",
}

// BuildPrompt renders the agent instruction for one comment unit.
func BuildPrompt(c comment.Comment, prURL string) (string, error) {
	return prompts.Execute(prompts.FixComment, map[string]string{
		"pr_url":          prURL,
		"comment_context": commentContext(c),
		"author":          comment.AuthorOf(c),
		"body":            comment.BodyOf(c),
	})
}

func commentContext(c comment.Comment) string {
	switch v := c.(type) {
	case comment.Discussion:
		return "Type: general discussion comment"
	case comment.Review:
		explanation, ok := reviewStateContext[v.State]
		if !ok {
			explanation = "Review state: " + v.State
		}
		return fmt.Sprintf("Type: review summary\nReview state: %s\n%s", v.State, explanation)
	case comment.Inline:
		return inlineContext("inline code comment", v.Path, v.EffectiveLine())
	case comment.InlineGroup:
		ctx := inlineContext(
			fmt.Sprintf("%d inline code comments on the same line", len(v.Comments)),
			v.Path, v.Line)
		return ctx + "\nAddress all of them together in a single change."
	default:
		panic(fmt.Sprintf("agent: unknown comment variant %T", c))
	}
}

func inlineContext(kind, path string, line *int) string {
	lineStr := "unknown"
	if line != nil {
		lineStr = strconv.Itoa(*line)
	}
	return fmt.Sprintf("Type: %s\nFile: %s\nLine: %s\nRead %s before changing anything.", kind, path, lineStr, path)
}
