package console

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alanmeadows/prfixer/internal/comment"
	"github.com/alanmeadows/prfixer/internal/preflight"
)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bodyCell   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return bodyCell
		})
}

// QueueTable lists the units a run would process, for --dry-run.
func QueueTable(queue []comment.Comment) string {
	rows := make([][]string, 0, len(queue))
	for i, c := range queue {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			comment.Kind(c),
			c.String(),
			Preview(comment.BodyOf(c), 60),
		})
	}
	return newTable("#", "KIND", "COMMENT", "PREVIEW").Rows(rows...).String()
}

// DepsTable renders dependency probe results.
func DepsTable(statuses []preflight.Status) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "OK"
		if !s.Available {
			state = "MISSING"
		}
		rows = append(rows, []string{s.Tool.Name, s.Tool.Command, state, s.Version})
	}
	return newTable("DEPENDENCY", "COMMAND", "STATUS", "VERSION").Rows(rows...).String()
}
