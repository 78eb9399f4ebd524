package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alanmeadows/prfixer/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect saved run reports",
}

func init() {
	reportCmd.AddCommand(reportShowCmd)
}

var reportShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Display a run report written with --report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := report.Read(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		labelStyle := lipgloss.NewStyle().Bold(true)
		fields := [][2]string{
			{"Run", r.RunID},
			{"PR", r.URL},
			{"Branch", r.Branch},
			{"Started", r.Started.Local().Format("2006-01-02 15:04:05")},
			{"Duration", r.Duration().Round(time.Second).String()},
			{"Total", strconv.Itoa(r.Total)},
			{"Changes made", strconv.Itoa(r.ChangesMade)},
			{"No changes needed", strconv.Itoa(r.NoChangesNeeded)},
			{"Errors", strconv.Itoa(r.Errors)},
		}
		for _, f := range fields {
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render(f[0]+":"), f[1])
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, r.Body)
		return nil
	},
}
