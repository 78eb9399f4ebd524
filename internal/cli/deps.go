package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/prfixer/internal/config"
	"github.com/alanmeadows/prfixer/internal/console"
	"github.com/alanmeadows/prfixer/internal/preflight"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check that git, the GitHub CLI and the agent CLI are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir(workDir)
		if err != nil {
			return err
		}
		if err := loadConfig(cmd.Context(), dir); err != nil {
			return err
		}
		return runDeps(cmd)
	},
}

func runDeps(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	cfg := appConfig

	checker := preflight.New(newRunner())
	statuses := checker.CheckAll(ctx,
		preflight.Git(cfg.Git.Binary),
		preflight.GH(cfg.GH.Binary),
		preflight.Agent(cfg.Agent.Command),
	)

	fmt.Fprintln(out, "Dependency Status:")
	fmt.Fprintln(out, console.DepsTable(statuses))

	ghAvailable := false
	for _, s := range statuses {
		if s.Tool.Command == cfg.GH.Binary && s.Available {
			ghAvailable = true
		}
	}
	if ghAvailable {
		ok, msg := checker.GHAuth(ctx, cfg.GH.Binary)
		if ok {
			fmt.Fprintln(out, "GitHub CLI authentication: OK")
		} else {
			fmt.Fprintf(out, "GitHub CLI authentication: %s\n", msg)
			if cfg.Provider == config.ProviderGH {
				fmt.Fprintln(out, "  Run: gh auth login")
			}
		}
	}

	if err := preflight.Require(statuses); err != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Some dependencies are missing. See above for details.")
		return &ExitError{Code: 1}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "All dependencies are available.")
	return nil
}
