package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/config"
	"github.com/alanmeadows/prfixer/internal/logging"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

var (
	verbose      bool
	dryRun       bool
	skipCheckout bool
	workDir      string
	reportPath   string
	confirmRun   bool
	checkDeps    bool
	configPath   string

	// appConfig is loaded per invocation once the working directory is known.
	appConfig *config.Config

	// newRunner builds the process runner shared by git, gh and the agent.
	newRunner = func() command.Runner { return command.NewExecRunner() }

	rootCmd = &cobra.Command{
		Use:   "prfixer [flags] <pr-url>",
		Short: "Work through GitHub pull request review comments with a coding agent",
		Long: `prfixer checks out a pull request's head branch, gathers its review
feedback (discussion comments, review summaries and unresolved inline
threads) and hands each item to a coding agent CLI, one at a time. The
agent decides whether a change is needed and commits it if so.

Nothing is pushed. Review the resulting commits and push when ready.`,
		Example: `  prfixer https://github.com/org/repo/pull/42
  prfixer --dry-run https://github.com/org/repo/pull/42
  prfixer -d ~/src/repo --report run.md https://github.com/org/repo/pull/42
  prfixer deps`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Additional config file merged over user and repo config")
	rootCmd.PersistentFlags().StringVarP(&workDir, "directory", "d", ".", "Working directory (git repository) to operate in")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the comments that would be processed without invoking the agent")
	rootCmd.Flags().BoolVar(&skipCheckout, "skip-checkout", false, "Stay on the current branch instead of checking out the PR branch")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write a markdown run report to this file")
	rootCmd.Flags().BoolVar(&confirmRun, "confirm", false, "Ask for confirmation before invoking the agent")
	rootCmd.Flags().BoolVar(&checkDeps, "check-deps", false, "Check required tools and exit (same as 'prfixer deps')")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose)
	}

	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(reportCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(workDir)
	if err != nil {
		return err
	}
	if err := loadConfig(cmd.Context(), dir); err != nil {
		return err
	}

	if checkDeps {
		return runDeps(cmd)
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	return runFix(cmd, dir, args[0])
}

func loadConfig(ctx context.Context, dir string) error {
	cfg, err := config.Load(ctx, newRunner(), dir, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg
	return nil
}

// ExitError carries a process exit code for a failure that has already
// been reported to the user.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
