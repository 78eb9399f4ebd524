package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/alanmeadows/prfixer/internal/agent"
	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/config"
	"github.com/alanmeadows/prfixer/internal/console"
	"github.com/alanmeadows/prfixer/internal/fixer"
	"github.com/alanmeadows/prfixer/internal/preflight"
	"github.com/alanmeadows/prfixer/internal/provider"
	"github.com/alanmeadows/prfixer/internal/provider/ghcli"
	ghbackend "github.com/alanmeadows/prfixer/internal/provider/github"
	"github.com/alanmeadows/prfixer/internal/prref"
	"github.com/alanmeadows/prfixer/internal/report"
	"github.com/alanmeadows/prfixer/internal/repo"
	"github.com/alanmeadows/prfixer/internal/store"
)

const expectedFormat = "Expected format: https://github.com/owner/repo/pull/123"

// confirm asks whether to start invoking the agent. Replaced in tests.
var confirm = func(title string) (bool, error) {
	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&proceed),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return proceed, nil
}

// resolveDir returns dir as an absolute path after checking it is a directory.
func resolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("directory does not exist: %s", abs)
	}
	return abs, nil
}

func runFix(cmd *cobra.Command, dir, rawURL string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	cfg := appConfig

	ref, err := prref.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err, expectedFormat)
	}

	lock, err := store.AcquireRunLock(ctx, dir, store.DefaultLockTimeout)
	if err != nil {
		return err
	}
	defer lock.Release()
	slog.Debug("acquired run lock", "path", lock.Path())

	runner := newRunner()
	if err := preflightChecks(ctx, runner, cfg); err != nil {
		return err
	}

	src, err := buildSource(ctx, runner, cfg)
	if err != nil {
		return err
	}

	git := repo.New(runner, dir,
		repo.WithBinary(cfg.Git.Binary),
		repo.WithRemote(cfg.Git.Remote),
		repo.WithTimeout(cfg.Commands.ParseTimeout()),
	)
	orch := &fixer.Orchestrator{Workspace: git, Source: src}

	fmt.Fprintf(out, "Processing PR: %s\n\n", ref.URL())

	plan, err := orch.Prepare(ctx, rawURL, fixer.Options{
		SkipCheckout: skipCheckout,
		GroupInline:  cfg.IsGroupInlineEnabled(),
	})
	if err != nil {
		return err
	}
	printPlan(out, plan)

	if len(plan.Queue) == 0 {
		fmt.Fprintln(out, "No comments to process. Done!")
		return nil
	}

	if dryRun {
		fmt.Fprintln(out, "[Dry run] Would process the following comments:")
		fmt.Fprintln(out, console.QueueTable(plan.Queue))
		fmt.Fprintln(out, "[Dry run] No changes made.")
		return nil
	}

	if confirmRun {
		ok, err := confirm(fmt.Sprintf("Run %s on %d comment(s) in %s?", cfg.Agent.Command, len(plan.Queue), dir))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	ag := agent.New(runner, agent.Config{
		Command: cfg.Agent.Command,
		Args:    cfg.Agent.Args,
		Timeout: cfg.Agent.ParseTimeout(),
		Dir:     dir,
		PRURL:   plan.Ref.URL(),
	})
	reporter := console.NewReporter(out, verbose)

	runID := report.NewRunID()
	started := time.Now()
	slog.Info("starting run", "run_id", runID, "pr", plan.Ref.String(), "units", len(plan.Queue))

	summary, err := plan.Execute(ctx, fixer.NewEngine(ag, reporter))
	if err != nil {
		var ie *agent.InvocationError
		if errors.As(err, &ie) {
			return fmt.Errorf("invoking agent: %w", err)
		}
		return err
	}

	fmt.Fprintln(out)
	reporter.Summary(summary)

	if reportPath != "" {
		r := report.New(runID, plan, summary, started, time.Now())
		if err := report.Write(reportPath, r); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", reportPath)
	}

	fmt.Fprintln(out)
	if !summary.Success() {
		fmt.Fprintln(cmd.ErrOrStderr(), console.FinalMessage(summary))
		return &ExitError{Code: 1}
	}
	fmt.Fprintln(out, console.FinalMessage(summary))
	return nil
}

func printPlan(out io.Writer, plan *fixer.Plan) {
	switch {
	case plan.SkippedCheckout && plan.CurrentBranch != "":
		fmt.Fprintln(out, "Skipping checkout (--skip-checkout flag set)")
		fmt.Fprintf(out, "Using current branch: %s\n\n", plan.CurrentBranch)
	case plan.SkippedCheckout:
		fmt.Fprintln(out, "Skipping checkout (--skip-checkout flag set)")
		fmt.Fprint(out, "Using current branch.\n\n")
	default:
		fmt.Fprintf(out, "Checked out PR branch: %s\n\n", plan.Branch)
	}

	if verbose {
		fmt.Fprintf(out, "  Discussion comments: %d\n", len(plan.Comments.Discussion))
		fmt.Fprintf(out, "  Review comments: %d\n", len(plan.Comments.Reviews))
		fmt.Fprintf(out, "  Inline comments: %d\n", len(plan.Comments.Inline))
	}
	fmt.Fprintf(out, "Found %d comment(s) total.\n", plan.Comments.Total())
	if len(plan.Queue) != plan.Comments.Total() {
		fmt.Fprintf(out, "Grouped into %d unit(s) by location.\n", len(plan.Queue))
	}
	fmt.Fprintln(out)
}

// requiredTools lists what a run needs. gh is needed for the gh provider
// and for token lookup when the API provider has no token configured.
func requiredTools(cfg *config.Config) []preflight.Tool {
	tools := []preflight.Tool{preflight.Git(cfg.Git.Binary)}
	if cfg.Provider == config.ProviderGH || cfg.GitHub.Token == "" {
		tools = append(tools, preflight.GH(cfg.GH.Binary))
	}
	return append(tools, preflight.Agent(cfg.Agent.Command))
}

func preflightChecks(ctx context.Context, runner command.Runner, cfg *config.Config) error {
	checker := preflight.New(runner)
	statuses := checker.CheckAll(ctx, requiredTools(cfg)...)
	for _, s := range statuses {
		slog.Debug("dependency", "tool", s.Tool.Command, "available", s.Available, "version", s.Version)
	}
	if err := preflight.Require(statuses); err != nil {
		return err
	}
	if cfg.Provider == config.ProviderGH {
		return checker.RequireGHAuth(ctx, cfg.GH.Binary)
	}
	return nil
}

// buildSource registers the available comment sources and returns the
// configured one.
func buildSource(ctx context.Context, runner command.Runner, cfg *config.Config) (provider.Source, error) {
	reg := provider.NewRegistry()

	ghCLI := ghcli.NewBackend(runner, cfg.GH.Binary, cfg.Commands.ParseTimeout())
	reg.Register(ghCLI)

	if cfg.Provider == config.ProviderAPI {
		token := cfg.GitHub.Token
		if token == "" {
			t, err := ghCLI.Token(ctx)
			if err != nil {
				slog.Warn("no GitHub token configured and gh auth token failed; using unauthenticated API access", "error", err)
			}
			token = t
		}
		reg.Register(ghbackend.NewBackend(token))
	}

	return reg.Get(cfg.Provider)
}
