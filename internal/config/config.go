// Package config loads prfixer settings from layered JSONC files and the
// environment.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"

	"github.com/alanmeadows/prfixer/internal/command"
	"github.com/alanmeadows/prfixer/internal/repo"
)

const (
	dirName  = "prfixer"
	fileName = "prfixer.jsonc"
)

// Load builds the configuration for a run in dir. Resolution order:
// defaults, user config (~/.config/prfixer/prfixer.jsonc), repo config
// (.prfixer/prfixer.jsonc at the repository root), the explicit file at
// path when non-empty, then environment overrides. A missing user or repo
// file is ignored; a missing explicit file is an error. The repository root
// is found with runner using the git binary configured so far.
func Load(ctx context.Context, runner command.Runner, dir, path string) (*Config, error) {
	cfg := DefaultConfig()

	if userPath := UserConfigPath(); userPath != "" {
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return nil, fmt.Errorf("merging user config: %w", err)
		}
	}

	if root := RepoRoot(ctx, runner, cfg.Git.Binary, dir); root != "" {
		if err := mergeFile(&cfg, RepoConfigPath(root), false); err != nil {
			return nil, fmt.Errorf("merging repo config: %w", err)
		}
	}

	if path != "" {
		if err := mergeFile(&cfg, path, true); err != nil {
			return nil, fmt.Errorf("merging config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGH, ProviderAPI:
	default:
		return fmt.Errorf("invalid provider %q: expected %q or %q", c.Provider, ProviderGH, ProviderAPI)
	}
	if strings.TrimSpace(c.Agent.Command) == "" {
		return fmt.Errorf("agent.command must not be empty")
	}
	return nil
}

// UserConfigPath is the per-user config file, or "" when the user config
// directory is unknown.
func UserConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, dirName, fileName)
}

// RepoConfigPath is the repository-level config file under root.
func RepoConfigPath(root string) string {
	return filepath.Join(root, "."+dirName, fileName)
}

func mergeFile(cfg *Config, path string, required bool) error {
	m, err := loadJSONC(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return mergeIntoConfig(cfg, m)
}

// loadJSONC reads a JSONC file into a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig round-trips cfg through a map so src can be deep-merged
// over it key by key.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// RepoRoot returns the git top-level directory containing dir, or "" when
// dir is not inside a repository.
func RepoRoot(ctx context.Context, runner command.Runner, binary, dir string) string {
	root, err := repo.New(runner, dir, repo.WithBinary(binary)).TopLevel(ctx)
	if err != nil {
		slog.Debug("no repository root", "dir", dir, "error", err)
		return ""
	}
	return root
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if agent := os.Getenv("PRFIXER_AGENT"); agent != "" {
		cfg.Agent.Command = agent
	}
	if p := os.Getenv("PRFIXER_PROVIDER"); p != "" {
		cfg.Provider = p
	}
}
