package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/sjson"

	"github.com/alanmeadows/prfixer/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage prfixer configuration",
	Long:  `Show and modify prfixer configuration values.`,
}

var (
	configJSONFlag bool
	configUserFlag bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configJSONFlag, "json", false, "Output compact JSON")
	configSetCmd.Flags().BoolVar(&configUserFlag, "user", false, "Write to the user config instead of the repository config")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show merged configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveDir(workDir)
		if err != nil {
			return err
		}
		if err := loadConfig(cmd.Context(), dir); err != nil {
			return err
		}

		redacted := redactConfig(appConfig)

		var data []byte
		if configJSONFlag {
			data, err = json.Marshal(redacted)
		} else {
			data, err = json.MarshalIndent(redacted, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

// redactConfig returns a copy of cfg with secrets masked.
func redactConfig(cfg *config.Config) *config.Config {
	c := *cfg
	if c.GitHub.Token != "" {
		c.GitHub.Token = "***"
	}
	return &c
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a configuration value using a dotted key path.

The value is written to .prfixer/prfixer.jsonc in the repository root, or
to the user config with --user. The file is created if it does not exist.

Note: JSONC comments are not preserved on write.

Examples:
  prfixer config set provider api
  prfixer config set agent.timeout 10m
  prfixer config set group_inline false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], parseValue(args[1])

		var target string
		if configUserFlag {
			target = config.UserConfigPath()
			if target == "" {
				return fmt.Errorf("cannot determine user config directory")
			}
		} else {
			dir, err := resolveDir(workDir)
			if err != nil {
				return err
			}
			// set must work even when the current config does not validate
			binary := config.DefaultConfig().Git.Binary
			if err := loadConfig(cmd.Context(), dir); err == nil {
				binary = appConfig.Git.Binary
			}
			root := config.RepoRoot(cmd.Context(), newRunner(), binary, dir)
			if root == "" {
				return fmt.Errorf("not in a git repository (use --user for the user config)")
			}
			target = config.RepoConfigPath(root)
		}

		if err := setConfigValue(target, key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, value, target)
		return nil
	},
}

// parseValue types a command-line value as bool, integer, float or string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func setConfigValue(path, key string, value any) error {
	existing := []byte("{}")
	if data, err := os.ReadFile(path); err == nil {
		// sjson needs strict JSON.
		existing = jsonc.ToJSON(data)
	}

	updated, err := sjson.SetBytes(existing, key, value)
	if err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, updated, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
