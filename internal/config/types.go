package config

import "time"

// Provider names accepted in the "provider" key.
const (
	ProviderGH  = "gh"
	ProviderAPI = "api"
)

// Config is the top-level prfixer configuration.
type Config struct {
	// Provider selects the comment source: "gh" (GitHub CLI) or "api".
	Provider    string         `json:"provider"`
	GitHub      GitHubConfig   `json:"github"`
	Git         GitConfig      `json:"git"`
	GH          GHConfig       `json:"gh"`
	Agent       AgentConfig    `json:"agent"`
	Commands    CommandsConfig `json:"commands"`
	GroupInline *bool          `json:"group_inline"`
}

// GitHubConfig holds API backend settings.
type GitHubConfig struct {
	Token string `json:"token,omitempty"`
}

// GitConfig controls how git is invoked.
type GitConfig struct {
	Binary string `json:"binary"`
	Remote string `json:"remote"`
}

// GHConfig controls how the GitHub CLI is invoked.
type GHConfig struct {
	Binary string `json:"binary"`
}

// AgentConfig describes the coding agent CLI.
type AgentConfig struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Timeout string   `json:"timeout"`
}

// ParseTimeout returns the per-invocation agent timeout.
func (a AgentConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// CommandsConfig applies to git and gh invocations.
type CommandsConfig struct {
	Timeout string `json:"timeout"`
}

// ParseTimeout returns the git/gh command timeout.
func (c CommandsConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// IsGroupInlineEnabled reports whether inline comments sharing a location
// are processed as one unit. Defaults to true.
func (c Config) IsGroupInlineEnabled() bool {
	if c.GroupInline == nil {
		return true
	}
	return *c.GroupInline
}

func boolPtr(b bool) *bool {
	return &b
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGH,
		Git: GitConfig{
			Binary: "git",
			Remote: "origin",
		},
		GH: GHConfig{
			Binary: "gh",
		},
		Agent: AgentConfig{
			Command: "claude",
			Args:    []string{"-p", "--dangerously-skip-permissions"},
			Timeout: "5m",
		},
		Commands: CommandsConfig{
			Timeout: "60s",
		},
		GroupInline: boolPtr(true),
	}
}
