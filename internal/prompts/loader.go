// Package prompts holds the instruction templates sent to the fix agent.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// FixComment is the template used for every comment unit.
const FixComment = "fix-comment.md"

//go:embed *.md
var builtinFS embed.FS

// overrideDir returns the directory searched for user overrides.
var overrideDir = func() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "prfixer", "prompts"), nil
}

// Load returns the prompt template for the given name.
// Checks user override at ~/.config/prfixer/prompts/<name> first.
func Load(name string) (*template.Template, error) {
	if dir, err := overrideDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			return template.New(name).Option("missingkey=error").Parse(string(data))
		}
	}

	data, err := builtinFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading prompt template %s: %w", name, err)
	}
	return template.New(name).Option("missingkey=error").Parse(string(data))
}

// Execute loads a template and executes it with the given data map.
func Execute(name string, data map[string]string) (string, error) {
	tmpl, err := Load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
