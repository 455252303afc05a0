package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds persistent settings loaded from ~/.passkeep/config.yaml.
type Config struct {
	VaultPath string `yaml:"vault_path"`
	AuditLog  string `yaml:"audit_log"`
	// Clipboard copies generated passwords to the system clipboard.
	Clipboard *bool `yaml:"clipboard"`
	// ConfirmSave asks before writing a record.
	ConfirmSave *bool `yaml:"confirm_save"`
}

// Home returns the passkeep home directory (~/.passkeep).
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".passkeep"
	}
	return filepath.Join(home, ".passkeep")
}

// DefaultPath returns the default config file path: ~/.passkeep/config.yaml.
func DefaultPath() string {
	return filepath.Join(Home(), "config.yaml")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns a Config with defaults and no error. An empty or all-comment
// file also returns defaults with no error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg.withDefaults(), nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg.withDefaults(), nil
}

func (c *Config) withDefaults() *Config {
	if c.VaultPath == "" {
		c.VaultPath = filepath.Join(Home(), "vault.json")
	}
	if c.AuditLog == "" {
		c.AuditLog = filepath.Join(Home(), "audit.log")
	}
	c.VaultPath = expandHome(c.VaultPath)
	c.AuditLog = expandHome(c.AuditLog)
	return c
}

// ClipboardEnabled reports whether generated passwords go to the clipboard.
func (c *Config) ClipboardEnabled() bool {
	return c.Clipboard == nil || *c.Clipboard
}

// ConfirmSaveEnabled reports whether saves are confirmed first.
func (c *Config) ConfirmSaveEnabled() bool {
	return c.ConfirmSave == nil || *c.ConfirmSave
}

func expandHome(path string) string {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
