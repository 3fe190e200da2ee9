// Package config handles XDG configuration and state directory paths.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "thingsync"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// MappingFile holds the local-to-cloud task identity mapping.
	MappingFile = "task_mapping.json"

	// SyncStateFile holds the last-observed cloud task states.
	SyncStateFile = "sync_state.json"

	// LockFile guards against overlapping sync passes.
	LockFile = "sync.lock"

	// ThingsTokenEnv is the environment variable carrying the Things3
	// URL-scheme auth token.
	ThingsTokenEnv = "THINGS_AUTH_TOKEN"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path (credentials).
	Dir string

	// StateDir is the state directory path (mapping, sync state, view CSVs).
	StateDir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// ThingsToken is the Things3 URL-scheme auth token.
	ThingsToken string

	// Logger is the process logger. Never nil after dispatch.
	Logger *slog.Logger
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/thingsync or
// $HOME/.config/thingsync. The state directory defaults to
// XDG_STATE_HOME/thingsync or $HOME/.local/state/thingsync.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:         dir,
		StateDir:    DefaultStateDir(),
		ThingsToken: os.Getenv(ThingsTokenEnv),
		Logger:      slog.New(slog.DiscardHandler),
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultStateDir returns the default state directory.
// Uses XDG_STATE_HOME if set, otherwise $HOME/.local/state.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".local", "state", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// MappingPath returns the path to the task identity mapping file.
func (c *Config) MappingPath() string {
	return filepath.Join(c.StateDir, MappingFile)
}

// SyncStatePath returns the path to the observed-state file.
func (c *Config) SyncStatePath() string {
	return filepath.Join(c.StateDir, SyncStateFile)
}

// LockPath returns the path to the pass lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.StateDir, LockFile)
}

// ViewCSVPath returns the path to the extracted CSV for a view,
// e.g. today_view.csv.
func (c *Config) ViewCSVPath(view string) string {
	return filepath.Join(c.StateDir, view+"_view.csv")
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// EnsureStateDir creates the state directory if it doesn't exist.
func (c *Config) EnsureStateDir() error {
	return os.MkdirAll(c.StateDir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
