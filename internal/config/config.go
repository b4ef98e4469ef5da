// Package config locates the tasklist configuration directory and loads the
// runtime settings stored in it.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"tasklist/internal/logging"
)

const (
	// AppName names the directory under the XDG config home.
	AppName = "tasklist"

	OAuthClientFile = "oauth_client.json"
	TokenFile       = "token.json"
	SettingsFile    = "config.toml"
)

// Config is the per-process configuration handed to every command.
type Config struct {
	Dir   string
	Debug bool
	Quiet bool

	Settings Settings

	// Logger is nil in tests that do not care about logs; use Log().
	Logger *log.Logger
}

// New resolves the config directory (configDir, or DefaultConfigDir when
// empty) and loads settings from config.toml and the environment.
func New(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	cfg := &Config{Dir: configDir, Settings: DefaultSettings()}
	if err := cfg.LoadSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir is $XDG_CONFIG_HOME/tasklist, falling back to
// ~/.config/tasklist and then to a relative "tasklist" directory.
func DefaultConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return AppName
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName)
}

// Log returns the configured logger, or a discarding one.
func (c *Config) Log() *log.Logger {
	if c == nil || c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

func (c *Config) path(name string) string { return filepath.Join(c.Dir, name) }

func (c *Config) OAuthClientPath() string { return c.path(OAuthClientFile) }
func (c *Config) TokenPath() string       { return c.path(TokenFile) }
func (c *Config) SettingsPath() string    { return c.path(SettingsFile) }

// EnsureDir creates the config directory with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0o700)
}

func (c *Config) HasOAuthClient() bool { return fileExists(c.OAuthClientPath()) }
func (c *Config) HasToken() bool       { return fileExists(c.TokenPath()) }

// RemoveToken deletes token.json.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// RemoveOAuthClient deletes oauth_client.json. It reports whether a file was
// removed; a missing file is not an error.
func (c *Config) RemoveOAuthClient() (bool, error) {
	err := os.Remove(c.OAuthClientPath())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
