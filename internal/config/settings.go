package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	// BackendREST selects the JSON REST task API.
	BackendREST = "rest"

	// BackendGoogle selects Google Tasks.
	BackendGoogle = "google"

	// DefaultAPIURL is where the REST backend looks for the task API.
	DefaultAPIURL = "http://localhost:3000"

	// DefaultListID is the Google Tasks list used when none is configured.
	DefaultListID = "@default"

	// DefaultTimeout bounds every task API call.
	DefaultTimeout = 5 * time.Second

	// DefaultListenAddr is the address the browser front end binds to.
	DefaultListenAddr = "localhost:8080"

	// DefaultLogLevel is used when --debug is not given.
	DefaultLogLevel = "warn"

	envPrefix = "TASKLIST_"
)

// Settings holds the values that can come from config.toml or the environment.
type Settings struct {
	Backend    string   `toml:"backend" validate:"required,oneof=rest google"`
	APIURL     string   `toml:"api_url" validate:"omitempty,url"`
	ListID     string   `toml:"list_id"`
	Timeout    Duration `toml:"timeout"`
	ListenAddr string   `toml:"listen_addr" validate:"required"`
	LogLevel   string   `toml:"log_level" validate:"required,oneof=debug info warn error"`
}

// Duration is a time.Duration that decodes from a TOML string such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backend:    BackendREST,
		APIURL:     DefaultAPIURL,
		ListID:     DefaultListID,
		Timeout:    Duration{DefaultTimeout},
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
	}
}

// LoadSettings applies config.toml (if present) and then environment
// overrides on top of the current settings, and validates the result.
func (c *Config) LoadSettings() error {
	path := c.SettingsPath()
	if _, err := toml.DecodeFile(path, &c.Settings); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if err := c.Settings.applyEnv(); err != nil {
		return err
	}
	return c.Settings.Validate()
}

// Validate checks the settings against their constraints.
func (s Settings) Validate() error {
	if s.Backend == BackendREST && s.APIURL == "" {
		return fmt.Errorf("invalid settings: api_url required for the rest backend")
	}
	if s.Backend == BackendGoogle && s.ListID == "" {
		return fmt.Errorf("invalid settings: list_id required for the google backend")
	}
	if s.Timeout.Duration <= 0 {
		return fmt.Errorf("invalid settings: timeout must be positive")
	}
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid settings: %s failed %q", strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// applyEnv overrides settings from TASKLIST_* environment variables.
func (s *Settings) applyEnv() error {
	if v := os.Getenv(envPrefix + "BACKEND"); v != "" {
		s.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(envPrefix + "API_URL"); v != "" {
		s.APIURL = v
	}
	if v := os.Getenv(envPrefix + "LIST_ID"); v != "" {
		s.ListID = v
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", envPrefix, err)
		}
		s.Timeout = Duration{d}
	}
	if v := os.Getenv(envPrefix + "LISTEN_ADDR"); v != "" {
		s.ListenAddr = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
	return nil
}
