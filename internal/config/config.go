// Package config loads intake-cli settings from a YAML file, a .env file and
// the process environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvAPIBase     = "INTAKE_API_BASE"
	EnvLogLevel    = "INTAKE_LOG_LEVEL"
	EnvLogFormat   = "INTAKE_LOG_FORMAT"
	EnvMode        = "INTAKE_MODE"
	EnvResetDelay  = "INTAKE_RESET_DELAY"
	EnvSettleDelay = "INTAKE_SETTLE_DELAY"
	EnvVariant     = "INTAKE_VARIANT"
	EnvCatalog     = "INTAKE_CATALOG"
)

// DefaultFile is read when Load receives an empty path.
const DefaultFile = "intake.yaml"

// Config holds the resolved settings.
type Config struct {
	APIBase   string `yaml:"api_base"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// Mode overrides the per-form validation trigger when set ("change" or
	// "blur").
	Mode        string        `yaml:"mode"`
	ResetDelay  time.Duration `yaml:"-"`
	SettleDelay time.Duration `yaml:"-"`
	Variant     string        `yaml:"variant"`
	// Catalog is an optional YAML file merged over the embedded catalog.
	Catalog string `yaml:"catalog"`
}

type fileConfig struct {
	Config      `yaml:",inline"`
	ResetDelay  string `yaml:"reset_delay"`
	SettleDelay string `yaml:"settle_delay"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBase:     "http://localhost:3000",
		LogLevel:    "info",
		LogFormat:   "console",
		ResetDelay:  2 * time.Second,
		SettleDelay: time.Second,
		Variant:     "strict",
	}
}

// Load resolves the configuration. A missing file is not an error unless the
// path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	file := fileConfig{Config: *c}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	*c = file.Config
	if err := setDuration(&c.ResetDelay, "reset_delay", file.ResetDelay); err != nil {
		return err
	}
	return setDuration(&c.SettleDelay, "settle_delay", file.SettleDelay)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvAPIBase:   &c.APIBase,
		EnvLogLevel:  &c.LogLevel,
		EnvLogFormat: &c.LogFormat,
		EnvMode:      &c.Mode,
		EnvVariant:   &c.Variant,
		EnvCatalog:   &c.Catalog,
	}
	for key, dst := range strs {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	if value, ok := lookup(EnvResetDelay); ok {
		if err := setDuration(&c.ResetDelay, EnvResetDelay, value); err != nil {
			return err
		}
	}
	if value, ok := lookup(EnvSettleDelay); ok {
		if err := setDuration(&c.SettleDelay, EnvSettleDelay, value); err != nil {
			return err
		}
	}
	return nil
}

func setDuration(dst *time.Duration, name, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	*dst = d
	return nil
}

// Validate checks values that cannot be fixed by falling back to defaults.
func (c Config) Validate() error {
	if c.ResetDelay < 0 {
		return fmt.Errorf("config: reset delay must not be negative, got %s", c.ResetDelay)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("config: settle delay must not be negative, got %s", c.SettleDelay)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}
