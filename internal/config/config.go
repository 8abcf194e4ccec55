package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sho7650/toasty/internal/hooks"
)

// EnvPrefix is prepended to every environment override, e.g. TOASTY_TITLE
const EnvPrefix = "TOASTY"

// Config holds the application configuration
type Config struct {
	// Title is the notification title when neither a flag nor a preset sets one
	Title string
	// AppID identifies toasty to the Windows notification service
	AppID string
	// Enabled false suppresses notifications without failing the caller
	Enabled bool
	HomeDir string
	WorkDir string
	// Hooks overrides the generated hook text per integration name
	Hooks map[string]hooks.HookText
	// File is the config file that was read, if any
	File string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	workDir, _ := os.Getwd()
	return &Config{
		Title:   "Notification",
		AppID:   "Toasty",
		Enabled: true,
		HomeDir: homeDir,
		WorkDir: workDir,
		Hooks:   make(map[string]hooks.HookText),
	}
}

// NewConfig creates a new configuration with optional overrides
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option is a function that modifies the configuration
type Option func(*Config)

// WithHomeDir sets the directory user-scoped integrations resolve against
func WithHomeDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.HomeDir = dir
		}
	}
}

// WithWorkDir sets the directory project-scoped integrations resolve against
func WithWorkDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.WorkDir = dir
		}
	}
}

// WithTitle sets the fallback notification title
func WithTitle(title string) Option {
	return func(c *Config) {
		if title != "" {
			c.Title = title
		}
	}
}

// GetConfigDir returns the directory searched for config.yaml
func GetConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "toasty")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "toasty")
}

// Load layers defaults, the config file, TOASTY_* environment variables and
// opts, in that order. An explicit path must exist; the default config file
// is optional.
func Load(path string, opts ...Option) (*Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault("title", def.Title)
	v.SetDefault("app_id", def.AppID)
	v.SetDefault("enabled", def.Enabled)
	v.SetDefault("home_dir", def.HomeDir)
	v.SetDefault("work_dir", def.WorkDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Nested keys are not discovered by AutomaticEnv alone
	for _, name := range hooks.Names() {
		for _, field := range []string{"message", "title", "timeout"} {
			_ = v.BindEnv("hooks." + name + "." + field)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(GetConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Title:   v.GetString("title"),
		AppID:   v.GetString("app_id"),
		Enabled: v.GetBool("enabled"),
		HomeDir: v.GetString("home_dir"),
		WorkDir: v.GetString("work_dir"),
		Hooks:   make(map[string]hooks.HookText),
		File:    v.ConfigFileUsed(),
	}

	for _, name := range hooks.Names() {
		text := hooks.HookText{
			Message: v.GetString("hooks." + name + ".message"),
			Title:   v.GetString("hooks." + name + ".title"),
			Timeout: v.GetInt("hooks." + name + ".timeout"),
		}
		if text != (hooks.HookText{}) {
			cfg.Hooks[name] = text
		}
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// Env returns the base directories for the hook manager
func (c *Config) Env() hooks.Env {
	return hooks.Env{HomeDir: c.HomeDir, WorkDir: c.WorkDir}
}

// Integration applies any configured hook text to in
func (c *Config) Integration(in hooks.Integration) hooks.Integration {
	if text, ok := c.Hooks[in.Name]; ok {
		return in.WithText(text)
	}
	return in
}

// Integrations returns the catalogue with configured hook text applied
func (c *Config) Integrations() []hooks.Integration {
	all := hooks.Integrations()
	for i, in := range all {
		all[i] = c.Integration(in)
	}
	return all
}
