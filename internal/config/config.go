// Package config loads termwatch settings through viper.
//
// Settings come from, in increasing priority: built-in defaults, the YAML
// config file, and TERMWATCH_* environment variables. The file is watched,
// and the monitor re-reads classifier settings and gate thresholds on every
// tick.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/termwatch/internal/classifier"
	"github.com/Iron-Ham/termwatch/internal/monitor"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// TERMWATCH_CLASSIFIER_API_KEY.
const EnvPrefix = "TERMWATCH"

// Config represents the complete termwatch configuration
type Config struct {
	Monitor    MonitorConfig    `mapstructure:"monitor" yaml:"monitor"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Tmux       TmuxConfig       `mapstructure:"tmux" yaml:"tmux"`
	Notify     NotifyConfig     `mapstructure:"notify" yaml:"notify"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`

	warnings []string
}

// MonitorConfig controls the decision loop
type MonitorConfig struct {
	// Enabled starts monitoring as soon as the config is loaded
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// CheckIntervalMs is the tick period in milliseconds (minimum 1000)
	CheckIntervalMs int `mapstructure:"check_interval" yaml:"check_interval"`
	// MinContentLength is the shortest excerpt worth classifying
	MinContentLength int `mapstructure:"min_content_length" yaml:"min_content_length"`
	// NotificationCooldownMs is the quiet period after a notification, in milliseconds
	NotificationCooldownMs int `mapstructure:"notification_cooldown" yaml:"notification_cooldown"`
	// ExcerptLines is how many trailing buffer lines are sent to the classifier
	ExcerptLines int `mapstructure:"excerpt_lines" yaml:"excerpt_lines"`
	// BufferLines caps each session's line buffer
	BufferLines int `mapstructure:"buffer_lines" yaml:"buffer_lines"`
	// Include limits monitoring to session labels matching these globs
	Include []string `mapstructure:"include" yaml:"include"`
	// Exclude skips session labels matching these globs
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
}

// ClassifierConfig selects and authenticates the classifier provider
type ClassifierConfig struct {
	APIEndpoint string `mapstructure:"api_endpoint" yaml:"api_endpoint"`
	APIKey      string `mapstructure:"api_key" yaml:"api_key"`
	// APIProvider is one of openai, claude, custom, gemini
	APIProvider string `mapstructure:"api_provider" yaml:"api_provider"`
	// ModelName overrides the provider's default model
	ModelName         string `mapstructure:"model_name" yaml:"model_name"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxCallsPerMinute int    `mapstructure:"max_calls_per_minute" yaml:"max_calls_per_minute"`
}

// TmuxConfig controls the tmux host
type TmuxConfig struct {
	// Socket is the tmux -L socket name; empty uses the default server
	Socket         string `mapstructure:"socket" yaml:"socket"`
	PollIntervalMs int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	CaptureLines   int    `mapstructure:"capture_lines" yaml:"capture_lines"`
}

// NotifyConfig selects notifiers
type NotifyConfig struct {
	Bell     bool           `mapstructure:"bell" yaml:"bell"`
	Console  bool           `mapstructure:"console" yaml:"console"`
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
}

// TelegramConfig enables the Telegram notifier when Token is set
type TelegramConfig struct {
	Token  string `mapstructure:"token" yaml:"token"`
	ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
}

// LoggingConfig controls the debug log
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log path; empty means stderr, or ConfigDir()/termwatch.log
	// while the dashboard owns the terminal
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Enabled:                true,
			CheckIntervalMs:        int(monitor.DefaultCheckInterval / time.Millisecond),
			MinContentLength:       monitor.DefaultMinContentLength,
			NotificationCooldownMs: int(monitor.DefaultNotificationCooldown / time.Millisecond),
			ExcerptLines:           monitor.DefaultExcerptLines,
			BufferLines:            1000,
			Include:                []string{},
			Exclude:                []string{},
		},
		Classifier: ClassifierConfig{
			APIProvider:    classifier.ProviderOpenAI,
			TimeoutSeconds: int(classifier.DefaultTimeout / time.Second),
		},
		Tmux: TmuxConfig{
			PollIntervalMs: 1000,
			CaptureLines:   200,
		},
		Notify: NotifyConfig{
			Bell:    true,
			Console: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("monitor.enabled", defaults.Monitor.Enabled)
	viper.SetDefault("monitor.check_interval", defaults.Monitor.CheckIntervalMs)
	viper.SetDefault("monitor.min_content_length", defaults.Monitor.MinContentLength)
	viper.SetDefault("monitor.notification_cooldown", defaults.Monitor.NotificationCooldownMs)
	viper.SetDefault("monitor.excerpt_lines", defaults.Monitor.ExcerptLines)
	viper.SetDefault("monitor.buffer_lines", defaults.Monitor.BufferLines)
	viper.SetDefault("monitor.include", defaults.Monitor.Include)
	viper.SetDefault("monitor.exclude", defaults.Monitor.Exclude)

	viper.SetDefault("classifier.api_endpoint", defaults.Classifier.APIEndpoint)
	viper.SetDefault("classifier.api_key", defaults.Classifier.APIKey)
	viper.SetDefault("classifier.api_provider", defaults.Classifier.APIProvider)
	viper.SetDefault("classifier.model_name", defaults.Classifier.ModelName)
	viper.SetDefault("classifier.timeout_seconds", defaults.Classifier.TimeoutSeconds)
	viper.SetDefault("classifier.max_calls_per_minute", defaults.Classifier.MaxCallsPerMinute)

	viper.SetDefault("tmux.socket", defaults.Tmux.Socket)
	viper.SetDefault("tmux.poll_interval_ms", defaults.Tmux.PollIntervalMs)
	viper.SetDefault("tmux.capture_lines", defaults.Tmux.CaptureLines)

	viper.SetDefault("notify.bell", defaults.Notify.Bell)
	viper.SetDefault("notify.console", defaults.Notify.Console)
	viper.SetDefault("notify.telegram.token", defaults.Notify.Telegram.Token)
	viper.SetDefault("notify.telegram.chat_id", defaults.Notify.Telegram.ChatID)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
}

// legacyKeys maps the flat camelCase keys of older config files to their
// current location.
var legacyKeys = map[string]string{
	"enabled":              "monitor.enabled",
	"checkInterval":        "monitor.check_interval",
	"minContentLength":     "monitor.min_content_length",
	"notificationCooldown": "monitor.notification_cooldown",
	"apiEndpoint":          "classifier.api_endpoint",
	"apiKey":               "classifier.api_key",
	"apiProvider":          "classifier.api_provider",
	"modelName":            "classifier.model_name",
}

// applyLegacyKeys maps legacy keys found in the config file onto the
// default layer of their current names, so environment variables and the
// current key still take precedence. Defaults are reset first so a legacy
// value removed from the file does not survive a reload.
func applyLegacyKeys() {
	SetDefaults()
	for legacy, current := range legacyKeys {
		if viper.InConfig(legacy) && !viper.InConfig(current) {
			viper.SetDefault(current, viper.Get(legacy))
		}
	}
}

// Load reads the configuration from viper into a Config struct, clamps
// out-of-range timings and validates it
func Load() (*Config, error) {
	applyLegacyKeys()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.warnings = cfg.Normalize()

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Normalize clamps timings the monitor cannot honor and returns a warning
// for each adjustment: a check interval below the minimum becomes the
// default, and a negative cooldown becomes zero.
func (c *Config) Normalize() []string {
	var warnings []string

	requested := time.Duration(c.Monitor.CheckIntervalMs) * time.Millisecond
	if interval, replaced := monitor.EffectiveInterval(requested); replaced {
		warnings = append(warnings, fmt.Sprintf(
			"monitor.check_interval %dms is below the %dms minimum; using %dms",
			c.Monitor.CheckIntervalMs, monitor.MinCheckInterval.Milliseconds(), interval.Milliseconds()))
		c.Monitor.CheckIntervalMs = int(interval.Milliseconds())
	}

	if c.Monitor.NotificationCooldownMs < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"monitor.notification_cooldown %dms is negative; using 0 (no cooldown)",
			c.Monitor.NotificationCooldownMs))
		c.Monitor.NotificationCooldownMs = 0
	}

	return warnings
}

// Warnings returns the adjustments made by the last Normalize during Load.
func (c *Config) Warnings() []string {
	return c.warnings
}

// CheckInterval returns the tick period as a time.Duration
func (c *MonitorConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMs) * time.Millisecond
}

// NotificationCooldown returns the cooldown as a time.Duration
func (c *MonitorConfig) NotificationCooldown() time.Duration {
	return time.Duration(c.NotificationCooldownMs) * time.Millisecond
}

// Timeout returns the classifier transport timeout as a time.Duration
func (c *ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Settings returns the classifier selection in the form the classifier
// package uses
func (c *ClassifierConfig) Settings() classifier.Settings {
	return classifier.Settings{
		Endpoint: c.APIEndpoint,
		APIKey:   c.APIKey,
		Provider: c.APIProvider,
		Model:    c.ModelName,
	}
}

// PollInterval returns the tmux capture period as a time.Duration
func (c *TmuxConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// MonitorSettings converts the config into the monitor's tunables
func (c *Config) MonitorSettings() monitor.Settings {
	return monitor.Settings{
		Classifier:           c.Classifier.Settings(),
		CheckInterval:        c.Monitor.CheckInterval(),
		MinContentLength:     c.Monitor.MinContentLength,
		NotificationCooldown: c.Monitor.NotificationCooldown(),
		ExcerptLines:         c.Monitor.ExcerptLines,
		MaxCallsPerMinute:    c.Classifier.MaxCallsPerMinute,
		Include:              append([]string(nil), c.Monitor.Include...),
		Exclude:              append([]string(nil), c.Monitor.Exclude...),
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "termwatch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".termwatch"
	}
	return filepath.Join(home, ".config", "termwatch")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultLogFile is where logs go while the dashboard owns the terminal
func DefaultLogFile() string {
	return filepath.Join(ConfigDir(), "termwatch.log")
}
