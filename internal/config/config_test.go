package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Monitor.Enabled {
		t.Error("Monitor.Enabled should be true by default")
	}
	if cfg.Monitor.CheckIntervalMs != 5000 {
		t.Errorf("Monitor.CheckIntervalMs = %d, want 5000", cfg.Monitor.CheckIntervalMs)
	}
	if cfg.Monitor.MinContentLength != 50 {
		t.Errorf("Monitor.MinContentLength = %d, want 50", cfg.Monitor.MinContentLength)
	}
	if cfg.Monitor.NotificationCooldownMs != 300000 {
		t.Errorf("Monitor.NotificationCooldownMs = %d, want 300000", cfg.Monitor.NotificationCooldownMs)
	}
	if cfg.Monitor.ExcerptLines != 100 || cfg.Monitor.BufferLines != 1000 {
		t.Errorf("excerpt/buffer = %d/%d, want 100/1000", cfg.Monitor.ExcerptLines, cfg.Monitor.BufferLines)
	}
	if cfg.Classifier.APIProvider != "openai" {
		t.Errorf("Classifier.APIProvider = %q, want openai", cfg.Classifier.APIProvider)
	}
	if cfg.Classifier.Timeout() != 30*time.Second {
		t.Errorf("Classifier.Timeout() = %v, want 30s", cfg.Classifier.Timeout())
	}
	if cfg.Tmux.PollInterval() != time.Second || cfg.Tmux.CaptureLines != 200 {
		t.Errorf("unexpected tmux defaults: %+v", cfg.Tmux)
	}
	if !cfg.Notify.Bell || !cfg.Notify.Console {
		t.Error("bell and console notifiers should be on by default")
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() should validate, got %v", errs)
	}
}

func loadYAML(t *testing.T, content string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}
	return Load()
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := loadYAML(t, `
monitor:
  check_interval: 2000
  include: ["build-*"]
classifier:
  api_endpoint: https://api.anthropic.com/v1/messages
  api_key: secret
  api_provider: claude
notify:
  telegram:
    token: "123:abc"
    chat_id: 42
`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Monitor.CheckInterval() != 2*time.Second {
		t.Errorf("CheckInterval() = %v, want 2s", cfg.Monitor.CheckInterval())
	}
	if cfg.Monitor.MinContentLength != 50 {
		t.Errorf("unset keys should keep defaults, MinContentLength = %d", cfg.Monitor.MinContentLength)
	}
	if cfg.Classifier.APIProvider != "claude" || cfg.Classifier.APIKey != "secret" {
		t.Errorf("unexpected classifier config: %+v", cfg.Classifier)
	}
	if cfg.Notify.Telegram.ChatID != 42 {
		t.Errorf("Telegram.ChatID = %d, want 42", cfg.Notify.Telegram.ChatID)
	}

	s := cfg.MonitorSettings()
	if !s.Classifier.Configured() || s.Classifier.Provider != "claude" {
		t.Errorf("MonitorSettings().Classifier = %+v", s.Classifier)
	}
	if len(s.Include) != 1 || s.Include[0] != "build-*" {
		t.Errorf("MonitorSettings().Include = %v", s.Include)
	}
	if s.NotificationCooldown != 5*time.Minute {
		t.Errorf("MonitorSettings().NotificationCooldown = %v", s.NotificationCooldown)
	}
}

func TestLoad_LegacyKeys(t *testing.T) {
	cfg, err := loadYAML(t, `
apiEndpoint: https://example.test/classify
apiKey: k
apiProvider: custom
checkInterval: 3000
minContentLength: 10
notificationCooldown: 60000
`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Classifier.APIEndpoint != "https://example.test/classify" || cfg.Classifier.APIProvider != "custom" {
		t.Errorf("legacy classifier keys not applied: %+v", cfg.Classifier)
	}
	if cfg.Monitor.CheckIntervalMs != 3000 || cfg.Monitor.MinContentLength != 10 || cfg.Monitor.NotificationCooldownMs != 60000 {
		t.Errorf("legacy monitor keys not applied: %+v", cfg.Monitor)
	}
}

func TestLoad_EnvOutranksLegacyKey(t *testing.T) {
	t.Setenv("TERMWATCH_CLASSIFIER_API_KEY", "from-env")
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("apiKey: legacy-key\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Classifier.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.Classifier.APIKey)
	}
}

func TestLoad_LegacyKeyDroppedOnReload(t *testing.T) {
	cfg, err := loadYAML(t, `
apiKey: old-key
modelName: old-model
`)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Classifier.APIKey != "old-key" {
		t.Fatalf("APIKey = %q, want old-key", cfg.Classifier.APIKey)
	}

	path := viper.ConfigFileUsed()
	if err := os.WriteFile(path, []byte("classifier:\n  api_key: new-key\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig: %v", err)
	}

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Classifier.APIKey != "new-key" {
		t.Errorf("APIKey = %q, want new-key", cfg.Classifier.APIKey)
	}
	if want := Default().Classifier.ModelName; cfg.Classifier.ModelName != want {
		t.Errorf("ModelName = %q, want default %q after legacy key removed", cfg.Classifier.ModelName, want)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TERMWATCH_CLASSIFIER_API_KEY", "from-env")
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Classifier.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want from-env", cfg.Classifier.APIKey)
	}
}

func TestLoad_InvalidFails(t *testing.T) {
	_, err := loadYAML(t, `
classifier:
  api_provider: mistral
`)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "classifier.api_provider") {
		t.Errorf("error = %q, expected field name", err.Error())
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		intervalMs   int
		cooldownMs   int
		wantInterval int
		wantCooldown int
		wantWarnings int
	}{
		{"valid values untouched", 1000, 0, 1000, 0, 0},
		{"interval below minimum", 999, 1000, 5000, 1000, 1},
		{"zero interval", 0, 1000, 5000, 1000, 1},
		{"negative cooldown", 5000, -1, 5000, 0, 1},
		{"both clamped", 10, -500, 5000, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Monitor.CheckIntervalMs = tt.intervalMs
			cfg.Monitor.NotificationCooldownMs = tt.cooldownMs

			warnings := cfg.Normalize()

			if cfg.Monitor.CheckIntervalMs != tt.wantInterval {
				t.Errorf("CheckIntervalMs = %d, want %d", cfg.Monitor.CheckIntervalMs, tt.wantInterval)
			}
			if cfg.Monitor.NotificationCooldownMs != tt.wantCooldown {
				t.Errorf("NotificationCooldownMs = %d, want %d", cfg.Monitor.NotificationCooldownMs, tt.wantCooldown)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.wantWarnings)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got := ConfigDir(); got != "/tmp/xdg/termwatch" {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigFile(); got != "/tmp/xdg/termwatch/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
	if got := DefaultLogFile(); got != "/tmp/xdg/termwatch/termwatch.log" {
		t.Errorf("DefaultLogFile() = %q", got)
	}
}
