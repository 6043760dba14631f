package config

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/termwatch/internal/logging"
	"github.com/Iron-Ham/termwatch/internal/monitor"
)

// Live holds the most recently loaded Config and swaps it when the config
// file changes. A reload that fails validation keeps the previous Config.
type Live struct {
	cur    atomic.Pointer[Config]
	logger *logging.Logger

	mu        sync.Mutex
	listeners []func(*Config)
	loader    func() (*Config, error)
}

// NewLive wraps an already loaded Config.
func NewLive(cfg *Config, logger *logging.Logger) *Live {
	if cfg == nil {
		cfg = Default()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	l := &Live{logger: logger.WithComponent("config"), loader: Load}
	l.cur.Store(cfg)
	return l
}

// Current returns the active Config. Callers must not modify it.
func (l *Live) Current() *Config {
	return l.cur.Load()
}

// MonitorSettings satisfies monitor.SettingsFunc.
func (l *Live) MonitorSettings() monitor.Settings {
	return l.Current().MonitorSettings()
}

// OnChange registers fn to run after every successful reload.
func (l *Live) OnChange(fn func(*Config)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Reload re-reads the configuration through viper.
func (l *Live) Reload() error {
	cfg, err := l.loader()
	if err != nil {
		l.logger.Warn("config reload rejected; keeping previous settings", "error", err.Error())
		return err
	}
	for _, w := range cfg.Warnings() {
		l.logger.Warn(w)
	}
	l.cur.Store(cfg)
	l.logger.Info("config reloaded")

	l.mu.Lock()
	listeners := append([]func(*Config){}, l.listeners...)
	l.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// Watch reloads whenever viper reports a change to the config file. It is
// a no-op when no config file was read.
func (l *Live) Watch() {
	if viper.ConfigFileUsed() == "" {
		l.logger.Debug("no config file in use; not watching")
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		l.logger.Info("config file changed", "file", e.Name, "op", e.Op.String())
		_ = l.Reload()
	})
	viper.WatchConfig()
}
