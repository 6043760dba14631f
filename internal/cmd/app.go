package cmd

import (
	"io"

	"github.com/Iron-Ham/termwatch/internal/classifier"
	"github.com/Iron-Ham/termwatch/internal/config"
	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/logging"
	"github.com/Iron-Ham/termwatch/internal/notify"
)

// newLogger opens the logger. When toFile is set and no log file is
// configured, logs go to the default file so they do not corrupt the
// dashboard.
func newLogger(cfg *config.Config, toFile bool) (*logging.Logger, error) {
	path := cfg.Logging.File
	if path == "" && toFile {
		path = config.DefaultLogFile()
	}
	return logging.NewLogger(path, cfg.Logging.Level)
}

// bootstrap loads config and opens the logger. Config warnings are logged
// once the logger exists.
func bootstrap(toFile bool) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid configuration")
	}
	logger, err := newLogger(cfg, toFile)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

func newClassifier(cfg *config.Config, logger *logging.Logger) *classifier.Client {
	return classifier.New(
		classifier.WithTransport(classifier.NewHTTPTransport(cfg.Classifier.Timeout())),
		classifier.WithLogger(logger.WithComponent("classifier")),
	)
}

// buildNotifier fans notifications out to the configured sinks. primary is
// the interactive notifier (the dashboard queue) or nil for a console line.
func buildNotifier(cfg *config.Config, out io.Writer, primary notify.Notifier, history *notify.History, logger *logging.Logger) notify.Notifier {
	var sinks []notify.Notifier
	switch {
	case primary != nil:
		sinks = append(sinks, primary)
	case cfg.Notify.Console:
		sinks = append(sinks, notify.NewConsole(out))
	}
	if cfg.Notify.Bell {
		sinks = append(sinks, notify.NewBell(out))
	}
	if cfg.Notify.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID)
		if err != nil {
			logger.Warn("telegram notifier disabled", "error", err.Error())
		} else {
			sinks = append(sinks, tg)
		}
	}
	if history != nil {
		sinks = append(sinks, history)
	}
	return notify.NewMulti(sinks...)
}
