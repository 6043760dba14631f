package monitor

import (
	"context"
	"time"

	"github.com/Iron-Ham/termwatch/internal/classifier"
	"github.com/Iron-Ham/termwatch/internal/session"
)

// Handle names a live session as reported by a Host.
type Handle struct {
	ID    session.ID
	Label string
}

// Host is the environment that owns the sessions: tmux, a pty runner, or a
// fake in tests.
type Host interface {
	// Sessions lists the currently live sessions.
	Sessions() []Handle
	// Focus brings the session to the foreground.
	Focus(id session.ID) error
}

// Classifier judges an excerpt. *classifier.Client satisfies it.
type Classifier interface {
	Evaluate(ctx context.Context, content, label string, s classifier.Settings) (classifier.Verdict, error)
	// Report logs a failed Evaluate and raises user-facing failures.
	Report(label string, err error)
}

// alertSetter is implemented by classifiers that raise user-facing failures
// through a callback. The monitor installs its own alert there.
type alertSetter interface {
	SetAlert(fn classifier.AlertFunc)
}

// Interval bounds for the tick pump.
const (
	MinCheckInterval     = time.Second
	DefaultCheckInterval = 5 * time.Second
)

// Default gate and excerpt values.
const (
	DefaultMinContentLength     = 50
	DefaultNotificationCooldown = 5 * time.Minute
	DefaultExcerptLines         = 100
)

// Settings are the tunables the monitor reads. They are fetched through a
// SettingsFunc at the start of every tick, so edits to the config file take
// effect without a restart. CheckInterval is read on Enable.
type Settings struct {
	Classifier           classifier.Settings
	CheckInterval        time.Duration
	MinContentLength     int
	NotificationCooldown time.Duration
	ExcerptLines         int
	MaxCallsPerMinute    int
	Include              []string
	Exclude              []string
}

// DefaultSettings returns the built-in defaults with no classifier
// configured.
func DefaultSettings() Settings {
	return Settings{
		Classifier:           classifier.Settings{Provider: classifier.ProviderOpenAI},
		CheckInterval:        DefaultCheckInterval,
		MinContentLength:     DefaultMinContentLength,
		NotificationCooldown: DefaultNotificationCooldown,
		ExcerptLines:         DefaultExcerptLines,
	}
}

// SettingsFunc supplies the current settings.
type SettingsFunc func() Settings

// StaticSettings returns a SettingsFunc that always yields s.
func StaticSettings(s Settings) SettingsFunc {
	return func() Settings { return s }
}

// EffectiveInterval applies the interval floor: anything below
// MinCheckInterval is replaced by DefaultCheckInterval. The bool reports
// whether the value was replaced.
func EffectiveInterval(d time.Duration) (time.Duration, bool) {
	if d < MinCheckInterval {
		return DefaultCheckInterval, true
	}
	return d, false
}

// Stats are cumulative counters since the monitor was created.
type Stats struct {
	Ticks           int
	SkippedTicks    int
	ClassifierCalls int
	ClassifierFails int
	Notifications   int
	Discarded       int // verdicts dropped because monitoring was disabled mid-call

	SkipEmpty     int
	SkipLength    int
	SkipUnchanged int
	SkipCooldown  int
	SkipRateLimit int
	SkipFiltered  int
}
