package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/termwatch/internal/classifier"
	"github.com/Iron-Ham/termwatch/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "monitor.excerpt_lines")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = strings.ToLower(l)
	}
	return out
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateMonitor()...)
	errors = append(errors, c.validateClassifier()...)
	errors = append(errors, c.validateTmux()...)
	errors = append(errors, c.validateNotify()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateMonitor validates the MonitorConfig
func (c *Config) validateMonitor() []ValidationError {
	var errors []ValidationError

	if c.Monitor.MinContentLength < 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.min_content_length",
			Value:   c.Monitor.MinContentLength,
			Message: "must be non-negative",
		})
	}

	if c.Monitor.BufferLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.buffer_lines",
			Value:   c.Monitor.BufferLines,
			Message: "must be positive",
		})
	}

	if c.Monitor.ExcerptLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.excerpt_lines",
			Value:   c.Monitor.ExcerptLines,
			Message: "must be positive",
		})
	} else if c.Monitor.BufferLines > 0 && c.Monitor.ExcerptLines > c.Monitor.BufferLines {
		errors = append(errors, ValidationError{
			Field:   "monitor.excerpt_lines",
			Value:   c.Monitor.ExcerptLines,
			Message: fmt.Sprintf("cannot exceed monitor.buffer_lines (%d)", c.Monitor.BufferLines),
		})
	}

	errors = append(errors, validateGlobs("monitor.include", c.Monitor.Include)...)
	errors = append(errors, validateGlobs("monitor.exclude", c.Monitor.Exclude)...)

	return errors
}

func validateGlobs(field string, patterns []string) []ValidationError {
	var errors []ValidationError
	for i, p := range patterns {
		if _, err := glob.Compile(p); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Value:   p,
				Message: fmt.Sprintf("invalid glob: %v", err),
			})
		}
	}
	return errors
}

// validateClassifier validates the ClassifierConfig
func (c *Config) validateClassifier() []ValidationError {
	var errors []ValidationError

	provider := strings.ToLower(strings.TrimSpace(c.Classifier.APIProvider))
	if !slices.Contains(classifier.ProviderNames(), provider) {
		errors = append(errors, ValidationError{
			Field:   "classifier.api_provider",
			Value:   c.Classifier.APIProvider,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(classifier.ProviderNames(), ", ")),
		})
	}

	if c.Classifier.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "classifier.timeout_seconds",
			Value:   c.Classifier.TimeoutSeconds,
			Message: "must be positive",
		})
	}

	if c.Classifier.MaxCallsPerMinute < 0 {
		errors = append(errors, ValidationError{
			Field:   "classifier.max_calls_per_minute",
			Value:   c.Classifier.MaxCallsPerMinute,
			Message: "must be non-negative (0 disables the limit)",
		})
	}

	return errors
}

// validateTmux validates the TmuxConfig
func (c *Config) validateTmux() []ValidationError {
	var errors []ValidationError

	const minPollMs = 100
	if c.Tmux.PollIntervalMs < minPollMs {
		errors = append(errors, ValidationError{
			Field:   "tmux.poll_interval_ms",
			Value:   c.Tmux.PollIntervalMs,
			Message: fmt.Sprintf("must be at least %d", minPollMs),
		})
	}

	if c.Tmux.CaptureLines <= 0 {
		errors = append(errors, ValidationError{
			Field:   "tmux.capture_lines",
			Value:   c.Tmux.CaptureLines,
			Message: "must be positive",
		})
	}

	if strings.ContainsAny(c.Tmux.Socket, "/ \t") {
		errors = append(errors, ValidationError{
			Field:   "tmux.socket",
			Value:   c.Tmux.Socket,
			Message: "must be a socket name, not a path",
		})
	}

	return errors
}

// validateNotify validates the NotifyConfig
func (c *Config) validateNotify() []ValidationError {
	var errors []ValidationError

	if c.Notify.Telegram.Token != "" && c.Notify.Telegram.ChatID == 0 {
		errors = append(errors, ValidationError{
			Field:   "notify.telegram.chat_id",
			Value:   c.Notify.Telegram.ChatID,
			Message: "is required when notify.telegram.token is set",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	level := strings.ToLower(c.Logging.Level)
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
