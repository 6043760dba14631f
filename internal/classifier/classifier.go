package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/logging"
)

// Settings selects and authenticates a provider. They are re-read by the
// monitor on every tick, so a Client never caches them.
type Settings struct {
	Endpoint string
	APIKey   string
	Provider string
	Model    string
}

// Configured reports whether both endpoint and key are present.
func (s Settings) Configured() bool {
	return strings.TrimSpace(s.Endpoint) != "" && strings.TrimSpace(s.APIKey) != ""
}

// Verdict is the outcome of one successful classification.
type Verdict struct {
	Notify    bool
	Reply     string
	Provider  string
	Model     string
	Sensitive []string
	Elapsed   time.Duration
}

// AlertFunc receives failures worth showing to the user: rejected
// credentials and unreachable endpoints.
type AlertFunc func(err error)

// Client runs classification requests. It holds no per-session state and
// is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *logging.Logger
	alert     AlertFunc
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the HTTP transport.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAlert sets the callback for user-facing failures.
func WithAlert(fn AlertFunc) Option {
	return func(c *Client) { c.alert = fn }
}

// New creates a Client. Without options it uses an *http.Client with
// DefaultTimeout and discards logs.
func New(opts ...Option) *Client {
	c := &Client{
		transport: NewHTTPTransport(DefaultTimeout),
		logger:    logging.NopLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAlert replaces the alert callback. It must not be called concurrently
// with Decide.
func (c *Client) SetAlert(fn AlertFunc) {
	c.alert = fn
}

// Evaluate classifies content and returns the verdict or a classified
// *errors.ClassifierError.
func (c *Client) Evaluate(ctx context.Context, content, label string, s Settings) (Verdict, error) {
	if !s.Configured() {
		return Verdict{}, errors.NewClassifierError(errors.KindConfig, "endpoint and api key are required", errors.ErrNotConfigured).
			WithProvider(s.Provider)
	}

	provider, err := NewProvider(s.Provider, c.transport)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{
		Provider:  provider.Name(),
		Model:     s.Model,
		Sensitive: ScanSensitive(content),
	}
	if v.Model == "" {
		v.Model = provider.DefaultModel()
	}
	if len(v.Sensitive) > 0 {
		c.logger.Warn("excerpt may contain sensitive data; sending anyway",
			"session_label", label,
			"patterns", v.Sensitive)
	}

	start := c.now()
	reply, err := provider.Complete(ctx, Request{
		Endpoint: strings.TrimSpace(s.Endpoint),
		APIKey:   s.APIKey,
		Model:    v.Model,
		Prompt:   BuildPrompt(content, label),
	})
	v.Elapsed = c.now().Sub(start)
	if err != nil {
		return v, err
	}

	v.Reply = reply
	notify, err := ParseVerdict(reply)
	if err != nil {
		var ce *errors.ClassifierError
		if errors.As(err, &ce) {
			ce.WithProvider(provider.Name())
		}
		return v, err
	}
	v.Notify = notify
	return v, nil
}

// Decide is Evaluate with every failure collapsed to false. A missing
// endpoint or key is logged as a warning; other failures are logged by kind
// and user-facing ones are passed to the alert callback.
func (c *Client) Decide(ctx context.Context, content, label string, s Settings) bool {
	v, err := c.Evaluate(ctx, content, label, s)
	if err == nil {
		c.logger.Debug("classifier verdict",
			"session_label", label,
			"provider", v.Provider,
			"model", v.Model,
			"reply", v.Reply,
			"notify", v.Notify,
			"elapsed_ms", v.Elapsed.Milliseconds())
		return v.Notify
	}

	c.Report(label, err)
	return false
}

// Report logs a classification failure and forwards user-facing ones to the
// alert callback.
func (c *Client) Report(label string, err error) {
	if errors.Is(err, errors.ErrNotConfigured) {
		c.logger.Warn("classifier not configured", "session_label", label)
		return
	}

	kind, _ := errors.KindOf(err)
	args := []any{"session_label", label, "kind", kind.String(), "error", err.Error()}
	if errors.GetSeverity(err) >= errors.SeverityError {
		c.logger.Error("classifier call failed", args...)
	} else {
		c.logger.Warn("classifier call failed", args...)
	}

	if c.alert != nil && errors.IsUserFacing(err) {
		c.alert(err)
	}
}
