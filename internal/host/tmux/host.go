package tmux

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/logging"
	"github.com/Iron-Ham/termwatch/internal/monitor"
	"github.com/Iron-Ham/termwatch/internal/session"
)

// Defaults for Config.
const (
	DefaultPollInterval = time.Second
	DefaultCaptureLines = 200
)

// listFormat is the list-sessions format: tmux id, name, creation time.
const listFormat = "#{session_id}\t#{session_name}\t#{session_created}"

// Sink receives session lifecycle and output. *monitor.Monitor satisfies it.
type Sink interface {
	SessionOpened(id session.ID, label string) error
	SessionClosed(id session.ID) error
	Append(id session.ID, text string)
}

// Config configures a Host.
type Config struct {
	Socket       string
	PollInterval time.Duration
	CaptureLines int
	Logger       *logging.Logger

	// Runner overrides the tmux executor; used by tests.
	Runner Runner
	// Clock overrides time.Now for ID assignment.
	Clock func() time.Time
}

type pane struct {
	id      session.ID
	tmuxID  string
	label   string
	created int64
	lines   []string
}

// Host tracks tmux sessions and implements monitor.Host.
type Host struct {
	run          Runner
	logger       *logging.Logger
	pollInterval time.Duration
	captureLines int
	now          func() time.Time

	mu    sync.RWMutex
	panes map[string]*pane // keyed by tmux session id ("$3")
}

var _ monitor.Host = (*Host)(nil)

// New creates a Host. Output is delivered to the Sink passed to Run or
// Poll.
func New(cfg Config) *Host {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.CaptureLines <= 0 {
		cfg.CaptureLines = DefaultCaptureLines
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner(cfg.Socket)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Host{
		run:          cfg.Runner,
		logger:       cfg.Logger.WithComponent("tmux"),
		pollInterval: cfg.PollInterval,
		captureLines: cfg.CaptureLines,
		now:          cfg.Clock,
		panes:        make(map[string]*pane),
	}
}

// Sessions lists the known tmux sessions, oldest first.
func (h *Host) Sessions() []monitor.Handle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ps := make([]*pane, 0, len(h.panes))
	for _, p := range h.panes {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].created != ps[j].created {
			return ps[i].created < ps[j].created
		}
		return ps[i].id < ps[j].id
	})

	out := make([]monitor.Handle, len(ps))
	for i, p := range ps {
		out[i] = monitor.Handle{ID: p.id, Label: p.label}
	}
	return out
}

// Focus switches the attached tmux client to the session.
func (h *Host) Focus(id session.ID) error {
	tmuxID, ok := h.lookup(id)
	if !ok {
		return errors.NewSessionError("focus", errors.ErrSessionNotFound).WithSessionID(id.String())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := h.run(ctx, "switch-client", "-t", tmuxID); err != nil {
		return errors.NewSessionError("focus", err).WithSessionID(id.String()).WithStage("switch-client")
	}
	return nil
}

func (h *Host) lookup(id session.ID) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for tmuxID, p := range h.panes {
		if p.id == id {
			return tmuxID, true
		}
	}
	return "", false
}

// Run polls until ctx is canceled. Poll errors are logged and retried on
// the next interval.
func (h *Host) Run(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		if err := h.Poll(ctx, sink); err != nil && ctx.Err() == nil {
			h.logger.Warn("tmux poll failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type listed struct {
	tmuxID  string
	name    string
	created int64
}

// Poll reconciles the session list once and forwards new pane output.
func (h *Host) Poll(ctx context.Context, sink Sink) error {
	current, err := h.list(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(current))
	for _, s := range current {
		seen[s.tmuxID] = true
		h.track(s, sink)
	}
	h.forget(seen, sink)

	for _, s := range current {
		if err := h.capture(ctx, s.tmuxID, sink); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.logger.Debug("capture failed", "tmux_session", s.tmuxID, "error", err.Error())
		}
	}
	return nil
}

func (h *Host) list(ctx context.Context) ([]listed, error) {
	out, err := h.run(ctx, "list-sessions", "-F", listFormat)
	if err != nil {
		if isNoServer(err) {
			return nil, nil
		}
		return nil, err
	}
	return parseSessions(string(out)), nil
}

func parseSessions(out string) []listed {
	var result []listed
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		s := listed{tmuxID: fields[0], name: fields[1]}
		if len(fields) == 3 {
			s.created, _ = strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		}
		result = append(result, s)
	}
	return result
}

func (h *Host) track(s listed, sink Sink) {
	h.mu.Lock()
	p, ok := h.panes[s.tmuxID]
	if ok {
		p.label = s.name
		h.mu.Unlock()
		return
	}
	p = &pane{
		id:      session.NewID(h.now()),
		tmuxID:  s.tmuxID,
		label:   s.name,
		created: s.created,
	}
	h.panes[s.tmuxID] = p
	h.mu.Unlock()

	h.logger.Info("tmux session discovered", "tmux_session", s.tmuxID, "session_id", p.id.String(), "session_label", s.name)
	if err := sink.SessionOpened(p.id, s.name); err != nil {
		h.logger.Warn("session open not delivered", "session_id", p.id.String(), "error", err.Error())
	}
}

func (h *Host) forget(seen map[string]bool, sink Sink) {
	h.mu.Lock()
	var gone []*pane
	for tmuxID, p := range h.panes {
		if !seen[tmuxID] {
			gone = append(gone, p)
			delete(h.panes, tmuxID)
		}
	}
	h.mu.Unlock()

	for _, p := range gone {
		h.logger.Info("tmux session ended", "tmux_session", p.tmuxID, "session_id", p.id.String())
		if err := sink.SessionClosed(p.id); err != nil {
			h.logger.Warn("session close not delivered", "session_id", p.id.String(), "error", err.Error())
		}
	}
}

func (h *Host) capture(ctx context.Context, tmuxID string, sink Sink) error {
	out, err := h.run(ctx, "capture-pane", "-p", "-J", "-t", tmuxID, "-S", fmt.Sprintf("-%d", h.captureLines))
	if err != nil {
		return err
	}
	lines := splitCapture(string(out))

	h.mu.Lock()
	p, ok := h.panes[tmuxID]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	fresh := newLines(p.lines, lines)
	p.lines = lines
	id := p.id
	h.mu.Unlock()

	if len(fresh) > 0 {
		sink.Append(id, strings.Join(fresh, "\n"))
	}
	return nil
}
