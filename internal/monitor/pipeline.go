package monitor

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/time/rate"

	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/event"
	"github.com/Iron-Ham/termwatch/internal/notify"
	"github.com/Iron-Ham/termwatch/internal/session"
)

// CommandStartLine is the marker appended when a command starts.
func CommandStartLine(command string) string {
	return "[COMMAND] " + command
}

// CommandEndLine is the marker appended when a command finishes.
func CommandEndLine(command string, exitCode int) string {
	return fmt.Sprintf("[COMPLETED] %s (exit code: %d)", command, exitCode)
}

// AttentionText is the body of a positive-verdict notification.
func AttentionText(label string) string {
	return fmt.Sprintf("Session %q needs your attention!", label)
}

// outcome is what happened to one session in one tick.
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeQuiet
	outcomeNotified
	outcomeFailed
	outcomeDiscarded
)

// tickState carries per-tick bookkeeping.
type tickState struct {
	settings Settings
	epoch    uint64
	calls    int
	notified int
	alerted  map[errors.Kind]bool
}

// tick runs one evaluation cycle over every live session. It is only called
// from the loop goroutine.
func (m *Monitor) tick(manual bool) {
	s := m.settings()
	m.count(func(st *Stats) { st.Ticks++ })

	if !s.Classifier.Configured() {
		m.logger.Warn("classifier endpoint or api key missing; skipping tick")
		m.count(func(st *Stats) { st.SkippedTicks++ })
		m.bus.Publish(event.NewTickEvent(0, 0, 0, true, manual))
		return
	}

	m.applyLimits(s)
	ts := &tickState{
		settings: s,
		epoch:    m.epoch.Load(),
		alerted:  make(map[errors.Kind]bool),
	}
	m.current = ts
	defer func() { m.current = nil }()

	handles := m.host.Sessions()
	considered := 0
	for _, h := range handles {
		if !m.filter.allows(h.Label) {
			m.count(func(st *Stats) { st.SkipFiltered++ })
			continue
		}
		considered++
		m.evaluateSafely(h, ts)
		if m.ctx.Err() != nil || m.epoch.Load() != ts.epoch {
			return
		}
	}

	m.bus.Publish(event.NewTickEvent(considered, ts.calls, ts.notified, false, manual))
}

// applyLimits refreshes the rate limiter and label filter when their
// settings change.
func (m *Monitor) applyLimits(s Settings) {
	if s.MaxCallsPerMinute != m.limiterRate {
		m.limiterRate = s.MaxCallsPerMinute
		m.limiter = nil
		if s.MaxCallsPerMinute > 0 {
			perSecond := rate.Limit(float64(s.MaxCallsPerMinute) / 60)
			m.limiter = rate.NewLimiter(perSecond, s.MaxCallsPerMinute)
		}
	}

	key := filterKey(s.Include, s.Exclude)
	if !m.filterLoaded || key != m.filterKey {
		m.filter = compileFilter(s.Include, s.Exclude, m.logger)
		m.filterKey = key
		m.filterLoaded = true
	}
}

// evaluateSafely runs evaluate and turns a panic into a logged
// SessionError so that one bad session cannot abort the tick.
func (m *Monitor) evaluateSafely(h Handle, ts *tickState) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.NewSessionError(fmt.Sprintf("evaluation panicked: %v", r), nil).
				WithSessionID(h.ID.String()).
				WithStage("evaluate")
			m.logger.Error("session evaluation failed",
				"session_id", h.ID.String(),
				"error", err.Error(),
				"stack", string(debug.Stack()))
			m.registry.Update(h.ID, func(rec *session.Record) { rec.Running = false })
		}
	}()
	m.evaluate(h, ts)
}

// evaluate runs the decision pipeline for one session.
func (m *Monitor) evaluate(h Handle, ts *tickState) outcome {
	s := ts.settings
	log := m.logger.WithSession(h.ID.String(), h.Label)

	if _, ok := m.registry.Get(h.ID); !ok {
		m.open(h.ID, h.Label, true)
	}
	rec, ok := m.registry.Get(h.ID)
	if !ok {
		return outcomeSkipped
	}

	excerptLines := s.ExcerptLines
	if excerptLines <= 0 {
		excerptLines = DefaultExcerptLines
	}
	excerpt := m.store.Read(h.ID.String(), excerptLines)
	if excerpt == "" {
		m.count(func(st *Stats) { st.SkipEmpty++ })
		return outcomeSkipped
	}

	// Gate 1: too little output to judge.
	if contentLength(excerpt) < s.MinContentLength {
		m.count(func(st *Stats) { st.SkipLength++ })
		return outcomeSkipped
	}

	// Gate 2: nothing changed since the last evaluation.
	fp := Fingerprint(excerpt)
	if rec.LastContent != "" && rec.Fingerprint == fp {
		m.count(func(st *Stats) { st.SkipUnchanged++ })
		return outcomeSkipped
	}

	// The fingerprint moves forward before the cooldown check so that
	// gate 2 always compares against the newest content.
	prevContent, prevFingerprint := rec.LastContent, rec.Fingerprint
	m.registry.Update(h.ID, func(r *session.Record) {
		r.LastContent = excerpt
		r.Fingerprint = fp
	})

	// Gate 3: recently notified.
	now := m.now()
	if rec.LastNotification > 0 && now.UnixMilli()-rec.LastNotification < s.NotificationCooldown.Milliseconds() {
		m.count(func(st *Stats) { st.SkipCooldown++ })
		return outcomeSkipped
	}

	// Global classifier budget. Rolling the fingerprint back makes the
	// session eligible again on the next tick.
	if m.limiter != nil && !m.limiter.AllowN(now, 1) {
		m.restore(h.ID, fp, prevContent, prevFingerprint)
		m.count(func(st *Stats) { st.SkipRateLimit++ })
		log.Debug("classifier rate limit reached; deferring session")
		return outcomeSkipped
	}

	m.registry.Update(h.ID, func(r *session.Record) { r.Running = true })
	ts.calls++
	m.count(func(st *Stats) { st.ClassifierCalls++ })

	verdict, err := m.classifier.Evaluate(m.ctx, excerpt, h.Label, s.Classifier)

	m.registry.Update(h.ID, func(r *session.Record) { r.Running = false })

	if m.epoch.Load() != ts.epoch || !m.enabled.Load() {
		m.restore(h.ID, fp, prevContent, prevFingerprint)
		m.count(func(st *Stats) { st.Discarded++ })
		log.Info("monitoring disabled during classification; verdict discarded")
		return outcomeDiscarded
	}

	if err != nil {
		m.classifierFailed(h, err)
		return outcomeFailed
	}

	log.Debug("classifier verdict",
		"notify", verdict.Notify,
		"reply", verdict.Reply,
		"provider", verdict.Provider,
		"elapsed_ms", verdict.Elapsed.Milliseconds())
	if !verdict.Notify {
		return outcomeQuiet
	}

	if !m.registry.Update(h.ID, func(r *session.Record) {
		r.LastNotification = now.UnixMilli()
		r.Notified = true
	}) {
		return outcomeDiscarded
	}
	ts.notified++
	m.count(func(st *Stats) { st.Notifications++ })
	m.sendAttention(h)
	return outcomeNotified
}

// sendAttention shows the attention notification without blocking the loop
// and focuses the session if the user asks for it.
func (m *Monitor) sendAttention(h Handle) {
	text := AttentionText(h.Label)
	msg := notify.NewMessage(notify.LevelWarning, text, notify.ActionShowSession, notify.ActionDismiss).
		ForSession(h.ID.String(), h.Label)

	m.logger.Info("notification sent", "session_id", h.ID.String(), "session_label", h.Label)
	m.bus.Publish(event.NewNotificationSentEvent(h.ID.String(), h.Label, text))

	m.workers.Add(1)
	go func() {
		defer m.workers.Done()
		action, err := m.notifier.Show(m.ctx, msg)
		if err != nil && m.ctx.Err() == nil {
			m.logger.Warn("notifier failed", "session_id", h.ID.String(), "error", err.Error())
		}
		if action != notify.ActionShowSession {
			return
		}
		if err := m.host.Focus(h.ID); err != nil {
			m.logger.Warn("focus session failed", "session_id", h.ID.String(), "error", err.Error())
		}
	}()
}

// restore rolls a session's fingerprint back so that its current content
// is judged again. A record already reset by ClearState stays reset.
func (m *Monitor) restore(id session.ID, fp uint32, content string, prev uint32) {
	m.registry.Update(id, func(r *session.Record) {
		if r.Fingerprint != fp {
			return
		}
		r.LastContent = content
		r.Fingerprint = prev
	})
}

// classifierFailed records a failed call and hands it to the classifier's
// Report, which logs it and raises user-facing failures through alert.
func (m *Monitor) classifierFailed(h Handle, err error) {
	kind, _ := errors.KindOf(err)
	m.count(func(st *Stats) { st.ClassifierFails++ })
	m.logger.Debug("classifier call failed", "session_id", h.ID.String(), "kind", kind.String())
	m.bus.Publish(event.NewClassifierFailedEvent(h.ID.String(), kind.String(), err.Error()))
	m.classifier.Report(h.Label, err)
}

// alert shows a user-facing classifier failure, at most once per kind per
// tick. It runs on the loop goroutine, from inside Report.
func (m *Monitor) alert(err error) {
	kind, _ := errors.KindOf(err)
	ts := m.current
	var s Settings
	if ts != nil {
		if ts.alerted[kind] {
			return
		}
		ts.alerted[kind] = true
		s = ts.settings
	} else {
		s = m.settings()
	}

	msg := notify.NewMessage(notify.LevelError, alertText(err, s))
	m.workers.Add(1)
	go func() {
		defer m.workers.Done()
		if _, err := m.notifier.Show(m.ctx, msg); err != nil && m.ctx.Err() == nil {
			m.logger.Warn("notifier failed", "error", err.Error())
		}
	}()
}

func alertText(err error, s Settings) string {
	var ce *errors.ClassifierError
	errors.As(err, &ce)
	switch {
	case ce != nil && ce.Kind == errors.KindAuth:
		return fmt.Sprintf("termwatch: the %s classifier rejected the API key (HTTP %d). Check classifier.api_key.",
			ce.Provider, ce.StatusCode)
	default:
		return fmt.Sprintf("termwatch: classifier endpoint %s is unreachable. Check classifier.api_endpoint.",
			s.Classifier.Endpoint)
	}
}
