// Package monitor runs the decision loop that turns session output into
// notifications.
//
// Each tick walks the host's live sessions and, for each one, reads an
// excerpt from the capture store and passes it through three gates: a
// minimum length, a content fingerprint that must have changed, and a
// cooldown since the last notification. Survivors are sent to the
// classifier (subject to a global call rate limit) and a positive verdict
// becomes a notification.
//
// All lifecycle changes, clears and ticks are handled by one loop
// goroutine fed through an inbound queue. Output appends go straight to
// the store.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/Iron-Ham/termwatch/internal/capture"
	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/event"
	"github.com/Iron-Ham/termwatch/internal/logging"
	"github.com/Iron-Ham/termwatch/internal/notify"
	"github.com/Iron-Ham/termwatch/internal/session"
)

// Config wires a Monitor to its collaborators. Host, Classifier and
// Notifier are required.
type Config struct {
	Host       Host
	Classifier Classifier
	Notifier   notify.Notifier
	Store      *capture.Store
	Bus        *event.Bus
	Logger     *logging.Logger
	Settings   SettingsFunc

	// Clock overrides time.Now; used by tests.
	Clock func() time.Time
}

type requestKind int

const (
	reqOpen requestKind = iota
	reqClose
	reqClear
	reqCheck
)

type request struct {
	kind  requestKind
	id    session.ID
	label string
	done  chan error
}

// Monitor is the handle for one monitoring subsystem.
type Monitor struct {
	host       Host
	classifier Classifier
	notifier   notify.Notifier
	store      *capture.Store
	registry   *session.Registry
	bus        *event.Bus
	logger     *logging.Logger
	settings   SettingsFunc
	now        func() time.Time

	inbox chan request
	ticks chan struct{}

	// Enable/Disable state. epoch changes on every Disable so that a tick
	// can tell its verdicts are stale.
	stateMu    sync.Mutex
	enabled    atomic.Bool
	epoch      atomic.Uint64
	pumpCancel context.CancelFunc
	interval   time.Duration

	// Loop-owned.
	limiter      *rate.Limiter
	limiterRate  int
	filter       labelFilter
	filterKey    string
	filterLoaded bool
	current      *tickState

	statsMu sync.Mutex
	stats   Stats

	startOnce sync.Once
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	workers   sync.WaitGroup
}

// New creates a Monitor. Call Start before sending it events.
func New(cfg Config) *Monitor {
	if cfg.Store == nil {
		cfg.Store = capture.NewStore(capture.DefaultLineCap)
	}
	if cfg.Bus == nil {
		cfg.Bus = event.NewBus(cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger()
	}
	if cfg.Settings == nil {
		cfg.Settings = StaticSettings(DefaultSettings())
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		host:       cfg.Host,
		classifier: cfg.Classifier,
		notifier:   cfg.Notifier,
		store:      cfg.Store,
		registry:   session.NewRegistry(),
		bus:        cfg.Bus,
		logger:     cfg.Logger.WithComponent("monitor"),
		settings:   cfg.Settings,
		now:        cfg.Clock,
		inbox:      make(chan request, 64),
		ticks:      make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	if as, ok := cfg.Classifier.(alertSetter); ok {
		as.SetAlert(m.alert)
	}
	return m
}

// Start launches the loop goroutine. It stops when ctx is canceled or
// Close is called. Calling Start twice has no effect.
func (m *Monitor) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		go func() {
			select {
			case <-ctx.Done():
				m.cancel()
			case <-m.ctx.Done():
			}
		}()
		go m.loop()
	})
}

// Close disables monitoring, stops the loop and waits for pending
// notification handlers to return.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		m.Disable()
		m.cancel()
		m.startOnce.Do(func() { close(m.done) })
		<-m.done
		m.workers.Wait()
	})
	return nil
}

// Store returns the capture store hosts append to.
func (m *Monitor) Store() *capture.Store { return m.store }

// Bus returns the event bus the monitor publishes on.
func (m *Monitor) Bus() *event.Bus { return m.bus }

// Registry returns the session registry. Callers must treat it as
// read-only.
func (m *Monitor) Registry() *session.Registry { return m.registry }

// Records returns a copy of every session record, oldest first.
func (m *Monitor) Records() []session.Record { return m.registry.Snapshot() }

// Stats returns a snapshot of the counters.
func (m *Monitor) Stats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

func (m *Monitor) count(fn func(*Stats)) {
	m.statsMu.Lock()
	fn(&m.stats)
	m.statsMu.Unlock()
}

// -----------------------------------------------------------------------------
// Enable / Disable
// -----------------------------------------------------------------------------

// Enabled reports whether the tick pump is running.
func (m *Monitor) Enabled() bool { return m.enabled.Load() }

// Interval returns the tick period chosen by the last Enable.
func (m *Monitor) Interval() time.Duration {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.interval
}

// Enable starts the tick pump using the current check interval. Enabling
// an enabled monitor is a no-op.
func (m *Monitor) Enable() {
	m.stateMu.Lock()
	if m.enabled.Load() {
		m.stateMu.Unlock()
		return
	}

	requested := m.settings().CheckInterval
	interval, replaced := EffectiveInterval(requested)
	if replaced {
		m.logger.Warn("check interval below minimum; using default",
			"requested_ms", requested.Milliseconds(),
			"minimum_ms", MinCheckInterval.Milliseconds(),
			"using_ms", interval.Milliseconds())
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.pumpCancel = cancel
	m.interval = interval
	m.enabled.Store(true)
	m.stateMu.Unlock()

	go m.pump(ctx, interval)
	m.logger.Info("monitoring enabled", "interval_ms", interval.Milliseconds())
	m.bus.Publish(event.NewMonitorEnabledEvent(interval))
}

// Disable stops the tick pump. A classifier call already in flight runs to
// completion but its verdict is discarded.
func (m *Monitor) Disable() {
	m.stateMu.Lock()
	if !m.enabled.Load() {
		m.stateMu.Unlock()
		return
	}
	m.enabled.Store(false)
	m.epoch.Add(1)
	if m.pumpCancel != nil {
		m.pumpCancel()
		m.pumpCancel = nil
	}
	m.stateMu.Unlock()

	// Drop a tick the pump may have left behind.
	select {
	case <-m.ticks:
	default:
	}

	m.logger.Info("monitoring disabled")
	m.bus.Publish(event.NewMonitorDisabledEvent())
}

// pump sends a tick every interval. Sends never block: if the loop is still
// busy with the previous tick the new one is dropped.
func (m *Monitor) pump(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case m.ticks <- struct{}{}:
			default:
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Inbound events
// -----------------------------------------------------------------------------

func (m *Monitor) send(ctx context.Context, r request) error {
	if m.ctx.Err() != nil {
		return errors.ErrMonitorClosed
	}
	select {
	case m.inbox <- r:
		return nil
	case <-m.ctx.Done():
		return errors.ErrMonitorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) await(ctx context.Context, r request) error {
	r.done = make(chan error, 1)
	if err := m.send(ctx, r); err != nil {
		return err
	}
	select {
	case err := <-r.done:
		return err
	case <-m.done:
		return errors.ErrMonitorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SessionOpened registers a session and its buffer. Re-opening a known
// session changes nothing.
func (m *Monitor) SessionOpened(id session.ID, label string) error {
	return m.send(m.ctx, request{kind: reqOpen, id: id, label: label})
}

// SessionClosed drops a session's state and buffer.
func (m *Monitor) SessionClosed(id session.ID) error {
	return m.send(m.ctx, request{kind: reqClose, id: id})
}

// ClearState forgets every session record; buffers are kept. It returns
// once the loop has applied it.
func (m *Monitor) ClearState(ctx context.Context) error {
	return m.await(ctx, request{kind: reqClear})
}

// CheckNow runs one evaluation cycle and waits for it. It returns
// errors.ErrMonitorDisabled without evaluating anything while monitoring is
// off.
func (m *Monitor) CheckNow(ctx context.Context) error {
	return m.await(ctx, request{kind: reqCheck})
}

// Append feeds raw output for a session into its buffer.
func (m *Monitor) Append(id session.ID, text string) {
	m.store.Append(string(id), text)
}

// MarkCommandStart records that a command started in the session.
func (m *Monitor) MarkCommandStart(id session.ID, command string) {
	m.store.Append(string(id), CommandStartLine(command))
}

// MarkCommandEnd records that a command finished with exitCode.
func (m *Monitor) MarkCommandEnd(id session.ID, command string, exitCode int) {
	m.store.Append(string(id), CommandEndLine(command, exitCode))
}

// -----------------------------------------------------------------------------
// Loop
// -----------------------------------------------------------------------------

func (m *Monitor) loop() {
	defer close(m.done)

	for {
		select {
		case <-m.ctx.Done():
			return
		case r := <-m.inbox:
			m.handle(r)
		case <-m.ticks:
			if m.enabled.Load() {
				m.tick(false)
			}
		}
	}
}

func (m *Monitor) handle(r request) {
	var err error
	switch r.kind {
	case reqOpen:
		m.open(r.id, r.label, false)
	case reqClose:
		m.registry.Close(r.id)
		m.store.Clear(string(r.id))
		m.logger.Info("session closed", "session_id", r.id.String())
		m.bus.Publish(event.NewSessionClosedEvent(r.id.String()))
	case reqClear:
		n := m.registry.Len()
		m.registry.ClearAll()
		m.logger.Info("session state cleared", "records", n)
		m.bus.Publish(event.NewStateClearedEvent(n))
	case reqCheck:
		if !m.enabled.Load() {
			err = errors.ErrMonitorDisabled
			break
		}
		m.tick(true)
	}
	if r.done != nil {
		r.done <- err
	}
}

func (m *Monitor) open(id session.ID, label string, lazy bool) {
	if !m.registry.Open(id, label) {
		return
	}
	m.store.Ensure(string(id))
	m.logger.Info("session opened", "session_id", id.String(), "session_label", label, "lazy", lazy)
	m.bus.Publish(event.NewSessionOpenedEvent(id.String(), label, lazy))
}
