package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "session.opened", "monitor.tick")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type names.
const (
	TypeSessionOpened    = "session.opened"
	TypeSessionClosed    = "session.closed"
	TypeMonitorEnabled   = "monitor.enabled"
	TypeMonitorDisabled  = "monitor.disabled"
	TypeMonitorTick      = "monitor.tick"
	TypeNotificationSent = "notification.sent"
	TypeClassifierFailed = "classifier.failed"
	TypeStateCleared     = "state.cleared"
)

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// -----------------------------------------------------------------------------
// Session Lifecycle Events
// -----------------------------------------------------------------------------

// SessionOpenedEvent is emitted when the monitor starts tracking a session.
type SessionOpenedEvent struct {
	baseEvent
	SessionID string
	Label     string
	Lazy      bool // opened on first sight during a tick rather than by the host
}

// NewSessionOpenedEvent creates a SessionOpenedEvent.
func NewSessionOpenedEvent(sessionID, label string, lazy bool) SessionOpenedEvent {
	return SessionOpenedEvent{
		baseEvent: newBaseEvent(TypeSessionOpened),
		SessionID: sessionID,
		Label:     label,
		Lazy:      lazy,
	}
}

// SessionClosedEvent is emitted when a session's state and buffer are dropped.
type SessionClosedEvent struct {
	baseEvent
	SessionID string
}

// NewSessionClosedEvent creates a SessionClosedEvent.
func NewSessionClosedEvent(sessionID string) SessionClosedEvent {
	return SessionClosedEvent{baseEvent: newBaseEvent(TypeSessionClosed), SessionID: sessionID}
}

// -----------------------------------------------------------------------------
// Monitor Events
// -----------------------------------------------------------------------------

// MonitorStateEvent is emitted when monitoring is enabled or disabled.
type MonitorStateEvent struct {
	baseEvent
	Interval time.Duration // tick period; zero on disable
}

// NewMonitorEnabledEvent creates a monitor.enabled event.
func NewMonitorEnabledEvent(interval time.Duration) MonitorStateEvent {
	return MonitorStateEvent{baseEvent: newBaseEvent(TypeMonitorEnabled), Interval: interval}
}

// NewMonitorDisabledEvent creates a monitor.disabled event.
func NewMonitorDisabledEvent() MonitorStateEvent {
	return MonitorStateEvent{baseEvent: newBaseEvent(TypeMonitorDisabled)}
}

// TickEvent is emitted after every completed evaluation cycle.
type TickEvent struct {
	baseEvent
	Sessions        int  // sessions considered
	ClassifierCalls int  // classifier invocations this tick
	Notifications   int  // notifications sent this tick
	Skipped         bool // whole tick skipped (classifier not configured)
	Manual          bool // requested via CheckNow
}

// NewTickEvent creates a TickEvent.
func NewTickEvent(sessions, calls, notifications int, skipped, manual bool) TickEvent {
	return TickEvent{
		baseEvent:       newBaseEvent(TypeMonitorTick),
		Sessions:        sessions,
		ClassifierCalls: calls,
		Notifications:   notifications,
		Skipped:         skipped,
		Manual:          manual,
	}
}

// StateClearedEvent is emitted after all session state is discarded.
type StateClearedEvent struct {
	baseEvent
	Records int // records removed
}

// NewStateClearedEvent creates a StateClearedEvent.
func NewStateClearedEvent(records int) StateClearedEvent {
	return StateClearedEvent{baseEvent: newBaseEvent(TypeStateCleared), Records: records}
}

// -----------------------------------------------------------------------------
// Notification / Classifier Events
// -----------------------------------------------------------------------------

// NotificationSentEvent is emitted when a positive verdict is surfaced.
type NotificationSentEvent struct {
	baseEvent
	SessionID string
	Label     string
	Message   string
}

// NewNotificationSentEvent creates a NotificationSentEvent.
func NewNotificationSentEvent(sessionID, label, message string) NotificationSentEvent {
	return NotificationSentEvent{
		baseEvent: newBaseEvent(TypeNotificationSent),
		SessionID: sessionID,
		Label:     label,
		Message:   message,
	}
}

// ClassifierFailedEvent is emitted when a classifier call fails.
type ClassifierFailedEvent struct {
	baseEvent
	SessionID string
	Kind      string // config, auth, transport, timeout or protocol
	Error     string
}

// NewClassifierFailedEvent creates a ClassifierFailedEvent.
func NewClassifierFailedEvent(sessionID, kind, errMsg string) ClassifierFailedEvent {
	return ClassifierFailedEvent{
		baseEvent: newBaseEvent(TypeClassifierFailed),
		SessionID: sessionID,
		Kind:      kind,
		Error:     errMsg,
	}
}
