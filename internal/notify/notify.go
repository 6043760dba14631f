// Package notify delivers user-facing messages produced by the monitor.
//
// A [Notifier] shows one [Message] and may return the action the user chose
// from Message.Actions. Non-interactive notifiers (console, bell, Telegram,
// history) always return "". The interactive [Queue] blocks until the
// dashboard resolves the message or the context ends.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Level is the urgency of a message.
type Level int

const (
	// LevelWarning is used for "needs your attention" notifications.
	LevelWarning Level = iota
	// LevelError is used for classifier failures the user must fix.
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// Action labels offered with attention notifications.
const (
	ActionShowSession = "Show Session"
	ActionDismiss     = "Dismiss"
)

// Message is a single notification.
type Message struct {
	ID        string
	Level     Level
	Text      string
	Actions   []string
	SessionID string
	Label     string
	Time      time.Time
}

// NewMessage creates a message with a fresh ID.
func NewMessage(level Level, text string, actions ...string) Message {
	return Message{
		ID:      uuid.NewString(),
		Level:   level,
		Text:    text,
		Actions: actions,
		Time:    time.Now(),
	}
}

// ForSession tags the message with the session it is about.
func (m Message) ForSession(id, label string) Message {
	m.SessionID = id
	m.Label = label
	return m
}

// Notifier shows messages to the user.
type Notifier interface {
	// Show displays msg and returns the chosen action, or "" if none.
	Show(ctx context.Context, msg Message) (string, error)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, msg Message) (string, error)

// Show calls f.
func (f Func) Show(ctx context.Context, msg Message) (string, error) {
	return f(ctx, msg)
}
