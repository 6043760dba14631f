// Package tui is the bubbletea dashboard for termwatch watch.
//
// It shows the monitored sessions, the monitor's counters, recent
// notifications, and the notification awaiting an answer. Keys drive the
// monitor: e enables, d disables, c checks now, x clears state and q quits.
// A pending notification is answered with enter (Show Session) or esc
// (Dismiss).
package tui
