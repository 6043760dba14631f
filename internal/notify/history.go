package notify

import (
	"context"
	"slices"
	"sync"
)

// History keeps the most recent messages for display.
type History struct {
	mu    sync.RWMutex
	max   int
	items []Message
}

// NewHistory keeps at most max messages. Non-positive max keeps 50.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{max: max}
}

// Show implements Notifier.
func (h *History) Show(_ context.Context, msg Message) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, msg)
	if over := len(h.items) - h.max; over > 0 {
		h.items = slices.Delete(h.items, 0, over)
	}
	return "", nil
}

// List returns the retained messages, newest last.
func (h *History) List() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.items)
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}
