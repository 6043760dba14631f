package notify

import (
	"context"
	"sync"

	"github.com/Iron-Ham/termwatch/internal/errors"
)

// Multi fans a message out to several notifiers concurrently. The returned
// action is the first non-empty action in notifier order; errors are
// joined.
type Multi struct {
	notifiers []Notifier
}

// NewMulti combines notifiers, skipping nil entries.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Len returns the number of wrapped notifiers.
func (m *Multi) Len() int { return len(m.notifiers) }

// Show implements Notifier.
func (m *Multi) Show(ctx context.Context, msg Message) (string, error) {
	actions := make([]string, len(m.notifiers))
	errs := make([]error, len(m.notifiers))

	var wg sync.WaitGroup
	for i, n := range m.notifiers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			actions[i], errs[i] = n.Show(ctx, msg)
		}()
	}
	wg.Wait()

	var action string
	for _, a := range actions {
		if a != "" {
			action = a
			break
		}
	}
	return action, errors.Join(errs...)
}
