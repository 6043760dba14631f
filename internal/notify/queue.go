package notify

import (
	"context"
	"sync"
)

type pending struct {
	msg    Message
	result chan string
}

// Queue is an interactive Notifier. Show blocks until the message is
// resolved through Resolve or its context ends. Messages are resolved in
// arrival order; Current is the one awaiting an answer.
type Queue struct {
	mu      sync.Mutex
	items   []*pending
	changed func()
}

// NewQueue creates an empty Queue. onChange, if set, is called after every
// enqueue or resolve, outside the lock.
func NewQueue(onChange func()) *Queue {
	return &Queue{changed: onChange}
}

// Show implements Notifier.
func (q *Queue) Show(ctx context.Context, msg Message) (string, error) {
	p := &pending{msg: msg, result: make(chan string, 1)}

	q.mu.Lock()
	q.items = append(q.items, p)
	q.mu.Unlock()
	q.notify()

	select {
	case action := <-p.result:
		return action, nil
	case <-ctx.Done():
		q.remove(p)
		return "", ctx.Err()
	}
}

// Current returns the oldest unresolved message.
func (q *Queue) Current() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Message{}, false
	}
	return q.items[0].msg, true
}

// Pending returns the number of unresolved messages.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Resolve answers the current message with action and returns it. It
// reports false when nothing is pending.
func (q *Queue) Resolve(action string) (Message, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return Message{}, false
	}
	p := q.items[0]
	q.items = q.items[1:]
	q.mu.Unlock()

	p.result <- action
	q.notify()
	return p.msg, true
}

func (q *Queue) remove(target *pending) {
	q.mu.Lock()
	for i, p := range q.items {
		if p == target {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
	q.notify()
}

func (q *Queue) notify() {
	if q.changed != nil {
		q.changed()
	}
}
