package capture

import (
	"slices"
	"strings"
	"sync"
)

// Store maps session IDs to their LineBuffers. Missing sessions behave as
// empty; no method returns an error.
type Store struct {
	mu      sync.RWMutex
	cap     int
	buffers map[string]*LineBuffer
}

// NewStore creates a Store whose buffers hold at most lineCap lines each.
func NewStore(lineCap int) *Store {
	if lineCap <= 0 {
		lineCap = DefaultLineCap
	}
	return &Store{
		cap:     lineCap,
		buffers: make(map[string]*LineBuffer),
	}
}

// Ensure creates an empty buffer for id if none exists.
func (s *Store) Ensure(id string) {
	s.buffer(id)
}

// buffer returns the buffer for id, creating it on first use.
func (s *Store) buffer(id string) *LineBuffer {
	s.mu.RLock()
	b, ok := s.buffers[id]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.buffers[id]; ok {
		return b
	}
	b = NewLineBuffer(s.cap)
	s.buffers[id] = b
	return b
}

// Append splits text on "\n" and appends every resulting line to the
// session's buffer. A trailing "\r" on each line is dropped.
func (s *Store) Append(id, text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	s.buffer(id).Append(lines...)
}

// AppendLines appends already-split lines verbatim.
func (s *Store) AppendLines(id string, lines []string) {
	if len(lines) == 0 {
		return
	}
	s.buffer(id).Append(lines...)
}

// Read returns the last lastK lines of the session joined with "\n", or ""
// when the session has no buffer.
func (s *Store) Read(id string, lastK int) string {
	s.mu.RLock()
	b, ok := s.buffers[id]
	s.mu.RUnlock()
	if !ok {
		return ""
	}
	return strings.Join(b.Tail(lastK), "\n")
}

// Len returns the number of lines buffered for the session.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	b, ok := s.buffers[id]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return b.Len()
}

// Clear removes the session's buffer entirely.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	delete(s.buffers, id)
	s.mu.Unlock()
}

// ClearAll removes every buffer.
func (s *Store) ClearAll() {
	s.mu.Lock()
	clear(s.buffers)
	s.mu.Unlock()
}

// Sessions returns the IDs that currently have a buffer, sorted.
func (s *Store) Sessions() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.buffers))
	for id := range s.buffers {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
