package capture

import (
	"bytes"
	"sync"
)

// LineWriter is an io.Writer that feeds a session's buffer line by line.
// Bytes after the last newline are held until the next newline, Flush or
// Close.
type LineWriter struct {
	mu      sync.Mutex
	store   *Store
	id      string
	partial []byte
}

// NewLineWriter returns a writer bound to the given session.
func NewLineWriter(store *Store, id string) *LineWriter {
	return &LineWriter{store: store, id: id}
}

// Write implements io.Writer. It always consumes all of p.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := p
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := data[:i]
		if len(w.partial) > 0 {
			line = append(w.partial, line...)
			w.partial = w.partial[:0]
		}
		w.store.AppendLines(w.id, []string{string(bytes.TrimSuffix(line, []byte{'\r'}))})
		data = data[i+1:]
	}
	w.partial = append(w.partial, data...)
	return len(p), nil
}

// Flush appends any held partial line.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.partial) == 0 {
		return
	}
	w.store.AppendLines(w.id, []string{string(bytes.TrimSuffix(w.partial, []byte{'\r'}))})
	w.partial = w.partial[:0]
}

// WriteLine appends a complete line, flushing any partial line first.
func (w *LineWriter) WriteLine(line string) {
	w.Flush()
	w.store.AppendLines(w.id, []string{line})
}

// Close flushes the partial line. It never fails.
func (w *LineWriter) Close() error {
	w.Flush()
	return nil
}
