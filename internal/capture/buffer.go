package capture

import "sync"

// DefaultLineCap is the number of lines retained per session when no cap
// is configured.
const DefaultLineCap = 1000

// LineBuffer is a thread-safe circular buffer of text lines.
//
// It keeps the most recent cap lines. When full, each new line overwrites
// the oldest one:
//
//	cap=3
//	Append a b:    [a, b, _]  head=0, n=2
//	Append c d:    [d, b, c]  head=1, n=3 → Tail(3) returns b c d
//
// LineBuffer never blocks beyond its own mutex and never grows past cap.
type LineBuffer struct {
	mu    sync.RWMutex
	lines []string
	head  int // index of the oldest line
	n     int
}

// NewLineBuffer creates a buffer holding at most cap lines. A non-positive
// cap falls back to DefaultLineCap.
func NewLineBuffer(cap int) *LineBuffer {
	if cap <= 0 {
		cap = DefaultLineCap
	}
	return &LineBuffer{lines: make([]string, cap)}
}

// Append adds lines in order, evicting the oldest lines past the cap.
func (b *LineBuffer) Append(lines ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := len(b.lines)
	// Only the last size lines of a huge batch can survive.
	if len(lines) > size {
		lines = lines[len(lines)-size:]
	}
	for _, line := range lines {
		if b.n < size {
			b.lines[(b.head+b.n)%size] = line
			b.n++
			continue
		}
		b.lines[b.head] = line
		b.head = (b.head + 1) % size
	}
}

// Tail returns a copy of the last k lines, oldest first. k larger than Len
// returns everything; k <= 0 returns nil.
func (b *LineBuffer) Tail(k int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if k <= 0 || b.n == 0 {
		return nil
	}
	if k > b.n {
		k = b.n
	}
	size := len(b.lines)
	out := make([]string, k)
	start := b.head + b.n - k
	for i := range out {
		out[i] = b.lines[(start+i)%size]
	}
	return out
}

// Len returns the number of lines currently held.
func (b *LineBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.n
}

// Cap returns the maximum number of lines the buffer retains.
func (b *LineBuffer) Cap() int {
	return len(b.lines)
}

// Reset discards all lines but keeps the allocated storage.
func (b *LineBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.lines)
	b.head = 0
	b.n = 0
}
