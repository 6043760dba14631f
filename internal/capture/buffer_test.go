package capture

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestNewLineBuffer(t *testing.T) {
	tests := []struct {
		name string
		cap  int
		want int
	}{
		{"explicit cap", 10, 10},
		{"zero falls back", 0, DefaultLineCap},
		{"negative falls back", -5, DefaultLineCap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLineBuffer(tt.cap)
			if b.Cap() != tt.want {
				t.Errorf("Cap() = %d, expected %d", b.Cap(), tt.want)
			}
			if b.Len() != 0 {
				t.Errorf("expected empty buffer, got length %d", b.Len())
			}
		})
	}
}

func TestLineBuffer_AppendAndTail(t *testing.T) {
	tests := []struct {
		name    string
		cap     int
		appends [][]string
		k       int
		want    []string
	}{
		{
			name:    "within capacity",
			cap:     5,
			appends: [][]string{{"a", "b"}, {"c"}},
			k:       10,
			want:    []string{"a", "b", "c"},
		},
		{
			name:    "tail smaller than length",
			cap:     5,
			appends: [][]string{{"a", "b", "c", "d"}},
			k:       2,
			want:    []string{"c", "d"},
		},
		{
			name:    "gradual overflow evicts oldest",
			cap:     3,
			appends: [][]string{{"a", "b"}, {"c", "d"}, {"e"}},
			k:       3,
			want:    []string{"c", "d", "e"},
		},
		{
			name:    "single batch larger than cap",
			cap:     3,
			appends: [][]string{{"1", "2", "3", "4", "5", "6", "7"}},
			k:       5,
			want:    []string{"5", "6", "7"},
		},
		{
			name:    "zero k",
			cap:     3,
			appends: [][]string{{"a"}},
			k:       0,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewLineBuffer(tt.cap)
			for _, lines := range tt.appends {
				b.Append(lines...)
			}
			got := b.Tail(tt.k)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Tail(%d) = %q, expected %q", tt.k, got, tt.want)
			}
			if b.Len() > tt.cap {
				t.Errorf("Len() = %d exceeds cap %d", b.Len(), tt.cap)
			}
		})
	}
}

func TestLineBuffer_NeverExceedsCap(t *testing.T) {
	b := NewLineBuffer(7)
	for i := range 100 {
		batch := make([]string, i%11)
		for j := range batch {
			batch[j] = fmt.Sprintf("%d-%d", i, j)
		}
		b.Append(batch...)
		if b.Len() > 7 {
			t.Fatalf("after append %d: Len() = %d exceeds cap", i, b.Len())
		}
	}
	// i=99 appends an empty batch, so the newest line comes from i=98.
	tail := b.Tail(1)
	if len(tail) != 1 || tail[0] != "98-9" {
		t.Errorf("last line = %q, expected %q", tail, "98-9")
	}
}

func TestLineBuffer_Reset(t *testing.T) {
	b := NewLineBuffer(3)
	b.Append("a", "b", "c", "d")
	b.Reset()

	if b.Len() != 0 {
		t.Errorf("expected empty buffer after Reset, got %d", b.Len())
	}
	b.Append("x")
	if got := b.Tail(3); !slices.Equal(got, []string{"x"}) {
		t.Errorf("Tail after Reset = %q, expected [x]", got)
	}
}

func TestLineBuffer_ConcurrentAccess(t *testing.T) {
	b := NewLineBuffer(50)
	var wg sync.WaitGroup

	for i := range 4 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 200 {
				b.Append(fmt.Sprintf("w%d-%d", i, j))
			}
		}()
		go func() {
			defer wg.Done()
			for range 200 {
				_ = b.Tail(20)
				_ = b.Len()
			}
		}()
	}
	wg.Wait()

	if b.Len() != 50 {
		t.Errorf("Len() = %d, expected 50", b.Len())
	}
}
