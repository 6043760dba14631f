package capture

import (
	"slices"
	"strings"
	"testing"
)

func TestStore_AppendAndRead(t *testing.T) {
	tests := []struct {
		name   string
		cap    int
		chunks []string
		lastK  int
		want   string
	}{
		{
			name:   "multi-line text",
			cap:    10,
			chunks: []string{"one\ntwo\nthree"},
			lastK:  2,
			want:   "two\nthree",
		},
		{
			name:   "carriage returns trimmed",
			cap:    10,
			chunks: []string{"one\r\ntwo\r"},
			lastK:  5,
			want:   "one\ntwo",
		},
		{
			name:   "trailing newline keeps empty line",
			cap:    10,
			chunks: []string{"done\n"},
			lastK:  5,
			want:   "done\n",
		},
		{
			name:   "cap enforced across appends",
			cap:    3,
			chunks: []string{"a\nb", "c\nd"},
			lastK:  10,
			want:   "b\nc\nd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.cap)
			for _, c := range tt.chunks {
				s.Append("s1", c)
			}
			if got := s.Read("s1", tt.lastK); got != tt.want {
				t.Errorf("Read() = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestStore_MissingSession(t *testing.T) {
	s := NewStore(10)

	if got := s.Read("nope", 100); got != "" {
		t.Errorf("Read(missing) = %q, expected empty", got)
	}
	if got := s.Len("nope"); got != 0 {
		t.Errorf("Len(missing) = %d, expected 0", got)
	}
	s.Clear("nope")
}

func TestStore_ClearIsolatesSessions(t *testing.T) {
	s := NewStore(10)
	s.Append("a", "alpha")
	s.Append("b", "beta")
	s.Ensure("c")

	if got := s.Sessions(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Sessions() = %v", got)
	}

	s.Clear("a")
	if s.Read("a", 10) != "" {
		t.Error("expected session a to be cleared")
	}
	if s.Read("b", 10) != "beta" {
		t.Error("clearing a should not touch b")
	}

	s.ClearAll()
	if len(s.Sessions()) != 0 {
		t.Errorf("expected no sessions after ClearAll, got %v", s.Sessions())
	}
}

func TestStore_ReadReturnsLastHundredLines(t *testing.T) {
	s := NewStore(DefaultLineCap)
	var b strings.Builder
	for i := range 250 {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("line")
	}
	s.Append("x", b.String())

	got := strings.Count(s.Read("x", 100), "\n") + 1
	if got != 100 {
		t.Errorf("Read(100) returned %d lines, expected 100", got)
	}
	if s.Len("x") != 250 {
		t.Errorf("Len() = %d, expected 250", s.Len("x"))
	}
}
