package tmux

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// splitCapture turns raw capture-pane output into lines with escape
// sequences removed and trailing blank lines dropped.
func splitCapture(raw string) []string {
	raw = ansi.Strip(raw)
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// newLines returns the part of cur that was not already in prev. Pane
// captures are a sliding window, so the largest suffix of prev that is also
// a prefix of cur is treated as already seen.
func newLines(prev, cur []string) []string {
	if len(prev) == 0 {
		return cur
	}
	maxK := min(len(prev), len(cur))
	for k := maxK; k > 0; k-- {
		if equalLines(prev[len(prev)-k:], cur[:k]) {
			return cur[k:]
		}
	}
	return cur
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
