package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	warningBadge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1F2937")).Background(lipgloss.Color("#F59E0B")).Padding(0, 1)
	errorBadge   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9FAFB")).Background(lipgloss.Color("#F87171")).Padding(0, 1)
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
)

// Console writes one styled line per message.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Show implements Notifier.
func (c *Console) Show(_ context.Context, msg Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.w, FormatLine(msg))
	return "", err
}

// FormatLine renders msg as "HH:MM:SS [LEVEL] text (actions)".
func FormatLine(msg Message) string {
	badge := warningBadge
	if msg.Level == LevelError {
		badge = errorBadge
	}
	line := timeStyle.Render(msg.Time.Format("15:04:05")) + " " +
		badge.Render(strings.ToUpper(msg.Level.String())) + " " + msg.Text
	if len(msg.Actions) > 0 {
		line += " " + actionStyle.Render("["+strings.Join(msg.Actions, " | ")+"]")
	}
	return line
}

// Bell rings the terminal bell.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBell returns a Bell writing BEL to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Show implements Notifier.
func (b *Bell) Show(_ context.Context, _ Message) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, "\a")
	return "", err
}
