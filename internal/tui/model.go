package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/termwatch/internal/errors"
	"github.com/Iron-Ham/termwatch/internal/monitor"
	"github.com/Iron-Ham/termwatch/internal/notify"
	"github.com/Iron-Ham/termwatch/internal/session"
)

// Confirmation lines shown after each command.
const (
	StatusEnabled  = "Monitoring enabled"
	StatusDisabled = "Monitoring disabled"
	StatusChecked  = "Check completed"
	StatusCleared  = "State cleared"
)

const (
	refreshInterval = time.Second
	commandTimeout  = 2 * time.Minute
	historyShown    = 5
)

// Controller is the part of *monitor.Monitor the dashboard drives.
type Controller interface {
	Enable()
	Disable()
	Enabled() bool
	Interval() time.Duration
	CheckNow(ctx context.Context) error
	ClearState(ctx context.Context) error
	Records() []session.Record
	Stats() monitor.Stats
}

// refreshMsg redraws the dashboard periodically.
type refreshMsg time.Time

// QueueChangedMsg tells the dashboard the pending notification changed.
// Send it from the notify.Queue onChange callback.
type QueueChangedMsg struct{}

// commandDoneMsg reports the result of a queued monitor command.
type commandDoneMsg struct {
	status string
	err    error
}

// Model is the dashboard's bubbletea model.
type Model struct {
	ctl     Controller
	queue   *notify.Queue
	history *notify.History
	keys    keyMap
	help    help.Model
	now     func() time.Time

	width  int
	status string
	failed bool
	busy   bool
}

// New creates the dashboard. queue receives interactive notifications and
// history supplies the recent ones; either may be nil.
func New(ctl Controller, queue *notify.Queue, history *notify.History) Model {
	return Model{
		ctl:     ctl,
		queue:   queue,
		history: history,
		keys:    defaultKeyMap(),
		help:    help.New(),
		now:     time.Now,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return refresh()
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		return m, refresh()

	case QueueChangedMsg:
		return m, nil

	case commandDoneMsg:
		m.busy = false
		m.setStatus(msg.status, msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.pending() {
		switch {
		case key.Matches(msg, m.keys.Show):
			m.queue.Resolve(notify.ActionShowSession)
			return m, nil
		case key.Matches(msg, m.keys.Dismiss):
			m.queue.Resolve(notify.ActionDismiss)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Enable):
		m.ctl.Enable()
		m.setStatus(StatusEnabled, nil)
	case key.Matches(msg, m.keys.Disable):
		m.ctl.Disable()
		m.setStatus(StatusDisabled, nil)
	case key.Matches(msg, m.keys.Check):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.setStatus("Checking sessions...", nil)
		return m, m.run(StatusChecked, m.ctl.CheckNow)
	case key.Matches(msg, m.keys.Clear):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.run(StatusCleared, m.ctl.ClearState)
	}
	return m, nil
}

// run executes a queued monitor command off the UI goroutine.
func (m Model) run(done string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		return commandDoneMsg{status: done, err: fn(ctx)}
	}
}

func (m *Model) setStatus(s string, err error) {
	m.failed = err != nil
	if err == nil {
		m.status = s
		return
	}
	if errors.Is(err, errors.ErrMonitorDisabled) {
		m.status = "Monitoring is disabled; press e to enable"
		return
	}
	m.status = "Error: " + err.Error()
}

func (m Model) pending() bool {
	return m.queue != nil && m.queue.Pending() > 0
}

// Status returns the current confirmation line.
func (m Model) Status() string { return m.status }

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(m.renderSessions()))
	b.WriteString("\n")

	if p := m.renderPending(); p != "" {
		b.WriteString(sectionStyle.Render(p))
		b.WriteString("\n")
	}
	if h := m.renderHistory(); h != "" {
		b.WriteString(sectionStyle.Render(h))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := statusStyle
		if m.failed {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	bindings := m.keys.ShortHelp()
	if m.pending() {
		bindings = m.keys.pendingHelp()
	}
	b.WriteString("\n" + m.help.ShortHelpView(bindings))
	return b.String()
}

func (m Model) renderHeader() string {
	badge := offBadge.Render("OFF")
	detail := ""
	if m.ctl.Enabled() {
		badge = onBadge.Render("ON")
		detail = mutedStyle.Render(fmt.Sprintf(" every %s", m.ctl.Interval()))
	}
	return titleStyle.Render("termwatch") + "  " + badge + detail
}

func (m Model) renderStats() string {
	s := m.ctl.Stats()
	return mutedStyle.Render(fmt.Sprintf(
		"ticks %d  calls %d  failures %d  notifications %d  skipped: unchanged %d  cooldown %d  short %d  rate %d",
		s.Ticks, s.ClassifierCalls, s.ClassifierFails, s.Notifications,
		s.SkipUnchanged, s.SkipCooldown, s.SkipLength, s.SkipRateLimit))
}

func (m Model) renderSessions() string {
	records := m.ctl.Records()
	if len(records) == 0 {
		return mutedStyle.Render("No sessions yet.")
	}

	const labelWidth, idWidth, stateWidth = 24, 12, 10
	row := func(label, id, state, last string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(labelWidth).Render(truncate(label, labelWidth-1)),
			lipgloss.NewStyle().Width(idWidth).Render(id),
			lipgloss.NewStyle().Width(stateWidth).Render(state),
			last,
		)
	}

	lines := []string{headerCell.Render(row("SESSION", "ID", "STATE", "LAST NOTIFIED"))}
	now := m.now()
	for _, r := range records {
		state := mutedStyle.Render("idle")
		switch {
		case r.Running:
			state = warningStyle.Render("checking")
		case r.Notified:
			state = statusStyle.Render("notified")
		}
		last := "-"
		if r.LastNotification > 0 {
			last = now.Sub(time.UnixMilli(r.LastNotification)).Truncate(time.Second).String() + " ago"
		}
		lines = append(lines, row(r.Label, shortID(r.ID), state, last))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPending() string {
	if m.queue == nil {
		return ""
	}
	msg, ok := m.queue.Current()
	if !ok {
		return ""
	}
	text := msg.Text
	if msg.Level == notify.LevelError {
		text = errorStyle.Render(text)
	}
	if n := m.queue.Pending(); n > 1 {
		text += mutedStyle.Render(fmt.Sprintf("  (+%d more)", n-1))
	}
	return pendingBox.Render(text + "\n" + mutedStyle.Render(strings.Join(msg.Actions, " / ")))
}

func (m Model) renderHistory() string {
	if m.history == nil || m.history.Len() == 0 {
		return ""
	}
	items := m.history.List()
	if len(items) > historyShown {
		items = items[len(items)-historyShown:]
	}
	lines := []string{headerCell.Render("RECENT")}
	for i := len(items) - 1; i >= 0; i-- {
		lines = append(lines, notify.FormatLine(items[i]))
	}
	return strings.Join(lines, "\n")
}

func shortID(id session.ID) string {
	s := id.String()
	if len(s) > 10 {
		return s[len(s)-10:]
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
