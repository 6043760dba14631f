package tui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#A78BFA")
	secondaryColor = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#F87171")
	mutedColor     = lipgloss.Color("#9CA3AF")
	textColor      = lipgloss.Color("#F9FAFB")
	borderColor    = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	onBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(textColor).
		Background(secondaryColor).
		Padding(0, 1)

	offBadge = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(borderColor).
			Padding(0, 1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	statusStyle  = lipgloss.NewStyle().Foreground(secondaryColor)

	headerCell = lipgloss.NewStyle().Bold(true).Foreground(mutedColor)

	pendingBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(warningColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().MarginTop(1)
)
