package viewer

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	siteW = 4 // width of one storage site
	slotW = 9 // width of one interaction slot: [ l | r ]
)

// Lipgloss styles used across the viewer.
var (
	gridStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(1)

	infoStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(1)

	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff9e64")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	zoneLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	qubitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	reusedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9ece6a"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)
