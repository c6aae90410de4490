package monitor

import "github.com/charmbracelet/lipgloss"

const (
	padding  = 2
	maxWidth = 80
)

// Style holds the monitor's lipgloss styles.
type Style struct {
	Base      lipgloss.Style
	Main      lipgloss.Style
	Secondary lipgloss.Style
	Hint      lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
}

// NewStyle returns the monitor styles for a dark or light terminal.
func NewStyle(dark bool) Style {
	main, hint := lipgloss.Color("#1F2937"), lipgloss.Color("#6B7280")
	if dark {
		main, hint = lipgloss.Color("#F9FAFB"), lipgloss.Color("#9CA3AF")
	}

	return Style{
		Base:      lipgloss.NewStyle().Padding(1, padding),
		Main:      lipgloss.NewStyle().Bold(true).Foreground(main),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("#12EAEA")),
		Hint:      lipgloss.NewStyle().Foreground(hint),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F5B700")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F25F5C")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#B0DB43")),
	}
}
