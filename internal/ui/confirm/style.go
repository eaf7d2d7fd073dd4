package confirm

import "github.com/charmbracelet/lipgloss"

var (
	colorYellow = lipgloss.Color("#eab308")
	colorDim    = lipgloss.Color("#6b7280")

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorYellow).
			Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Warning renders a boxed warning with optional detail lines below it.
func Warning(title string, details ...string) string {
	out := warningStyle.Render(title)
	for _, d := range details {
		out += "\n" + detailStyle.Render(d)
	}
	return out
}
