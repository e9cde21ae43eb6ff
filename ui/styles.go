package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorAccent = lipgloss.Color("#FF6B35")
	colorGreen  = lipgloss.Color("#00B894")
	colorRed    = lipgloss.Color("#D63031")
	colorYellow = lipgloss.Color("#FDCB6E")
	colorBlue   = lipgloss.Color("#0984E3")
	colorCyan   = lipgloss.Color("#00CEC9")
	colorGray   = lipgloss.Color("#636E72")
	colorWhite  = lipgloss.Color("#DFE6E9")

	// Prompt styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				Background(lipgloss.Color("#2D3436"))

	normalRowStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorCyan)
)

// kindColor maps a status kind to its terminal color.
func kindColor(k Kind) lipgloss.Color {
	switch k {
	case KindInfo:
		return colorBlue
	case KindSuccess:
		return colorGreen
	case KindWarning:
		return colorYellow
	case KindError:
		return colorRed
	default:
		return colorWhite
	}
}

// Banner renders the startup banner.
func Banner(r *lipgloss.Renderer, text, warning string) string {
	accent := r.NewStyle().Bold(true).Foreground(colorAccent)
	warn := r.NewStyle().Foreground(colorRed)
	return accent.Render(text) + "\n" + warn.Render(warning) + "\n"
}

// help renders a key binding hint line.
func help(keys ...[2]string) string {
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += "  "
		}
		s += keyStyle.Render("["+k[0]+"]") + " " + helpStyle.Render(k[1])
	}
	return s
}
