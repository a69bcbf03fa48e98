package command

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"
)

// styles renders command output, plain unless color is enabled.
type styles struct {
	enabled bool
	title   lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	error   lipgloss.Style
}

// newStyles resolves the color mode (auto, always or never) against out.
// In auto mode color is used only when out is a terminal.
func newStyles(mode string, out io.Writer) styles {
	var enabled bool
	switch mode {
	case "always":
		enabled = true
	case "never":
	default:
		if f, ok := out.(*os.File); ok {
			enabled = term.IsTerminal(int(f.Fd()))
		}
	}
	return styles{
		enabled: enabled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		good:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}
