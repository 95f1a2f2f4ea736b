package progress

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	summaryTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)
)

// Summary renders the end-of-run message shown to the operator
func Summary(title string, lines ...string) string {
	body := summaryTitleStyle.Render(title)
	if len(lines) > 0 {
		body += "\n" + strings.Join(lines, "\n")
	}
	return summaryStyle.Render(body)
}
