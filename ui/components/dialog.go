package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/AgentDesk/ui/styles"
)

// DialogView is everything a mutation dialog shows.
type DialogView struct {
	Title  string
	Intro  string
	Rows   [][2]string // label, input
	Extra  string
	Error  string
	Busy   string
	Footer string
	Width  int
}

func RenderDialog(v DialogView) string {
	width := v.Width
	if width <= 0 || width > 64 {
		width = 64
	}

	var b strings.Builder
	b.WriteString(styles.DialogTitleStyle().Render(v.Title))
	b.WriteString("\n")
	if v.Intro != "" {
		b.WriteString(lipgloss.NewStyle().Width(width - 6).Render(v.Intro))
		b.WriteString("\n\n")
	}
	for _, row := range v.Rows {
		b.WriteString(styles.LabelStyle().Render(row[0]))
		b.WriteString("\n")
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	if v.Extra != "" {
		b.WriteString("\n")
		b.WriteString(v.Extra)
		b.WriteString("\n")
	}
	if v.Error != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle().Render(v.Error))
		b.WriteString("\n")
	}
	if v.Busy != "" {
		b.WriteString("\n")
		b.WriteString(styles.LabelStyle().Render(v.Busy))
		b.WriteString("\n")
	}
	if v.Footer != "" {
		b.WriteString(styles.HelpStyle().Render(v.Footer))
	}
	return styles.DialogStyle(width).Render(strings.TrimRight(b.String(), "\n"))
}
