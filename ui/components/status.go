package components

import (
	"strings"

	"github.com/Rorical/AgentDesk/ui/styles"
)

func RenderStatus(status, notice string, loading bool, loadingDots int, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	if loading {
		statusContent += strings.Repeat(".", loadingDots)
	}
	if notice != "" {
		statusContent = styles.NoticeStyle().Render(notice) + "  " + statusContent
	}

	return statusStyle.Render(statusContent)
}
