package styles

import "github.com/charmbracelet/lipgloss"

const (
	accent  = lipgloss.Color("62")
	muted   = lipgloss.Color("241")
	subtle  = lipgloss.Color("235")
	danger  = lipgloss.Color("203")
	success = lipgloss.Color("78")
	warning = lipgloss.Color("214")
)

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(muted).
		Background(subtle).
		Padding(0, 1).
		Width(width)
}

func NoticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(success).
		Bold(true)
}

func SidebarStyle(height int) lipgloss.Style {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(accent).
		Padding(0, 1).
		Width(28)
	if height > 0 {
		style = style.Height(height)
	}
	return style
}

func SectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(muted).
		Bold(true).
		MarginTop(1)
}

func ItemStyle(selected bool) lipgloss.Style {
	if selected {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(accent).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().Padding(0, 1)
}

func AvatarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(accent).
		Bold(true).
		Padding(0, 1)
}

func IdentityStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true)
}

func AvailabilityStyle(status string) lipgloss.Style {
	color := muted
	switch status {
	case "online":
		color = success
	case "busy":
		color = warning
	}
	return lipgloss.NewStyle().Foreground(color)
}

func DialogStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(width)
}

func DialogTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		MarginBottom(1)
}

func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(muted)
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(danger)
}

func HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(muted).
		MarginTop(1)
}

func MainStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 2)
}
