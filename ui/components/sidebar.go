package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/ui/styles"
)

// SidebarView is what the sidebar needs to draw itself.
type SidebarView struct {
	Identity *models.AgentIdentity
	Entries  []models.MenuEntry
	Cursor   int
	View     models.View
	Language string
	Height   int
	T        func(string) string
}

func RenderSidebar(v SidebarView) string {
	t := v.T
	var b strings.Builder

	b.WriteString(renderProfile(v.Identity, t))
	b.WriteString("\n")

	section := ""
	for i, entry := range v.Entries {
		heading := sectionOf(entry.Action)
		if heading != section {
			section = heading
			b.WriteString(styles.SectionStyle().Render(t(heading)))
			b.WriteString("\n")
		}
		b.WriteString(styles.ItemStyle(i == v.Cursor).Render(entryLabel(entry, v, t)))
		b.WriteString("\n")
	}

	return styles.SidebarStyle(v.Height).Render(strings.TrimRight(b.String(), "\n"))
}

func renderProfile(identity *models.AgentIdentity, t func(string) string) string {
	if identity == nil {
		return styles.LabelStyle().Render(t("status.not_signed_in"))
	}
	availability := identity.Availability
	if availability == "" {
		availability = models.Online
	}
	return fmt.Sprintf("%s %s\n%s\n%s",
		styles.AvatarStyle().Render(identity.Initials()),
		styles.IdentityStyle().Render(identity.Name),
		styles.LabelStyle().Render(identity.Email),
		styles.AvailabilityStyle(string(availability)).Render("● "+t("status."+string(availability))),
	)
}

func sectionOf(action models.MenuAction) string {
	switch action {
	case models.ActionNavigate:
		return "app.title"
	case models.ActionSwitchAgent, models.ActionLogout:
		return "sidebar.session"
	default:
		return "sidebar.profile"
	}
}

func entryLabel(entry models.MenuEntry, v SidebarView, t func(string) string) string {
	label := t(entry.LabelKey)
	switch entry.Action {
	case models.ActionNavigate:
		if entry.View == v.View {
			label = "▸ " + label
		}
	case models.ActionStatus:
		if v.Identity != nil && v.Identity.Availability != "" {
			label += ": " + t("status."+string(v.Identity.Availability))
		}
	case models.ActionLanguage:
		if v.Language != "" {
			label += ": " + v.Language
		}
	}
	return label
}
