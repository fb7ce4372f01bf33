package components

import (
	"strings"

	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/ui/styles"
)

// LanguagePickerView is the language list overlay.
type LanguagePickerView struct {
	Languages []models.Language
	Loaded    bool
	Cursor    int
	Current   string
	Width     int
	T         func(string) string
}

func RenderLanguagePicker(v LanguagePickerView) string {
	t := v.T
	var b strings.Builder
	b.WriteString(styles.DialogTitleStyle().Render(t("language.title")))
	b.WriteString("\n")

	switch {
	case !v.Loaded:
		b.WriteString(styles.LabelStyle().Render(t("language.loading")))
	case len(v.Languages) == 0:
		b.WriteString(styles.LabelStyle().Render(t("language.empty")))
	default:
		for i, lang := range v.Languages {
			label := lang.Name + " (" + lang.Code + ")"
			if lang.Code == v.Current {
				label += " ✓"
			}
			b.WriteString(styles.ItemStyle(i == v.Cursor).Render(label))
			b.WriteString("\n")
		}
	}

	width := v.Width
	if width <= 0 || width > 48 {
		width = 48
	}
	return styles.DialogStyle(width).Render(strings.TrimRight(b.String(), "\n"))
}

// HelpEntry is one key and its description.
type HelpEntry struct {
	Key  string
	Desc string
}

func RenderHelp(entries []HelpEntry, expanded bool) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		parts = append(parts, entry.Key+" "+entry.Desc)
	}
	sep := "  "
	if expanded {
		sep = "\n"
	}
	return styles.HelpStyle().Render(strings.Join(parts, sep))
}
