package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/dispatcher"
	"github.com/Rorical/AgentDesk/internal/models"
)

// HandleUpdate routes shell messages. Dialog traffic is routed by the
// application before it gets here.
func HandleUpdate(appModel *models.ShellModel, msg tea.Msg, env *Env) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(appModel, msg, env)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil
	case TickMsg:
		return HandleTickMsg(appModel)
	case ClearNoticeMsg:
		HandleClearNotice(appModel, msg)
		return nil
	case LanguagesLoadedMsg:
		HandleLanguagesLoaded(appModel, msg)
		return nil
	case dispatcher.CoreEventMsg:
		return HandleCoreEvent(appModel, msg, env)
	}
	return nil
}
