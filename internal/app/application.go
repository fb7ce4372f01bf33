package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/config"
	"github.com/Rorical/AgentDesk/internal/core"
	"github.com/Rorical/AgentDesk/internal/dialog"
	"github.com/Rorical/AgentDesk/internal/dispatcher"
	"github.com/Rorical/AgentDesk/internal/eventbus"
	"github.com/Rorical/AgentDesk/internal/gateway"
	"github.com/Rorical/AgentDesk/internal/i18n"
	"github.com/Rorical/AgentDesk/internal/logging"
	"github.com/Rorical/AgentDesk/internal/models"
	"github.com/Rorical/AgentDesk/internal/preview"
	"github.com/Rorical/AgentDesk/internal/storage"
	"github.com/Rorical/AgentDesk/internal/update"
)

// ErrSwitchAgent is returned by Start when the agent quit to pick another
// profile.
var ErrSwitchAgent = errors.New("switch agent requested")

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	prefs      *storage.Store
	locale     *i18n.Store
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.SessionService
	model      *AppModel
	cancel     context.CancelFunc
}

func NewApplication(cfg *config.Config) (*Application, error) {
	logger, logCloser, err := logging.Open(cfg.LogPath(), cfg.LogLevel())
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	prefs, err := storage.Open(cfg.Dir())
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		prefs.Close()
		logCloser.Close()
		return nil, fmt.Errorf("load translations: %w", err)
	}

	var gw gateway.Gateway
	if cfg.IsValid() {
		gw = gateway.NewHTTPGateway(cfg.GetBaseURL(), cfg.GetAPIToken(), cfg.RequestTimeout())
	} else {
		logger.Warn("no server configured; profile changes are unavailable")
		gw = gateway.Unavailable()
	}

	// The locale is ready before the first frame renders.
	locale := i18n.NewStore(catalog, prefs, gw, i18n.WithLogger(logger))
	language := locale.Init(os.Getenv)
	logger.Info("starting", "profile", cfg.ActiveProfile, "language", language, "embedded", cfg.Embedded())

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Error("event bus", "operation", e.Operation, "error", e.Err)
	})
	disp := dispatcher.NewEventDispatcher(eb)

	service := core.NewSessionService(gw, eb, core.Options{
		Preferences:    prefs,
		Credentials:    cfg,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	deps := dialog.Deps{
		Gateway: gw,
		T:       locale.T,
		Context: ctx,
	}
	env := &update.Env{
		Locale:            locale,
		Publisher:         disp,
		Can:               cfg.Can,
		Embedded:          cfg.Embedded(),
		TemporaryPassword: cfg.GetTemporaryPassword,
		Context:           ctx,
		Logger:            logger,
	}
	shell := models.ShellModel{
		Status:   locale.T("status.loading"),
		Loading:  true,
		View:     restoreView(prefs, logger),
		Language: language,
	}

	return &Application{
		config:     cfg,
		logger:     logger,
		logCloser:  logCloser,
		prefs:      prefs,
		locale:     locale,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		model:      NewAppModel(shell, env, disp, deps, dialog.NewAvatarDialog(deps, preview.NewRegistry())),
		cancel:     cancel,
	}, nil
}

// restoreView returns the pane selected in the previous session.
func restoreView(prefs *storage.Store, logger *slog.Logger) models.View {
	value, err := prefs.GetPreference(storage.KeyView)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("reading persisted view", "error", err)
		}
		return models.ViewConversations
	}
	for _, item := range models.DefaultNavItems {
		if string(item.View) == value {
			return item.View
		}
	}
	return models.ViewConversations
}

func (app *Application) Start() error {
	// Start background services
	app.service.Start()

	// Run UI
	p := tea.NewProgram(app.model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	if app.model.Shell().SwitchRequested {
		return ErrSwitchAgent
	}
	return nil
}

// Stop releases everything NewApplication acquired. Dialogs are torn down
// first so no preview outlives the UI.
func (app *Application) Stop() {
	app.model.Teardown()
	app.cancel()
	app.locale.Wait()
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	if err := app.prefs.Close(); err != nil {
		app.logger.Warn("closing preferences", "error", err)
	}
	app.logger.Info("stopped")
	app.logCloser.Close()
}
