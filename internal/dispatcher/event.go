package dispatcher

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/AgentDesk/internal/eventbus"
)

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// BusClosedMsg reports that the core side has gone away.
type BusClosedMsg struct{}

// EventDispatcher handles routing events between core and UI
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus) *EventDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ListenForCoreEvents waits for the next core event. The UI re-issues it
// after handling each CoreEventMsg so exactly one listener is pending.
func (ed *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ed.ctx.Done():
			return BusClosedMsg{}
		case event, ok := <-ed.eventBus.CoreToUI():
			if !ok {
				return BusClosedMsg{}
			}
			return CoreEventMsg{Event: event}
		}
	}
}

// Publish sends a UI event to the core, returning the bus error if any.
func (ed *EventDispatcher) Publish(event eventbus.UIEvent) error {
	return ed.eventBus.SendToCore(event)
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}
