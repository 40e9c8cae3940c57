package tictactoe

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

type EventKind string

const (
	EventStartingPlayer EventKind = "starting_player"
	EventCellMarked     EventKind = "cell_marked"
	EventTurnChanged    EventKind = "turn_changed"
	EventGameWon        EventKind = "game_won"
	EventGameDrawn      EventKind = "game_drawn"
	EventBoardReset     EventKind = "board_reset"
	EventCellDisabled   EventKind = "cell_disabled"
	EventInputDisabled  EventKind = "input_disabled"
	EventInputEnabled   EventKind = "input_enabled"
)

// Event is one notification sent to the presentation or input side.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Cell    entity.CellID `json:"cell,omitempty"`
	Mark    entity.Mark   `json:"mark,omitempty"`
	Message string        `json:"message,omitempty"`
}

type catalog interface {
	Render(key string, data any) (string, error)
}

// EventLog is a Presenter and InputGate that records every notification.
// Messages are rendered through the catalog; with a nil catalog they stay empty.
type EventLog struct {
	mu      sync.Mutex
	catalog catalog
	events  []Event
}

func NewEventLog(catalog catalog) *EventLog {
	return &EventLog{catalog: catalog}
}

func (that *EventLog) StartingPlayerChosen(mark entity.Mark) {
	that.add(Event{Kind: EventStartingPlayer, Mark: mark}, "game.first")
}

func (that *EventLog) CellMarked(cell entity.CellID, mark entity.Mark) {
	that.add(Event{Kind: EventCellMarked, Cell: cell, Mark: mark}, "")
}

func (that *EventLog) TurnChanged(mark entity.Mark) {
	that.add(Event{Kind: EventTurnChanged, Mark: mark}, "game.turn")
}

func (that *EventLog) GameWon(mark entity.Mark) {
	that.add(Event{Kind: EventGameWon, Mark: mark}, "game.won")
}

func (that *EventLog) GameDrawn() {
	that.add(Event{Kind: EventGameDrawn}, "game.draw")
}

func (that *EventLog) BoardReset() {
	that.add(Event{Kind: EventBoardReset}, "game.reset")
}

func (that *EventLog) DisableCell(cell entity.CellID) {
	that.add(Event{Kind: EventCellDisabled, Cell: cell}, "")
}

func (that *EventLog) DisableAll() {
	that.add(Event{Kind: EventInputDisabled}, "")
}

func (that *EventLog) EnableAll() {
	that.add(Event{Kind: EventInputEnabled}, "")
}

// Events returns a copy of the recorded events.
func (that *EventLog) Events() []Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]Event(nil), that.events...)
}

// Drain returns the recorded events and empties the log.
func (that *EventLog) Drain() []Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	events := that.events
	that.events = nil

	return events
}

func (that *EventLog) add(event Event, key string) {
	if key != "" && that.catalog != nil {
		// a broken message must not block the game
		if message, err := that.catalog.Render(key, map[string]string{"Mark": string(event.Mark)}); err == nil {
			event.Message = message
		}
	}

	that.mu.Lock()
	that.events = append(that.events, event)
	that.mu.Unlock()
}
