package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

const (
	actionNewGame = "game:new"
	actionWatch   = "game:watch"
	actionSelect  = "game:select"
	actionReset   = "game:reset"
	actionUpdate  = "game:update"
	actionDeleted = "game:deleted"
	actionError   = "error"
	actionPing    = "ping"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is what clients send.
type Payload struct {
	GameID string `json:"game_id,omitempty"`
	Cell   string `json:"cell,omitempty"`
}

// ResponsePayload is what the server sends.
type ResponsePayload struct {
	GameID      string            `json:"game_id,omitempty"`
	Game        *entity.Game      `json:"game,omitempty"`
	WinningLine []entity.CellID   `json:"winning_line,omitempty"`
	Events      []tictactoe.Event `json:"events,omitempty"`
	Code        string            `json:"code,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func newResponsePayload(game *entity.Game, events []tictactoe.Event) ResponsePayload {
	payload := ResponsePayload{
		Game:   game,
		Events: events,
	}

	if line, ok := game.WinningLine(); ok && game.Status == entity.StatusWon {
		payload.WinningLine = line[:]
	}

	return payload
}

func encodeMessage(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: action, Payload: raw})
}
