package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

// handleNewGame creates a game and makes the connection watch it.
func (that *Server) handleNewGame(ctx context.Context, msg *Message, c *client) error {
	game, events, err := that.games.NewGame(ctx)
	if err != nil {
		that.sendAppError(c, msg.Action, err, nil)
		return fmt.Errorf("failed to create game: %w", err)
	}

	that.hub.Watch(c, game.ID)

	return that.send(c, msg.Action, newResponsePayload(game, events))
}

// handleWatch subscribes the connection to the game and sends its current state.
func (that *Server) handleWatch(ctx context.Context, msg *Message, c *client) error {
	payload, ok := that.decodePayload(c, msg)
	if !ok {
		return nil
	}

	game, err := that.games.GetGame(ctx, payload.GameID)
	if err != nil {
		that.sendAppError(c, msg.Action, err, map[string]string{"ID": payload.GameID})
		return nil
	}

	that.hub.Watch(c, game.ID)

	return that.send(c, msg.Action, newResponsePayload(game, nil))
}

// handleSelect applies a move; every watcher, including the sender, gets game:update.
func (that *Server) handleSelect(ctx context.Context, msg *Message, c *client) error {
	payload, ok := that.decodePayload(c, msg)
	if !ok {
		return nil
	}

	data := map[string]string{"ID": payload.GameID, "Cell": payload.Cell}

	cell, err := entity.ParseCellID(payload.Cell)
	if err != nil {
		that.sendAppError(c, msg.Action, err, data)
		return nil
	}

	if !that.watchExisting(ctx, msg, c, payload.GameID) {
		return nil
	}

	if _, _, err = that.games.SelectCell(ctx, payload.GameID, cell); err != nil {
		that.sendAppError(c, msg.Action, err, data)
	}

	return nil
}

// handleReset clears the board; every watcher gets game:update.
func (that *Server) handleReset(ctx context.Context, msg *Message, c *client) error {
	payload, ok := that.decodePayload(c, msg)
	if !ok {
		return nil
	}

	if !that.watchExisting(ctx, msg, c, payload.GameID) {
		return nil
	}

	if _, _, err := that.games.ResetGame(ctx, payload.GameID); err != nil {
		that.sendAppError(c, msg.Action, err, map[string]string{"ID": payload.GameID})
	}

	return nil
}

// watchExisting subscribes the connection before the move is published.
// An unknown game leaves the current subscription untouched.
func (that *Server) watchExisting(ctx context.Context, msg *Message, c *client, gameID string) bool {
	if _, err := that.games.GetGame(ctx, gameID); err != nil {
		that.sendAppError(c, msg.Action, err, map[string]string{"ID": gameID})
		return false
	}

	that.hub.Watch(c, gameID)

	return true
}

func (that *Server) decodePayload(c *client, msg *Message) (Payload, bool) {
	var payload Payload

	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.GameID == "" {
		that.sendError(c, msg.Action, "invalid_payload", "game_id is required")
		return Payload{}, false
	}

	return payload, true
}

func (that *Server) sendAppError(c *client, action string, err error, data map[string]string) {
	code := apperror.Code(err)
	if code == apperror.CodeInternal {
		that.logger.Error("request failed", "action", action, "error", err)
	}

	message, renderErr := that.catalog.Render("error."+code, data)
	if renderErr != nil {
		message = code
	}

	that.sendError(c, action, code, message)
}

func (that *Server) sendError(c *client, action, code, message string) {
	if err := that.send(c, action, ResponsePayload{Code: code, Error: message}); err != nil {
		that.logger.Error("failed to send error", "action", action, "error", err)
	}
}

func (that *Server) send(c *client, action string, payload ResponsePayload) error {
	message, err := encodeMessage(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if !c.enqueue(message) {
		return fmt.Errorf("client is too slow, %s dropped", action)
	}

	return nil
}
