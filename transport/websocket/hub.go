package websocket

import (
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

const clientBuffer = 16

type client struct {
	send chan []byte

	mu       sync.Mutex
	watching string
}

func newClient() *client {
	return &client{send: make(chan []byte, clientBuffer)}
}

// enqueue drops the message when the client does not keep up.
func (that *client) enqueue(message []byte) bool {
	select {
	case that.send <- message:
		return true
	default:
		return false
	}
}

// Hub fans game updates out to every connection watching the game.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	watchers map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger.With("component", "ws_hub"),
		watchers: make(map[string]map[*client]struct{}),
	}
}

// Watch moves the client to gameID. A client watches one game at a time.
func (that *Hub) Watch(c *client, gameID string) {
	c.mu.Lock()
	previous := c.watching
	c.watching = gameID
	c.mu.Unlock()

	that.mu.Lock()
	defer that.mu.Unlock()

	that.remove(c, previous)

	clients, ok := that.watchers[gameID]
	if !ok {
		clients = make(map[*client]struct{})
		that.watchers[gameID] = clients
	}
	clients[c] = struct{}{}
}

// Unregister forgets the client and closes its send channel.
func (that *Hub) Unregister(c *client) {
	c.mu.Lock()
	gameID := c.watching
	c.watching = ""
	c.mu.Unlock()

	that.mu.Lock()
	that.remove(c, gameID)
	that.mu.Unlock()

	close(c.send)
}

// Publish sends the game state and its events to the game's watchers.
func (that *Hub) Publish(game *entity.Game, events []tictactoe.Event) {
	message, err := encodeMessage(actionUpdate, newResponsePayload(game, events))
	if err != nil {
		that.logger.Error("failed to encode update", "gameID", game.ID, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.watchers[game.ID] {
		if !c.enqueue(message) {
			that.logger.Warn("client is too slow, update dropped", "gameID", game.ID)
		}
	}
}

// Forget tells the game's watchers that it is gone and unsubscribes them.
func (that *Hub) Forget(gameID string) {
	message, err := encodeMessage(actionDeleted, ResponsePayload{GameID: gameID})
	if err != nil {
		that.logger.Error("failed to encode delete", "gameID", gameID, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for c := range that.watchers[gameID] {
		c.mu.Lock()
		if c.watching == gameID {
			c.watching = ""
		}
		c.mu.Unlock()

		if !c.enqueue(message) {
			that.logger.Warn("client is too slow, delete dropped", "gameID", gameID)
		}
	}

	delete(that.watchers, gameID)
}

// Watchers returns how many clients watch gameID.
func (that *Hub) Watchers(gameID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.watchers[gameID])
}

func (that *Hub) remove(c *client, gameID string) {
	if gameID == "" {
		return
	}

	clients := that.watchers[gameID]
	delete(clients, c)
	if len(clients) == 0 {
		delete(that.watchers, gameID)
	}
}
