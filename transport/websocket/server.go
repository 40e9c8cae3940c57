package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

const (
	idlePingInterval = 30 * time.Second
	writeWait        = 10 * time.Second
	maxMessageSize   = 4096
	shutdownTimeout  = 5 * time.Second
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, []tictactoe.Event, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	SelectCell(ctx context.Context, id string, cell entity.CellID) (*entity.Game, []tictactoe.Event, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, []tictactoe.Event, error)
}

type catalog interface {
	Render(key string, data any) (string, error)
}

type handlerFunc func(ctx context.Context, message *Message, c *client) error

type Server struct {
	logger  *slog.Logger
	games   gameUseCase
	hub     *Hub
	catalog catalog

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, games gameUseCase, hub *Hub, catalog catalog) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		games:   games,
		hub:     hub,
		catalog: catalog,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the board is shared with any page that knows the game ID
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionNewGame] = server.handleNewGame
	server.handlers[actionWatch] = server.handleWatch
	server.handlers[actionSelect] = server.handleSelect
	server.handlers[actionReset] = server.handleReset

	return server
}

// Handler serves the WebSocket endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return r
}

// Start - starts WebSocket server and stops it when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	c := newClient()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := writeWithHeartbeat(conn, c.send); err != nil {
			log.Debug("writer stopped", "error", err)
		}
	}()

	that.handleMessages(ctx, conn, c)

	that.hub.Unregister(c)
	<-done
	_ = conn.Close()
}

// handleMessages - processes messages from the client until the connection breaks.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, c *client) {
	log := that.logger.With("method", "handleMessages")

	conn.SetReadLimit(maxMessageSize)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(raw, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			that.sendError(c, actionError, "invalid_message", "message is not valid JSON")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(c, message.Action, "unknown_action", "unknown action "+message.Action)
			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()

	lastWrite := time.Now()
	ping, err := encodeMessage(actionPing, struct{}{})
	if err != nil {
		return err
	}

	for {
		select {
		case message, ok := <-send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
				return nil
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
