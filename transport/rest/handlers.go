package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, []tictactoe.Event, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	SelectCell(ctx context.Context, id string, cell entity.CellID) (*entity.Game, []tictactoe.Event, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, []tictactoe.Event, error)
	DeleteGame(ctx context.Context, id string) error
	Stats(ctx context.Context) (entity.Summary, error)
}

type boardRenderer interface {
	RenderPNG(ctx context.Context, game *entity.Game) ([]byte, error)
}

type catalog interface {
	Render(key string, data any) (string, error)
}

// GameResponse is the body of every successful game endpoint.
type GameResponse struct {
	Game        *entity.Game      `json:"game"`
	WinningLine []entity.CellID   `json:"winning_line,omitempty"`
	Events      []tictactoe.Event `json:"events,omitempty"`
}

type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type handlers struct {
	logger   *slog.Logger
	games    gameUseCase
	renderer boardRenderer
	catalog  catalog
}

// NewRouter returns the HTTP API.
func NewRouter(logger *slog.Logger, games gameUseCase, renderer boardRenderer, catalog catalog) http.Handler {
	that := &handlers{
		logger:   logger.With("component", "rest"),
		games:    games,
		renderer: renderer,
		catalog:  catalog,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(that.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", that.stats)

		r.Post("/games", that.newGame)
		r.Route("/games/{id}", func(r chi.Router) {
			r.Get("/", that.getGame)
			r.Delete("/", that.deleteGame)
			r.Post("/cells/{cell}", that.selectCell)
			r.Post("/reset", that.resetGame)
			r.Get("/board.png", that.boardImage)
		})
	})

	return r
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	game, events, err := that.games.NewGame(r.Context())
	if err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	that.writeJSON(w, http.StatusCreated, newGameResponse(game, events))
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	game, err := that.games.GetGame(r.Context(), id)
	if err != nil {
		that.writeError(w, r, err, map[string]string{"ID": id})
		return
	}

	that.writeJSON(w, http.StatusOK, newGameResponse(game, nil))
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := that.games.DeleteGame(r.Context(), id); err != nil {
		that.writeError(w, r, err, map[string]string{"ID": id})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) selectCell(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	raw := chi.URLParam(r, "cell")

	cell, err := entity.ParseCellID(raw)
	if err != nil {
		that.writeError(w, r, err, map[string]string{"ID": id, "Cell": raw})
		return
	}

	game, events, err := that.games.SelectCell(r.Context(), id, cell)
	if err != nil {
		that.writeError(w, r, err, map[string]string{"ID": id, "Cell": string(cell)})
		return
	}

	that.writeJSON(w, http.StatusOK, newGameResponse(game, events))
}

func (that *handlers) resetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	game, events, err := that.games.ResetGame(r.Context(), id)
	if err != nil {
		that.writeError(w, r, err, map[string]string{"ID": id})
		return
	}

	that.writeJSON(w, http.StatusOK, newGameResponse(game, events))
}

func (that *handlers) boardImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	game, err := that.games.GetGame(r.Context(), id)
	if err != nil {
		that.writeError(w, r, err, map[string]string{"ID": id})
		return
	}

	image, err := that.renderer.RenderPNG(r.Context(), game)
	if err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(image); err != nil {
		that.logger.Error("failed to write image", "gameID", id, "error", err)
	}
}

func (that *handlers) stats(w http.ResponseWriter, r *http.Request) {
	summary, err := that.games.Stats(r.Context())
	if err != nil {
		that.writeError(w, r, err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, summary)
}

func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, err error, data map[string]string) {
	code := apperror.Code(err)

	status := http.StatusInternalServerError
	switch code {
	case apperror.CodeInvalidCell:
		status = http.StatusBadRequest
	case apperror.CodeCellOccupied, apperror.CodeGameOver:
		status = http.StatusConflict
	case apperror.CodeGameNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	message, renderErr := that.catalog.Render("error."+code, data)
	if renderErr != nil {
		message = http.StatusText(status)
	}

	that.writeJSON(w, status, ErrorResponse{Code: code, Error: message})
}

func (that *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		that.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}

func newGameResponse(game *entity.Game, events []tictactoe.Event) GameResponse {
	response := GameResponse{
		Game:   game,
		Events: events,
	}

	if line, ok := game.WinningLine(); ok && game.Status == entity.StatusWon {
		response.WinningLine = line[:]
	}

	return response
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "status", status, "error", err)
	}
}
