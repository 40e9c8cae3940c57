package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/config"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/render"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/rest"
	"github.com/rocketscienceinc/tictactoe-hotseat/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	gameRepo, closeGames, err := newGameRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeGames()

	resultRepo, closeResults, err := newResultRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeResults()

	catalog, err := msgcat.New(conf.MessagesDir)
	if err != nil {
		return fmt.Errorf("could not load messages: %w", err)
	}

	renderer, err := render.NewBoardRenderer(conf.BoardImageSize)
	if err != nil {
		return fmt.Errorf("could not create board renderer: %w", err)
	}

	hub := websocket.NewHub(logger)
	gameUseCase := usecase.NewGameManager(logger, gameRepo, resultRepo, hub, catalog, entity.DefaultRandomizer)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpServer := rest.NewServer(logger, conf.HTTPPort, rest.NewRouter(logger, gameUseCase, renderer, catalog))
		if httpErr := httpServer.Start(ctx); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, hub, catalog)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newGameRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	if conf.Storage == config.StorageMemory {
		log.Info("games are kept in memory")
		return repository.NewMemoryGameRepository(), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == ":" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFn := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage, conf.Redis.TTL), closeFn, nil
}

func newResultRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.ResultRepository, func(), error) {
	if conf.Postgres.DSN == "" {
		log.Info("results are kept in memory")
		return repository.NewMemoryResultRepository(), func() {}, nil
	}

	postgres, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
	}

	if err = postgres.Init(ctx); err != nil {
		_ = postgres.Close()
		return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
	}

	closeFn := func() {
		if err := postgres.Close(); err != nil {
			log.Error("could not close postgres storage", "error", err)
		}
	}

	return repository.NewResultRepository(postgres.Connection), closeFn, nil
}
