// Command hotseat plays tic-tac-toe for two players sharing one terminal.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-hotseat/internal/tictactoe"
)

func main() {
	messagesDir := flag.String("messages", "", "directory with message overrides")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed for the starting player draw")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	catalog, err := msgcat.New(*messagesDir)
	if err != nil {
		logger.Error("failed to load messages", "error", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed)) //nolint: gosec // it's ok

	if err = run(os.Stdin, os.Stdout, catalog, rng); err != nil {
		logger.Error("game stopped", "error", err)
		os.Exit(1)
	}
}

type catalog interface {
	Render(key string, data any) (string, error)
}

func run(in io.Reader, out io.Writer, catalog catalog, rng entity.Randomizer) error {
	term := newTerminal(out, catalog)
	controller := tictactoe.NewGameController(&entity.Game{ID: "local"}, term, term, rng)
	controller.Start()

	scanner := bufio.NewScanner(in)
	for {
		term.prompt(controller.State())

		if !scanner.Scan() {
			return scanner.Err()
		}

		input := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch input {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "reset":
			controller.Reset()
			continue
		}

		cell, err := entity.ParseCellID(input)
		if err != nil {
			term.fail(err, cell, input)
			continue
		}

		if !term.enabled(cell) {
			term.fail(fmt.Errorf("%w: %s", term.disabledReason(), cell), cell, input)
			continue
		}

		if _, err = controller.SelectCell(cell); err != nil {
			term.fail(err, cell, input)
		}
	}
}

// terminal presents the game as text and tracks which cells accept input.
type terminal struct {
	out     io.Writer
	catalog catalog

	board    entity.Board
	disabled map[entity.CellID]bool
	locked   bool
}

func newTerminal(out io.Writer, catalog catalog) *terminal {
	return &terminal{
		out:      out,
		catalog:  catalog,
		disabled: make(map[entity.CellID]bool),
	}
}

func (that *terminal) StartingPlayerChosen(mark entity.Mark) {
	that.say("game.first", mark)
}

func (that *terminal) CellMarked(cell entity.CellID, mark entity.Mark) {
	i, err := cell.Index()
	if err != nil {
		return
	}
	that.board[i] = mark
}

func (that *terminal) TurnChanged(mark entity.Mark) {
	that.say("game.turn", mark)
}

func (that *terminal) GameWon(mark entity.Mark) {
	that.drawBoard()
	that.say("game.won", mark)
}

func (that *terminal) GameDrawn() {
	that.drawBoard()
	that.say("game.draw", entity.EmptyCell)
}

func (that *terminal) BoardReset() {
	that.board = entity.Board{}
	that.say("game.reset", entity.EmptyCell)
}

func (that *terminal) DisableCell(cell entity.CellID) {
	that.disabled[cell] = true
}

func (that *terminal) DisableAll() {
	that.locked = true
}

func (that *terminal) EnableAll() {
	that.locked = false
	that.disabled = make(map[entity.CellID]bool)
}

func (that *terminal) enabled(cell entity.CellID) bool {
	return !that.locked && !that.disabled[cell]
}

func (that *terminal) disabledReason() error {
	if that.locked {
		return apperror.ErrGameAlreadyOver
	}
	return apperror.ErrCellOccupied
}

func (that *terminal) prompt(game *entity.Game) {
	if game.IsFinished() {
		fmt.Fprint(that.out, that.render("board.finished", nil))
		return
	}

	that.drawBoard()
	fmt.Fprint(that.out, that.render("board.prompt", map[string]string{"Mark": string(game.Turn)}))
}

func (that *terminal) drawBoard() {
	fmt.Fprintln(that.out, that.render("board.header", nil))
	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			mark := that.board[row*3+col]
			if mark == entity.EmptyCell {
				cells[col] = " "
			} else {
				cells[col] = string(mark)
			}
		}
		fmt.Fprintf(that.out, "r%d  %s\n", row+1, strings.Join(cells, " | "))
	}
}

func (that *terminal) fail(err error, cell entity.CellID, input string) {
	if cell == "" {
		cell = entity.CellID(input)
	}

	key := "error." + apperror.Code(err)
	message := that.render(key, map[string]string{"Cell": string(cell), "ID": "local"})
	if message == "" {
		message = err.Error()
	}

	fmt.Fprintln(that.out, message)
}

func (that *terminal) say(key string, mark entity.Mark) {
	fmt.Fprintln(that.out, that.render(key, map[string]string{"Mark": string(mark)}))
}

func (that *terminal) render(key string, data any) string {
	message, err := that.catalog.Render(key, data)
	if err != nil {
		return ""
	}
	return message
}
