package entity

import "time"

// Result records how a finished round ended.
type Result struct {
	GameID     string    `json:"game_id"`
	Outcome    Status    `json:"outcome"`
	Winner     Mark      `json:"winner,omitempty"`
	MoveCount  int       `json:"move_count"`
	FinishedAt time.Time `json:"finished_at"`
}

// Summary aggregates results.
type Summary struct {
	XWins int `json:"x_wins"`
	OWins int `json:"o_wins"`
	Draws int `json:"draws"`
	Total int `json:"total"`
}

// NewResult returns the result of a finished game, false while the game is still running.
func NewResult(game *Game, finishedAt time.Time) (Result, bool) {
	if !game.IsFinished() {
		return Result{}, false
	}

	return Result{
		GameID:     game.ID,
		Outcome:    game.Status,
		Winner:     game.Winner,
		MoveCount:  game.MoveCount,
		FinishedAt: finishedAt.UTC(),
	}, true
}

// Add counts one result into the summary.
func (that *Summary) Add(result Result) {
	that.Total++

	switch {
	case result.Outcome == StatusDraw:
		that.Draws++
	case result.Winner == MarkX:
		that.XWins++
	case result.Winner == MarkO:
		that.OWins++
	}
}
