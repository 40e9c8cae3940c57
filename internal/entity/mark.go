package entity

import "math/rand"

// Mark is the symbol a player puts on the board.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"

	EmptyCell Mark = ""
)

// Opponent returns the mark of the other player.
func (that Mark) Opponent() Mark {
	if that == MarkX {
		return MarkO
	}
	return MarkX
}

func (that Mark) IsPlayer() bool {
	return that == MarkX || that == MarkO
}

// Randomizer is the source used to pick who moves first. *rand.Rand satisfies it.
type Randomizer interface {
	Intn(n int) int
}

type globalRandomizer struct{}

func (globalRandomizer) Intn(n int) int {
	return rand.Intn(n) //nolint: gosec // it's ok
}

// DefaultRandomizer draws from the math/rand global source.
var DefaultRandomizer Randomizer = globalRandomizer{}

// RandomMark returns X or O with equal probability.
func RandomMark(rng Randomizer) Mark {
	if rng == nil {
		rng = DefaultRandomizer
	}

	if rng.Intn(2) == 0 {
		return MarkX
	}
	return MarkO
}
