package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandomizer int

func (that fixedRandomizer) Intn(int) int {
	return int(that)
}

func wonGame(t *testing.T) *entity.Game {
	t.Helper()

	game := entity.NewGame("123", fixedRandomizer(0))
	for _, cell := range []entity.CellID{entity.R1C1, entity.R2C1, entity.R1C2, entity.R2C2, entity.R1C3} {
		_, err := game.ApplyMove(cell)
		require.NoError(t, err)
	}

	return game
}

func decode(t *testing.T, raw []byte) image.Image {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	return img
}

func isWhite(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestNewBoardRenderer(t *testing.T) {
	t.Run("Zero size falls back to default", func(t *testing.T) {
		renderer, err := NewBoardRenderer(0)
		require.NoError(t, err)
		assert.Equal(t, DefaultSize, renderer.Size())
	})

	t.Run("Out of range sizes", func(t *testing.T) {
		for _, size := range []int{-1, MinSize - 1, MaxSize + 1} {
			_, err := NewBoardRenderer(size)
			assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
		}
	})
}

func TestBoardRenderer_RenderPNG(t *testing.T) {
	ctx := context.Background()

	t.Run("Produces a decodable image of the configured size", func(t *testing.T) {
		// Given: a renderer and a finished game
		renderer, err := NewBoardRenderer(150)
		require.NoError(t, err)

		// When: the board is rendered
		raw, err := renderer.RenderPNG(ctx, wonGame(t))
		require.NoError(t, err)

		// Then: the PNG has the requested bounds
		img := decode(t, raw)
		assert.Equal(t, image.Rect(0, 0, 150, 150), img.Bounds())
	})

	t.Run("Winning line is highlighted", func(t *testing.T) {
		// Given: a won game and the same board still in progress
		renderer, err := NewBoardRenderer(DefaultSize)
		require.NoError(t, err)

		won := wonGame(t)
		ongoing := won.Clone()
		ongoing.Status = entity.StatusInProgress
		ongoing.Winner = entity.EmptyCell

		// When: both are rendered
		wonRaw, err := renderer.RenderPNG(ctx, won)
		require.NoError(t, err)
		ongoingRaw, err := renderer.RenderPNG(ctx, ongoing)
		require.NoError(t, err)

		// Then: only the won board tints the top row background
		assert.False(t, isWhite(decode(t, wonRaw), 110, 10))
		assert.True(t, isWhite(decode(t, ongoingRaw), 110, 10))
	})

	t.Run("Marks are drawn", func(t *testing.T) {
		// Given: O in the center
		renderer, err := NewBoardRenderer(DefaultSize)
		require.NoError(t, err)

		game := entity.NewGame("123", fixedRandomizer(1))
		_, err = game.ApplyMove(entity.R2C2)
		require.NoError(t, err)

		// When: the board is rendered
		raw, err := renderer.RenderPNG(ctx, game)
		require.NoError(t, err)
		img := decode(t, raw)

		// Then: the ring is painted and its center stays empty
		assert.False(t, isWhite(img, 150, 122))
		assert.True(t, isWhite(img, 150, 150))
	})

	t.Run("Nil game", func(t *testing.T) {
		renderer, err := NewBoardRenderer(DefaultSize)
		require.NoError(t, err)

		_, err = renderer.RenderPNG(ctx, nil)
		require.ErrorIs(t, err, ErrNilGame)
	})

	t.Run("Canceled context", func(t *testing.T) {
		renderer, err := NewBoardRenderer(DefaultSize)
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = renderer.RenderPNG(canceled, wonGame(t))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBoardSVG(t *testing.T) {
	svg := BoardSVG(wonGame(t))

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Equal(t, 3, strings.Count(svg, `fill="#fff3b0"`))
	assert.Equal(t, 2, strings.Count(svg, `<circle`))
	assert.Equal(t, 4+3*2, strings.Count(svg, `<line`))
}
