package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/rocketscienceinc/tictactoe-hotseat/internal/entity"
)

const (
	viewBox    = 300
	cellSize   = viewBox / 3
	markMargin = 22

	DefaultSize = 300
	MinSize     = 60
	MaxSize     = 2048
)

var (
	ErrNilGame     = errors.New("game is nil")
	ErrInvalidSize = errors.New("invalid image size")
)

// BoardRenderer draws a game board as a square PNG image.
type BoardRenderer struct {
	size int
}

func NewBoardRenderer(size int) (*BoardRenderer, error) {
	if size == 0 {
		size = DefaultSize
	}

	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: %d, want %d..%d", ErrInvalidSize, size, MinSize, MaxSize)
	}

	return &BoardRenderer{size: size}, nil
}

func (that *BoardRenderer) Size() int {
	return that.size
}

// RenderPNG draws the grid, the marks and, for a won game, the winning line.
func (that *BoardRenderer) RenderPNG(ctx context.Context, game *entity.Game) ([]byte, error) {
	if game == nil {
		return nil, ErrNilGame
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(BoardSVG(game)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse board svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(that.size), float64(that.size))

	img := image.NewRGBA(image.Rect(0, 0, that.size, that.size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(that.size, that.size, img, img.Bounds())
	raster := rasterx.NewDasher(that.size, that.size, scanner)
	icon.Draw(raster, 1.0)

	var out bytes.Buffer
	if err = png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	return out.Bytes(), nil
}

// BoardSVG returns the board as an SVG document with a 300x300 view box.
func BoardSVG(game *entity.Game) string {
	var svg strings.Builder

	fmt.Fprintf(&svg, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		viewBox, viewBox, viewBox, viewBox)
	fmt.Fprintf(&svg, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`, viewBox, viewBox)

	if line, ok := game.WinningLine(); ok && game.Status == entity.StatusWon {
		for _, cell := range line {
			x, y := cellOrigin(cell)
			fmt.Fprintf(&svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="#fff3b0"/>`, x, y, cellSize, cellSize)
		}
	}

	for i := 1; i < 3; i++ {
		offset := i * cellSize
		fmt.Fprintf(&svg, `<line x1="%d" y1="6" x2="%d" y2="%d" stroke="#333333" stroke-width="4"/>`, offset, offset, viewBox-6)
		fmt.Fprintf(&svg, `<line x1="6" y1="%d" x2="%d" y2="%d" stroke="#333333" stroke-width="4"/>`, offset, viewBox-6, offset)
	}

	for _, cell := range entity.Cells {
		x, y := cellOrigin(cell)

		switch game.Board.At(cell) {
		case entity.MarkX:
			fmt.Fprintf(&svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#d7263d" stroke-width="10"/>`,
				x+markMargin, y+markMargin, x+cellSize-markMargin, y+cellSize-markMargin)
			fmt.Fprintf(&svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#d7263d" stroke-width="10"/>`,
				x+cellSize-markMargin, y+markMargin, x+markMargin, y+cellSize-markMargin)
		case entity.MarkO:
			fmt.Fprintf(&svg, `<circle cx="%d" cy="%d" r="%d" fill="none" stroke="#1b998b" stroke-width="10"/>`,
				x+cellSize/2, y+cellSize/2, cellSize/2-markMargin)
		}
	}

	svg.WriteString(`</svg>`)

	return svg.String()
}

func cellOrigin(cell entity.CellID) (int, int) {
	i, err := cell.Index()
	if err != nil {
		return 0, 0
	}

	return (i % 3) * cellSize, (i / 3) * cellSize
}
