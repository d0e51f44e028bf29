// Package boardimage is the presentation collaborator: it turns a board
// position into a PNG, honoring the configured theme and the active
// orientation flip.
package boardimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
)

const (
	squareSize   = 64
	boardSquares = 8
	boardSize    = squareSize * boardSquares
)

type Highlight struct {
	From nchess.Square
	To   nchess.Square
}

type RenderOptions struct {
	Flipped   bool
	Theme     string
	Highlight *Highlight
	// Size is the output edge length in pixels; 0 keeps the natural
	// board size.
	Size int
}

type Renderer interface {
	RenderPNG(ctx context.Context, board *nchess.Board, opts RenderOptions) ([]byte, error)
}

type theme struct {
	light     string
	dark      string
	highlight string
}

var themes = map[string]theme{
	"classic": {light: "#f0d9b5", dark: "#b58863", highlight: "#f7ec5e"},
	"blue":    {light: "#dee3e6", dark: "#8ca2ad", highlight: "#7fc0d6"},
	"green":   {light: "#ffffdd", dark: "#86a666", highlight: "#c3d888"},
}

func themeByName(name string) theme {
	if t, ok := themes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return themes["classic"]
}

type svgRenderer struct{}

func NewSVGRenderer() Renderer {
	return &svgRenderer{}
}

func (r *svgRenderer) RenderPNG(ctx context.Context, board *nchess.Board, opts RenderOptions) ([]byte, error) {
	if board == nil {
		return nil, fmt.Errorf("board is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	doc := composeSVG(board, opts)
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse board svg: %w", err)
	}
	icon.SetTarget(0, 0, boardSize, boardSize)

	img := image.NewRGBA(image.Rect(0, 0, boardSize, boardSize))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, imagedraw.Src)

	scanner := rasterx.NewScannerGV(boardSize, boardSize, img, img.Bounds())
	raster := rasterx.NewDasher(boardSize, boardSize, scanner)
	icon.Draw(raster, 1.0)

	out := image.Image(img)
	if opts.Size > 0 && opts.Size != boardSize {
		scaled := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// cellOrigin maps a square to the pixel origin of its cell under the
// given orientation. White at the bottom unless flipped.
func cellOrigin(sq nchess.Square, flipped bool) (x, y int) {
	file := int(sq.File())
	rank := int(sq.Rank())
	col := file
	row := 7 - rank
	if flipped {
		col = 7 - file
		row = rank
	}
	return col * squareSize, row * squareSize
}

func composeSVG(board *nchess.Board, opts RenderOptions) string {
	t := themeByName(opts.Theme)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		boardSize, boardSize, boardSize, boardSize)

	for sq := nchess.A1; sq <= nchess.H8; sq++ {
		x, y := cellOrigin(sq, opts.Flipped)
		fill := t.dark
		if (int(sq.File())+int(sq.Rank()))%2 == 1 {
			fill = t.light
		}
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
			x, y, squareSize, squareSize, fill)
	}

	if opts.Highlight != nil {
		for _, sq := range []nchess.Square{opts.Highlight.From, opts.Highlight.To} {
			if sq < nchess.A1 || sq > nchess.H8 {
				continue
			}
			x, y := cellOrigin(sq, opts.Flipped)
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" fill-opacity="0.55"/>`,
				x, y, squareSize, squareSize, t.highlight)
		}
	}

	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		x, y := cellOrigin(sq, opts.Flipped)
		sb.WriteString(pieceGlyph(piece, x, y))
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}
