package boardimage

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func startBoard(t *testing.T) *nchess.Board {
	t.Helper()
	return nchess.NewGame().Position().Board()
}

func TestRenderPNGStartingPosition(t *testing.T) {
	r := NewSVGRenderer()
	data, err := r.RenderPNG(context.Background(), startBoard(t), RenderOptions{Theme: "classic"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != boardSize || bounds.Dy() != boardSize {
		t.Fatalf("image size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), boardSize, boardSize)
	}
}

func TestRenderPNGFlippedDiffers(t *testing.T) {
	r := NewSVGRenderer()
	ctx := context.Background()
	board := startBoard(t)

	normal, err := r.RenderPNG(ctx, board, RenderOptions{})
	if err != nil {
		t.Fatalf("render normal: %v", err)
	}
	flipped, err := r.RenderPNG(ctx, board, RenderOptions{Flipped: true})
	if err != nil {
		t.Fatalf("render flipped: %v", err)
	}
	if bytes.Equal(normal, flipped) {
		t.Fatal("flipped render identical to normal orientation")
	}
}

func TestRenderPNGScaled(t *testing.T) {
	r := NewSVGRenderer()
	data, err := r.RenderPNG(context.Background(), startBoard(t), RenderOptions{Size: 256})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Fatalf("scaled width = %d, want 256", img.Bounds().Dx())
	}
}

func TestRenderPNGHighlight(t *testing.T) {
	r := NewSVGRenderer()
	ctx := context.Background()
	board := startBoard(t)

	plain, err := r.RenderPNG(ctx, board, RenderOptions{})
	if err != nil {
		t.Fatalf("render plain: %v", err)
	}
	from, to := nchess.Square(12), nchess.Square(28) // e2, e4
	marked, err := r.RenderPNG(ctx, board, RenderOptions{Highlight: &Highlight{From: from, To: to}})
	if err != nil {
		t.Fatalf("render highlighted: %v", err)
	}
	if bytes.Equal(plain, marked) {
		t.Fatal("highlight had no visual effect")
	}
}

func TestRenderPNGUnknownThemeFallsBack(t *testing.T) {
	r := NewSVGRenderer()
	ctx := context.Background()
	board := startBoard(t)

	classic, err := r.RenderPNG(ctx, board, RenderOptions{Theme: "classic"})
	if err != nil {
		t.Fatalf("render classic: %v", err)
	}
	unknown, err := r.RenderPNG(ctx, board, RenderOptions{Theme: "does-not-exist"})
	if err != nil {
		t.Fatalf("render unknown theme: %v", err)
	}
	if !bytes.Equal(classic, unknown) {
		t.Fatal("unknown theme did not fall back to classic")
	}
}

func TestRenderPNGNilBoard(t *testing.T) {
	r := NewSVGRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, RenderOptions{}); err == nil {
		t.Fatal("nil board accepted")
	}
}

func TestRenderPNGCancelledContext(t *testing.T) {
	r := NewSVGRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, startBoard(t), RenderOptions{}); err == nil {
		t.Fatal("cancelled context accepted")
	}
}

func TestCellOrigin(t *testing.T) {
	e2 := nchess.Square(12)
	x, y := cellOrigin(e2, false)
	if x != 4*squareSize || y != 6*squareSize {
		t.Fatalf("e2 origin = (%d,%d)", x, y)
	}
	x, y = cellOrigin(e2, true)
	if x != 3*squareSize || y != 1*squareSize {
		t.Fatalf("e2 flipped origin = (%d,%d)", x, y)
	}
}
