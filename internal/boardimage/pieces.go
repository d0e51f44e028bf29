package boardimage

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Piece glyphs are generated as plain SVG shapes inside a 64x64 cell, so
// the renderer carries no external assets. Shapes are stylized silhouettes,
// not faithful staunton pieces.

func pieceColors(piece nchess.Piece) (fill, stroke string) {
	if piece.Color() == nchess.White {
		return "#fafafa", "#1a1a1a"
	}
	return "#1f1f1f", "#e8e8e8"
}

func pieceGlyph(piece nchess.Piece, x, y int) string {
	fill, stroke := pieceColors(piece)

	var body string
	switch piece.Type() {
	case nchess.Pawn:
		body = `<circle cx="32" cy="22" r="9"/>` +
			`<path d="M24 30 L40 30 L46 52 L18 52 Z"/>`
	case nchess.Rook:
		body = `<path d="M18 14 L24 14 L24 20 L28 20 L28 14 L36 14 L36 20 L40 20 L40 14 L46 14 L46 26 L42 30 L42 46 L46 52 L18 52 L22 46 L22 30 L18 26 Z"/>`
	case nchess.Knight:
		body = `<path d="M22 52 L22 44 C22 34 26 30 30 26 L26 24 C24 22 26 16 32 12 C40 14 46 22 46 34 L46 52 Z"/>` +
			`<circle cx="34" cy="20" r="2"/>`
	case nchess.Bishop:
		body = `<circle cx="32" cy="14" r="4"/>` +
			`<path d="M32 18 C40 24 42 32 38 40 L26 40 C22 32 24 24 32 18 Z"/>` +
			`<path d="M22 52 L42 52 L38 44 L26 44 Z"/>`
	case nchess.Queen:
		body = `<path d="M16 20 L24 36 L32 16 L40 36 L48 20 L44 46 L20 46 Z"/>` +
			`<path d="M18 48 L46 48 L46 52 L18 52 Z"/>`
	case nchess.King:
		body = `<path d="M30 10 L34 10 L34 14 L38 14 L38 18 L34 18 L34 24 L30 24 L30 18 L26 18 L26 14 L30 14 Z"/>` +
			`<path d="M22 26 L42 26 L46 46 L18 46 Z"/>` +
			`<path d="M18 48 L46 48 L46 52 L18 52 Z"/>`
	default:
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<g transform="translate(%d,%d)" fill="%s" stroke="%s" stroke-width="2">`, x, y, fill, stroke)
	sb.WriteString(body)
	sb.WriteString(`</g>`)
	return sb.String()
}
