package session

import (
	nchess "github.com/corentings/chess/v2"
)

// screenCell maps a square to its (column, row) grid cell as rendered,
// with orientation naming the side drawn at the bottom of the board.
// Columns grow rightwards and rows grow downwards.
func screenCell(sq nchess.Square, orientation Side) (col, row int) {
	file := int(sq.File())
	rank := int(sq.Rank())
	if orientation == Black {
		return 7 - file, rank
	}
	return file, 7 - rank
}

// AnimationOffset computes the signed (columns, rows) vector from the
// destination square's screen cell to the origin square's screen cell
// under the given orientation, i.e. where a just-moved piece visually
// comes from relative to where it now sits. ok is false when either
// endpoint is off the board, in which case callers should skip the
// animation entirely.
//
// Pure function of (from, to, orientation).
func AnimationOffset(from, to nchess.Square, orientation Side) (cols, rows int, ok bool) {
	if from < nchess.A1 || from > nchess.H8 || to < nchess.A1 || to > nchess.H8 {
		return 0, 0, false
	}
	fromCol, fromRow := screenCell(from, orientation)
	toCol, toRow := screenCell(to, orientation)
	return fromCol - toCol, fromRow - toRow, true
}
