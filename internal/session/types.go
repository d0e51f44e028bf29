package session

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/kwahn412/blitz-session/internal/rules"
)

// Side identifies a chess side.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func (s Side) Other() Side {
	if s == White {
		return Black
	}
	return White
}

func sideFromColor(c nchess.Color) Side {
	if c == nchess.White {
		return White
	}
	return Black
}

// OutcomeState classifies the session result.
type OutcomeState string

const (
	OutcomeActive    OutcomeState = "active"
	OutcomeCheckmate OutcomeState = "checkmate"
	OutcomeDraw      OutcomeState = "draw"
	OutcomeStalemate OutcomeState = "stalemate"
	OutcomeTimeout   OutcomeState = "timeout"
)

// Outcome is sticky once terminal: the only transitions are
// active→terminal and terminal→active via Reset.
type Outcome struct {
	State  OutcomeState `json:"state"`
	Winner Side         `json:"winner,omitempty"`
}

func (o Outcome) Terminal() bool {
	return o.State != OutcomeActive
}

// Selection holds the single selected square and its legal destinations.
type Selection struct {
	Square  nchess.Square
	Targets []nchess.Square
}

// Recommendation is an analysis suggestion correlated back to board
// coordinates. It is set only by a fresh suggestion completion and
// cleared by any move, undo, or reset.
type Recommendation struct {
	From nchess.Square
	To   nchess.Square
}

// Snapshot is a consolidated read-only view of the session for
// presentation layers.
type Snapshot struct {
	SessionUUID    string
	FEN            string
	Turn           Side
	MoveCount      int
	LastMove       *rules.MoveRecord
	Outcome        Outcome
	WhiteRemaining int
	BlackRemaining int
	Selection      *Selection
	Recommendation *Recommendation
	Commentary     string
}
