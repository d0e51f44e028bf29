package rules

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoHistory   = errors.New("no moves to undo")
)

// MoveRecord is the boundary conversion of a rules-engine move into an
// immutable tagged value. The controller retains only the count and the
// last entry; full replay history stays inside the engine.
type MoveRecord struct {
	From      nchess.Square
	To        nchess.Square
	Promotion nchess.PieceType
	Captured  bool
	Check     bool
	SAN       string
	UCI       string
}

// Engine wraps a single owned chess game. It is the sole source of truth
// for legality, turn, and terminal detection. Position is only mutated
// through Apply, Undo, and Reset.
type Engine struct {
	game     *nchess.Game
	startFEN string
	movesUCI []string
	records  []MoveRecord
}

func NewEngine() *Engine {
	return &Engine{game: nchess.NewGame()}
}

// NewEngineFromFEN starts from a custom position instead of the standard
// starting position.
func NewEngineFromFEN(fen string) (*Engine, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return NewEngine(), nil
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Engine{game: game, startFEN: fen}, nil
}

func gameFromFEN(fen string) (*nchess.Game, error) {
	option, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return nchess.NewGame(option), nil
}

func (e *Engine) Turn() nchess.Color {
	return e.game.Position().Turn()
}

func (e *Engine) FEN() string {
	return e.game.FEN()
}

func (e *Engine) PGN() string {
	return e.game.String()
}

func (e *Engine) Board() *nchess.Board {
	return e.game.Position().Board()
}

func (e *Engine) PieceAt(sq nchess.Square) nchess.Piece {
	return e.game.Position().Board().Piece(sq)
}

// LegalTargets returns the destination squares of every legal move that
// starts on sq.
func (e *Engine) LegalTargets(sq nchess.Square) []nchess.Square {
	var targets []nchess.Square
	seen := make(map[nchess.Square]struct{})
	for _, mv := range e.game.ValidMoves() {
		if mv.S1() != sq {
			continue
		}
		if _, dup := seen[mv.S2()]; dup {
			continue
		}
		seen[mv.S2()] = struct{}{}
		targets = append(targets, mv.S2())
	}
	return targets
}

// Apply attempts the move from→to. Notation decoding only parses, so
// legality comes from the valid-move list. A pawn arriving on the back
// rank promotes to queen; no piece choice is ever prompted.
// On illegality nothing is mutated and ErrIllegalMove is returned.
func (e *Engine) Apply(from, to nchess.Square) (MoveRecord, error) {
	pos := e.game.Position()

	uci := from.String() + to.String()
	if p := pos.Board().Piece(from); p.Type() == nchess.Pawn && isBackRank(to) {
		uci += "q"
	}
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil || !e.isLegal(mv.S1(), mv.S2(), mv.Promo()) {
		return MoveRecord{}, ErrIllegalMove
	}

	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := e.game.Move(mv, nil); err != nil {
		return MoveRecord{}, ErrIllegalMove
	}

	rec := MoveRecord{
		From:      mv.S1(),
		To:        mv.S2(),
		Promotion: mv.Promo(),
		Captured:  mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant),
		Check:     mv.HasTag(nchess.Check),
		SAN:       san,
		UCI:       strings.ToLower(uci),
	}
	e.movesUCI = append(e.movesUCI, rec.UCI)
	e.records = append(e.records, rec)
	return rec, nil
}

// DecodeNotation resolves a textual move identifier (SAN preferred, UCI
// fallback) against the current position without applying it. It reports
// ok=false when the notation does not name a currently legal move:
// decoding alone is not enough, a UCI pair like e2e5 parses fine, so
// every decode is checked against the valid-move list.
func (e *Engine) DecodeNotation(notation string) (from, to nchess.Square, ok bool) {
	text := strings.TrimSpace(notation)
	if text == "" {
		return 0, 0, false
	}
	pos := e.game.Position()
	if mv, err := (nchess.AlgebraicNotation{}).Decode(pos, text); err == nil && e.isLegal(mv.S1(), mv.S2(), mv.Promo()) {
		return mv.S1(), mv.S2(), true
	}
	if mv, err := (nchess.UCINotation{}).Decode(pos, strings.ToLower(text)); err == nil && e.isLegal(mv.S1(), mv.S2(), mv.Promo()) {
		return mv.S1(), mv.S2(), true
	}
	return 0, 0, false
}

// isLegal reports whether the (from, to, promotion) triple names a move
// in the current valid-move list.
func (e *Engine) isLegal(from, to nchess.Square, promo nchess.PieceType) bool {
	for _, mv := range e.game.ValidMoves() {
		if mv.S1() == from && mv.S2() == to && mv.Promo() == promo {
			return true
		}
	}
	return false
}

func isBackRank(sq nchess.Square) bool {
	r := int(sq.Rank())
	return r == 0 || r == 7
}

// Undo removes the last applied move by rebuilding the game from the
// retained move list. Applying stored UCI moves from the start position
// avoids drift between incremental and replayed state.
func (e *Engine) Undo() error {
	if len(e.movesUCI) == 0 {
		return ErrNoHistory
	}
	rebuilt, err := e.reconstruct(e.movesUCI[:len(e.movesUCI)-1])
	if err != nil {
		return err
	}
	e.game = rebuilt
	e.movesUCI = e.movesUCI[:len(e.movesUCI)-1]
	e.records = e.records[:len(e.records)-1]
	return nil
}

func (e *Engine) reconstruct(moves []string) (*nchess.Game, error) {
	var game *nchess.Game
	if e.startFEN != "" {
		g, err := gameFromFEN(e.startFEN)
		if err != nil {
			return nil, err
		}
		game = g
	} else {
		game = nchess.NewGame()
	}
	for _, mv := range moves {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay %s: %w", mv, err)
		}
	}
	return game, nil
}

// Reset discards the game and history, returning to the configured start
// position.
func (e *Engine) Reset() {
	if e.startFEN != "" {
		if game, err := gameFromFEN(e.startFEN); err == nil {
			e.game = game
		}
	} else {
		e.game = nchess.NewGame()
	}
	e.movesUCI = nil
	e.records = nil
}

func (e *Engine) HistoryLen() int {
	return len(e.records)
}

func (e *Engine) LastMove() (MoveRecord, bool) {
	if len(e.records) == 0 {
		return MoveRecord{}, false
	}
	return e.records[len(e.records)-1], true
}

func (e *Engine) MovesUCI() []string {
	return append([]string(nil), e.movesUCI...)
}

func (e *Engine) MovesSAN() []string {
	out := make([]string, 0, len(e.records))
	for _, rec := range e.records {
		out = append(out, rec.SAN)
	}
	return out
}

// InCheck reports whether the side to move is currently in check,
// derived from the last applied move's check tag.
func (e *Engine) InCheck() bool {
	rec, ok := e.LastMove()
	return ok && rec.Check
}

// Outcome exposes the raw rules-engine verdict for the current position.
func (e *Engine) Outcome() (nchess.Outcome, nchess.Method) {
	return e.game.Outcome(), e.game.Method()
}

// ParseSquare converts a coordinate like "e2" into a square. ok=false on
// anything that is not a two-rune board coordinate.
func ParseSquare(s string) (nchess.Square, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return 0, false
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return 0, false
	}
	return nchess.Square(rank*8 + file), true
}
