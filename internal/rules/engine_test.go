package rules

import (
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

func mustSquare(t *testing.T, s string) nchess.Square {
	t.Helper()
	sq, ok := ParseSquare(s)
	if !ok {
		t.Fatalf("ParseSquare(%q) failed", s)
	}
	return sq
}

func mustApply(t *testing.T, e *Engine, from, to string) MoveRecord {
	t.Helper()
	rec, err := e.Apply(mustSquare(t, from), mustSquare(t, to))
	if err != nil {
		t.Fatalf("Apply(%s%s): %v", from, to, err)
	}
	return rec
}

func TestParseSquare(t *testing.T) {
	sq, ok := ParseSquare("e2")
	if !ok {
		t.Fatal("expected e2 to parse")
	}
	if got := sq.String(); got != "e2" {
		t.Fatalf("round trip mismatch: %q", got)
	}
	if _, ok := ParseSquare(" H8 "); !ok {
		t.Fatal("expected trimmed uppercase coordinate to parse")
	}
	for _, bad := range []string{"", "e", "e9", "i1", "22", "e2e4"} {
		if _, ok := ParseSquare(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestApplyRecordsMove(t *testing.T) {
	e := NewEngine()
	rec := mustApply(t, e, "e2", "e4")

	if rec.SAN != "e4" {
		t.Fatalf("SAN = %q, want e4", rec.SAN)
	}
	if rec.UCI != "e2e4" {
		t.Fatalf("UCI = %q, want e2e4", rec.UCI)
	}
	if rec.Captured {
		t.Fatal("pawn advance marked as capture")
	}
	if e.Turn() != nchess.Black {
		t.Fatalf("turn = %v, want black", e.Turn())
	}
	if e.HistoryLen() != 1 {
		t.Fatalf("history = %d, want 1", e.HistoryLen())
	}
	last, ok := e.LastMove()
	if !ok || last.UCI != "e2e4" {
		t.Fatalf("LastMove = %+v ok=%v", last, ok)
	}
}

func TestApplyIllegalMutatesNothing(t *testing.T) {
	e := NewEngine()
	before := e.FEN()

	_, err := e.Apply(mustSquare(t, "e2"), mustSquare(t, "e5"))
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if e.FEN() != before {
		t.Fatal("illegal attempt mutated the position")
	}
	if e.HistoryLen() != 0 {
		t.Fatalf("history = %d after illegal attempt", e.HistoryLen())
	}
}

func TestCaptureTagged(t *testing.T) {
	e := NewEngine()
	mustApply(t, e, "e2", "e4")
	mustApply(t, e, "d7", "d5")
	rec := mustApply(t, e, "e4", "d5")

	if !rec.Captured {
		t.Fatal("exd5 not tagged as capture")
	}
	if rec.SAN != "exd5" {
		t.Fatalf("SAN = %q, want exd5", rec.SAN)
	}
}

func TestLegalTargets(t *testing.T) {
	e := NewEngine()
	targets := e.LegalTargets(mustSquare(t, "e2"))
	if len(targets) != 2 {
		t.Fatalf("e2 targets = %v, want two pawn advances", targets)
	}
	want := map[string]bool{"e3": true, "e4": true}
	for _, sq := range targets {
		if !want[sq.String()] {
			t.Fatalf("unexpected target %s", sq)
		}
	}
	if got := e.LegalTargets(mustSquare(t, "e4")); len(got) != 0 {
		t.Fatalf("empty square produced targets %v", got)
	}
	if got := e.LegalTargets(mustSquare(t, "e7")); len(got) != 0 {
		t.Fatalf("opponent piece produced targets %v", got)
	}
}

func TestUndoReplaysHistory(t *testing.T) {
	e := NewEngine()
	mustApply(t, e, "e2", "e4")
	afterFirst := e.FEN()
	mustApply(t, e, "e7", "e5")

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.FEN() != afterFirst {
		t.Fatalf("FEN after undo = %q, want %q", e.FEN(), afterFirst)
	}
	if e.HistoryLen() != 1 {
		t.Fatalf("history = %d, want 1", e.HistoryLen())
	}
	if e.Turn() != nchess.Black {
		t.Fatalf("turn = %v, want black", e.Turn())
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	e := NewEngine()
	if err := e.Undo(); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("err = %v, want ErrNoHistory", err)
	}
}

func TestUndoFromCustomStart(t *testing.T) {
	const fen = "k7/4P3/8/8/8/8/8/4K3 w - - 0 1"
	e, err := NewEngineFromFEN(fen)
	if err != nil {
		t.Fatalf("NewEngineFromFEN: %v", err)
	}
	before := e.FEN()
	mustApply(t, e, "e1", "e2")
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.FEN() != before {
		t.Fatalf("FEN after undo = %q, want %q", e.FEN(), before)
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	e, err := NewEngineFromFEN("k7/4P3/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("NewEngineFromFEN: %v", err)
	}
	rec := mustApply(t, e, "e7", "e8")

	if rec.UCI != "e7e8q" {
		t.Fatalf("UCI = %q, want e7e8q", rec.UCI)
	}
	if rec.Promotion != nchess.Queen {
		t.Fatalf("promotion = %v, want queen", rec.Promotion)
	}
	piece := e.PieceAt(mustSquare(t, "e8"))
	if piece.Type() != nchess.Queen || piece.Color() != nchess.White {
		t.Fatalf("e8 holds %v after promotion", piece)
	}
}

func TestCapturePromotionDefaultsToQueen(t *testing.T) {
	e, err := NewEngineFromFEN("3q3k/4P3/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("NewEngineFromFEN: %v", err)
	}
	rec := mustApply(t, e, "e7", "d8")

	if rec.UCI != "e7d8q" {
		t.Fatalf("UCI = %q, want e7d8q", rec.UCI)
	}
	if !rec.Captured {
		t.Fatal("capture promotion not tagged as capture")
	}
	if rec.Promotion != nchess.Queen {
		t.Fatalf("promotion = %v, want queen", rec.Promotion)
	}
}

func TestNonPawnBackRankMoveNotPromoted(t *testing.T) {
	e, err := NewEngineFromFEN("1k6/8/8/8/8/8/8/R3K3 w - - 0 1")
	if err != nil {
		t.Fatalf("NewEngineFromFEN: %v", err)
	}
	rec := mustApply(t, e, "a1", "a8")
	if rec.UCI != "a1a8" {
		t.Fatalf("UCI = %q, want a1a8", rec.UCI)
	}
}

func TestDecodeNotation(t *testing.T) {
	e := NewEngine()

	from, to, ok := e.DecodeNotation("Nf3")
	if !ok || from.String() != "g1" || to.String() != "f3" {
		t.Fatalf("Nf3 decoded to %s%s ok=%v", from, to, ok)
	}
	from, to, ok = e.DecodeNotation("e2e4")
	if !ok || from.String() != "e2" || to.String() != "e4" {
		t.Fatalf("e2e4 decoded to %s%s ok=%v", from, to, ok)
	}
	if _, _, ok := e.DecodeNotation("e2e5"); ok {
		t.Fatal("illegal move decoded as legal")
	}
	if _, _, ok := e.DecodeNotation("e7e5"); ok {
		t.Fatal("opponent move decoded as legal")
	}
	if _, _, ok := e.DecodeNotation(""); ok {
		t.Fatal("empty notation decoded as legal")
	}
}

func TestDecodeNotationPromotion(t *testing.T) {
	e, err := NewEngineFromFEN("k7/4P3/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("NewEngineFromFEN: %v", err)
	}
	from, to, ok := e.DecodeNotation("e7e8q")
	if !ok || from.String() != "e7" || to.String() != "e8" {
		t.Fatalf("e7e8q decoded to %s%s ok=%v", from, to, ok)
	}
	// Without a promotion piece the pair names no legal move.
	if _, _, ok := e.DecodeNotation("e7e8"); ok {
		t.Fatal("promotion-less pair decoded as legal")
	}
}

func TestCheckmateOutcome(t *testing.T) {
	e := NewEngine()
	mustApply(t, e, "f2", "f3")
	mustApply(t, e, "e7", "e5")
	mustApply(t, e, "g2", "g4")
	rec := mustApply(t, e, "d8", "h4")

	if rec.SAN != "Qh4#" {
		t.Fatalf("SAN = %q, want Qh4#", rec.SAN)
	}
	oc, method := e.Outcome()
	if oc != nchess.BlackWon {
		t.Fatalf("outcome = %v, want black win", oc)
	}
	if method != nchess.Checkmate {
		t.Fatalf("method = %v, want checkmate", method)
	}
}

func TestInCheck(t *testing.T) {
	e := NewEngine()
	if e.InCheck() {
		t.Fatal("fresh game reports check")
	}
	mustApply(t, e, "e2", "e4")
	mustApply(t, e, "f7", "f6")
	rec := mustApply(t, e, "d1", "h5")
	if !rec.Check {
		t.Fatal("Qh5+ not tagged as check")
	}
	if !e.InCheck() {
		t.Fatal("InCheck false after checking move")
	}
}

func TestResetRestoresStart(t *testing.T) {
	e := NewEngine()
	start := e.FEN()
	mustApply(t, e, "e2", "e4")
	mustApply(t, e, "e7", "e5")

	e.Reset()
	if e.FEN() != start {
		t.Fatalf("FEN after reset = %q, want %q", e.FEN(), start)
	}
	if e.HistoryLen() != 0 {
		t.Fatalf("history = %d after reset", e.HistoryLen())
	}
	if len(e.MovesUCI()) != 0 || len(e.MovesSAN()) != 0 {
		t.Fatal("move lists survive reset")
	}
}

func TestMoveListsCopied(t *testing.T) {
	e := NewEngine()
	mustApply(t, e, "e2", "e4")

	uci := e.MovesUCI()
	uci[0] = "mutated"
	if got := e.MovesUCI()[0]; got != "e2e4" {
		t.Fatalf("internal move list mutated through copy: %q", got)
	}
	if san := e.MovesSAN(); len(san) != 1 || san[0] != "e4" {
		t.Fatalf("MovesSAN = %v", san)
	}
}
