package session

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kwahn412/blitz-session/internal/analysis"
	"github.com/kwahn412/blitz-session/internal/matchlog"
	"github.com/kwahn412/blitz-session/internal/rules"
	"github.com/kwahn412/blitz-session/internal/sound"
)

const (
	defaultTimeControl   = 10 * time.Minute
	defaultCommentChance = 0.30
	suggestionTimeout    = 10 * time.Second
	commentaryTimeout    = 6 * time.Second
	defaultWhiteLabel    = "White"
	defaultBlackLabel    = "Black"
	playerLabelRuneLimit = 24
)

// Analyzer is the analysis collaborator consumed by the controller.
// Evaluate is best-effort: a missing best move is a valid non-error
// result. Comment never fails upward; it returns "" instead.
type Analyzer interface {
	Evaluate(ctx context.Context, fen, turn string) (analysis.Evaluation, error)
	Comment(ctx context.Context, fen, lastMoveSAN string) string
}

type Config struct {
	TimeControl   time.Duration
	WhiteName     string
	BlackName     string
	CommentChance float64
	StartFEN      string
}

// Controller owns the full session state: the rules-engine handle, the
// clock pair, the selection, the recommendation, and the outcome. It is
// constructed at session start and mutated only through its operations.
//
// State is guarded by a mutex that is never held across a call into the
// analysis collaborator; in-flight completions are neutralized by a
// version stamp compared under the lock at apply time.
type Controller struct {
	mu sync.Mutex

	id   string
	eng  *rules.Engine
	clk  *Clock
	cfg  Config
	rng  *rand.Rand
	rand func() float64

	sel        *Selection
	rec        *Recommendation
	outcome    Outcome
	commentary string

	version           uint64
	suggestionPending bool

	startedAt time.Time

	analyzer Analyzer
	sounds   sound.Player
	repo     matchlog.Repository
	logger   *zap.Logger
}

// NewController builds a session from the configured time control and
// display names. analyzer may be nil (suggestions and commentary become
// no-ops); sounds may be nil (silenced).
func NewController(cfg Config, analyzer Analyzer, sounds sound.Player, logger *zap.Logger) (*Controller, error) {
	if cfg.TimeControl <= 0 {
		cfg.TimeControl = defaultTimeControl
	}
	if cfg.CommentChance < 0 || cfg.CommentChance > 1 {
		cfg.CommentChance = defaultCommentChance
	}
	cfg.WhiteName = normalizePlayerLabel(cfg.WhiteName, defaultWhiteLabel)
	cfg.BlackName = normalizePlayerLabel(cfg.BlackName, defaultBlackLabel)
	if sounds == nil {
		sounds = sound.Nop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	eng, err := rules.NewEngineFromFEN(cfg.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("init rules engine: %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := &Controller{
		id:        uuid.NewString(),
		eng:       eng,
		clk:       NewClock(int(cfg.TimeControl.Seconds())),
		cfg:       cfg,
		rng:       rng,
		outcome:   Outcome{State: OutcomeActive},
		startedAt: time.Now(),
		analyzer:  analyzer,
		sounds:    sounds,
		logger:    logger,
	}
	c.rand = func() float64 {
		return c.rng.Float64()
	}
	return c, nil
}

// AttachRepository wires a match-log repository for persisting terminal
// results. Persistence is best effort and never blocks gameplay.
func (c *Controller) AttachRepository(r matchlog.Repository) {
	c.mu.Lock()
	c.repo = r
	c.mu.Unlock()
}

// SelectSquare processes one user square selection. The returned record
// is non-nil only when the selection completed a legal move.
//
// Same square as the selection toggles it off. A different square first
// attempts a move from the selection; an illegal attempt mutates nothing
// and falls through to a fresh selection of the clicked square. With no
// prior selection, the square is selected iff it holds a piece of the
// side to move.
func (c *Controller) SelectSquare(ctx context.Context, sq nchess.Square) *rules.MoveRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome.Terminal() {
		return nil
	}

	if c.sel != nil {
		if c.sel.Square == sq {
			c.sel = nil
			return nil
		}
		from := c.sel.Square
		rec, err := c.eng.Apply(from, sq)
		if err == nil {
			c.afterMove(ctx, rec)
			return &rec
		}
		// Illegal attempt: reprocess sq as a fresh selection below.
	}

	piece := c.eng.PieceAt(sq)
	if piece == nchess.NoPiece || piece.Color() != c.eng.Turn() {
		c.sel = nil
		return nil
	}
	c.sel = &Selection{Square: sq, Targets: c.eng.LegalTargets(sq)}
	return nil
}

// afterMove runs the success side effects of a move. Caller holds the lock.
func (c *Controller) afterMove(ctx context.Context, rec rules.MoveRecord) {
	c.sel = nil
	c.rec = nil
	c.commentary = ""
	c.version++

	c.outcome = c.deriveOutcome()

	// Zero-crossing is also checked after every move so an already
	// expired clock cannot be rescued.
	mover := sideFromColor(c.eng.Turn()).Other()
	if !c.outcome.Terminal() && c.clk.Expired(mover) {
		c.outcome = Outcome{State: OutcomeTimeout, Winner: mover.Other()}
	}

	if rec.Captured {
		c.sounds.Capture()
	} else {
		c.sounds.Move()
	}
	if !c.outcome.Terminal() && rec.Check {
		c.sounds.Check()
	}

	c.logger.Info("move_applied",
		zap.String("session_uuid", c.id),
		zap.String("san", rec.SAN),
		zap.String("uci", rec.UCI),
		zap.Bool("captured", rec.Captured),
		zap.Int("move_count", c.eng.HistoryLen()),
		zap.String("outcome", string(c.outcome.State)),
	)

	if c.outcome.Terminal() {
		c.persistIfFinal(ctx)
		return
	}
	if c.analyzer != nil && c.cfg.CommentChance > 0 && c.rand() < c.cfg.CommentChance {
		c.requestCommentaryLocked(ctx, rec.SAN)
	}
}

// requestCommentaryLocked fires a best-effort flavor comment for the move
// just applied. Cosmetic only: stamped like a recommendation so a stale
// comment can never surface. Caller holds the lock.
func (c *Controller) requestCommentaryLocked(ctx context.Context, san string) {
	fen := c.eng.FEN()
	stamp := c.version
	go func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commentaryTimeout)
		defer cancel()
		text := c.analyzer.Comment(cctx, fen, san)
		if strings.TrimSpace(text) == "" {
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if stamp != c.version {
			return
		}
		c.commentary = text
	}()
}

// Undo reverts the last applied move through the rules engine. It is a
// no-op on an empty history or a terminal outcome. Elapsed clock time is
// not refunded; taking a move back does not give thinking time back.
func (c *Controller) Undo(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome.Terminal() || c.eng.HistoryLen() == 0 {
		return
	}
	if err := c.eng.Undo(); err != nil {
		c.logger.Warn("undo_failed", zap.String("session_uuid", c.id), zap.Error(err))
		return
	}
	c.sel = nil
	c.rec = nil
	c.commentary = ""
	c.version++
	c.outcome = c.deriveOutcome()

	c.logger.Info("move_undone",
		zap.String("session_uuid", c.id),
		zap.Int("move_count", c.eng.HistoryLen()),
	)
}

// Reset reinitializes the rules engine, the clocks, and every piece of
// derived state to the configured initial session.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eng.Reset()
	c.clk.Reset(int(c.cfg.TimeControl.Seconds()))
	c.sel = nil
	c.rec = nil
	c.commentary = ""
	c.version++
	c.outcome = Outcome{State: OutcomeActive}
	c.startedAt = time.Now()

	c.logger.Info("session_reset", zap.String("session_uuid", c.id))
}

// Reconfigure updates the session parameters from changed preferences.
// Names apply to future persistence immediately; the time control lands
// on the next Reset so a running clock is never rewritten. A zero or
// negative TimeControl and a CommentChance outside [0,1] keep the
// current value; an empty name keeps the current name.
func (c *Controller) Reconfigure(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg.TimeControl > 0 {
		c.cfg.TimeControl = cfg.TimeControl
	}
	if cfg.CommentChance >= 0 && cfg.CommentChance <= 1 {
		c.cfg.CommentChance = cfg.CommentChance
	}
	c.cfg.WhiteName = normalizePlayerLabel(cfg.WhiteName, c.cfg.WhiteName)
	c.cfg.BlackName = normalizePlayerLabel(cfg.BlackName, c.cfg.BlackName)
}

// Tick is invoked once per wall-clock second by the external driver. It
// decrements the side to move only, and becomes a no-op once the outcome
// is terminal. A clock reaching zero transitions the outcome to a
// timeout win for the other side on this very tick.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome.Terminal() {
		return
	}
	side := sideFromColor(c.eng.Turn())
	c.clk.Tick(side)
	if c.clk.Expired(side) {
		c.outcome = Outcome{State: OutcomeTimeout, Winner: side.Other()}
		c.logger.Info("clock_expired",
			zap.String("session_uuid", c.id),
			zap.String("flagged", string(side)),
			zap.String("winner", string(side.Other())),
		)
		c.persistIfFinal(context.Background())
	}
}

// RequestSuggestion issues an asynchronous analysis request for the
// current position. No-op when the outcome is terminal, no analyzer is
// wired, or a request is already outstanding. The completion is applied
// only if the session version is unchanged AND the suggested notation is
// still legal at completion time; otherwise the result is dropped and
// the recommendation stays absent. Stamp comparison is the sole
// cancellation mechanism — in-flight calls are never cancelled.
func (c *Controller) RequestSuggestion(ctx context.Context) {
	c.mu.Lock()
	if c.analyzer == nil || c.outcome.Terminal() || c.suggestionPending {
		c.mu.Unlock()
		return
	}
	c.suggestionPending = true
	fen := c.eng.FEN()
	turn := string(sideFromColor(c.eng.Turn()))
	stamp := c.version
	c.mu.Unlock()

	go func() {
		ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), suggestionTimeout)
		defer cancel()
		eval, err := c.analyzer.Evaluate(ectx, fen, turn)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.suggestionPending = false

		if stamp != c.version {
			c.logger.Debug("suggestion_stale",
				zap.String("session_uuid", c.id),
				zap.Uint64("stamp", stamp),
				zap.Uint64("version", c.version),
			)
			return
		}
		if err != nil {
			c.logger.Warn("suggestion_failed", zap.String("session_uuid", c.id), zap.Error(err))
			return
		}
		best := strings.TrimSpace(eval.BestMove)
		if best == "" {
			return
		}
		from, to, ok := c.eng.DecodeNotation(best)
		if !ok {
			c.logger.Warn("suggestion_not_legal",
				zap.String("session_uuid", c.id),
				zap.String("best_move", best),
			)
			return
		}
		c.rec = &Recommendation{From: from, To: to}
		c.logger.Info("suggestion_ready",
			zap.String("session_uuid", c.id),
			zap.String("best_move", best),
			zap.Int("eval_cp", eval.EvalCP),
		)
	}()
}

// deriveOutcome re-reads the rules-engine verdict. Checkmate beats draw
// beats stalemate; anything else keeps the session active. Caller holds
// the lock.
func (c *Controller) deriveOutcome() Outcome {
	oc, method := c.eng.Outcome()
	switch oc {
	case nchess.WhiteWon:
		return Outcome{State: OutcomeCheckmate, Winner: White}
	case nchess.BlackWon:
		return Outcome{State: OutcomeCheckmate, Winner: Black}
	case nchess.Draw:
		if method == nchess.Stalemate {
			return Outcome{State: OutcomeStalemate}
		}
		return Outcome{State: OutcomeDraw}
	default:
		return Outcome{State: OutcomeActive}
	}
}

// persistIfFinal saves the finished match when a repository is attached.
// Caller holds the lock.
func (c *Controller) persistIfFinal(ctx context.Context) {
	if c.repo == nil || !c.outcome.Terminal() {
		return
	}
	now := time.Now()
	record := &matchlog.Record{
		SessionUUID: c.id,
		WhiteName:   c.cfg.WhiteName,
		BlackName:   c.cfg.BlackName,
		Result:      resultString(c.outcome),
		Method:      string(c.outcome.State),
		MovesUCI:    c.eng.MovesUCI(),
		MovesSAN:    c.eng.MovesSAN(),
		PGN:         c.eng.PGN(),
		StartedAt:   c.startedAt,
		EndedAt:     now,
		Duration:    now.Sub(c.startedAt),
	}
	if _, err := c.repo.InsertMatch(ctx, record); err != nil {
		c.logger.Error("match_persist_error",
			zap.String("session_uuid", c.id),
			zap.String("result", record.Result),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("match_persisted",
		zap.String("session_uuid", c.id),
		zap.String("result", record.Result),
		zap.String("method", record.Method),
	)
}

func resultString(o Outcome) string {
	if o.Winner != "" {
		return string(o.Winner)
	}
	return "draw"
}

// Observers. Each re-reads live state under the lock; nothing is cached
// across operations.

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Turn() Side {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sideFromColor(c.eng.Turn())
}

func (c *Controller) FEN() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.FEN()
}

func (c *Controller) Board() *nchess.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.Board()
}

func (c *Controller) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

func (c *Controller) Remaining(side Side) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clk.Remaining(side)
}

func (c *Controller) HistoryCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.HistoryLen()
}

func (c *Controller) LastMove() (rules.MoveRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.LastMove()
}

func (c *Controller) Selection() *Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sel == nil {
		return nil
	}
	cp := Selection{Square: c.sel.Square, Targets: append([]nchess.Square(nil), c.sel.Targets...)}
	return &cp
}

func (c *Controller) Recommendation() *Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rec == nil {
		return nil
	}
	cp := *c.rec
	return &cp
}

func (c *Controller) Commentary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commentary
}

func (c *Controller) InCheck() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.InCheck()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		SessionUUID:    c.id,
		FEN:            c.eng.FEN(),
		Turn:           sideFromColor(c.eng.Turn()),
		MoveCount:      c.eng.HistoryLen(),
		Outcome:        c.outcome,
		WhiteRemaining: c.clk.Remaining(White),
		BlackRemaining: c.clk.Remaining(Black),
		Commentary:     c.commentary,
	}
	if rec, ok := c.eng.LastMove(); ok {
		cp := rec
		snap.LastMove = &cp
	}
	if c.sel != nil {
		cp := Selection{Square: c.sel.Square, Targets: append([]nchess.Square(nil), c.sel.Targets...)}
		snap.Selection = &cp
	}
	if c.rec != nil {
		cp := *c.rec
		snap.Recommendation = &cp
	}
	return snap
}

func normalizePlayerLabel(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	runes := []rune(name)
	if len(runes) > playerLabelRuneLimit {
		return string(runes[:playerLabelRuneLimit])
	}
	return name
}
