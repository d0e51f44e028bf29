package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kwahn412/blitz-session/internal/analysis"
	"github.com/kwahn412/blitz-session/internal/boardimage"
	appcfg "github.com/kwahn412/blitz-session/internal/config"
	"github.com/kwahn412/blitz-session/internal/matchlog"
	"github.com/kwahn412/blitz-session/internal/msgcat"
	"github.com/kwahn412/blitz-session/internal/obslog"
	"github.com/kwahn412/blitz-session/internal/rules"
	"github.com/kwahn412/blitz-session/internal/session"
	"github.com/kwahn412/blitz-session/internal/settings"
	"github.com/kwahn412/blitz-session/internal/sound"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	catalog, err := msgcat.New(cfg.MessageOverrideDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	ctx := context.Background()

	var store settings.Store
	if cfg.RedisURL != "" {
		store, err = settings.NewRedisStore(cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("redis settings store unavailable, using memory", zap.Error(err))
			store = settings.NewMemoryStore()
		}
	} else {
		store = settings.NewMemoryStore()
	}
	prefs := store.Load(ctx)
	if cfg.TimeControlMinutes > 0 && prefs.TimeControlMinutes <= 0 {
		prefs.TimeControlMinutes = cfg.TimeControlMinutes
	}

	var analyzer session.Analyzer
	if cfg.AnalysisBaseURL != "" {
		analyzer = analysis.NewClient(cfg.AnalysisBaseURL, analysis.WithLogger(logger))
	}

	sounds := sound.Nop()
	if prefs.SoundEnabled {
		sounds = sound.NewLogPlayer(logger)
	}

	var repo matchlog.Repository
	if cfg.DatabaseURL != "" {
		repo, err = matchlog.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("match log database unavailable, using memory", zap.Error(err))
			repo = matchlog.NewMemoryRepository()
		}
	} else {
		repo = matchlog.NewMemoryRepository()
	}

	ctrl, err := session.NewController(session.Config{
		TimeControl:   time.Duration(prefs.TimeControlMinutes) * time.Minute,
		WhiteName:     prefs.WhiteName,
		BlackName:     prefs.BlackName,
		CommentChance: cfg.CommentChance,
	}, analyzer, sounds, logger)
	if err != nil {
		log.Fatalf("session init error: %v", err)
	}
	ctrl.AttachRepository(repo)

	renderer := boardimage.NewSVGRenderer()

	fmt.Println(catalog.Render("game.start", map[string]any{
		"White":   prefs.WhiteName,
		"Black":   prefs.BlackName,
		"Minutes": prefs.TimeControlMinutes,
	}))
	fmt.Println(catalog.Render("cli.help", nil))

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// The 1-second driver. The controller freezes itself on terminal
	// outcomes; the loop only reports the transition.
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		last := ctrl.Outcome()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctrl.Tick()
				cur := ctrl.Outcome()
				if cur.Terminal() && cur != last {
					fmt.Println(outcomeText(catalog, prefs, cur))
				}
				last = cur
			}
		}
	}()

	app := &cli{
		ctrl:     ctrl,
		catalog:  catalog,
		store:    store,
		prefs:    prefs,
		renderer: renderer,
		imgPath:  cfg.BoardImagePath,
		logger:   logger,
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-sigCh:
			close(done)
			fmt.Println(catalog.Render("cli.bye", nil))
			return
		case line, ok := <-lines:
			if !ok {
				close(done)
				return
			}
			if quit := app.handle(ctx, line); quit {
				close(done)
				fmt.Println(catalog.Render("cli.bye", nil))
				return
			}
		}
	}
}

type cli struct {
	ctrl     *session.Controller
	catalog  *msgcat.Catalog
	store    settings.Store
	prefs    settings.Settings
	renderer boardimage.Renderer
	imgPath  string
	flipped  bool
	logger   *zap.Logger
}

// handle processes one input line; returns true to quit. Only the
// command token is case-insensitive, setting values keep their case.
func (a *cli) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "quit", "exit":
		return true
	case "undo":
		before := a.ctrl.HistoryCount()
		a.ctrl.Undo(ctx)
		if a.ctrl.HistoryCount() == before {
			fmt.Println(a.catalog.Render("game.undo_empty", nil))
		} else {
			fmt.Println(a.catalog.Render("game.undo", map[string]any{"Count": a.ctrl.HistoryCount()}))
		}
	case "reset":
		a.ctrl.Reset(ctx)
		fmt.Println(a.catalog.Render("game.reset", nil))
	case "hint":
		a.ctrl.RequestSuggestion(ctx)
		fmt.Println(a.catalog.Render("hint.pending", nil))
		go a.reportSuggestion()
	case "flip":
		a.flipped = !a.flipped
		bottom := session.White
		if a.flipped {
			bottom = session.Black
		}
		fmt.Println(a.catalog.Render("board.flip", map[string]any{"Bottom": string(bottom)}))
	case "board":
		a.writeBoard(ctx)
	case "status":
		a.printStatus()
	case "set":
		a.applySetting(ctx, fields[1:])
	default:
		a.selectSquare(ctx, cmd)
	}
	return false
}

func (a *cli) selectSquare(ctx context.Context, token string) {
	sq, ok := rules.ParseSquare(token)
	if !ok {
		fmt.Println(a.catalog.Render("cli.unknown", map[string]any{"Input": token}))
		return
	}

	hadSelection := a.ctrl.Selection() != nil
	rec := a.ctrl.SelectSquare(ctx, sq)
	if rec != nil {
		key := "game.move"
		if rec.Captured {
			key = "game.capture"
		}
		fmt.Println(a.catalog.Render(key, map[string]any{"SAN": rec.SAN}))
		if cols, rows, ok := session.AnimationOffset(rec.From, rec.To, a.orientation()); ok {
			a.logger.Debug("piece_animation",
				zap.String("uci", rec.UCI),
				zap.Int("cols", cols),
				zap.Int("rows", rows),
			)
		}
		outcome := a.ctrl.Outcome()
		if outcome.Terminal() {
			fmt.Println(outcomeText(a.catalog, a.prefs, outcome))
		} else if rec.Check {
			fmt.Println(a.catalog.Render("game.check", nil))
		}
		if comment := a.ctrl.Commentary(); comment != "" {
			fmt.Println(comment)
		}
		return
	}

	if sel := a.ctrl.Selection(); sel != nil {
		fmt.Println(a.catalog.Render("game.select", map[string]any{
			"Square":  sel.Square.String(),
			"Targets": len(sel.Targets),
		}))
	} else if hadSelection {
		fmt.Println(a.catalog.Render("game.deselect", nil))
	} else if a.ctrl.Outcome().Terminal() {
		fmt.Println(a.catalog.Render("game.finished", nil))
	}
}

func (a *cli) reportSuggestion() {
	// The completion is version-gated inside the controller; this just
	// polls for the user-visible answer.
	deadline := time.Now().Add(12 * time.Second)
	for time.Now().Before(deadline) {
		if rec := a.ctrl.Recommendation(); rec != nil {
			fmt.Println(a.catalog.Render("hint.ready", map[string]any{
				"From": rec.From.String(),
				"To":   rec.To.String(),
			}))
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println(a.catalog.Render("hint.none", nil))
}

func (a *cli) writeBoard(ctx context.Context) {
	var hl *boardimage.Highlight
	if rec, ok := a.ctrl.LastMove(); ok {
		hl = &boardimage.Highlight{From: rec.From, To: rec.To}
	}
	data, err := a.renderer.RenderPNG(ctx, a.ctrl.Board(), boardimage.RenderOptions{
		Flipped:   a.flipped,
		Theme:     a.prefs.BoardTheme,
		Highlight: hl,
	})
	if err != nil {
		a.logger.Warn("board render failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(a.imgPath, data, 0o644); err != nil {
		a.logger.Warn("board image write failed", zap.Error(err))
		return
	}
	fmt.Println(a.catalog.Render("board.written", map[string]any{"Path": a.imgPath}))
}

func (a *cli) printStatus() {
	snap := a.ctrl.Snapshot()
	fmt.Println(a.catalog.Render("clock.status", map[string]any{
		"White": snap.WhiteRemaining,
		"Black": snap.BlackRemaining,
		"Turn":  string(snap.Turn),
	}))
	fmt.Println(snap.FEN)
	if snap.Outcome.Terminal() {
		fmt.Println(outcomeText(a.catalog, a.prefs, snap.Outcome))
	}
}

// applySetting mutates one preference, writes the whole record through,
// and hands the refreshed parameters to the controller: names apply from
// now on, the time control lands on the next reset.
func (a *cli) applySetting(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println(a.catalog.Render("cli.help", nil))
		return
	}
	key := strings.ToLower(args[0])
	value := strings.Join(args[1:], " ")
	switch key {
	case "theme":
		a.prefs.BoardTheme = strings.ToLower(value)
	case "sound":
		v := strings.ToLower(value)
		a.prefs.SoundEnabled = v == "on" || v == "true"
	case "minutes":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			a.prefs.TimeControlMinutes = n
		}
	case "white":
		a.prefs.WhiteName = value
	case "black":
		a.prefs.BlackName = value
	default:
		fmt.Println(a.catalog.Render("cli.unknown", map[string]any{"Input": key}))
		return
	}
	if err := a.store.Save(ctx, a.prefs); err != nil {
		a.logger.Warn("settings save failed", zap.Error(err))
	}
	a.ctrl.Reconfigure(session.Config{
		TimeControl:   time.Duration(a.prefs.TimeControlMinutes) * time.Minute,
		WhiteName:     a.prefs.WhiteName,
		BlackName:     a.prefs.BlackName,
		CommentChance: -1, // out of range on purpose: keep the current chance
	})
}

func (a *cli) orientation() session.Side {
	if a.flipped {
		return session.Black
	}
	return session.White
}

func outcomeText(catalog *msgcat.Catalog, prefs settings.Settings, o session.Outcome) string {
	name := func(s session.Side) string {
		if s == session.White {
			return prefs.WhiteName
		}
		return prefs.BlackName
	}
	switch o.State {
	case session.OutcomeCheckmate:
		return catalog.Render("game.checkmate", map[string]any{"Winner": name(o.Winner)})
	case session.OutcomeStalemate:
		return catalog.Render("game.stalemate", nil)
	case session.OutcomeDraw:
		return catalog.Render("game.draw", nil)
	case session.OutcomeTimeout:
		return catalog.Render("game.timeout", map[string]any{
			"Winner": name(o.Winner),
			"Loser":  name(o.Winner.Other()),
		})
	default:
		return ""
	}
}
