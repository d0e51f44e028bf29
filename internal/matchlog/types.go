package matchlog

import (
	"context"
	"errors"
	"time"
)

var ErrDuplicateMatch = errors.New("match already recorded")

// Record is a finished match. Result is "white", "black", or "draw";
// Method names the terminal transition (checkmate, stalemate, draw,
// timeout).
type Record struct {
	ID          int64
	SessionUUID string
	WhiteName   string
	BlackName   string
	Result      string
	Method      string
	MovesUCI    []string
	MovesSAN    []string
	PGN         string
	StartedAt   time.Time
	EndedAt     time.Time
	Duration    time.Duration
}

type Repository interface {
	// InsertMatch is idempotent per session UUID.
	InsertMatch(ctx context.Context, rec *Record) (int64, error)
	RecentMatches(ctx context.Context, limit int) ([]*Record, error)
}
