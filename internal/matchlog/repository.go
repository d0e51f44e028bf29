package matchlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type repository struct {
	db *sql.DB
}

// NewRepository opens a Postgres-backed match log.
func NewRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url required for match log")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &repository{db: db}, nil
}

func (r *repository) InsertMatch(ctx context.Context, rec *Record) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("nil match record")
	}

	movesUCI, err := json.Marshal(rec.MovesUCI)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(rec.MovesSAN)
	if err != nil {
		return 0, fmt.Errorf("marshal moves_san: %w", err)
	}

	const query = `
		INSERT INTO matches (
			session_uuid,
			white_name,
			black_name,
			result,
			method,
			moves_uci,
			moves_san,
			pgn,
			started_at,
			ended_at,
			duration_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9, $10, $11)
		ON CONFLICT (session_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		rec.SessionUUID,
		rec.WhiteName,
		rec.BlackName,
		rec.Result,
		rec.Method,
		movesUCI,
		movesSAN,
		rec.PGN,
		rec.StartedAt,
		rec.EndedAt,
		rec.Duration.Milliseconds(),
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrDuplicateMatch
	}
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) RecentMatches(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, session_uuid, white_name, black_name, result, method,
		       moves_uci, moves_san, pgn, started_at, ended_at, duration_ms
		FROM matches
		ORDER BY ended_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent matches: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var rec Record
		var movesUCI, movesSAN []byte
		var durationMS int64
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionUUID,
			&rec.WhiteName,
			&rec.BlackName,
			&rec.Result,
			&rec.Method,
			&movesUCI,
			&movesSAN,
			&rec.PGN,
			&rec.StartedAt,
			&rec.EndedAt,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		if err := json.Unmarshal(movesUCI, &rec.MovesUCI); err != nil {
			rec.MovesUCI = nil
		}
		if err := json.Unmarshal(movesSAN, &rec.MovesSAN); err != nil {
			rec.MovesSAN = nil
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, &rec)
	}
	return out, rows.Err()
}
