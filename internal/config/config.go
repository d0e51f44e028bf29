package config

import (
	"os"
	"strconv"
	"strings"
)

// AppConfig collects process configuration. Nothing here is required:
// every subsystem has an in-process fallback so the session can always
// run.
type AppConfig struct {
	AnalysisBaseURL string
	RedisURL        string
	DatabaseURL     string

	TimeControlMinutes int
	CommentChance      float64
	MessageOverrideDir string
	BoardImagePath     string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		TimeControlMinutes: 10,
		CommentChance:      0.30,
		BoardImagePath:     "board.png",
	}

	cfg.AnalysisBaseURL = strings.TrimSpace(os.Getenv("ANALYSIS_BASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessageOverrideDir = strings.TrimSpace(os.Getenv("MSG_TEMPLATE_DIR"))

	if v := strings.TrimSpace(os.Getenv("TIME_CONTROL_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeControlMinutes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("COMMENT_CHANCE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.CommentChance = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_IMAGE_PATH")); v != "" {
		cfg.BoardImagePath = v
	}

	return cfg, nil
}
