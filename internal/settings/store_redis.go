package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keySettings = "session:settings"

	fieldTimeControl = "time_control_minutes"
	fieldTheme       = "board_theme"
	fieldSound       = "sound_enabled"
	fieldWhiteName   = "white_name"
	fieldBlackName   = "black_name"
)

type redisStore struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to the given redis:// URL and verifies it with
// a ping.
func NewRedisStore(redisURL string, logger *zap.Logger) (Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for settings store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisStore{rdb: rdb, logger: logger}, nil
}

func (s *redisStore) Load(ctx context.Context) Settings {
	out := Defaults()
	fields, err := s.rdb.HGetAll(ctx, keySettings).Result()
	if err != nil {
		s.logger.Warn("settings load failed, using defaults", zap.Error(err))
		return out
	}
	if v, ok := fields[fieldTimeControl]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			out.TimeControlMinutes = n
		}
	}
	if v, ok := fields[fieldTheme]; ok && strings.TrimSpace(v) != "" {
		out.BoardTheme = strings.TrimSpace(v)
	}
	if v, ok := fields[fieldSound]; ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			out.SoundEnabled = b
		}
	}
	if v, ok := fields[fieldWhiteName]; ok && strings.TrimSpace(v) != "" {
		out.WhiteName = strings.TrimSpace(v)
	}
	if v, ok := fields[fieldBlackName]; ok && strings.TrimSpace(v) != "" {
		out.BlackName = strings.TrimSpace(v)
	}
	return out
}

func (s *redisStore) Save(ctx context.Context, set Settings) error {
	return s.rdb.HSet(ctx, keySettings,
		fieldTimeControl, strconv.Itoa(set.TimeControlMinutes),
		fieldTheme, set.BoardTheme,
		fieldSound, strconv.FormatBool(set.SoundEnabled),
		fieldWhiteName, set.WhiteName,
		fieldBlackName, set.BlackName,
	).Err()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
