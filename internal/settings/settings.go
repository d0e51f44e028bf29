// Package settings persists the small set of user preferences the
// session reads at start: time control, board theme, sound flag, and the
// two display names. Reads fall back silently to compiled-in defaults on
// any missing or corrupt entry; writes go through on every change.
package settings

import "context"

type Settings struct {
	TimeControlMinutes int
	BoardTheme         string
	SoundEnabled       bool
	WhiteName          string
	BlackName          string
}

func Defaults() Settings {
	return Settings{
		TimeControlMinutes: 10,
		BoardTheme:         "classic",
		SoundEnabled:       true,
		WhiteName:          "White",
		BlackName:          "Black",
	}
}

type Store interface {
	// Load never fails: transport or parse problems degrade per field
	// to the default value.
	Load(ctx context.Context) Settings
	// Save writes the full record through to the backing store.
	Save(ctx context.Context, s Settings) error
}
