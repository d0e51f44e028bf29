// Package sound is the boundary to the audio collaborator. The
// controller only decides WHICH cue fires; producing the sound is the
// player's business.
package sound

import "go.uber.org/zap"

type Player interface {
	Move()
	Capture()
	Check()
}

type nopPlayer struct{}

func (nopPlayer) Move()    {}
func (nopPlayer) Capture() {}
func (nopPlayer) Check()   {}

// Nop returns a player that swallows every cue. Used when sound is
// disabled in settings.
func Nop() Player { return nopPlayer{} }

type logPlayer struct {
	logger *zap.Logger
}

// NewLogPlayer reports cues through the logger; the terminal front-end
// has no audio device, so the cue itself is the feedback.
func NewLogPlayer(logger *zap.Logger) Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logPlayer{logger: logger}
}

func (p *logPlayer) Move()    { p.logger.Info("sound_cue", zap.String("cue", "move")) }
func (p *logPlayer) Capture() { p.logger.Info("sound_cue", zap.String("cue", "capture")) }
func (p *logPlayer) Check()   { p.logger.Info("sound_cue", zap.String("cue", "check")) }
