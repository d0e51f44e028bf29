package session

// Clock is the pair of per-side countdown timers, in whole seconds.
// It is deliberately dumb: the controller decides when ticks happen and
// owns the terminal-freeze rule, the clock only counts.
type Clock struct {
	white int
	black int
}

func NewClock(seconds int) *Clock {
	if seconds < 0 {
		seconds = 0
	}
	return &Clock{white: seconds, black: seconds}
}

// Tick decrements the given side by one second, floored at zero. The
// idle side is never touched.
func (c *Clock) Tick(side Side) {
	switch side {
	case White:
		if c.white > 0 {
			c.white--
		}
	case Black:
		if c.black > 0 {
			c.black--
		}
	}
}

func (c *Clock) Remaining(side Side) int {
	if side == White {
		return c.white
	}
	return c.black
}

func (c *Clock) Expired(side Side) bool {
	return c.Remaining(side) == 0
}

// Reset reinitializes both sides to the configured time control.
func (c *Clock) Reset(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	c.white = seconds
	c.black = seconds
}
