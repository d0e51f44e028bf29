package session

import "testing"

func TestClockTickDecrementsOnlyGivenSide(t *testing.T) {
	c := NewClock(60)
	c.Tick(White)
	if got := c.Remaining(White); got != 59 {
		t.Fatalf("white remaining = %d, want 59", got)
	}
	if got := c.Remaining(Black); got != 60 {
		t.Fatalf("black remaining = %d, want 60", got)
	}
}

func TestClockFloorsAtZero(t *testing.T) {
	c := NewClock(2)
	for i := 0; i < 5; i++ {
		c.Tick(Black)
	}
	if got := c.Remaining(Black); got != 0 {
		t.Fatalf("black remaining = %d, want 0", got)
	}
	if !c.Expired(Black) {
		t.Fatal("black not expired at zero")
	}
	if c.Expired(White) {
		t.Fatal("white expired without ticking")
	}
}

func TestClockReset(t *testing.T) {
	c := NewClock(30)
	c.Tick(White)
	c.Tick(Black)
	c.Reset(45)
	if c.Remaining(White) != 45 || c.Remaining(Black) != 45 {
		t.Fatalf("remaining after reset = %d/%d, want 45/45",
			c.Remaining(White), c.Remaining(Black))
	}
}

func TestClockNegativeSecondsClamped(t *testing.T) {
	c := NewClock(-5)
	if c.Remaining(White) != 0 || c.Remaining(Black) != 0 {
		t.Fatal("negative time control not clamped to zero")
	}
}
