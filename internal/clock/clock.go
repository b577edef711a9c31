package clock

import (
	"time"

	"git.lost.host/meutraa/khel/internal/game"
)

// DefaultLeadIn is how many beats playback starts before beat zero, so that
// the first objects can scroll into view.
const DefaultLeadIn = 8.0

// Counter is a monotonic hardware counter.
type Counter interface {
	Now() time.Duration
}

// Monotonic counts from the moment it was created using the runtime's
// monotonic clock.
type Monotonic struct {
	origin time.Time
}

func NewMonotonic() *Monotonic {
	return &Monotonic{origin: time.Now()}
}

func (m *Monotonic) Now() time.Duration {
	return time.Since(m.origin)
}

// ChartTime returns the seconds since beat zero of a chart that started
// playing at start, shifted by the lead-in and the player's latency offset.
func ChartTime(now, start time.Duration, tempo *game.TempoMap, leadIn float64, offset time.Duration) float64 {
	oneBeat := 60.0 / tempo.At(0).Value
	return (now - start).Seconds() - oneBeat*leadIn - offset.Seconds()
}

// Clock is the playback clock of a session. Time spent paused does not
// count towards chart time.
type Clock struct {
	Counter Counter
	LeadIn  float64
	Offset  time.Duration

	start    time.Duration
	pausedAt time.Duration
	paused   bool
}

func New(counter Counter, offset time.Duration) *Clock {
	return &Clock{Counter: counter, LeadIn: DefaultLeadIn, Offset: offset}
}

// Now reads the counter.
func (c *Clock) Now() time.Duration {
	return c.Counter.Now()
}

// Start records now as the instant playback started.
func (c *Clock) Start() {
	c.start = c.Counter.Now()
	c.paused = false
}

// Started returns the recorded start instant.
func (c *Clock) Started() time.Duration {
	return c.start
}

func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.pausedAt = c.Counter.Now()
	c.paused = true
}

// Resume moves the start instant forward by the time spent paused and
// returns that span, so callers can shift other instants taken before the
// pause.
func (c *Clock) Resume() time.Duration {
	if !c.paused {
		return 0
	}
	span := c.Counter.Now() - c.pausedAt
	c.start += span
	c.paused = false
	return span
}

func (c *Clock) Paused() bool {
	return c.paused
}

func (c *Clock) now() time.Duration {
	if c.paused {
		return c.pausedAt
	}
	return c.Counter.Now()
}

// ChartTime is only meaningful while a chart is playing.
func (c *Clock) ChartTime(tempo *game.TempoMap) float64 {
	return ChartTime(c.now(), c.start, tempo, c.LeadIn, c.Offset)
}

// MusicTime is chart time without the latency offset, the position the
// music should be at.
func (c *Clock) MusicTime(tempo *game.TempoMap) float64 {
	return ChartTime(c.now(), c.start, tempo, c.LeadIn, 0)
}
