package score

import (
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/input"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("score")
}

// Scorer matches held keys against the active events of a play.
type Scorer interface {
	// TryHit judges hits and hold starts whose keys were freshly pressed
	// within the timing window.
	TryHit(p *Play, keys *input.State, now time.Duration, chartTime float64) int
	// TryHold judges hold ticks whose keys are still held.
	TryHold(p *Play, keys *input.State, chartTime float64) int
	// Sweep misses events that passed their window and drops stale ones.
	Sweep(p *Play, chartTime float64) int
}

// Play is the scoring state of one session: a private copy of the events
// being played and the tally they feed.
type Play struct {
	Tempo  *game.TempoMap
	Active *ActiveSet
	Tally  *Tally
}

// NewPlay copies a difficulty's events and sets up an empty tally.
func NewPlay(d *game.Difficulty, tempo *game.TempoMap, rules Rules, offset time.Duration) *Play {
	active := NewActiveSet(d, tempo)
	return &Play{
		Tempo:  tempo,
		Active: active,
		Tally:  NewTally(rules, active.Judgeable(), offset),
	}
}

// Done reports whether every event has left the active set.
func (p *Play) Done() bool {
	return p.Active.Len() == 0
}
