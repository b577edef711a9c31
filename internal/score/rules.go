package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
)

// Comparisons on the windows tolerate float noise below a nanosecond, so an
// offset of exactly 23ms is still marvelous after the seconds round trip.
const tolerance = 1e-6

// Tier is the widest timing error that still earns a judgement, and the
// fraction of the per-event score it earns.
type Tier struct {
	Judgement game.Judgement
	Window    time.Duration
	Fraction  float64
}

type Rules struct {
	// Window is how far either side of an event it can be struck.
	Window time.Duration
	// Tiers are ordered best to worst, the last one spanning the window.
	Tiers []Tier
	// TotalScore is split evenly across the judgeable events of a chart.
	TotalScore float64
	// MissLateness is the timing error recorded for events nobody touched.
	MissLateness time.Duration
	// Cleanup is how long past the window an event stays active.
	Cleanup time.Duration
}

func DefaultRules() Rules {
	return Rules{
		Window: 135 * time.Millisecond,
		Tiers: []Tier{
			{Judgement: game.Marvelous, Window: 23 * time.Millisecond, Fraction: 1},
			{Judgement: game.Perfect, Window: 45 * time.Millisecond, Fraction: 0.75},
			{Judgement: game.Great, Window: 90 * time.Millisecond, Fraction: 0.5},
			{Judgement: game.Good, Window: 135 * time.Millisecond, Fraction: 0.25},
		},
		TotalScore:   1000000,
		MissLateness: 10 * time.Second,
		Cleanup:      time.Second,
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Classify turns a timing error in milliseconds into a judgement. Anything
// outside every tier is a miss.
func (r Rules) Classify(ms float64) game.Judgement {
	abs := math.Abs(ms)
	for _, tier := range r.Tiers {
		if abs <= milliseconds(tier.Window)+tolerance {
			return tier.Judgement
		}
	}
	return game.Miss
}

// Award returns the score a judgement earns.
func (r Rules) Award(j game.Judgement, maxPerEvent float64) float64 {
	for i, tier := range r.Tiers {
		if tier.Judgement != j {
			continue
		}
		if i == 0 {
			return maxPerEvent * tier.Fraction
		}
		return math.Round(maxPerEvent * tier.Fraction)
	}
	return 0
}

// within reports whether a timing error in milliseconds lies inside
// [-early, late].
func within(ms float64, early, late time.Duration) bool {
	return ms >= -milliseconds(early)-tolerance && ms <= milliseconds(late)+tolerance
}
