package score

import (
	"fmt"
	"math"
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"git.lost.host/meutraa/khel/internal/input"
	"go.uber.org/zap"
)

type DefaultScorer struct{}

func allHeld(keys game.Keys, state *input.State, fresh func(p input.KeyPress) bool) bool {
	for _, k := range keys {
		p, ok := state.Get(k)
		if !ok {
			return false
		}
		if fresh != nil && !fresh(p) {
			return false
		}
	}
	return true
}

func (s *DefaultScorer) TryHit(p *Play, keys *input.State, now time.Duration, chartTime float64) int {
	rules := p.Tally.Rules
	var matches []*Record

	p.Active.Each(func(r *Record) bool {
		switch r.Kind {
		case game.KindHit, game.KindHoldStart:
		case game.KindHoldTick, game.KindTimingMarker:
			return true
		default:
			panic(fmt.Sprintf("unknown event kind %v", r.Kind))
		}
		late := r.Late(chartTime)
		// Everything after this is too early as well.
		if late < -milliseconds(rules.Window)-tolerance {
			return false
		}
		if r.Judgement != game.None || !within(late, rules.Window, rules.Window) {
			return true
		}
		// A key held since long before the window opened does not count.
		if !allHeld(r.Keys, keys, func(kp input.KeyPress) bool {
			return now-kp.At <= rules.Window
		}) {
			return true
		}
		// One press strikes one event per lane combo.
		for _, m := range matches {
			if m.Keys == r.Keys {
				return true
			}
		}
		matches = append(matches, r)
		return true
	})

	for _, r := range matches {
		p.Tally.Judge(r.Late(chartTime), r)
		p.Active.Remove(r.ID)
	}
	return len(matches)
}

func (s *DefaultScorer) TryHold(p *Play, keys *input.State, chartTime float64) int {
	rules := p.Tally.Rules
	var matches []*Record

	p.Active.Each(func(r *Record) bool {
		switch r.Kind {
		case game.KindHoldTick:
		case game.KindHit, game.KindHoldStart, game.KindTimingMarker:
			return true
		default:
			panic(fmt.Sprintf("unknown event kind %v", r.Kind))
		}
		late := r.Late(chartTime)
		if late < 0 {
			return false
		}
		if r.Judgement != game.None || !within(late, 0, rules.Window) {
			return true
		}
		if allHeld(r.Keys, keys, nil) {
			matches = append(matches, r)
		}
		return true
	})

	// Ticks only check that the keys are still down, never timing.
	for _, r := range matches {
		p.Tally.Judge(0, r)
		p.Active.Remove(r.ID)
	}
	return len(matches)
}

func (s *DefaultScorer) Sweep(p *Play, chartTime float64) int {
	rules := p.Tally.Rules
	window := milliseconds(rules.Window)
	cleanup := window + milliseconds(rules.Cleanup)
	removed := 0

	p.Active.Each(func(r *Record) bool {
		late := r.Late(chartTime)
		if late <= window+tolerance {
			return false
		}
		if r.Kind.Judged() && r.Judgement == game.None {
			p.Tally.Judge(milliseconds(rules.MissLateness), r)
			logger.Debug("missed", zap.Int("id", r.ID), zap.Stringer("kind", r.Kind), zap.Float64("late_ms", late))
		}
		if late > cleanup {
			p.Active.Remove(r.ID)
			removed++
		}
		return true
	})
	return removed
}

// Accuracy is the mean absolute timing error of the hits judged so far, in
// milliseconds. Misses are left out.
func Accuracy(a *ActiveSet) float64 {
	sum, n := 0.0, 0
	for _, r := range a.Records() {
		if r.Kind != game.KindHit && r.Kind != game.KindHoldStart {
			continue
		}
		if r.Judgement == game.None || r.Judgement == game.Miss {
			continue
		}
		sum += math.Abs(r.Delta)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
