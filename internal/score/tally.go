package score

import (
	"time"

	"git.lost.host/meutraa/khel/internal/game"
	"go.uber.org/zap"
)

// Tally is the running score of one play.
type Tally struct {
	Rules Rules
	// Offset is the player's latency offset, added to logged timing errors.
	Offset time.Duration

	Score float64
	// Combo is the length of the current streak, positive for hits and
	// negative for misses.
	Combo    int
	MaxCombo int
	// Lowest is the worst judgement in the current combo.
	Lowest           game.Judgement
	Counts           [game.None]int
	MaxScorePerEvent float64
	// Last is the most recent judgement, for the UI.
	Last game.Judgement
}

// NewTally splits the total score across judgeable events.
func NewTally(rules Rules, judgeable int, offset time.Duration) *Tally {
	t := &Tally{Rules: rules, Offset: offset, Lowest: game.None, Last: game.None}
	if judgeable > 0 {
		t.MaxScorePerEvent = rules.TotalScore / float64(judgeable)
	}
	return t
}

// Count returns how many events were given a judgement.
func (t *Tally) Count(j game.Judgement) int {
	if j >= game.None {
		return 0
	}
	return t.Counts[j]
}

// Judge records the verdict on r for a timing error of ms milliseconds.
func (t *Tally) Judge(ms float64, r *Record) game.Judgement {
	j := t.Rules.Classify(ms)
	r.Judgement = j
	r.Delta = ms

	shown, key := ms+milliseconds(t.Offset), "late_ms"
	if shown < 0 {
		shown, key = -shown, "early_ms"
	}
	logger.Debug("judge", zap.Int("id", r.ID), zap.Stringer("judgement", j), zap.Float64(key, shown))

	t.Score += t.Rules.Award(j, t.MaxScorePerEvent)
	t.Counts[j]++
	t.Last = j
	t.combo(j)
	return j
}

func (t *Tally) combo(j game.Judgement) {
	if j == game.Miss {
		if t.Combo > 0 {
			t.Combo = -1
			t.Lowest = j
		} else {
			t.Combo--
		}
		return
	}

	if t.Combo > 0 {
		t.Combo++
	} else {
		t.Combo = 1
	}
	if t.Combo > t.MaxCombo {
		t.MaxCombo = t.Combo
	}
	// A fresh combo's floor is its own first hit.
	if t.Lowest == game.Miss || t.Lowest == game.None || j.Worse(t.Lowest) {
		t.Lowest = j
	}
}

// DisplayScore is the score as shown, truncated to tens.
func (t *Tally) DisplayScore() int64 {
	s := int64(t.Score)
	return s - s%10
}

// DisplayCombo is the streak length without its sign, 0 before any judgement.
func (t *Tally) DisplayCombo() int {
	if t.Combo < 0 {
		return -t.Combo
	}
	return t.Combo
}
