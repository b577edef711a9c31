package score

import (
	"fmt"

	"git.lost.host/meutraa/khel/internal/game"
)

// Record is a session's private copy of a chart event, with its own
// judgement. Its ID is its index in the arena it lives in.
type Record struct {
	ID        int
	Kind      game.Kind
	Beat      game.Beat
	Seconds   float64
	Keys      game.Keys
	Judgement game.Judgement
	// Delta is the timing error in milliseconds once judged.
	Delta float64

	removed bool
}

// Late returns how late chartTime is for this record, in milliseconds.
func (r *Record) Late(chartTime float64) float64 {
	return (chartTime - r.Seconds) * 1000
}

// ActiveSet holds the events of one play that have not been judged and
// removed yet. Records are never moved: removal marks a record and Compact
// drops marked records from the ordered live list once per tick.
type ActiveSet struct {
	records []Record
	live    []int
	// dirty is set when a record was removed since the last Compact.
	dirty bool

	// OnRemove is called once for every record as it leaves the set.
	OnRemove func(r *Record)
}

// NewActiveSet copies the events of a difficulty into a fresh arena. The
// template is left untouched, so a difficulty can back any number of plays.
func NewActiveSet(d *game.Difficulty, tempo *game.TempoMap) *ActiveSet {
	a := &ActiveSet{
		records: make([]Record, len(d.Events)),
		live:    make([]int, len(d.Events)),
	}
	for i, e := range d.Events {
		switch e.(type) {
		case game.Hit, game.HoldStart, game.HoldTick, game.TimingMarker:
		default:
			panic(fmt.Sprintf("unknown event type %T", e))
		}
		a.records[i] = Record{
			ID:        i,
			Kind:      e.Kind(),
			Beat:      e.Beat(),
			Seconds:   tempo.Seconds(e.Beat()),
			Keys:      e.Keys(),
			Judgement: game.None,
		}
		a.live[i] = i
	}
	return a
}

// Record returns the record with the given ID, removed or not.
func (a *ActiveSet) Record(id int) *Record {
	return &a.records[id]
}

// Records returns every record of the play, including removed ones.
func (a *ActiveSet) Records() []Record {
	return a.records
}

// Each calls fn for live records in chart order until fn returns false.
func (a *ActiveSet) Each(fn func(r *Record) bool) {
	for _, id := range a.live {
		r := &a.records[id]
		if r.removed {
			continue
		}
		if !fn(r) {
			return
		}
	}
}

// Remove takes a record out of the set. Removing twice is a no-op.
func (a *ActiveSet) Remove(id int) {
	r := &a.records[id]
	if r.removed {
		return
	}
	r.removed = true
	a.dirty = true
	if a.OnRemove != nil {
		a.OnRemove(r)
	}
}

// Removed reports whether a record has left the set.
func (a *ActiveSet) Removed(id int) bool {
	return a.records[id].removed
}

// Compact drops removed records from the live list.
func (a *ActiveSet) Compact() {
	if !a.dirty {
		return
	}
	live := a.live[:0]
	for _, id := range a.live {
		if !a.records[id].removed {
			live = append(live, id)
		}
	}
	a.live = live
	a.dirty = false
}

// Len counts the records still in the set.
func (a *ActiveSet) Len() int {
	n := 0
	for _, id := range a.live {
		if !a.records[id].removed {
			n++
		}
	}
	return n
}

// Clear removes every record.
func (a *ActiveSet) Clear() {
	for _, id := range a.live {
		a.Remove(id)
	}
	a.Compact()
}

// Judgeable counts the records that are scored.
func (a *ActiveSet) Judgeable() int {
	n := 0
	for i := range a.records {
		if a.records[i].Kind.Judged() {
			n++
		}
	}
	return n
}
