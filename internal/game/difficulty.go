package game

// Difficulty is one playable event list of a chart. Events are ordered by
// ascending beat, events sharing a beat keep their source order.
type Difficulty struct {
	Name   string
	Events []Event
	// Sum identifies the content of the difficulty, used to key results.
	Sum string
}

// Judgeable counts the events that will be scored when this difficulty is
// played.
func (d *Difficulty) Judgeable() int {
	n := 0
	for _, e := range d.Events {
		if e.Kind().Judged() {
			n++
		}
	}
	return n
}

// Counts returns the number of hits, holds and hold ticks.
func (d *Difficulty) Counts() (hits, holds, ticks int) {
	for _, e := range d.Events {
		switch e.(type) {
		case Hit:
			hits++
		case HoldStart:
			holds++
		case HoldTick:
			ticks++
		case TimingMarker:
		default:
			panic("unknown event type")
		}
	}
	return
}
