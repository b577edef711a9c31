package game

import "fmt"

// Kind tags the event variants for code that stores events flat.
type Kind uint8

const (
	KindHit Kind = iota
	KindHoldStart
	KindHoldTick
	KindTimingMarker
)

func (k Kind) String() string {
	switch k {
	case KindHit:
		return "hit"
	case KindHoldStart:
		return "hold"
	case KindHoldTick:
		return "hold tick"
	case KindTimingMarker:
		return "timing marker"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Judged reports whether events of this kind are scored.
func (k Kind) Judged() bool {
	switch k {
	case KindHit, KindHoldStart, KindHoldTick:
		return true
	case KindTimingMarker:
		return false
	}
	panic(fmt.Sprintf("unknown event kind %d", uint8(k)))
}

// Event is something in a chart that is synced to a beat. The set of
// implementations is closed: Hit, HoldStart, HoldTick and TimingMarker.
type Event interface {
	Beat() Beat
	Kind() Kind
	Keys() Keys
	event()
}

// Hit must be struck within the timing window of its beat.
type Hit struct {
	At   Beat
	Lane Keys
}

// HoldStart is struck like a Hit and then sustained through its ticks.
type HoldStart struct {
	At   Beat
	Lane Keys
	// Length in beats and the number of equal sub-intervals it is split into.
	Length Beat
	Ticks  int
}

// HoldTick checks that a hold is still pressed part way through.
type HoldTick struct {
	At   Beat
	Lane Keys
}

// TimingMarker is drawn once per grouping and never judged.
type TimingMarker struct {
	At Beat
}

func (e Hit) Beat() Beat          { return e.At }
func (e HoldStart) Beat() Beat    { return e.At }
func (e HoldTick) Beat() Beat     { return e.At }
func (e TimingMarker) Beat() Beat { return e.At }

func (Hit) Kind() Kind          { return KindHit }
func (HoldStart) Kind() Kind    { return KindHoldStart }
func (HoldTick) Kind() Kind     { return KindHoldTick }
func (TimingMarker) Kind() Kind { return KindTimingMarker }

func (e Hit) Keys() Keys        { return e.Lane }
func (e HoldStart) Keys() Keys  { return e.Lane }
func (e HoldTick) Keys() Keys   { return e.Lane }
func (TimingMarker) Keys() Keys { return "" }

func (Hit) event()          {}
func (HoldStart) event()    {}
func (HoldTick) event()     {}
func (TimingMarker) event() {}

// TickEvents expands a hold into the ticks between its start and its end, both
// boundaries excluded.
func (e HoldStart) TickEvents() []HoldTick {
	if e.Ticks < 2 {
		return nil
	}
	delta := e.Length / Beat(e.Ticks)
	ticks := make([]HoldTick, 0, e.Ticks-1)
	for i := 1; i < e.Ticks; i++ {
		ticks = append(ticks, HoldTick{At: e.At + delta*Beat(i), Lane: e.Lane})
	}
	return ticks
}
