package game

import "fmt"

// Judgement is the accuracy verdict on an event, ordered best to worst.
type Judgement uint8

const (
	Marvelous Judgement = iota
	Perfect
	Great
	Good
	Miss
	// None means the event has not been evaluated yet.
	None
)

// Judgements lists every verdict an evaluated event can end up with.
var Judgements = [...]Judgement{Marvelous, Perfect, Great, Good, Miss}

func (j Judgement) String() string {
	switch j {
	case Marvelous:
		return "marvelous"
	case Perfect:
		return "perfect"
	case Great:
		return "great"
	case Good:
		return "good"
	case Miss:
		return "miss"
	case None:
		return "none"
	}
	return fmt.Sprintf("judgement(%d)", uint8(j))
}

// Text is what the UI flashes when the judgement is made.
func (j Judgement) Text() string {
	if j == Marvelous {
		return "marvelous!"
	}
	return j.String()
}

// Worse reports whether j ranks below other.
func (j Judgement) Worse(other Judgement) bool {
	return j > other
}
