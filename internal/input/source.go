package input

import "go.uber.org/zap"

// Special keys that are not part of the playing layout.
const (
	KeyEscape rune = 27
	KeySpace  rune = ' '
	KeyEnter  rune = '\r'
)

// Event is a key going down or up. Sources deliver events from their own
// goroutines over a channel and the tick loop drains it.
type Event struct {
	Key      rune
	Pressed  bool
	Released bool
}

// Source produces key events until it is closed.
type Source interface {
	Events() <-chan Event
	Close() error
}

var logger = zap.NewNop()

func SetLogger(l *zap.Logger) {
	logger = l.Named("input")
}
