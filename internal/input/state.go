package input

import (
	"time"

	"golang.org/x/exp/slices"
)

// KeyPress is a key that is currently held down.
type KeyPress struct {
	Key rune
	// At is the counter value when the key went down.
	At time.Duration
}

// State is the set of keys currently held, keyed by key. A key is present
// from key-down until key-up.
type State struct {
	held map[rune]KeyPress
}

func NewState() *State {
	return &State{held: map[rune]KeyPress{}}
}

// Press records key going down at the given instant. Pressing a key that is
// already held keeps the original instant, so repeats never look fresh.
func (s *State) Press(key rune, at time.Duration) {
	if _, ok := s.held[key]; ok {
		return
	}
	s.held[key] = KeyPress{Key: key, At: at}
}

func (s *State) Release(key rune) {
	delete(s.held, key)
}

// Get returns the press of a held key.
func (s *State) Get(key rune) (KeyPress, bool) {
	p, ok := s.held[key]
	return p, ok
}

func (s *State) Held(key rune) bool {
	_, ok := s.held[key]
	return ok
}

// Shift moves every press instant forward, used when the clock skips a
// paused span.
func (s *State) Shift(d time.Duration) {
	for k, p := range s.held {
		p.At += d
		s.held[k] = p
	}
}

func (s *State) Len() int {
	return len(s.held)
}

// Presses returns the held keys ordered by key.
func (s *State) Presses() []KeyPress {
	out := make([]KeyPress, 0, len(s.held))
	for _, p := range s.held {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b KeyPress) bool { return a.Key < b.Key })
	return out
}

func (s *State) Reset() {
	s.held = map[rune]KeyPress{}
}
